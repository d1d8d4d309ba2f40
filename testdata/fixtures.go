// Package testdata generates frames and body sequences for pipeline tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/hotzone/internal/skeleton"
)

// Body IDs used by the scripted scenes.
const (
	WalkerID    uint64 = 72057594037929001
	BystanderID uint64 = 72057594037929002
)

var (
	walkerStart = skeleton.Point3D{X: -0.8, Y: -0.30, Z: 2.8}
	// walkerDesk puts the walker's head at (1.10, -0.20, 2.45).
	walkerDesk = skeleton.Point3D{X: 1.10, Y: -0.92, Z: 2.50}
	bystander  = skeleton.Point3D{X: -1.2, Y: -0.30, Z: 3.4}
)

// Frames returns n BGR frames of the given size with a white block that
// moves right on every frame. The caller must close them, see CloseAll.
func Frames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	block := width / 8
	for i := range frames {
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
		x := (i * block) % (width - block)
		gocv.Rectangle(&m, image.Rect(x, height/3, x+block, height/3+block), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
		frames[i] = &m
	}
	return frames
}

// CloseAll closes every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

// Scene is the set of bodies visible in one frame.
type Scene []skeleton.Body

// WalkToDesk returns steps+1 scenes in which the walker moves from the
// middle of the room to the desk hot-zone while a bystander stands still,
// followed by steps scenes walking back.
func WalkToDesk(steps int) []Scene {
	if steps < 1 {
		steps = 1
	}
	scenes := make([]Scene, 0, 2*steps+1)
	for i := 0; i <= steps; i++ {
		scenes = append(scenes, scene(lerp(walkerStart, walkerDesk, float64(i)/float64(steps))))
	}
	for i := steps - 1; i >= 0; i-- {
		scenes = append(scenes, scene(lerp(walkerStart, walkerDesk, float64(i)/float64(steps))))
	}
	return scenes
}

func scene(walker skeleton.Point3D) Scene {
	return Scene{
		skeleton.BodyAt(BystanderID, bystander),
		skeleton.BodyAt(WalkerID, walker),
	}
}

func lerp(a, b skeleton.Point3D, t float64) skeleton.Point3D {
	return skeleton.Point3D{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}
