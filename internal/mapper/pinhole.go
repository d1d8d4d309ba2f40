package mapper

import (
	"fmt"

	"github.com/ayusman/hotzone/internal/skeleton"
	"gonum.org/v1/gonum/mat"
)

// Kinect v2 colour camera defaults.
const (
	DefaultColorWidth  = 1920
	DefaultColorHeight = 1080
	DefaultFocalLength = 1081.37
	DefaultCenterX     = 959.5
	DefaultCenterY     = 539.5
	// DefaultBaseline is the X offset in metres between the depth and
	// colour cameras.
	DefaultBaseline = -0.052
)

// Intrinsics describes a pinhole colour camera.
type Intrinsics struct {
	FocalX  float64 `json:"fx"`
	FocalY  float64 `json:"fy"`
	CenterX float64 `json:"cx"`
	CenterY float64 `json:"cy"`
}

// Extrinsics is the rigid transform from camera (depth) space into the
// colour camera's frame. Rotation is row-major 3x3.
type Extrinsics struct {
	Rotation    [9]float64 `json:"rotation"`
	Translation [3]float64 `json:"translation"`
}

// DefaultIntrinsics returns the Kinect v2 colour camera intrinsics.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{
		FocalX:  DefaultFocalLength,
		FocalY:  DefaultFocalLength,
		CenterX: DefaultCenterX,
		CenterY: DefaultCenterY,
	}
}

// DefaultExtrinsics returns an identity rotation with the Kinect v2
// depth-to-colour baseline.
func DefaultExtrinsics() Extrinsics {
	return Extrinsics{
		Rotation:    [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		Translation: [3]float64{DefaultBaseline, 0, 0},
	}
}

// PinholeProjector projects camera-space points through a rigid transform
// and an ideal pinhole model. Image Y grows downwards while camera Y grows
// upwards.
type PinholeProjector struct {
	in          Intrinsics
	rotation    *mat.Dense
	translation *mat.VecDense
}

// NewPinholeProjector creates a projector from the given calibration.
func NewPinholeProjector(in Intrinsics, ex Extrinsics) (*PinholeProjector, error) {
	if in.FocalX <= 0 || in.FocalY <= 0 {
		return nil, fmt.Errorf("focal length must be positive, got fx=%g fy=%g", in.FocalX, in.FocalY)
	}

	rot := ex.Rotation
	trans := ex.Translation

	return &PinholeProjector{
		in:          in,
		rotation:    mat.NewDense(3, 3, rot[:]),
		translation: mat.NewVecDense(3, trans[:]),
	}, nil
}

// ProjectToSensorPlane implements Projector. Points at or behind the colour
// camera are unmappable.
func (p *PinholeProjector) ProjectToSensorPlane(pt skeleton.Point3D) (skeleton.Point2D, bool) {
	v := mat.NewVecDense(3, []float64{pt.X, pt.Y, pt.Z})

	var c mat.VecDense
	c.MulVec(p.rotation, v)
	c.AddVec(&c, p.translation)

	x, y, z := c.AtVec(0), c.AtVec(1), c.AtVec(2)
	if z <= 0 {
		return skeleton.Point2D{}, false
	}

	return skeleton.Point2D{
		X: p.in.CenterX + p.in.FocalX*x/z,
		Y: p.in.CenterY - p.in.FocalY*y/z,
	}, true
}
