// Package mapper converts camera-space joint positions into render-surface
// coordinates.
package mapper

import (
	"math"

	"github.com/ayusman/hotzone/internal/skeleton"
)

// Projector projects a camera-space point onto the sensor's colour image plane.
// The returned point is in sensor-frame pixels. ok is false when the point
// cannot be projected.
type Projector interface {
	ProjectToSensorPlane(p skeleton.Point3D) (px skeleton.Point2D, ok bool)
}

// ProjectorFunc adapts an ordinary function to the Projector interface.
type ProjectorFunc func(p skeleton.Point3D) (skeleton.Point2D, bool)

// ProjectToSensorPlane calls f(p).
func (f ProjectorFunc) ProjectToSensorPlane(p skeleton.Point3D) (skeleton.Point2D, bool) {
	return f(p)
}

// Unmappable is the value returned for points that cannot be placed on the
// render surface.
var Unmappable = skeleton.Point2D{X: math.Inf(-1), Y: math.Inf(-1)}

// MapToRenderSpace projects point onto the sensor plane and rescales the
// resulting pixel position to a render surface of renderW x renderH.
// Each axis is scaled independently and the result is not clamped, so a
// point outside the sensor frame maps outside the surface. Unmappable points
// come back as Unmappable; callers must check IsFinite before drawing.
func MapToRenderSpace(proj Projector, point skeleton.Point3D, sensorW, sensorH, renderW, renderH float64) skeleton.Point2D {
	px, ok := proj.ProjectToSensorPlane(point)
	if !ok {
		return Unmappable
	}
	return skeleton.Point2D{
		X: px.X / sensorW * renderW,
		Y: px.Y / sensorH * renderH,
	}
}

// Mapper binds a Projector to the sensor frame resolution it projects into.
type Mapper struct {
	proj    Projector
	sensorW float64
	sensorH float64
}

// New creates a Mapper for a sensor frame of sensorW x sensorH pixels.
func New(proj Projector, sensorW, sensorH int) *Mapper {
	return &Mapper{
		proj:    proj,
		sensorW: float64(sensorW),
		sensorH: float64(sensorH),
	}
}

// SensorSize returns the sensor frame resolution in pixels.
func (m *Mapper) SensorSize() (w, h float64) {
	return m.sensorW, m.sensorH
}

// Map places point on a render surface of renderW x renderH.
func (m *Mapper) Map(point skeleton.Point3D, renderW, renderH float64) skeleton.Point2D {
	return MapToRenderSpace(m.proj, point, m.sensorW, m.sensorH, renderW, renderH)
}
