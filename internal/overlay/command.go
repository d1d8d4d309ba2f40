// Package overlay turns tracked bodies into draw commands for a 2D overlay
// and paints those commands onto frames.
package overlay

import (
	"github.com/ayusman/hotzone/internal/engagement"
	"github.com/ayusman/hotzone/internal/skeleton"
)

// Shape is the kind of marker drawn for a joint.
type Shape int

const (
	ShapeEllipse Shape = iota
	ShapeSquare
)

func (s Shape) String() string {
	switch s {
	case ShapeEllipse:
		return "ellipse"
	case ShapeSquare:
		return "square"
	}
	return "unknown"
}

// StyleID names a fill style. The canvas maps it to a colour.
type StyleID string

// Size is the current render surface size.
type Size struct {
	Width  float64
	Height float64
}

// DrawCommand is a single marker to draw. Center is the marker centre in
// render-surface coordinates and is always finite.
type DrawCommand struct {
	Shape     Shape
	Center    skeleton.Point2D
	Size      float64
	Style     StyleID
	BodyIndex int
	Joint     skeleton.JointType
}

// TopLeft returns the top-left corner of the marker's bounding square.
func (c DrawCommand) TopLeft() skeleton.Point2D {
	return skeleton.Point2D{X: c.Center.X - c.Size/2, Y: c.Center.Y - c.Size/2}
}

// BodyEngagement is the engagement outcome for one body's head.
type BodyEngagement struct {
	BodyIndex int
	BodyID    uint64
	engagement.Result
}

// Frame is everything produced for one sensor frame.
type Frame struct {
	Commands    []DrawCommand
	Engagements []BodyEngagement
}

// EngagedBodies returns the IDs of bodies whose head is in a zone.
func (f Frame) EngagedBodies() []uint64 {
	var ids []uint64
	for _, e := range f.Engagements {
		if e.Engaged {
			ids = append(ids, e.BodyID)
		}
	}
	return ids
}
