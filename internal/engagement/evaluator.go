// Package engagement decides whether a tracked head is close enough to one of
// the configured engagement zones.
package engagement

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/hotzone/internal/skeleton"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultRadius is the engagement radius in metres.
const DefaultRadius = 0.75

// ErrInvalidRadius is returned for a negative or NaN engagement radius.
var ErrInvalidRadius = errors.New("invalid engagement radius")

// Zone is a named reference point a head must approach.
type Zone struct {
	ID       string           `json:"id"`
	Position skeleton.Point3D `json:"position"`
}

// DefaultZones returns the zone calibrated against the reference desk corner.
func DefaultZones() []Zone {
	return []Zone{
		{ID: "desk", Position: skeleton.Point3D{X: 1.141569, Y: -0.2308079, Z: 2.408344}},
	}
}

// Result is the outcome of evaluating one head position.
type Result struct {
	Engaged bool
	// Distance to the nearest zone, +Inf when no zones are configured.
	Distance float64
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b skeleton.Point3D) float64 {
	return r3.Norm(r3.Sub(toVec(a), toVec(b)))
}

func toVec(p skeleton.Point3D) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// IsHeadInZone reports whether head is strictly closer than radius to the
// nearest of zones, together with that nearest distance.
// An empty zone list is never engaged and reports +Inf.
func IsHeadInZone(head skeleton.Point3D, zones []skeleton.Point3D, radius float64) (bool, float64) {
	nearest := math.Inf(1)
	for _, z := range zones {
		if d := Distance(head, z); d < nearest {
			nearest = d
		}
	}
	return nearest < radius, nearest
}

// Evaluator holds the engagement configuration. It is immutable once built
// and safe to share between callers.
type Evaluator struct {
	zones     []Zone
	positions []skeleton.Point3D
	radius    float64
}

// NewEvaluator creates an Evaluator for the given zones and radius.
// The zone slice is copied.
func NewEvaluator(zones []Zone, radius float64) (*Evaluator, error) {
	if math.IsNaN(radius) || radius < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}

	e := &Evaluator{
		zones:     make([]Zone, len(zones)),
		positions: make([]skeleton.Point3D, len(zones)),
		radius:    radius,
	}
	copy(e.zones, zones)
	for i, z := range zones {
		e.positions[i] = z.Position
	}

	return e, nil
}

// Evaluate checks head against every configured zone.
func (e *Evaluator) Evaluate(head skeleton.Point3D) Result {
	engaged, d := IsHeadInZone(head, e.positions, e.radius)
	return Result{Engaged: engaged, Distance: d}
}

// Radius returns the engagement radius.
func (e *Evaluator) Radius() float64 {
	return e.radius
}

// Zones returns a copy of the configured zones.
func (e *Evaluator) Zones() []Zone {
	out := make([]Zone, len(e.zones))
	copy(out, e.zones)
	return out
}
