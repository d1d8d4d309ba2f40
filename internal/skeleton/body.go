// Package skeleton defines tracked bodies, joints and the points they occupy.
package skeleton

import (
	"fmt"
	"math"
)

// MaxBodies is the maximum number of bodies a sensor reports in one frame.
const MaxBodies = 6

// JointType identifies a tracked anatomical point.
// Values follow the Kinect v2 joint ordering.
type JointType int

const (
	SpineBase JointType = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight
	NumJointTypes
)

var jointNames = [NumJointTypes]string{
	"SpineBase", "SpineMid", "Neck", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
	"SpineShoulder", "HandTipLeft", "ThumbLeft", "HandTipRight", "ThumbRight",
}

// String returns the joint name, e.g. "HandLeft".
func (j JointType) String() string {
	if j < 0 || j >= NumJointTypes {
		return fmt.Sprintf("JointType(%d)", int(j))
	}
	return jointNames[j]
}

// Valid reports whether j is a known joint type.
func (j JointType) Valid() bool {
	return j >= 0 && j < NumJointTypes
}

// ParseJointType returns the JointType with the given name.
func ParseJointType(name string) (JointType, error) {
	for i, n := range jointNames {
		if n == name {
			return JointType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint type %q", name)
}

// MarshalText encodes the joint by name so config files stay readable.
func (j JointType) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("invalid joint type %d", int(j))
	}
	return []byte(jointNames[j]), nil
}

func (j *JointType) UnmarshalText(text []byte) error {
	t, err := ParseJointType(string(text))
	if err != nil {
		return err
	}
	*j = t
	return nil
}

// TrackingState is the sensor's confidence in a joint position.
type TrackingState int

const (
	NotTracked TrackingState = iota
	Inferred
	Tracked
)

func (s TrackingState) String() string {
	switch s {
	case NotTracked:
		return "NotTracked"
	case Inferred:
		return "Inferred"
	case Tracked:
		return "Tracked"
	}
	return fmt.Sprintf("TrackingState(%d)", int(s))
}

// ParseTrackingState returns the TrackingState with the given name.
func ParseTrackingState(name string) (TrackingState, error) {
	switch name {
	case "NotTracked":
		return NotTracked, nil
	case "Inferred":
		return Inferred, nil
	case "Tracked":
		return Tracked, nil
	}
	return 0, fmt.Errorf("unknown tracking state %q", name)
}

// Point3D is a position in camera space, in metres.
// X points right, Y up and Z away from the sensor.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point2D is a position on a 2D plane (sensor pixels or render surface).
// Either coordinate may be infinite when the source point could not be mapped.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) &&
		!math.IsInf(p.Y, 0) && !math.IsNaN(p.Y)
}

// Joint is a single tracked joint.
type Joint struct {
	Type     JointType     `json:"type"`
	Position Point3D       `json:"position"`
	State    TrackingState `json:"state"`
}

// Body is one tracked person as reported for a single sensor frame.
type Body struct {
	ID      uint64              `json:"id"`
	Tracked bool                `json:"tracked"`
	Joints  map[JointType]Joint `json:"joints"`
}

// Joint returns the joint of the given type and whether it is present.
func (b *Body) Joint(t JointType) (Joint, bool) {
	j, ok := b.Joints[t]
	return j, ok
}
