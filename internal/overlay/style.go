package overlay

import (
	"github.com/ayusman/hotzone/internal/skeleton"
)

// Built-in style identifiers.
const (
	StyleGreen  StyleID = "green"
	StyleBlue   StyleID = "blue"
	StyleOrange StyleID = "orange"
	StylePink   StyleID = "pink"
	StyleAqua   StyleID = "aqua"
	StyleYellow StyleID = "yellow"
	StyleGray   StyleID = "gray"
	StyleRed    StyleID = "red"
)

// Marker sizes in render-surface units.
const (
	DefaultHeadSize  = 50
	DefaultJointSize = 20
)

// Styles is the set of fill styles used by the renderer.
type Styles struct {
	// Palette holds one style per body index.
	Palette []StyleID `json:"palette"`
	// Inferred is used for joints whose position is inferred.
	Inferred StyleID `json:"inferred"`
	// Engaged is used for a head inside an engagement zone.
	Engaged StyleID `json:"engaged"`
}

// DefaultStyles returns the six body colours plus gray and red.
func DefaultStyles() Styles {
	return Styles{
		Palette:  []StyleID{StyleGreen, StyleBlue, StyleOrange, StylePink, StyleAqua, StyleYellow},
		Inferred: StyleGray,
		Engaged:  StyleRed,
	}
}

// DefaultJoints returns the joints drawn by default.
func DefaultJoints() []skeleton.JointType {
	return []skeleton.JointType{skeleton.Head, skeleton.HandLeft, skeleton.HandRight, skeleton.SpineMid}
}

// sizeTable maps every drawable joint to its marker size. The head gets the
// large size, everything else the regular one.
func sizeTable(joints []skeleton.JointType, head, regular float64) map[skeleton.JointType]float64 {
	sizes := make(map[skeleton.JointType]float64, len(joints))
	for _, j := range joints {
		sizes[j] = regular
	}
	if _, ok := sizes[skeleton.Head]; ok {
		sizes[skeleton.Head] = head
	}
	return sizes
}

// stateTable maps tracking states that override the body style.
// States absent from the table use the body's palette entry.
func stateTable(s Styles) map[skeleton.TrackingState]StyleID {
	return map[skeleton.TrackingState]StyleID{
		skeleton.Inferred: s.Inferred,
	}
}
