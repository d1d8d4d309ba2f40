package overlay

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/hotzone/internal/engagement"
	"github.com/ayusman/hotzone/internal/mapper"
	"github.com/ayusman/hotzone/internal/skeleton"
)

var (
	// ErrMissingJoint is returned when a tracked body lacks a drawable joint.
	ErrMissingJoint = errors.New("tracked body is missing joint")
	// ErrJointMismatch is returned when a joint is stored under another type's key.
	ErrJointMismatch = errors.New("joint type does not match its key")
	// ErrTooManyBodies is returned when a tracked body has no palette entry.
	ErrTooManyBodies = errors.New("more tracked bodies than palette styles")
	// ErrBadGeometry is returned for unusable sensor or surface sizes.
	ErrBadGeometry = errors.New("invalid frame geometry")
)

// Config holds renderer options.
type Config struct {
	// Joints is the whitelist of joint types to draw, in drawing order.
	Joints    []skeleton.JointType `json:"joints"`
	HeadSize  float64              `json:"head_size"`
	JointSize float64              `json:"joint_size"`
	Styles    Styles               `json:"styles"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Joints:    DefaultJoints(),
		HeadSize:  DefaultHeadSize,
		JointSize: DefaultJointSize,
		Styles:    DefaultStyles(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.Joints) == 0 {
		return errors.New("no joints to render")
	}
	seen := make(map[skeleton.JointType]bool, len(c.Joints))
	for _, j := range c.Joints {
		if !j.Valid() {
			return fmt.Errorf("invalid joint type %d", int(j))
		}
		if seen[j] {
			return fmt.Errorf("joint %v listed twice", j)
		}
		seen[j] = true
	}
	if c.HeadSize <= 0 || c.JointSize <= 0 {
		return fmt.Errorf("marker sizes must be positive, got head=%g joint=%g", c.HeadSize, c.JointSize)
	}
	if len(c.Styles.Palette) < skeleton.MaxBodies {
		return fmt.Errorf("palette has %d styles, need at least %d", len(c.Styles.Palette), skeleton.MaxBodies)
	}
	if c.Styles.Inferred == "" || c.Styles.Engaged == "" {
		return errors.New("inferred and engaged styles are required")
	}
	return nil
}

// Renderer converts tracked bodies into draw commands. It holds only
// read-only configuration and may be shared.
type Renderer struct {
	mapper      *mapper.Mapper
	evaluator   *engagement.Evaluator
	joints      []skeleton.JointType
	sizes       map[skeleton.JointType]float64
	stateStyles map[skeleton.TrackingState]StyleID
	styles      Styles
}

// New creates a Renderer.
func New(m *mapper.Mapper, e *engagement.Evaluator, config Config) (*Renderer, error) {
	if m == nil || e == nil {
		return nil, errors.New("mapper and evaluator are required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	joints := make([]skeleton.JointType, len(config.Joints))
	copy(joints, config.Joints)

	styles := config.Styles
	styles.Palette = append([]StyleID(nil), config.Styles.Palette...)

	return &Renderer{
		mapper:      m,
		evaluator:   e,
		joints:      joints,
		sizes:       sizeTable(joints, config.HeadSize, config.JointSize),
		stateStyles: stateTable(styles),
		styles:      styles,
	}, nil
}

// RenderFrame builds the draw commands for one sensor frame. Every call
// starts from an empty command list; nothing is carried over between frames.
//
// Bodies are visited in slice order and joints in whitelist order. Joints
// that are not tracked or that map to a non-finite position produce no
// commands. Head engagement is evaluated from the 3D position and reported
// even when the head cannot be drawn.
func (r *Renderer) RenderFrame(bodies []skeleton.Body, surface Size) (Frame, error) {
	sensorW, sensorH := r.mapper.SensorSize()
	if !(sensorW > 0) || !(sensorH > 0) {
		return Frame{}, fmt.Errorf("%w: sensor %gx%g", ErrBadGeometry, sensorW, sensorH)
	}
	if !(surface.Width >= 0) || !(surface.Height >= 0) ||
		math.IsInf(surface.Width, 0) || math.IsInf(surface.Height, 0) {
		return Frame{}, fmt.Errorf("%w: surface %gx%g", ErrBadGeometry, surface.Width, surface.Height)
	}

	frame := Frame{
		Commands: make([]DrawCommand, 0, len(bodies)*(len(r.joints)+1)),
	}

	for i := range bodies {
		body := &bodies[i]
		if !body.Tracked {
			continue
		}
		if i >= len(r.styles.Palette) {
			return Frame{}, fmt.Errorf("%w: body index %d", ErrTooManyBodies, i)
		}
		if err := r.renderBody(&frame, i, body, surface); err != nil {
			return Frame{}, fmt.Errorf("body %d: %w", body.ID, err)
		}
	}

	return frame, nil
}

func (r *Renderer) renderBody(frame *Frame, index int, body *skeleton.Body, surface Size) error {
	for _, jt := range r.joints {
		joint, ok := body.Joint(jt)
		if !ok {
			return fmt.Errorf("%w %v", ErrMissingJoint, jt)
		}
		if joint.Type != jt {
			return fmt.Errorf("%w: %v stored as %v", ErrJointMismatch, joint.Type, jt)
		}
		if joint.State == skeleton.NotTracked {
			continue
		}

		pos := r.mapper.Map(joint.Position, surface.Width, surface.Height)
		style := r.jointStyle(index, joint.State)

		if jt != skeleton.Head {
			if pos.IsFinite() {
				frame.Commands = append(frame.Commands, r.command(ShapeEllipse, pos, style, index, jt))
			}
			continue
		}

		res := r.evaluator.Evaluate(joint.Position)
		frame.Engagements = append(frame.Engagements, BodyEngagement{
			BodyIndex: index,
			BodyID:    body.ID,
			Result:    res,
		})

		if !pos.IsFinite() {
			continue
		}
		if res.Engaged {
			style = r.styles.Engaged
		}
		frame.Commands = append(frame.Commands,
			r.command(ShapeSquare, pos, style, index, jt),
			r.command(ShapeEllipse, pos, style, index, jt),
		)
	}
	return nil
}

// jointStyle picks the style for a joint from the tracking state table,
// falling back to the body's palette entry.
func (r *Renderer) jointStyle(bodyIndex int, state skeleton.TrackingState) StyleID {
	if s, ok := r.stateStyles[state]; ok {
		return s
	}
	return r.styles.Palette[bodyIndex]
}

func (r *Renderer) command(shape Shape, pos skeleton.Point2D, style StyleID, bodyIndex int, jt skeleton.JointType) DrawCommand {
	return DrawCommand{
		Shape:     shape,
		Center:    pos,
		Size:      r.sizes[jt],
		Style:     style,
		BodyIndex: bodyIndex,
		Joint:     jt,
	}
}
