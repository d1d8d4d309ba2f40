// Package app wires capture, body tracking and the overlay renderer into the
// hotzone frame pipeline.
package app

import (
	"errors"
	"log"
	"math"
	"slices"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/hotzone/internal/capture"
	"github.com/ayusman/hotzone/internal/display"
	"github.com/ayusman/hotzone/internal/overlay"
	"github.com/ayusman/hotzone/internal/tracker"
)

// Default pipeline rates.
const (
	DefaultIdleFPS   = 2
	DefaultActiveFPS = 15
)

// ErrNotConfigured is returned by New when a required component is missing.
var ErrNotConfigured = errors.New("app is missing a required component")

// Config holds the components the pipeline runs on.
type Config struct {
	Camera   capture.Camera
	Source   tracker.Source
	Renderer *overlay.Renderer

	// Canvas paints draw commands. Defaults to display.NewCanvas().
	Canvas *display.Canvas
	// Sink receives composed frames. Optional.
	Sink display.Sink
	// Gate switches between idle and active rates. Optional; without it
	// the pipeline always runs at ActiveFPS.
	Gate *capture.ActivityGate

	IdleFPS   int
	ActiveFPS int
	Enabled   bool
}

// EngagementEvent reports a body entering or leaving the hot-zones.
type EngagementEvent struct {
	BodyID    uint64
	BodyIndex int
	Engaged   bool
	Distance  float64
	At        time.Time
}

// App is the main application that runs the overlay pipeline.
type App struct {
	config Config
	canvas *display.Canvas

	mu           sync.RWMutex
	enabled      bool
	stopCh       chan struct{}
	done         sync.WaitGroup
	engaged      map[uint64]overlay.BodyEngagement
	onEngagement []func(EngagementEvent)
	frames       uint64

	now func() time.Time
}

// New creates an App from config.
func New(config Config) (*App, error) {
	if config.Camera == nil || config.Source == nil || config.Renderer == nil {
		return nil, ErrNotConfigured
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = DefaultActiveFPS
	}
	canvas := config.Canvas
	if canvas == nil {
		canvas = display.NewCanvas()
	}

	return &App{
		config:  config,
		canvas:  canvas,
		enabled: config.Enabled,
		engaged: make(map[uint64]overlay.BodyEngagement),
		now:     time.Now,
	}, nil
}

// OnEngagement registers fn to be called on every engagement transition.
// Callbacks run on the pipeline goroutine.
func (a *App) OnEngagement(fn func(EngagementEvent)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onEngagement = append(a.onEngagement, fn)
}

// SetEnabled turns overlay processing on or off. Disabling reports every
// engaged body as having left.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	if a.enabled == enabled {
		a.mu.Unlock()
		return
	}
	a.enabled = enabled
	var events []EngagementEvent
	if !enabled {
		events = a.updateEngagementLocked(nil)
	}
	callbacks := slices.Clone(a.onEngagement)
	a.mu.Unlock()

	log.Printf("Overlay enabled: %v", enabled)
	dispatch(callbacks, events)
}

// IsEnabled returns whether overlay processing is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// EngagedBodies returns the IDs of bodies currently in a hot-zone, ascending.
func (a *App) EngagedBodies() []uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]uint64, 0, len(a.engaged))
	for id := range a.engaged {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FramesProcessed returns how many frames ProcessFrame has rendered.
func (a *App) FramesProcessed() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frames
}

// ProcessFrame runs one synchronous pipeline cycle on frame: track bodies,
// render draw commands sized to the frame, update engagement state and
// show the composed result. The caller keeps ownership of frame.
func (a *App) ProcessFrame(frame *gocv.Mat) (overlay.Frame, error) {
	if frame == nil || frame.Empty() {
		return overlay.Frame{}, capture.ErrEmptyFrame
	}

	bodies, err := a.config.Source.Track(frame)
	if err != nil {
		return overlay.Frame{}, err
	}

	surface := overlay.Size{Width: float64(frame.Cols()), Height: float64(frame.Rows())}
	out, err := a.config.Renderer.RenderFrame(bodies, surface)
	if err != nil {
		return overlay.Frame{}, err
	}

	if len(bodies) > 0 && a.config.Gate != nil {
		a.config.Gate.Wake()
	}

	a.mu.Lock()
	a.frames++
	events := a.updateEngagementLocked(out.Engagements)
	callbacks := slices.Clone(a.onEngagement)
	a.mu.Unlock()

	for _, ev := range events {
		if ev.Engaged {
			log.Printf("Body %d entered hot-zone (%.3fm)", ev.BodyID, ev.Distance)
		} else {
			log.Printf("Body %d left hot-zone", ev.BodyID)
		}
	}
	dispatch(callbacks, events)

	if a.config.Sink != nil {
		composed, err := a.canvas.Compose(*frame, out.Commands)
		if err != nil {
			return out, err
		}
		err = a.config.Sink.Show(&composed)
		composed.Close()
		if err != nil {
			return out, err
		}
	}

	return out, nil
}

// updateEngagementLocked diffs engs against the previous frame and returns
// the transitions: entries in frame order, then departures by body ID.
func (a *App) updateEngagementLocked(engs []overlay.BodyEngagement) []EngagementEvent {
	now := a.now()
	current := make(map[uint64]overlay.BodyEngagement, len(engs))
	var events []EngagementEvent

	for _, e := range engs {
		if !e.Engaged {
			continue
		}
		current[e.BodyID] = e
		if _, was := a.engaged[e.BodyID]; !was {
			events = append(events, EngagementEvent{
				BodyID:    e.BodyID,
				BodyIndex: e.BodyIndex,
				Engaged:   true,
				Distance:  e.Distance,
				At:        now,
			})
		}
	}

	var left []uint64
	for id := range a.engaged {
		if _, still := current[id]; !still {
			left = append(left, id)
		}
	}
	slices.Sort(left)
	for _, id := range left {
		ev := EngagementEvent{
			BodyID:    id,
			BodyIndex: a.engaged[id].BodyIndex,
			Distance:  math.Inf(1),
			At:        now,
		}
		for _, e := range engs {
			if e.BodyID == id {
				ev.BodyIndex = e.BodyIndex
				ev.Distance = e.Distance
				break
			}
		}
		events = append(events, ev)
	}

	a.engaged = current
	return events
}

func dispatch(callbacks []func(EngagementEvent), events []EngagementEvent) {
	for _, ev := range events {
		for _, fn := range callbacks {
			fn(ev)
		}
	}
}

// Start opens the camera and begins the pipeline loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.config.Camera.Open(); err != nil {
		return err
	}
	a.config.Camera.SetFPS(a.config.IdleFPS)

	a.stopCh = make(chan struct{})
	a.done.Add(1)
	go a.runPipeline(a.stopCh)

	log.Println("Overlay pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera, tracker and sink.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		a.done.Wait()
	}

	if err := a.config.Camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.config.Source.Close(); err != nil {
		log.Printf("Error closing body source: %v", err)
	}
	if a.config.Gate != nil {
		a.config.Gate.Close()
	}
	if a.config.Sink != nil {
		if err := a.config.Sink.Close(); err != nil {
			log.Printf("Error closing display: %v", err)
		}
	}

	log.Println("Overlay pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.config.Camera
}
