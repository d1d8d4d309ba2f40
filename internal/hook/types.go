// Package hook runs external executables when bodies enter or leave a
// hot-zone.
package hook

import (
	"encoding/json"
	"math"
	"time"
)

// ManifestFile is the manifest each hook directory must contain.
const ManifestFile = "hook.json"

// Event names sent to hooks.
const (
	EventEntered = "entered"
	EventLeft    = "left"
)

// Manifest describes a hook and the action it performs per event.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`

	// OnEnter and OnLeave name the action passed to the executable. An
	// empty action means the hook ignores that event.
	OnEnter string          `json:"on_enter,omitempty"`
	OnLeave string          `json:"on_leave,omitempty"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// ActionFor returns the action configured for event, if any.
func (m Manifest) ActionFor(event string) string {
	switch event {
	case EventEntered:
		return m.OnEnter
	case EventLeft:
		return m.OnLeave
	}
	return ""
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Event is an engagement transition delivered to hooks.
type Event struct {
	BodyID    uint64
	BodyIndex int
	Entered   bool
	Distance  float64
	At        time.Time
}

// Name returns EventEntered or EventLeft.
func (e Event) Name() string {
	if e.Entered {
		return EventEntered
	}
	return EventLeft
}

// Request is written as JSON to the hook's stdin.
type Request struct {
	Action    string `json:"action"`
	Event     string `json:"event"`
	BodyID    uint64 `json:"body_id"`
	BodyIndex int    `json:"body_index"`

	// Distance is omitted when the body is no longer tracked.
	Distance *float64        `json:"distance,omitempty"`
	Time     time.Time       `json:"time"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// NewRequest builds the request for running h on ev.
func NewRequest(h *Hook, ev Event) *Request {
	req := &Request{
		Action:    h.Manifest.ActionFor(ev.Name()),
		Event:     ev.Name(),
		BodyID:    ev.BodyID,
		BodyIndex: ev.BodyIndex,
		Time:      ev.At,
		Config:    h.Manifest.Config,
	}
	if !math.IsInf(ev.Distance, 0) && !math.IsNaN(ev.Distance) {
		d := ev.Distance
		req.Distance = &d
	}
	return req
}

// Response is read as JSON from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
