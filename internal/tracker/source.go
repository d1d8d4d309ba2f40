// Package tracker provides body tracking sources that turn colour frames
// into skeleton bodies.
package tracker

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/hotzone/internal/skeleton"
)

// Source defines the interface for body tracking implementations.
type Source interface {
	// Track analyzes a colour frame and returns the bodies visible in it.
	// Returns an empty slice if no bodies are tracked.
	Track(frame *gocv.Mat) ([]skeleton.Body, error)

	// Close releases any resources held by the source.
	Close() error
}

// Config holds configuration options for body tracking.
type Config struct {
	// MaxBodies is the maximum number of bodies to report (default: 6).
	MaxBodies int `json:"max_bodies"`

	// MinConfidence is the minimum confidence for a joint to count as Tracked;
	// joints below it are reported as Inferred.
	MinConfidence float64 `json:"min_confidence"`

	// IdleTimeoutSec shuts the tracking service down after this many seconds
	// without a request.
	IdleTimeoutSec int `json:"idle_timeout_sec"`

	// ServicePath overrides the tracking service script location.
	ServicePath string `json:"service_path,omitempty"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxBodies:      skeleton.MaxBodies,
		MinConfidence:  0.5,
		IdleTimeoutSec: 30,
	}
}
