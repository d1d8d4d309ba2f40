package tracker

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/hotzone/internal/skeleton"
)

// MockSource is a test implementation of the Source interface.
// It allows tests to control the tracking results.
type MockSource struct {
	mu     sync.Mutex
	bodies []skeleton.Body
	err    error
	calls  int
}

// NewMockSource creates a new MockSource instance.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// SetBodies sets the bodies that will be returned by Track.
func (m *MockSource) SetBodies(bodies []skeleton.Body) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = bodies
}

// SetError sets the error that will be returned by Track.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Track has been called.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Track returns the pre-configured bodies or error.
func (m *MockSource) Track(frame *gocv.Mat) ([]skeleton.Body, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.bodies, nil
}

// Close is a no-op for the mock source.
func (m *MockSource) Close() error {
	return nil
}
