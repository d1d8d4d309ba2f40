// Package display delivers composed overlay frames to their destination.
package display

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrClosed is returned when showing a frame on a closed sink.
var ErrClosed = errors.New("display sink is closed")

// Sink receives composed frames.
type Sink interface {
	// Show presents img. The sink does not take ownership of img.
	Show(img *gocv.Mat) error
	Close() error
}

// Window shows frames in a HighGUI window.
type Window struct {
	mu     sync.Mutex
	win    *gocv.Window
	closed bool
}

// NewWindow opens a HighGUI window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws img in the window and pumps the GUI event loop once.
func (w *Window) Show(img *gocv.Mat) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if img == nil || img.Empty() {
		return nil
	}
	w.win.IMShow(*img)
	w.win.WaitKey(1)
	return nil
}

func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.win.Close()
}

// FileSink overwrites a single image file with each frame.
type FileSink struct {
	path string
}

// NewFileSink creates a FileSink writing to path. The format follows the
// file extension.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Show(img *gocv.Mat) error {
	if img == nil || img.Empty() {
		return nil
	}
	if ok := gocv.IMWrite(s.path, *img); !ok {
		return fmt.Errorf("failed to write frame to %s", s.path)
	}
	return nil
}

func (s *FileSink) Close() error { return nil }

// MemorySink keeps a copy of the last frame shown.
type MemorySink struct {
	mu     sync.Mutex
	last   gocv.Mat
	count  int
	closed bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{last: gocv.NewMat()}
}

func (s *MemorySink) Show(img *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if img == nil {
		return nil
	}
	img.CopyTo(&s.last)
	s.count++
	return nil
}

// Last returns a clone of the last frame shown. The caller must close it.
func (s *MemorySink) Last() gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Clone()
}

// Count returns how many frames have been shown.
func (s *MemorySink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.last.Close()
}
