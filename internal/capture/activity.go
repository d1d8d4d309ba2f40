package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// BlurSize is the Gaussian kernel size applied before differencing.
	BlurSize = 21
	// PixelDiffThreshold is the grey-level delta that marks a pixel as changed.
	PixelDiffThreshold = 25

	DefaultMotionThreshold = 1.0
	DefaultIdleTimeout     = 10 * time.Second
)

// ActivityGate decides whether the scene is active. A frame whose changed
// pixel share exceeds the threshold marks the scene active; it stays active
// until no such frame has been seen for the idle timeout.
type ActivityGate struct {
	threshold   float64
	idleTimeout time.Duration
	now         func() time.Time

	mu          sync.Mutex
	prevGray    gocv.Mat
	initialized bool
	lastMotion  time.Time
	closed      bool
}

// NewActivityGate creates an ActivityGate. threshold is the percentage of
// pixels that must change between frames to count as motion.
func NewActivityGate(threshold float64, idleTimeout time.Duration) *ActivityGate {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &ActivityGate{
		threshold:   threshold,
		idleTimeout: idleTimeout,
		now:         time.Now,
		prevGray:    gocv.NewMat(),
	}
}

// Observe feeds a frame into the gate and reports whether the scene is
// currently active along with the percentage of pixels that changed.
// The first frame only sets the baseline.
func (g *ActivityGate) Observe(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || frame == nil || frame.Empty() {
		return g.activeLocked(), 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(BlurSize, BlurSize), 0, 0, gocv.BorderDefault)

	if !g.initialized || blurred.Rows() != g.prevGray.Rows() || blurred.Cols() != g.prevGray.Cols() {
		blurred.CopyTo(&g.prevGray)
		g.initialized = true
		return g.activeLocked(), 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, PixelDiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0
	blurred.CopyTo(&g.prevGray)

	if changed > g.threshold {
		g.lastMotion = g.now()
	}
	return g.activeLocked(), changed
}

// Active reports whether motion was seen within the idle timeout.
func (g *ActivityGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activeLocked()
}

func (g *ActivityGate) activeLocked() bool {
	if g.lastMotion.IsZero() {
		return false
	}
	return g.now().Sub(g.lastMotion) < g.idleTimeout
}

// Wake marks the scene active as if motion had just been seen. The app
// calls it while bodies are tracked so a still user does not idle out.
func (g *ActivityGate) Wake() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastMotion = g.now()
}

// Reset drops the baseline frame and the activity state.
func (g *ActivityGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

func (g *ActivityGate) resetLocked() {
	if !g.closed && !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.initialized = false
	g.lastMotion = time.Time{}
}

// Close releases the baseline frame. Observe on a closed gate only reports
// the current state. Close is safe to call more than once.
func (g *ActivityGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
	if !g.closed {
		g.prevGray.Close()
		g.closed = true
	}
}

// SetThreshold sets the motion threshold. Values <= 0 are ignored.
func (g *ActivityGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.threshold = threshold
}
