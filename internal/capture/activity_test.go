package capture

import (
	"image"
	"image/color"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

// fakeClock returns a controllable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(idle time.Duration) (*ActivityGate, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := NewActivityGate(1.0, idle)
	g.now = clk.Now
	return g, clk
}

func blackFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
}

func TestNewActivityGate_Defaults(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		idle      time.Duration
		wantThr   float64
		wantIdle  time.Duration
	}{
		{"explicit", 2.5, time.Second, 2.5, time.Second},
		{"zero falls back", 0, 0, DefaultMotionThreshold, DefaultIdleTimeout},
		{"negative falls back", -1, -time.Second, DefaultMotionThreshold, DefaultIdleTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewActivityGate(tt.threshold, tt.idle)
			defer g.Close()

			if g.threshold != tt.wantThr {
				t.Errorf("threshold = %v, want %v", g.threshold, tt.wantThr)
			}
			if g.idleTimeout != tt.wantIdle {
				t.Errorf("idleTimeout = %v, want %v", g.idleTimeout, tt.wantIdle)
			}
			if g.Active() {
				t.Error("new gate should not be active")
			}
		})
	}
}

func TestActivityGate_WakeAndIdle(t *testing.T) {
	g, clk := newTestGate(5 * time.Second)
	defer g.Close()

	g.Wake()
	if !g.Active() {
		t.Fatal("gate should be active after Wake")
	}

	clk.Advance(4 * time.Second)
	if !g.Active() {
		t.Error("gate should stay active within the idle timeout")
	}

	clk.Advance(time.Second)
	if g.Active() {
		t.Error("gate should be idle once the timeout has elapsed")
	}

	g.Wake()
	g.Reset()
	if g.Active() {
		t.Error("Reset should clear activity")
	}
}

func TestActivityGate_Observe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g, clk := newTestGate(5 * time.Second)
	defer g.Close()

	still := blackFrame()
	defer still.Close()

	active, changed := g.Observe(&still)
	if active || changed != 0 {
		t.Errorf("baseline frame: active=%v changed=%v, want false 0", active, changed)
	}

	active, changed = g.Observe(&still)
	if active {
		t.Errorf("identical frame should not activate the gate, changed=%v", changed)
	}

	moved := blackFrame()
	defer moved.Close()
	gocv.Rectangle(&moved, image.Rect(60, 60, 260, 180), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	active, changed = g.Observe(&moved)
	if !active {
		t.Errorf("large change should activate the gate, changed=%v", changed)
	}
	if changed <= 1.0 {
		t.Errorf("changed = %v, want > 1%%", changed)
	}

	clk.Advance(6 * time.Second)
	active, _ = g.Observe(&moved)
	if active {
		t.Error("gate should idle out when frames stop changing")
	}
}

func TestActivityGate_ObserveEmpty(t *testing.T) {
	g, _ := newTestGate(time.Second)
	defer g.Close()

	if active, changed := g.Observe(nil); active || changed != 0 {
		t.Errorf("Observe(nil) = %v, %v", active, changed)
	}
}

func TestActivityGate_Close(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	tests := []struct {
		name    string
		prepare func(g *ActivityGate)
	}{
		{"without frames", func(*ActivityGate) {}},
		{"after baseline", func(g *ActivityGate) {
			frame := blackFrame()
			defer frame.Close()
			g.Observe(&frame)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGate(time.Second)
			tt.prepare(g)

			g.Close()
			if !g.closed {
				t.Fatal("gate not marked closed")
			}
			g.Close()

			frame := blackFrame()
			defer frame.Close()
			if active, pct := g.Observe(&frame); active || pct != 0 {
				t.Errorf("Observe() after Close = (%v, %v), want (false, 0)", active, pct)
			}
			g.Reset()
		})
	}
}
