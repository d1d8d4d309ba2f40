// Package tray provides the system tray menu for hotzone.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu: overlay toggle, engagement status and quit.
type Tray struct {
	onReady  func()
	onToggle func(enabled bool)
	onQuit   func()
	enabled  bool
	engaged  int
	mu       sync.RWMutex

	menuToggle  *systray.MenuItem
	menuStatus  *systray.MenuItem
	menuLastHit *systray.MenuItem
}

// New creates a Tray with the overlay initially enabled or not.
func New(enabled bool) *Tray {
	return &Tray{enabled: enabled}
}

// OnReady sets the function run once the tray is up. The pipeline is
// started from here so it never races the tray's main-thread setup.
func (t *Tray) OnReady(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReady = fn
}

// OnToggle sets the callback for the enabled menu item.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit and must be called from the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.ready, t.exit)
}

// Quit exits the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) ready() {
	systray.SetTitle("hotzone")
	systray.SetTooltip("hotzone body tracking overlay")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle the overlay")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem(statusTitle(t.engaged), "Bodies in a hot-zone")
	t.menuStatus.Disable()
	t.menuLastHit = systray.AddMenuItem("Last: none", "Last engagement change")
	t.menuLastHit.Disable()
	onReady := t.onReady
	t.mu.Unlock()

	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit hotzone")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.Toggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()

	if onReady != nil {
		onReady()
	}
}

func (t *Tray) exit() {}

// Toggle flips the enabled state and reports it to the OnToggle callback.
func (t *Tray) Toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEngaged updates the engaged-bodies status line.
func (t *Tray) SetEngaged(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.engaged = n
	if t.menuStatus == nil {
		return
	}
	t.menuStatus.SetTitle(statusTitle(n))
	if n > 0 {
		systray.SetTitle("hotzone ●")
	} else {
		systray.SetTitle("hotzone")
	}
}

// SetLastEvent shows the most recent engagement change.
func (t *Tray) SetLastEvent(bodyID uint64, entered bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastHit != nil {
		t.menuLastHit.SetTitle(lastEventTitle(bodyID, entered))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Engaged returns the last engaged-bodies count.
func (t *Tray) Engaged() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.engaged
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Overlay on"
	}
	return "○ Overlay off"
}

func statusTitle(n int) string {
	if n == 1 {
		return "Engaged: 1 body"
	}
	return fmt.Sprintf("Engaged: %d bodies", n)
}

func lastEventTitle(bodyID uint64, entered bool) string {
	if entered {
		return fmt.Sprintf("Last: body %d entered", bodyID)
	}
	return fmt.Sprintf("Last: body %d left", bodyID)
}
