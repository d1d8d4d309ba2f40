package app

import (
	"errors"
	"log"
	"time"

	"github.com/ayusman/hotzone/internal/capture"
)

// runPipeline reads frames on a ticker until stopCh closes.
//
// Every tick reads a frame and feeds it to the activity gate. While the
// overlay is enabled the frame goes through ProcessFrame. The tick rate
// follows the gate: ActiveFPS while active, IdleFPS otherwise.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	defer a.done.Done()

	active := false
	ticker := time.NewTicker(interval(a.config.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := a.config.Camera.ReadFrame()
			if err != nil {
				if errors.Is(err, capture.ErrNoMoreFrames) {
					log.Println("Camera has no more frames")
					return
				}
				log.Printf("Error reading frame: %v", err)
				continue
			}

			nowActive := true
			if a.config.Gate != nil {
				nowActive, _ = a.config.Gate.Observe(frame)
			}

			if a.IsEnabled() {
				if _, err := a.ProcessFrame(frame); err != nil {
					log.Printf("Error processing frame: %v", err)
				}
				if a.config.Gate != nil {
					nowActive = a.config.Gate.Active()
				}
			}
			frame.Close()

			if nowActive != active {
				active = nowActive
				fps := a.config.IdleFPS
				mode := "idle"
				if active {
					fps = a.config.ActiveFPS
					mode = "active"
				}
				a.config.Camera.SetFPS(fps)
				ticker.Reset(interval(fps))
				log.Printf("Switched to %s mode (%d fps)", mode, fps)
			}
		}
	}
}

func interval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}
