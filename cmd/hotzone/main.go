package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayusman/hotzone/internal/app"
	"github.com/ayusman/hotzone/internal/capture"
	"github.com/ayusman/hotzone/internal/config"
	"github.com/ayusman/hotzone/internal/display"
	"github.com/ayusman/hotzone/internal/hook"
	"github.com/ayusman/hotzone/internal/tracker"
	"github.com/ayusman/hotzone/internal/tray"
)

func main() {
	defaultPath, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	configPath := flag.String("config", defaultPath, "path to config file")
	snapshot := flag.String("snapshot", "", "write each composed frame to this image file instead of a window")
	headless := flag.Bool("headless", false, "run without the tray; stop with Ctrl-C")
	writeDefaults := flag.Bool("write-config", false, "write the default config to -config and exit")
	flag.Parse()

	fmt.Println("hotzone - body tracking hot-zone overlay")

	if *writeDefaults {
		if err := config.Save(*configPath, config.Default()); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote default config to %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	for _, z := range cfg.Engagement.Zones {
		log.Printf("Hot-zone %s at (%.3f, %.3f, %.3f), radius %.2fm",
			z.ID, z.Position.X, z.Position.Y, z.Position.Z, cfg.Engagement.Radius)
	}

	renderer, err := app.NewRenderer(cfg)
	if err != nil {
		log.Fatalf("Failed to build renderer: %v", err)
	}

	var sink display.Sink
	switch {
	case *snapshot != "":
		sink = display.NewFileSink(*snapshot)
	case !*headless:
		sink = display.NewWindow(cfg.Display.WindowTitle)
	}

	a, err := app.New(app.Config{
		Camera: capture.NewCamera(capture.Options{
			DeviceID: cfg.Camera.DeviceID,
			Width:    cfg.Camera.Width,
			Height:   cfg.Camera.Height,
			FPS:      cfg.Camera.IdleFPS,
		}),
		Source:    newSource(cfg.Tracking),
		Renderer:  renderer,
		Sink:      sink,
		Gate:      capture.NewActivityGate(cfg.Camera.MotionThreshold, time.Duration(cfg.Camera.IdleTimeoutSec)*time.Second),
		IdleFPS:   cfg.Camera.IdleFPS,
		ActiveFPS: cfg.Camera.ActiveFPS,
		Enabled:   cfg.Display.Enabled,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	hooks := startHooks(cfg, *configPath)
	a.OnEngagement(func(ev app.EngagementEvent) {
		hooks.Handle(hook.Event{
			BodyID:    ev.BodyID,
			BodyIndex: ev.BodyIndex,
			Entered:   ev.Engaged,
			Distance:  ev.Distance,
			At:        ev.At,
		})
	})
	defer hooks.Stop()

	if *headless {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		if err := runHeadless(a, sig); err != nil {
			hooks.Stop()
			log.Fatalf("Failed to start pipeline: %v", err)
		}
		return
	}

	t := tray.New(cfg.Display.Enabled)
	a.OnEngagement(func(ev app.EngagementEvent) {
		t.SetEngaged(len(a.EngagedBodies()))
		t.SetLastEvent(ev.BodyID, ev.Engaged)
	})
	t.OnToggle(a.SetEnabled)
	t.OnReady(func() {
		if err := a.Start(); err != nil {
			log.Printf("Failed to start pipeline: %v", err)
			t.Quit()
		}
	})
	t.OnQuit(a.Stop)
	t.Run()
}

func startHooks(cfg config.Config, configPath string) *hook.Dispatcher {
	mgr := hook.NewManager(cfg.HookDir(configPath))
	if err := mgr.Discover(); err != nil {
		log.Printf("Failed to discover hooks: %v", err)
	}
	for _, h := range mgr.List() {
		log.Printf("Loaded hook %s (enter=%q leave=%q)", h.Manifest.Name, h.Manifest.OnEnter, h.Manifest.OnLeave)
	}

	d := hook.NewDispatcher(mgr, hook.NewExecutor(time.Duration(cfg.Hooks.TimeoutMs)*time.Millisecond), hook.DefaultQueueSize)
	d.Start(context.Background())
	return d
}

// newSource prefers the tracking service and falls back to a mock source
// that reports no bodies.
func newSource(cfg tracker.Config) tracker.Source {
	src, err := tracker.NewServiceSource(cfg)
	if err == nil {
		log.Println("Using body tracking service")
		return src
	}
	if errors.Is(err, tracker.ErrServiceNotFound) {
		log.Printf("Body tracking service not available (%v), using mock source", err)
	} else {
		log.Printf("Failed to create body tracking service: %v, using mock source", err)
	}
	return tracker.NewMockSource()
}

// runHeadless runs the pipeline until stop receives a value.
func runHeadless(a *app.App, stop <-chan os.Signal) error {
	a.OnEngagement(func(ev app.EngagementEvent) {
		log.Printf("Engaged bodies: %v", a.EngagedBodies())
	})
	if err := a.Start(); err != nil {
		return err
	}

	<-stop

	a.Stop()
	return nil
}
