// Package config loads and validates hotzone settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ayusman/hotzone/internal/capture"
	"github.com/ayusman/hotzone/internal/engagement"
	"github.com/ayusman/hotzone/internal/mapper"
	"github.com/ayusman/hotzone/internal/overlay"
	"github.com/ayusman/hotzone/internal/skeleton"
	"github.com/ayusman/hotzone/internal/tracker"
)

// FileName is the config file looked up in the hotzone home directory.
const FileName = "config.json"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// CameraConfig controls colour capture and the activity gate.
type CameraConfig struct {
	DeviceID int `json:"device_id"`
	Width    int `json:"width"`
	Height   int `json:"height"`

	// ActiveFPS is the processing rate while the scene is active.
	ActiveFPS int `json:"active_fps"`

	// IdleFPS is the processing rate after IdleTimeoutSec without motion.
	IdleFPS         int     `json:"idle_fps"`
	MotionThreshold float64 `json:"motion_threshold"`
	IdleTimeoutSec  int     `json:"idle_timeout_sec"`
}

// EngagementConfig lists the hot-zones and the engagement radius in metres.
type EngagementConfig struct {
	Zones  []engagement.Zone `json:"zones"`
	Radius float64           `json:"radius"`
}

// ProjectorConfig calibrates the camera-space to colour-sensor projection.
type ProjectorConfig struct {
	SensorWidth  int               `json:"sensor_width"`
	SensorHeight int               `json:"sensor_height"`
	Intrinsics   mapper.Intrinsics `json:"intrinsics"`
	Extrinsics   mapper.Extrinsics `json:"extrinsics"`
}

// DisplayConfig controls the preview window.
type DisplayConfig struct {
	WindowTitle string `json:"window_title"`

	// Enabled starts the overlay turned on.
	Enabled bool `json:"enabled"`
}

// HooksConfig locates engagement hooks.
type HooksConfig struct {
	// Dir defaults to a "hooks" directory next to the config file.
	Dir       string `json:"dir,omitempty"`
	TimeoutMs int    `json:"timeout_ms"`
}

// Config is the complete hotzone configuration.
type Config struct {
	Camera     CameraConfig     `json:"camera"`
	Tracking   tracker.Config   `json:"tracking"`
	Engagement EngagementConfig `json:"engagement"`
	Projector  ProjectorConfig  `json:"projector"`
	Overlay    overlay.Config   `json:"overlay"`
	Display    DisplayConfig    `json:"display"`
	Hooks      HooksConfig      `json:"hooks"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			DeviceID:        0,
			Width:           capture.DefaultWidth,
			Height:          capture.DefaultHeight,
			ActiveFPS:       15,
			IdleFPS:         2,
			MotionThreshold: capture.DefaultMotionThreshold,
			IdleTimeoutSec:  10,
		},
		Tracking: tracker.DefaultConfig(),
		Engagement: EngagementConfig{
			Zones:  engagement.DefaultZones(),
			Radius: engagement.DefaultRadius,
		},
		Projector: ProjectorConfig{
			SensorWidth:  mapper.DefaultColorWidth,
			SensorHeight: mapper.DefaultColorHeight,
			Intrinsics:   mapper.DefaultIntrinsics(),
			Extrinsics:   mapper.DefaultExtrinsics(),
		},
		Overlay: overlay.DefaultConfig(),
		Display: DisplayConfig{
			WindowTitle: "hotzone",
			Enabled:     true,
		},
		Hooks: HooksConfig{
			TimeoutMs: 5000,
		},
	}
}

// Load reads the JSON file at path on top of Default. A missing file yields
// the defaults. Zones without an ID are given one. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// Zones listed in the file replace the defaults rather than merging
	// into them element by element.
	var zf zoneFile
	if err := json.Unmarshal(data, &zf); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if zf.Engagement != nil && zf.Engagement.Zones != nil {
		for i, z := range *zf.Engagement.Zones {
			if z.Position == nil {
				return cfg, fmt.Errorf("%w: zone %d (%q) has no position", ErrInvalidConfig, i, z.ID)
			}
		}
		cfg.Engagement.Zones = nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.assignZoneIDs()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// zoneFile is the part of a config file needed to tell which zone fields
// were actually written.
type zoneFile struct {
	Engagement *struct {
		Zones *[]struct {
			ID       string            `json:"id"`
			Position *skeleton.Point3D `json:"position"`
		} `json:"zones"`
	} `json:"engagement"`
}

func (c *Config) assignZoneIDs() {
	for i := range c.Engagement.Zones {
		if c.Engagement.Zones[i].ID == "" {
			c.Engagement.Zones[i].ID = uuid.NewString()
		}
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c Config) Validate() error {
	if c.Camera.ActiveFPS <= 0 || c.Camera.IdleFPS <= 0 {
		return fmt.Errorf("%w: fps must be positive (active=%d idle=%d)", ErrInvalidConfig, c.Camera.ActiveFPS, c.Camera.IdleFPS)
	}
	if c.Camera.IdleTimeoutSec <= 0 {
		return fmt.Errorf("%w: idle_timeout_sec must be positive", ErrInvalidConfig)
	}
	if c.Tracking.MaxBodies <= 0 || c.Tracking.MaxBodies > skeleton.MaxBodies {
		return fmt.Errorf("%w: max_bodies must be in 1..%d, got %d", ErrInvalidConfig, skeleton.MaxBodies, c.Tracking.MaxBodies)
	}

	r := c.Engagement.Radius
	if math.IsNaN(r) || r < 0 {
		return fmt.Errorf("%w: radius must be >= 0, got %g", ErrInvalidConfig, r)
	}
	seen := make(map[string]bool, len(c.Engagement.Zones))
	for _, z := range c.Engagement.Zones {
		if seen[z.ID] {
			return fmt.Errorf("%w: duplicate zone id %q", ErrInvalidConfig, z.ID)
		}
		seen[z.ID] = true
	}

	if c.Projector.SensorWidth <= 0 || c.Projector.SensorHeight <= 0 {
		return fmt.Errorf("%w: sensor resolution must be positive, got %dx%d",
			ErrInvalidConfig, c.Projector.SensorWidth, c.Projector.SensorHeight)
	}

	if c.Hooks.TimeoutMs <= 0 {
		return fmt.Errorf("%w: hooks.timeout_ms must be positive", ErrInvalidConfig)
	}

	if err := c.Overlay.Validate(); err != nil {
		return fmt.Errorf("%w: overlay: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HookDir returns the configured hook directory, resolving the default
// relative to the config file at configPath.
func (c Config) HookDir(configPath string) string {
	if c.Hooks.Dir != "" {
		return c.Hooks.Dir
	}
	return filepath.Join(filepath.Dir(configPath), "hooks")
}

// DefaultPath returns ~/.hotzone/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hotzone", FileName), nil
}

// Save writes cfg as indented JSON, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
