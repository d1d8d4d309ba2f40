package app

import (
	"testing"

	"github.com/ayusman/hotzone/internal/config"
)

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults", func(*config.Config) {}, false},
		{"zero focal length", func(c *config.Config) { c.Projector.Intrinsics.FocalX = 0 }, true},
		{"negative radius", func(c *config.Config) { c.Engagement.Radius = -1 }, true},
		{"no joints", func(c *config.Config) { c.Overlay.Joints = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			r, err := NewRenderer(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRenderer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && r == nil {
				t.Error("NewRenderer() returned nil renderer")
			}
		})
	}
}
