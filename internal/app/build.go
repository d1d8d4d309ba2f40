package app

import (
	"github.com/ayusman/hotzone/internal/config"
	"github.com/ayusman/hotzone/internal/engagement"
	"github.com/ayusman/hotzone/internal/mapper"
	"github.com/ayusman/hotzone/internal/overlay"
)

// NewRenderer builds the projector, engagement evaluator and overlay
// renderer described by cfg.
func NewRenderer(cfg config.Config) (*overlay.Renderer, error) {
	proj, err := mapper.NewPinholeProjector(cfg.Projector.Intrinsics, cfg.Projector.Extrinsics)
	if err != nil {
		return nil, err
	}
	eval, err := engagement.NewEvaluator(cfg.Engagement.Zones, cfg.Engagement.Radius)
	if err != nil {
		return nil, err
	}
	m := mapper.New(proj, cfg.Projector.SensorWidth, cfg.Projector.SensorHeight)
	return overlay.New(m, eval, cfg.Overlay)
}
