package integrator

import (
	"context"
	"fmt"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/inference"
	"github.com/df07/go-radiance-estimator/pkg/lights"
	"github.com/df07/go-radiance-estimator/pkg/log"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// Options carries what the integrators need besides their Config
type Options struct {
	// Session evaluates the model. Required by the learned integrator, which
	// takes ownership of it.
	Session inference.Session
	Learned LearnedOptions

	// Images default to DefaultReferenceImages
	Images ReferenceImages
}

// Integrator is a path controller together with the state its preprocess
// pass produced. It is read-only once New returns.
type Integrator struct {
	Config     Config
	Controller *PathController

	// Bounds is set for the analytic integrator
	Bounds SceneBounds

	// LightDistribution is set for the learned integrator when the scene has
	// lights. Reserved: no estimator samples lights yet.
	LightDistribution lights.LightDistribution
}

// New preprocesses the scene for cfg.Kind. Sample arrays are reserved on
// sampler, so it must not have been cloned yet.
func New(cfg Config, scene Scene, camera Camera, sampler core.Sampler, opts Options, logger log.Logger) (*Integrator, error) {
	images := opts.Images
	if images == (ReferenceImages{}) {
		images = DefaultReferenceImages()
	}
	extractor := NewFeatureExtractor(images)
	it := &Integrator{Config: cfg}

	switch cfg.Kind {
	case EstimatorLearned:
		if opts.Session == nil {
			return nil, fmt.Errorf("%w: no inference session", ErrModelLoad)
		}
		// Built for parity with light-sampling integrators; nothing looks it up
		if sceneLights := scene.Lights(); len(sceneLights) > 0 {
			it.LightDistribution = lights.NewLightDistribution(cfg.LightSampleStrategy, sceneLights, scene.WorldBound(), logger)
		}
		it.Controller = NewLearnedController(NewLearnedEstimator(opts.Session, opts.Learned), extractor, logger)

	case EstimatorAnalytic:
		bounds, err := Preprocess(scene, camera, sampler, cfg.Strategy, cfg.MaxDepth)
		if err != nil {
			return nil, fmt.Errorf("failed to preprocess scene: %w", err)
		}
		it.Bounds = bounds
		it.Controller = NewAnalyticController(NewAnalyticEstimator(cfg.Mode, bounds), extractor, logger)
		logger.Debugf("scene bounds: min %v max %v, max distance %.3f", bounds.Min(), bounds.Max(), bounds.MaxDist)

	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownIntegrator, cfg.Kind)
	}

	return it, nil
}

// RayColor evaluates a camera ray
func (it *Integrator) RayColor(ctx context.Context, ray core.Ray, scene Scene, sampler core.Sampler, arena *core.Arena[material.SurfaceInteraction]) (core.Vec3, error) {
	return it.Controller.Evaluate(ctx, ray, scene, sampler, arena, 0)
}

// Close releases the model session, if any
func (it *Integrator) Close() error {
	return it.Controller.Close()
}
