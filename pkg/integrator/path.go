package integrator

import (
	"context"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/lights"
	"github.com/df07/go-radiance-estimator/pkg/log"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// maxSkips bounds how many scattering-free surfaces one path may pass
// through. A path that exceeds it terminates with zero radiance.
const maxSkips = 64

// EstimatorKind selects the estimator a PathController dispatches to
type EstimatorKind int

const (
	EstimatorAnalytic EstimatorKind = iota
	EstimatorLearned
)

func (k EstimatorKind) String() string {
	if k == EstimatorLearned {
		return IntegratorLearned
	}
	return IntegratorAnalytic
}

// PathState is the state of a path being evaluated
type PathState int

const (
	PathTracing PathState = iota
	PathHitNoScattering
	PathHitEstimating
	PathTerminated
)

func (s PathState) String() string {
	switch s {
	case PathTracing:
		return "tracing"
	case PathHitNoScattering:
		return "skip"
	case PathHitEstimating:
		return "estimating"
	default:
		return "terminated"
	}
}

// PathController decides, for each camera ray, whether to terminate,
// skip a non-scattering surface, or hand the hit to its estimator.
// It holds no per-ray state and is shared by all workers.
type PathController struct {
	kind EstimatorKind

	// Exactly one of these is set, matching kind
	analytic *AnalyticEstimator
	learned  *LearnedEstimator

	extractor *FeatureExtractor
	recorder  *Recorder
	stats     *Stats
	logger    log.Logger

	// OnState, if set, observes every state transition
	OnState func(PathState)
}

// NewAnalyticController creates a controller for the analytic estimator
func NewAnalyticController(estimator *AnalyticEstimator, extractor *FeatureExtractor, logger log.Logger) *PathController {
	return &PathController{
		kind:      EstimatorAnalytic,
		analytic:  estimator,
		extractor: extractor,
		stats:     &Stats{},
		logger:    logger,
	}
}

// NewLearnedController creates a controller for the learned estimator
func NewLearnedController(estimator *LearnedEstimator, extractor *FeatureExtractor, logger log.Logger) *PathController {
	return &PathController{
		kind:      EstimatorLearned,
		learned:   estimator,
		extractor: extractor,
		stats:     &Stats{},
		logger:    logger,
	}
}

// Kind returns the estimator the controller dispatches to
func (pc *PathController) Kind() EstimatorKind {
	return pc.kind
}

// SetRecorder makes the controller write a training row for every estimate
func (pc *PathController) SetRecorder(recorder *Recorder) {
	pc.recorder = recorder
}

// Stats returns the controller's path statistics
func (pc *PathController) Stats() *Stats {
	return pc.stats
}

// Close releases the learned estimator's session, if any
func (pc *PathController) Close() error {
	if pc.learned != nil {
		return pc.learned.Close()
	}
	return nil
}

// Evaluate returns the radiance arriving along ray. Interactions are taken
// from arena and released before Evaluate returns. depth is passed through
// unchanged when a non-scattering surface is skipped.
func (pc *PathController) Evaluate(ctx context.Context, ray core.Ray, scene Scene, sampler core.Sampler, arena *core.Arena[material.SurfaceInteraction], depth int) (core.Vec3, error) {
	length := 0
	L, err := pc.evaluate(ctx, ray, scene, sampler, arena, depth, &length)
	if err != nil {
		return core.Vec3{}, err
	}
	pc.stats.recordPath(length, L)
	return L, nil
}

func (pc *PathController) evaluate(ctx context.Context, ray core.Ray, scene Scene, sampler core.Sampler, arena *core.Arena[material.SurfaceInteraction], depth int, length *int) (core.Vec3, error) {
	if err := ctx.Err(); err != nil {
		return core.Vec3{}, err
	}
	pc.transition(PathTracing)

	mark := arena.Mark()
	defer arena.Rewind(mark)

	si, hit := scene.Intersect(ray, arena)
	if !hit {
		pc.stats.misses.Add(1)
		pc.transition(PathTerminated)
		return pc.missRadiance(ray, scene.Lights()), nil
	}
	*length++

	// False-colour modes ignore scattering, so they apply before the skip check
	if pc.kind == EstimatorAnalytic && pc.analytic.FalseColour() {
		pc.transition(PathHitEstimating)
		L := pc.analytic.EstimateLocal(ray, si, sampler)
		pc.transition(PathTerminated)
		return L, nil
	}

	if si.BSDF == nil {
		pc.transition(PathHitNoScattering)
		if *length > maxSkips {
			pc.logger.Debugf("path passed %d non-scattering surfaces; terminating", maxSkips)
			pc.transition(PathTerminated)
			return core.Vec3{}, nil
		}
		pc.stats.skips.Add(1)
		return pc.evaluate(ctx, si.SpawnRay(ray.Direction), scene, sampler, arena, depth, length)
	}

	pc.transition(PathHitEstimating)
	pc.stats.estimates.Add(1)

	features := pc.extractor.Extract(ray, si)
	var L core.Vec3
	switch pc.kind {
	case EstimatorLearned:
		var err error
		L, err = pc.learned.Estimate(ctx, features)
		if err != nil {
			return core.Vec3{}, err
		}
	default:
		L = pc.analytic.EstimateLocal(ray, si, sampler)
	}

	if pc.recorder != nil {
		if err := pc.recorder.Record(features, L); err != nil {
			return core.Vec3{}, err
		}
	}

	pc.transition(PathTerminated)
	return L, nil
}

// missRadiance is the radiance of an escaping ray. The learned estimator
// was trained without environment light and reports zero.
func (pc *PathController) missRadiance(ray core.Ray, sceneLights []lights.Light) core.Vec3 {
	if pc.kind == EstimatorLearned {
		return core.Vec3{}
	}
	var L core.Vec3
	for _, light := range sceneLights {
		L = L.Add(light.Emit(ray))
	}
	return L.ClampNonNegative()
}

func (pc *PathController) transition(state PathState) {
	if pc.OnState != nil {
		pc.OnState(state)
	}
}
