package integrator

import (
	"fmt"
	"image"

	"github.com/df07/go-radiance-estimator/pkg/loaders"
	"github.com/df07/go-radiance-estimator/pkg/log"
)

// Integrator names accepted in a PBRT Integrator statement
const (
	IntegratorLearned  = "bk"
	IntegratorAnalytic = "position"
)

// Config holds the integrator parameters
type Config struct {
	Kind EstimatorKind

	MaxDepth    int
	PixelBounds image.Rectangle // Already clipped to the film sample bounds
	RRThreshold float64         // Reserved, unused

	LightSampleStrategy string        // Learned: uniform, power or spatial
	Strategy            LightStrategy // Analytic: sample array reservation
	Mode                AnalyticMode  // Analytic: rgb, depth or position
}

// DefaultConfig returns the defaults for kind over the full film
func DefaultConfig(kind EstimatorKind, sampleBounds image.Rectangle) Config {
	return Config{
		Kind:                kind,
		MaxDepth:            5,
		PixelBounds:         sampleBounds,
		RRThreshold:         1,
		LightSampleStrategy: "spatial",
		Strategy:            LightStrategyAll,
		Mode:                ModeRGB,
	}
}

// KindForName maps an integrator name to its estimator kind
func KindForName(name string) (EstimatorKind, error) {
	switch name {
	case IntegratorLearned:
		return EstimatorLearned, nil
	case IntegratorAnalytic:
		return EstimatorAnalytic, nil
	default:
		return EstimatorAnalytic, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
	}
}

// ParseConfig reads an Integrator statement. A nil statement gives the
// analytic defaults.
func ParseConfig(stmt *loaders.PBRTStatement, sampleBounds image.Rectangle, logger log.Logger) (Config, error) {
	if stmt == nil {
		return DefaultConfig(EstimatorAnalytic, sampleBounds), nil
	}

	kind, err := KindForName(stmt.Subtype)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig(kind, sampleBounds)

	if v, ok := stmt.GetIntParam("maxdepth"); ok {
		cfg.MaxDepth = v
	}
	if v, ok := stmt.GetFloatParam("rrthreshold"); ok {
		cfg.RRThreshold = v
	}
	if v, ok := stmt.GetStringParam("lightsamplestrategy"); ok {
		cfg.LightSampleStrategy = v
	}
	if v, ok := stmt.GetStringParam("strategy"); ok {
		cfg.Strategy = ParseLightStrategy(v, logger)
	}
	if v, ok := stmt.GetStringParam("mode"); ok {
		mode, err := ParseAnalyticMode(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Mode = mode
	}

	if pb, ok := stmt.GetIntsParam("pixelbounds"); ok {
		bounds, err := ClipPixelBounds(pb, sampleBounds, logger)
		if err != nil {
			return Config{}, err
		}
		cfg.PixelBounds = bounds
	}

	return cfg, nil
}

// ClipPixelBounds intersects x0 x1 y0 y1 with the film sample bounds. A list
// of the wrong length is reported and the full film is used.
func ClipPixelBounds(pb []int, sampleBounds image.Rectangle, logger log.Logger) (image.Rectangle, error) {
	if len(pb) != 4 {
		logger.Warningf("%v: got %d values, using the full film", ErrPixelBoundsArity, len(pb))
		return sampleBounds, nil
	}

	// Not image.Rect: swapped coordinates must stay empty, not be canonicalized
	requested := image.Rectangle{Min: image.Pt(pb[0], pb[2]), Max: image.Pt(pb[1], pb[3])}
	clipped := requested.Intersect(sampleBounds)
	if clipped.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %v does not overlap film %v", ErrDegeneratePixelBounds, pb, sampleBounds)
	}
	return clipped, nil
}
