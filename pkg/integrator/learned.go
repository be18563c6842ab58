package integrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/inference"
)

// LearnedOptions configures model evaluation
type LearnedOptions struct {
	// Timeout bounds each evaluation. Zero blocks until the model answers.
	Timeout time.Duration
}

// LearnedEstimator asks a pre-trained model for the radiance of a feature record.
// The session is shared read-only by all workers.
type LearnedEstimator struct {
	session inference.Session
	opts    LearnedOptions
}

// NewLearnedEstimator takes ownership of session
func NewLearnedEstimator(session inference.Session, opts LearnedOptions) *LearnedEstimator {
	return &LearnedEstimator{session: session, opts: opts}
}

// Estimate performs exactly one model evaluation. Failures are fatal to the
// render: they come back wrapped in ErrInference or ErrInferenceTimeout.
func (le *LearnedEstimator) Estimate(ctx context.Context, features FeatureRecord) (core.Vec3, error) {
	if le.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, le.opts.Timeout)
		defer cancel()
	}

	out, err := le.session.Run(ctx, features.Request())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.Vec3{}, fmt.Errorf("%w after %v: %w", ErrInferenceTimeout, le.opts.Timeout, err)
		}
		return core.Vec3{}, fmt.Errorf("%w: %w", ErrInference, err)
	}
	if len(out) < 3 {
		return core.Vec3{}, fmt.Errorf("%w: output %q has %d values, want 3", ErrInference, inference.OutputName, len(out))
	}

	return core.NewVec3(float64(out[0]), float64(out[1]), float64(out[2])).ClampNonNegative(), nil
}

// Close releases the session
func (le *LearnedEstimator) Close() error {
	return le.session.Close()
}
