package integrator

import "errors"

var (
	// ErrDegeneratePixelBounds means the requested pixel bounds do not overlap the film
	ErrDegeneratePixelBounds = errors.New("degenerate pixel bounds")

	// ErrPixelBoundsArity is reported, never returned, for a pixelbounds list that is not four values
	ErrPixelBoundsArity = errors.New("pixelbounds must have four values")

	// ErrModelLoad means the learned estimator's model could not be loaded
	ErrModelLoad = errors.New("model load failed")

	// ErrInference means a model evaluation failed
	ErrInference = errors.New("inference failed")

	// ErrInferenceTimeout means a model evaluation did not finish in time
	ErrInferenceTimeout = errors.New("inference timed out")

	// ErrUnknownIntegrator means the Integrator statement names no known estimator
	ErrUnknownIntegrator = errors.New("unknown integrator")
)
