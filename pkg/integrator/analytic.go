package integrator

import (
	"fmt"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// AnalyticMode selects what the analytic estimator reports
type AnalyticMode int

const (
	// ModeRGB reports emitted radiance plus non-specular reflectance
	ModeRGB AnalyticMode = iota
	// ModeDepth reports normalized distance from the camera as grey
	ModeDepth
	// ModePosition reports the normalized hit point as RGB
	ModePosition
)

// falseColourFloor keeps false-colour output off exact black
const falseColourFloor = 1e-3

func (m AnalyticMode) String() string {
	switch m {
	case ModeDepth:
		return "depth"
	case ModePosition:
		return "position"
	default:
		return "rgb"
	}
}

// ParseAnalyticMode parses "rgb", "depth" or "position"
func ParseAnalyticMode(name string) (AnalyticMode, error) {
	switch name {
	case "rgb", "":
		return ModeRGB, nil
	case "depth":
		return ModeDepth, nil
	case "position":
		return ModePosition, nil
	default:
		return ModeRGB, fmt.Errorf("unknown analytic mode %q", name)
	}
}

// AnalyticEstimator estimates radiance from local surface properties only
type AnalyticEstimator struct {
	Mode   AnalyticMode
	Bounds SceneBounds
}

// NewAnalyticEstimator creates an estimator normalizing against bounds
func NewAnalyticEstimator(mode AnalyticMode, bounds SceneBounds) *AnalyticEstimator {
	return &AnalyticEstimator{Mode: mode, Bounds: bounds}
}

// FalseColour reports whether the mode ignores the surface's scattering
func (ae *AnalyticEstimator) FalseColour() bool {
	return ae.Mode != ModeRGB
}

// EstimateLocal returns the estimate at si. In RGB mode si must have a BSDF.
func (ae *AnalyticEstimator) EstimateLocal(ray core.Ray, si *material.SurfaceInteraction, sampler core.Sampler) core.Vec3 {
	switch ae.Mode {
	case ModeDepth:
		return ae.depth(ray, si)
	case ModePosition:
		return ae.position(si)
	}

	wo := si.Wo
	L := si.Le(wo)
	if si.BSDF != nil {
		samples := []core.Vec2{sampler.Get2D()}
		L = L.Add(si.BSDF.Rho(wo, samples, material.BSDFAll&^material.BSDFSpecular))
	}
	return L.ClampNonNegative()
}

func (ae *AnalyticEstimator) depth(ray core.Ray, si *material.SurfaceInteraction) core.Vec3 {
	if ae.Bounds.MaxDist <= 0 {
		return core.NewVec3(falseColourFloor, falseColourFloor, falseColourFloor)
	}
	d := 1 - si.T*ray.Direction.Length()/ae.Bounds.MaxDist + falseColourFloor
	return core.NewVec3(d, d, d).ClampNonNegative()
}

func (ae *AnalyticEstimator) position(si *material.SurfaceInteraction) core.Vec3 {
	lo, hi := ae.Bounds.Min(), ae.Bounds.Max()
	var c [3]float64
	for axis := 0; axis < 3; axis++ {
		extent := hi.Get(axis) - lo.Get(axis)
		if extent <= 0 {
			c[axis] = falseColourFloor
			continue
		}
		c[axis] = (si.Point.Get(axis)-lo.Get(axis))/extent + falseColourFloor
	}
	return core.NewVec3(c[0], c[1], c[2]).ClampNonNegative()
}
