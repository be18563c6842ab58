package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/lights"
	"github.com/df07/go-radiance-estimator/pkg/log"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// Scene is the part of the scene the integrators read
type Scene interface {
	Intersect(ray core.Ray, arena *core.Arena[material.SurfaceInteraction]) (*material.SurfaceInteraction, bool)
	WorldBound() core.AABB
	Lights() []lights.Light
}

// Camera places the camera in world space
type Camera interface {
	CameraToWorld(p core.Vec3) core.Vec3
}

// LightStrategy selects how many light samples are reserved per bounce
type LightStrategy int

const (
	// LightStrategyAll reserves NSamples 2D arrays for every light at every depth
	LightStrategyAll LightStrategy = iota
	// LightStrategyOne reserves nothing
	LightStrategyOne
)

func (s LightStrategy) String() string {
	if s == LightStrategyOne {
		return "one"
	}
	return "all"
}

// ParseLightStrategy parses "one" or "all". Anything else is reported and
// treated as "all".
func ParseLightStrategy(name string, logger log.Logger) LightStrategy {
	switch name {
	case "one":
		return LightStrategyOne
	case "all", "":
		return LightStrategyAll
	default:
		logger.Warningf("strategy %q unknown. Using \"all\".", name)
		return LightStrategyAll
	}
}

// SceneBounds is the normalization frame of the false-colour modes. It is
// immutable once Preprocess returns.
type SceneBounds struct {
	Corners [8]core.Vec3
	MaxDist float64 // Distance from the camera to the farthest corner

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// Min returns the low corner of the bounds
func (b SceneBounds) Min() core.Vec3 {
	return core.NewVec3(b.MinX, b.MinY, b.MinZ)
}

// Max returns the high corner of the bounds
func (b SceneBounds) Max() core.Vec3 {
	return core.NewVec3(b.MaxX, b.MaxY, b.MaxZ)
}

// Preprocess measures the world bound from the camera and reserves the
// sampler's light sample arrays for strategy
func Preprocess(scene Scene, camera Camera, sampler core.Sampler, strategy LightStrategy, maxDepth int) (SceneBounds, error) {
	world := scene.WorldBound()
	if !world.IsValid() {
		return SceneBounds{}, fmt.Errorf("invalid world bound %v", world)
	}

	cameraPos := camera.CameraToWorld(core.NewVec3(0, 0, 0))
	bounds := SceneBounds{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
		MinZ: math.Inf(1), MaxZ: math.Inf(-1),
	}
	for i := range bounds.Corners {
		corner := world.Corner(i)
		bounds.Corners[i] = corner
		bounds.MaxDist = math.Max(bounds.MaxDist, corner.Subtract(cameraPos).Length())

		bounds.MinX = math.Min(bounds.MinX, corner.X)
		bounds.MaxX = math.Max(bounds.MaxX, corner.X)
		bounds.MinY = math.Min(bounds.MinY, corner.Y)
		bounds.MaxY = math.Max(bounds.MaxY, corner.Y)
		bounds.MinZ = math.Min(bounds.MinZ, corner.Z)
		bounds.MaxZ = math.Max(bounds.MaxZ, corner.Z)
	}

	if strategy == LightStrategyAll {
		sceneLights := scene.Lights()
		nLightSamples := make([]int, len(sceneLights))
		for j, light := range sceneLights {
			nLightSamples[j] = sampler.RoundCount(light.NSamples())
		}
		for depth := 0; depth < maxDepth; depth++ {
			for _, n := range nLightSamples {
				sampler.Request2DArray(n)
				sampler.Request2DArray(n)
			}
		}
	}

	return bounds, nil
}
