package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/lights"
	"github.com/df07/go-radiance-estimator/pkg/loaders"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []geometry.Shape // Objects in the scene
	SamplingConfig SamplingConfig
	BVH            *geometry.BVH // Acceleration structure for ray-object intersection

	// Integrator is the PBRT Integrator statement the scene was loaded with, if any
	Integrator *loaders.PBRTStatement

	lights []lights.Light
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of camera rays per pixel
}

// intersectEpsilon is the smallest accepted hit distance. Spawned rays are
// already offset from their surface, so this only rejects degenerate hits.
const intersectEpsilon = 1e-7

var infinity = math.Inf(1)

// NewGroundQuad creates a horizontal quad centered at the given point with normal pointing up
func NewGroundQuad(center core.Vec3, size float64, mat material.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) points along +Y
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, mat)
}

// Preprocess builds the BVH and lets lights see the scene extent.
// It must run before the scene is shared between workers.
func (s *Scene) Preprocess() error {
	s.BVH = geometry.NewBVH(s.Shapes)

	for _, light := range s.lights {
		if preprocessor, ok := light.(lights.Preprocessor); ok {
			if err := preprocessor.Preprocess(s.BVH.Center, s.BVH.Radius); err != nil {
				return fmt.Errorf("failed to preprocess light: %w", err)
			}
		}
	}
	return nil
}

// Intersect finds the closest hit along ray. The interaction is allocated
// from arena and stays valid until the caller rewinds past it.
func (s *Scene) Intersect(ray core.Ray, arena *core.Arena[material.SurfaceInteraction]) (*material.SurfaceInteraction, bool) {
	if s.BVH == nil {
		return nil, false
	}
	mark := arena.Mark()
	si, _ := arena.Alloc()
	if !s.BVH.Hit(ray, intersectEpsilon, infinity, si) {
		arena.Rewind(mark)
		return nil, false
	}
	si.ComputeScatteringFunctions()
	return si, true
}

// WorldBound returns the bounds of all geometry
func (s *Scene) WorldBound() core.AABB {
	if s.BVH == nil {
		return core.AABB{}
	}
	return s.BVH.BoundingBox()
}

// Lights returns the scene lights
func (s *Scene) Lights() []lights.Light {
	return s.lights
}

// AddLight adds a light that has no geometry
func (s *Scene) AddLight(light lights.Light) {
	s.lights = append(s.lights, light)
}

// AddQuadLight adds a rectangular area light to the scene
func (s *Scene) AddQuadLight(corner, u, v core.Vec3, emission core.Vec3) *lights.QuadLight {
	quadLight := lights.NewQuadLight(corner, u, v, emission, 1)
	s.lights = append(s.lights, quadLight)
	s.Shapes = append(s.Shapes, quadLight)
	return quadLight
}

// AddUniformInfiniteLight adds a uniform infinite light to the scene
func (s *Scene) AddUniformInfiniteLight(emission core.Vec3) {
	s.AddLight(lights.NewUniformInfiniteLight(emission, 1))
}

// AddGradientInfiniteLight adds a gradient infinite light to the scene
func (s *Scene) AddGradientInfiniteLight(topColor, bottomColor core.Vec3) {
	s.AddLight(lights.NewGradientInfiniteLight(topColor, bottomColor, 1))
}
