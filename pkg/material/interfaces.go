package material

import (
	"github.com/df07/go-radiance-estimator/pkg/core"
)

// Material prepares the scattering functions at a surface interaction.
// Implementations must leave si.BSDF nil when the surface does not scatter light
// (for example a boundary between two participating media).
type Material interface {
	ComputeScatteringFunctions(si *SurfaceInteraction)
}

// Emitter interface for materials that emit light
type Emitter interface {
	Emit(si *SurfaceInteraction, w core.Vec3) core.Vec3
}

// SurfaceInteraction contains information about a ray-object intersection
type SurfaceInteraction struct {
	Point         core.Vec3 // Point of intersection
	Normal        core.Vec3 // Geometric normal, facing the incoming ray
	ShadingNormal core.Vec3 // Shading normal, same hemisphere as Normal
	Wo            core.Vec3 // Direction towards the ray origin
	T             float64   // Parameter t along the ray
	FrontFace     bool      // Whether ray hit the front face
	Material      Material  // Material of the hit object

	// BSDF is nil when the surface has no evaluable scattering
	BSDF *BSDF

	bsdf BSDF
}

// SetFaceNormal sets the normal vector and determines front/back face
func (si *SurfaceInteraction) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	si.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if si.FrontFace {
		si.Normal = outwardNormal
	} else {
		si.Normal = outwardNormal.Negate()
	}
	si.ShadingNormal = si.Normal
	si.Wo = ray.Direction.Negate().Normalize()
}

// ComputeScatteringFunctions resets the BSDF and lets the material populate it
func (si *SurfaceInteraction) ComputeScatteringFunctions() {
	si.BSDF = nil
	if si.Material != nil {
		si.Material.ComputeScatteringFunctions(si)
	}
}

// SetBSDF installs the interaction's BSDF with the given lobes
func (si *SurfaceInteraction) SetBSDF(bxdfs ...BxDF) *BSDF {
	si.bsdf = BSDF{ns: si.ShadingNormal, ng: si.Normal, bxdfs: bxdfs}
	si.BSDF = &si.bsdf
	return si.BSDF
}

// Le returns the radiance emitted by the surface towards w
func (si *SurfaceInteraction) Le(w core.Vec3) core.Vec3 {
	if emitter, ok := si.Material.(Emitter); ok {
		return emitter.Emit(si, w)
	}
	return core.Vec3{}
}

// SpawnRay creates a ray leaving the interaction in direction d
func (si *SurfaceInteraction) SpawnRay(d core.Vec3) core.Ray {
	return core.SpawnRay(si.Point, si.Normal, d)
}
