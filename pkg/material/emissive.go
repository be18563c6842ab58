package material

import (
	"github.com/df07/go-radiance-estimator/pkg/core"
)

// Emissive represents a light-emitting material
type Emissive struct {
	Emission core.Vec3 // Emitted light color/intensity
	TwoSided bool
}

// NewEmissive creates a new emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Emission: emission}
}

// ComputeScatteringFunctions gives emitters a black diffuse lobe so that paths
// ending on a light still terminate instead of passing through it
func (e *Emissive) ComputeScatteringFunctions(si *SurfaceInteraction) {
	si.SetBSDF(LambertianReflection{})
}

// Emit returns the emission for front-facing hits
func (e *Emissive) Emit(si *SurfaceInteraction, w core.Vec3) core.Vec3 {
	if si.FrontFace || e.TwoSided {
		return e.Emission
	}
	return core.Vec3{}
}
