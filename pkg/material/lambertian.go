package material

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// ComputeScatteringFunctions installs a single diffuse reflection lobe
func (l *Lambertian) ComputeScatteringFunctions(si *SurfaceInteraction) {
	si.SetBSDF(LambertianReflection{R: l.Albedo})
}

// LambertianReflection is the albedo/π lobe
type LambertianReflection struct {
	R core.Vec3
}

func (LambertianReflection) Type() BxDFType {
	return BSDFReflection | BSDFDiffuse
}

func (l LambertianReflection) F(wo, wi, n core.Vec3) core.Vec3 {
	return l.R.Multiply(1.0 / math.Pi)
}

// Rho is exact for a Lambertian lobe, so samples are ignored
func (l LambertianReflection) Rho(wo, n core.Vec3, samples []core.Vec2) core.Vec3 {
	return l.R
}
