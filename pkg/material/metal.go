package material

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// Metal represents a conductor. Zero roughness gives a perfect mirror,
// anything else a glossy Phong lobe.
type Metal struct {
	Albedo    core.Vec3
	Roughness float64
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3, roughness float64) *Metal {
	if roughness > 1.0 {
		roughness = 1.0
	}
	if roughness < 0.0 {
		roughness = 0.0
	}
	return &Metal{Albedo: albedo, Roughness: roughness}
}

func (m *Metal) ComputeScatteringFunctions(si *SurfaceInteraction) {
	if m.Roughness == 0 {
		si.SetBSDF(SpecularReflection{R: m.Albedo})
		return
	}
	si.SetBSDF(NewGlossyReflection(m.Albedo, m.Roughness))
}

// SpecularReflection is a delta mirror lobe
type SpecularReflection struct {
	R core.Vec3
}

func (SpecularReflection) Type() BxDFType {
	return BSDFReflection | BSDFSpecular
}

// F is zero for every finite pair of directions
func (SpecularReflection) F(wo, wi, n core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (s SpecularReflection) Rho(wo, n core.Vec3, samples []core.Vec2) core.Vec3 {
	return s.R
}

// GlossyReflection is a normalized Phong lobe around the mirror direction
type GlossyReflection struct {
	R        core.Vec3
	Exponent float64
}

// NewGlossyReflection maps roughness in (0,1] to a Phong exponent
func NewGlossyReflection(r core.Vec3, roughness float64) GlossyReflection {
	exponent := 2/(roughness*roughness) - 2
	if exponent < 1 {
		exponent = 1
	}
	return GlossyReflection{R: r, Exponent: exponent}
}

func (GlossyReflection) Type() BxDFType {
	return BSDFReflection | BSDFGlossy
}

func (g GlossyReflection) F(wo, wi, n core.Vec3) core.Vec3 {
	cosAlpha := reflect(wo, n).Dot(wi)
	if cosAlpha <= 0 || wi.Dot(n) <= 0 {
		return core.Vec3{}
	}
	return g.R.Multiply((g.Exponent + 2) / (2 * math.Pi) * math.Pow(cosAlpha, g.Exponent))
}

// Rho is a Monte Carlo estimate with cosine-weighted directions
func (g GlossyReflection) Rho(wo, n core.Vec3, samples []core.Vec2) core.Vec3 {
	if len(samples) == 0 {
		return core.Vec3{}
	}
	var sum core.Vec3
	for _, u := range samples {
		wi := SampleCosineHemisphere(n, u)
		cosTheta := wi.Dot(n)
		if cosTheta <= 0 {
			continue
		}
		pdf := cosTheta / math.Pi
		sum = sum.Add(g.F(wo, wi, n).Multiply(cosTheta / pdf))
	}
	return sum.Multiply(1.0 / float64(len(samples)))
}
