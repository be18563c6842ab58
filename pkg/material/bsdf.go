package material

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// BxDFType classifies a scattering lobe
type BxDFType int

const (
	BSDFReflection BxDFType = 1 << iota
	BSDFTransmission
	BSDFDiffuse
	BSDFGlossy
	BSDFSpecular

	BSDFAll = BSDFReflection | BSDFTransmission | BSDFDiffuse | BSDFGlossy | BSDFSpecular
)

// Matches reports whether every bit of t is contained in flags
func (t BxDFType) Matches(flags BxDFType) bool {
	return t&flags == t
}

// BxDF is a single scattering lobe expressed in world space around the shading normal
type BxDF interface {
	Type() BxDFType

	// F evaluates the lobe for the pair of directions
	F(wo, wi, n core.Vec3) core.Vec3

	// Rho estimates the hemispherical-directional reflectance for wo
	Rho(wo, n core.Vec3, samples []core.Vec2) core.Vec3
}

// BSDF aggregates the lobes of a surface
type BSDF struct {
	ns, ng core.Vec3
	bxdfs  []BxDF
}

// ShadingNormal returns the normal the lobes are oriented around
func (b *BSDF) ShadingNormal() core.Vec3 {
	return b.ns
}

// NumComponents counts lobes matching flags
func (b *BSDF) NumComponents(flags BxDFType) int {
	n := 0
	for _, bxdf := range b.bxdfs {
		if bxdf.Type().Matches(flags) {
			n++
		}
	}
	return n
}

// F evaluates all matching lobes, honouring the geometric hemisphere
func (b *BSDF) F(wo, wi core.Vec3, flags BxDFType) core.Vec3 {
	reflect := wo.Dot(b.ng)*wi.Dot(b.ng) > 0
	var f core.Vec3
	for _, bxdf := range b.bxdfs {
		t := bxdf.Type()
		if !t.Matches(flags) {
			continue
		}
		if (reflect && t&BSDFReflection != 0) || (!reflect && t&BSDFTransmission != 0) {
			f = f.Add(bxdf.F(wo, wi, b.ns))
		}
	}
	return f
}

// Rho sums the reflectance of every lobe matching flags
func (b *BSDF) Rho(wo core.Vec3, samples []core.Vec2, flags BxDFType) core.Vec3 {
	var rho core.Vec3
	for _, bxdf := range b.bxdfs {
		if bxdf.Type().Matches(flags) {
			rho = rho.Add(bxdf.Rho(wo, b.ns, samples))
		}
	}
	return rho
}

// SampleCosineHemisphere maps u to a cosine-weighted direction around n
func SampleCosineHemisphere(n core.Vec3, u core.Vec2) core.Vec3 {
	r := math.Sqrt(u.X)
	phi := 2 * math.Pi * u.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u.X))

	t, b := orthonormalBasis(n)
	return t.Multiply(x).Add(b.Multiply(y)).Add(n.Multiply(z)).Normalize()
}

func orthonormalBasis(n core.Vec3) (core.Vec3, core.Vec3) {
	var a core.Vec3
	if math.Abs(n.X) > 0.9 {
		a = core.NewVec3(0, 1, 0)
	} else {
		a = core.NewVec3(1, 0, 0)
	}
	t := a.Cross(n).Normalize()
	return t, n.Cross(t)
}

func reflect(wo, n core.Vec3) core.Vec3 {
	return n.Multiply(2 * wo.Dot(n)).Subtract(wo)
}
