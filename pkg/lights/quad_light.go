package lights

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// QuadLight represents a rectangular area light. It is also a shape, so the
// scene can intersect it.
type QuadLight struct {
	*geometry.Quad
	Emission core.Vec3
	nSamples int
}

// NewQuadLight creates a one-sided quad light emitting along U × V
func NewQuadLight(corner, u, v, emission core.Vec3, nSamples int) *QuadLight {
	quad := geometry.NewQuad(corner, u, v, material.NewEmissive(emission))
	return &QuadLight{
		Quad:     quad,
		Emission: emission,
		nSamples: max(nSamples, 1),
	}
}

func (ql *QuadLight) Type() LightType {
	return LightTypeArea
}

func (ql *QuadLight) NSamples() int {
	return ql.nSamples
}

// Emit is zero: escaping rays never see a finite light
func (ql *QuadLight) Emit(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

func (ql *QuadLight) Power() float64 {
	return ql.Emission.Luminance() * ql.Area() * math.Pi
}

// Sample picks a point uniformly on the quad and converts the density to solid angle
func (ql *QuadLight) Sample(point, normal core.Vec3, sample core.Vec2) LightSample {
	samplePoint := ql.Corner.Add(ql.U.Multiply(sample.X)).Add(ql.V.Multiply(sample.Y))
	toLight := samplePoint.Subtract(point)
	distance := toLight.Length()
	ls := LightSample{
		Point:    samplePoint,
		Normal:   ql.Normal,
		Distance: distance,
	}
	if distance == 0 {
		return ls
	}
	ls.Direction = toLight.Multiply(1.0 / distance)

	cosTheta := -ql.Normal.Dot(ls.Direction)
	if cosTheta < 1e-8 {
		// Edge-on or behind the emitting side
		return ls
	}
	ls.Emission = ql.Emission
	ls.PDF = distance * distance / (cosTheta * ql.Area())
	return ls
}
