package lights

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// infiniteLight holds what uniform and gradient environments share
type infiniteLight struct {
	nSamples    int
	worldCenter core.Vec3
	worldRadius float64
}

func (il *infiniteLight) Type() LightType {
	return LightTypeInfinite
}

func (il *infiniteLight) NSamples() int {
	return il.nSamples
}

// Preprocess records the scene extent used by Power
func (il *infiniteLight) Preprocess(worldCenter core.Vec3, worldRadius float64) error {
	il.worldCenter = worldCenter
	il.worldRadius = worldRadius
	return nil
}

func (il *infiniteLight) sample(point, normal core.Vec3, u core.Vec2, emission func(core.Vec3) core.Vec3) LightSample {
	direction := material.SampleCosineHemisphere(normal, u)
	return LightSample{
		Point:     point.Add(direction.Multiply(2 * math.Max(il.worldRadius, 1))),
		Normal:    direction.Negate(),
		Direction: direction,
		Distance:  math.Inf(1),
		Emission:  emission(direction),
		PDF:       direction.Dot(normal) / math.Pi,
	}
}

// UniformInfiniteLight emits the same radiance in every direction
type UniformInfiniteLight struct {
	infiniteLight
	emission core.Vec3
}

// NewUniformInfiniteLight creates a new uniform infinite light
func NewUniformInfiniteLight(emission core.Vec3, nSamples int) *UniformInfiniteLight {
	return &UniformInfiniteLight{
		infiniteLight: infiniteLight{nSamples: max(nSamples, 1)},
		emission:      emission,
	}
}

func (uil *UniformInfiniteLight) Sample(point, normal core.Vec3, sample core.Vec2) LightSample {
	return uil.sample(point, normal, sample, func(core.Vec3) core.Vec3 { return uil.emission })
}

func (uil *UniformInfiniteLight) Emit(ray core.Ray) core.Vec3 {
	return uil.emission
}

func (uil *UniformInfiniteLight) Power() float64 {
	return math.Pi * uil.worldRadius * uil.worldRadius * uil.emission.Luminance()
}

// GradientInfiniteLight blends between two colors by the Y component of the direction
type GradientInfiniteLight struct {
	infiniteLight
	topColor    core.Vec3
	bottomColor core.Vec3
}

// NewGradientInfiniteLight creates a new gradient infinite light
func NewGradientInfiniteLight(topColor, bottomColor core.Vec3, nSamples int) *GradientInfiniteLight {
	return &GradientInfiniteLight{
		infiniteLight: infiniteLight{nSamples: max(nSamples, 1)},
		topColor:      topColor,
		bottomColor:   bottomColor,
	}
}

func (gil *GradientInfiniteLight) emissionForDirection(direction core.Vec3) core.Vec3 {
	t := 0.5 * (direction.Normalize().Y + 1.0) // Map Y from [-1,1] to [0,1]
	return gil.bottomColor.Multiply(1.0 - t).Add(gil.topColor.Multiply(t))
}

func (gil *GradientInfiniteLight) Sample(point, normal core.Vec3, sample core.Vec2) LightSample {
	return gil.sample(point, normal, sample, gil.emissionForDirection)
}

func (gil *GradientInfiniteLight) Emit(ray core.Ray) core.Vec3 {
	return gil.emissionForDirection(ray.Direction)
}

func (gil *GradientInfiniteLight) Power() float64 {
	avg := gil.topColor.Add(gil.bottomColor).Multiply(0.5)
	return math.Pi * gil.worldRadius * gil.worldRadius * avg.Luminance()
}
