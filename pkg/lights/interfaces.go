package lights

import "github.com/df07/go-radiance-estimator/pkg/core"

type LightType string

const (
	LightTypeArea     LightType = "area"
	LightTypeInfinite LightType = "infinite"
)

// Light is a source of emitted radiance
type Light interface {
	Type() LightType

	// Sample samples light toward a specific point for direct lighting.
	// The returned direction points FROM the shading point TO the light.
	Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample

	// Emit returns the radiance carried by a ray that escapes the scene.
	// Finite lights return zero.
	Emit(ray core.Ray) core.Vec3

	// NSamples is the number of samples the light asks for per shading point
	NSamples() int

	// Power approximates the total emitted power
	Power() float64
}

// Preprocessor interface for lights that depend on the scene extent
type Preprocessor interface {
	Preprocess(worldCenter core.Vec3, worldRadius float64) error
}

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point     core.Vec3 // Point on the light source
	Normal    core.Vec3 // Normal at the light sample point
	Direction core.Vec3 // Direction from shading point to light
	Distance  float64   // Distance to light
	Emission  core.Vec3 // Emitted light
	PDF       float64   // Solid-angle density of this sample
}
