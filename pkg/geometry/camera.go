package geometry

import (
	"image"
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera is looking at
	Up          core.Vec3 // Up direction
	Width       int       // Image width in pixels
	AspectRatio float64   // Width / height
	VFov        float64   // Vertical field of view in degrees
}

// Camera is a pinhole look-at camera
type Camera struct {
	config      CameraConfig
	height      int
	u, v, w     core.Vec3 // Camera basis: right, up, backward
	pixel00     core.Vec3 // Center of the top-left pixel
	pixelDeltaU core.Vec3
	pixelDeltaV core.Vec3
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	if config.AspectRatio <= 0 {
		config.AspectRatio = 1.0
	}
	if config.Up == (core.Vec3{}) {
		config.Up = core.NewVec3(0, 1, 0)
	}

	height := int(float64(config.Width) / config.AspectRatio)
	if height < 1 {
		height = 1
	}

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focalLength := config.Center.Subtract(config.LookAt).Length()
	viewportHeight := 2 * math.Tan(config.VFov*math.Pi/360) * focalLength
	viewportWidth := viewportHeight * float64(config.Width) / float64(height)

	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Multiply(-viewportHeight)
	pixelDeltaU := viewportU.Multiply(1.0 / float64(config.Width))
	pixelDeltaV := viewportV.Multiply(1.0 / float64(height))

	upperLeft := config.Center.
		Subtract(w.Multiply(focalLength)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))

	return &Camera{
		config:      config,
		height:      height,
		u:           u,
		v:           v,
		w:           w,
		pixel00:     upperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5)),
		pixelDeltaU: pixelDeltaU,
		pixelDeltaV: pixelDeltaV,
	}
}

// CameraToWorld maps a point in camera space (x right, y up, z forward) to world space
func (c *Camera) CameraToWorld(p core.Vec3) core.Vec3 {
	return c.config.Center.
		Add(c.u.Multiply(p.X)).
		Add(c.v.Multiply(p.Y)).
		Subtract(c.w.Multiply(p.Z))
}

// SampleBounds returns the pixel area the film expects samples for
func (c *Camera) SampleBounds() image.Rectangle {
	return image.Rect(0, 0, c.config.Width, c.height)
}

// GetRay generates a ray through pixel (i, j) jittered by sample in [0,1)²
func (c *Camera) GetRay(i, j int, sample core.Vec2) core.Ray {
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + sample.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(float64(j) + sample.Y - 0.5))
	return core.NewRay(c.config.Center, pixelSample.Subtract(c.config.Center).Normalize())
}

// Forward returns the viewing direction
func (c *Camera) Forward() core.Vec3 {
	return c.w.Negate()
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.Center != (core.Vec3{}) {
		result.Center = override.Center
	}
	if override.LookAt != (core.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.Up != (core.Vec3{}) {
		result.Up = override.Up
	}
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.AspectRatio > 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov > 0 {
		result.VFov = override.VFov
	}
	return result
}
