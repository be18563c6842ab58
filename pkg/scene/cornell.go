package scene

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// cornellBoxSize is the edge length of the standard Cornell box
const cornellBoxSize = 555.0

// NewCornellScene creates the Cornell box the reference images were rendered
// from: diffuse walls, a ceiling light, two boxes, a mirror sphere and a
// participating-medium boundary that rays pass straight through.
func NewCornellScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(278, 278, -800),
		LookAt:      core.NewVec3(278, 278, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        40.0,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	camera := geometry.NewCamera(cameraConfig)
	bounds := camera.SampleBounds()

	s := &Scene{
		Camera:       camera,
		CameraConfig: cameraConfig,
		SamplingConfig: SamplingConfig{
			Width:           bounds.Dx(),
			Height:          bounds.Dy(),
			SamplesPerPixel: 16,
		},
	}

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	size := cornellBoxSize
	s.Shapes = append(s.Shapes,
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, size), core.NewVec3(size, 0, 0), white),    // floor
		geometry.NewQuad(core.NewVec3(0, size, 0), core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), white), // ceiling
		geometry.NewQuad(core.NewVec3(0, 0, size), core.NewVec3(0, size, 0), core.NewVec3(size, 0, 0), white), // back wall
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, size, 0), core.NewVec3(0, 0, size), red),      // left wall
		geometry.NewQuad(core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), core.NewVec3(0, size, 0), green), // right wall
	)

	// Ceiling light facing down, just below the ceiling
	s.AddQuadLight(
		core.NewVec3(213, size-1, 227),
		core.NewVec3(130, 0, 0),
		core.NewVec3(0, 0, 105),
		core.NewVec3(15, 15, 15),
	)

	// Tall and short boxes
	s.Shapes = append(s.Shapes,
		geometry.NewBox(core.NewVec3(347.5, 165, 377.5), core.NewVec3(82.5, 165, 82.5), 15*math.Pi/180, white),
		geometry.NewBox(core.NewVec3(212.5, 82.5, 147.5), core.NewVec3(82.5, 82.5, 82.5), -18*math.Pi/180, white),
	)

	// Mirror sphere resting on the short box and a medium boundary in open space
	s.Shapes = append(s.Shapes,
		geometry.NewSphere(core.NewVec3(212.5, 215, 147.5), 50, material.NewMetal(core.NewVec3(0.8, 0.85, 0.88), 0)),
		geometry.NewSphere(core.NewVec3(400, 120, 150), 70, material.NewInterface()),
	)

	return s
}
