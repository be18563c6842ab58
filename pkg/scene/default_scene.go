package scene

import (
	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// NewDefaultScene creates an open scene lit only by a gradient sky, so that
// escaping rays carry environment radiance
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0.75, 2),
		LookAt:      core.NewVec3(0, 0.5, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
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

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	red := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	silver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)

	s.Shapes = append(s.Shapes,
		NewGroundQuad(core.NewVec3(0, 0, 0), 100.0, ground),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold),
		// Medium boundary in front of the spheres
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.4), 0.25, material.NewInterface()),
	)

	s.AddGradientInfiniteLight(
		core.NewVec3(0.5, 0.7, 1.0), // blue sky
		core.NewVec3(1.0, 1.0, 1.0), // white horizon
	)

	return s
}
