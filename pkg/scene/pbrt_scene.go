package scene

import (
	"fmt"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/lights"
	"github.com/df07/go-radiance-estimator/pkg/loaders"
	"github.com/df07/go-radiance-estimator/pkg/log"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// NewPBRTScene creates a scene from a PBRT file
func NewPBRTScene(filepath string, logger log.Logger, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	pbrtScene, err := loaders.LoadPBRT(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to load PBRT file: %w", err)
	}
	return NewSceneFromPBRT(pbrtScene, logger, cameraOverrides...)
}

// NewSceneFromPBRT converts an already parsed PBRT scene
func NewSceneFromPBRT(pbrtScene *loaders.PBRTScene, logger log.Logger, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	scene := &Scene{
		SamplingConfig: SamplingConfig{SamplesPerPixel: 16},
		Integrator:     pbrtScene.Integrator,
	}

	if err := convertCamera(pbrtScene, scene, cameraOverrides...); err != nil {
		return nil, fmt.Errorf("failed to convert camera: %w", err)
	}

	if pbrtScene.Sampler != nil {
		if spp, ok := pbrtScene.Sampler.GetIntParam("pixelsamples"); ok && spp > 0 {
			scene.SamplingConfig.SamplesPerPixel = spp
		}
	}

	materials := make([]material.Material, len(pbrtScene.Materials))
	for i := range pbrtScene.Materials {
		mat, err := convertMaterial(&pbrtScene.Materials[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert material: %w", err)
		}
		materials[i] = mat
	}

	for i := range pbrtScene.Shapes {
		shapeStmt := &pbrtScene.Shapes[i]
		shapeMaterial := defaultMaterial()
		if shapeStmt.MaterialIndex >= 0 && shapeStmt.MaterialIndex < len(materials) {
			shapeMaterial = materials[shapeStmt.MaterialIndex]
		}
		if err := convertShape(shapeStmt, shapeMaterial, scene); err != nil {
			return nil, fmt.Errorf("failed to convert shape: %w", err)
		}
	}

	for i := range pbrtScene.LightSources {
		light, err := convertLight(&pbrtScene.LightSources[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert light: %w", err)
		}
		scene.AddLight(light)
	}

	for _, directive := range pbrtScene.Ignored {
		logger.Warningf("ignoring unsupported PBRT directive %s", directive)
	}

	return scene, nil
}

func convertCamera(pbrtScene *loaders.PBRTScene, scene *Scene, cameraOverrides ...geometry.CameraConfig) error {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, 1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        90.0,
	}

	if pbrtScene.LookAt != nil {
		config.Center = pbrtScene.LookAt.Eye
		config.LookAt = pbrtScene.LookAt.At
		config.Up = pbrtScene.LookAt.Up
	}

	if pbrtScene.Camera != nil {
		if pbrtScene.Camera.Subtype != "perspective" {
			return fmt.Errorf("unsupported camera type: %s", pbrtScene.Camera.Subtype)
		}
		if fov, ok := pbrtScene.Camera.GetFloatParam("fov"); ok {
			config.VFov = fov
		}
	}

	if pbrtScene.Film != nil {
		xres, xok := pbrtScene.Film.GetIntParam("xresolution")
		yres, yok := pbrtScene.Film.GetIntParam("yresolution")
		if xok {
			config.Width = xres
		}
		if xok && yok && xres > 0 && yres > 0 {
			config.AspectRatio = float64(xres) / float64(yres)
		}
	}

	if len(cameraOverrides) > 0 {
		config = geometry.MergeCameraConfig(config, cameraOverrides[0])
	}
	if config.Width <= 0 {
		return fmt.Errorf("invalid film width %d", config.Width)
	}

	scene.CameraConfig = config
	scene.Camera = geometry.NewCamera(config)
	bounds := scene.Camera.SampleBounds()
	scene.SamplingConfig.Width = bounds.Dx()
	scene.SamplingConfig.Height = bounds.Dy()
	return nil
}

func defaultMaterial() material.Material {
	return material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
}

func convertMaterial(stmt *loaders.PBRTStatement) (material.Material, error) {
	materialType := stmt.Subtype
	if stmt.Type == "MakeNamedMaterial" {
		t, ok := stmt.GetStringParam("type")
		if !ok {
			return nil, fmt.Errorf("named material %q has no type", stmt.Subtype)
		}
		materialType = t
	}

	switch materialType {
	case "diffuse", "matte":
		albedo := core.NewVec3(0.5, 0.5, 0.5)
		if rgb, ok := firstRGB(stmt, "reflectance", "Kd"); ok {
			albedo = *rgb
		}
		return material.NewLambertian(albedo), nil

	case "conductor", "metal", "mirror":
		albedo := core.NewVec3(0.9, 0.9, 0.9)
		if rgb, ok := firstRGB(stmt, "reflectance", "Kr"); ok {
			albedo = *rgb
		}
		roughness := 0.0
		if r, ok := stmt.GetFloatParam("roughness"); ok {
			roughness = r
		}
		return material.NewMetal(albedo, roughness), nil

	case "interface", "", "none":
		return material.NewInterface(), nil

	default:
		return nil, fmt.Errorf("unsupported material type: %s", materialType)
	}
}

func firstRGB(stmt *loaders.PBRTStatement, names ...string) (*core.Vec3, bool) {
	for _, name := range names {
		if rgb, ok := stmt.GetRGBParam(name); ok {
			return rgb, true
		}
	}
	return nil, false
}

// lightSamples reads the per-light sample count, which PBRT spells either way
func lightSamples(stmt *loaders.PBRTStatement) int {
	for _, name := range []string{"samples", "nsamples"} {
		if n, ok := stmt.GetIntParam(name); ok && n > 0 {
			return n
		}
	}
	return 1
}

// convertShape adds the shape to scene. Quads under an AreaLightSource become
// sampled quad lights; spheres under one become emissive geometry only.
func convertShape(stmt *loaders.PBRTStatement, mat material.Material, scene *Scene) error {
	switch stmt.Subtype {
	case "sphere":
		radius := 1.0
		if r, ok := stmt.GetFloatParam("radius"); ok {
			radius = r
		}
		if stmt.IsAreaLight() {
			emission, _ := areaLightEmission(stmt.AreaLight)
			mat = material.NewEmissive(emission)
		}
		scene.Shapes = append(scene.Shapes, geometry.NewSphere(stmt.Translation, radius, mat))
		return nil

	case "bilinearmesh", "bilinearPatch":
		points, ok := stmt.GetPoint3sParam("P")
		if !ok || len(points) != 4 {
			return fmt.Errorf("%s requires exactly 4 points", stmt.Subtype)
		}
		// Vertex order is p00 p10 p01 p11
		corner := points[0].Add(stmt.Translation)
		u := points[1].Subtract(points[0])
		v := points[2].Subtract(points[0])

		if stmt.IsAreaLight() {
			emission, nSamples := areaLightEmission(stmt.AreaLight)
			light := lights.NewQuadLight(corner, u, v, emission, nSamples)
			scene.AddLight(light)
			scene.Shapes = append(scene.Shapes, light)
			return nil
		}
		scene.Shapes = append(scene.Shapes, geometry.NewQuad(corner, u, v, mat))
		return nil

	default:
		return fmt.Errorf("unsupported shape type: %s", stmt.Subtype)
	}
}

func areaLightEmission(stmt *loaders.PBRTStatement) (core.Vec3, int) {
	emission := core.NewVec3(1, 1, 1)
	if rgb, ok := stmt.GetRGBParam("L"); ok {
		emission = *rgb
	}
	if scale, ok := stmt.GetFloatParam("scale"); ok {
		emission = emission.Multiply(scale)
	}
	return emission, lightSamples(stmt)
}

func convertLight(stmt *loaders.PBRTStatement) (lights.Light, error) {
	nSamples := lightSamples(stmt)
	switch stmt.Subtype {
	case "infinite":
		emission := core.NewVec3(1, 1, 1)
		if rgb, ok := stmt.GetRGBParam("L"); ok {
			emission = *rgb
		}
		if scale, ok := stmt.GetFloatParam("scale"); ok {
			emission = emission.Multiply(scale)
		}
		return lights.NewUniformInfiniteLight(emission, nSamples), nil

	case "infinite-gradient":
		top := core.NewVec3(0.5, 0.7, 1.0)
		bottom := core.NewVec3(1, 1, 1)
		if rgb, ok := stmt.GetRGBParam("topcolor"); ok {
			top = *rgb
		}
		if rgb, ok := stmt.GetRGBParam("bottomcolor"); ok {
			bottom = *rgb
		}
		return lights.NewGradientInfiniteLight(top, bottom, nSamples), nil

	default:
		return nil, fmt.Errorf("unsupported light type: %s", stmt.Subtype)
	}
}
