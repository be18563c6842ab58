package integrator

import (
	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/inference"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// ReferenceImages are the auxiliary images of the scene the model was
// trained on. Only their paths are passed to the model.
type ReferenceImages struct {
	RGB      string
	Depth    string
	Position string
}

// DefaultReferenceImages returns the Cornell box reference images
func DefaultReferenceImages() ReferenceImages {
	return ReferenceImages{
		RGB:      "./images/cornell-box-color.png",
		Depth:    "./images/cornell-box-depth.png",
		Position: "./images/cornell-box-position.png",
	}
}

// FeatureRecord is the model input for one ray, in world space
type FeatureRecord struct {
	Origin   [3]float32
	Incident [3]float32
	Normal   [3]float32

	ImageRGB      string
	ImageDepth    string
	ImagePosition string
}

// FeatureExtractor turns a ray and its first scattering hit into a FeatureRecord
type FeatureExtractor struct {
	Images ReferenceImages
}

// NewFeatureExtractor creates an extractor that attaches images to every record
func NewFeatureExtractor(images ReferenceImages) *FeatureExtractor {
	return &FeatureExtractor{Images: images}
}

// Extract is pure: the same ray and interaction always give the same record
func (fe *FeatureExtractor) Extract(ray core.Ray, si *material.SurfaceInteraction) FeatureRecord {
	return FeatureRecord{
		Origin:        ray.Origin.Float32(),
		Incident:      ray.Direction.Negate().Float32(),
		Normal:        si.ShadingNormal.Float32(),
		ImageRGB:      fe.Images.RGB,
		ImageDepth:    fe.Images.Depth,
		ImagePosition: fe.Images.Position,
	}
}

// Request converts the record to the model's wire request
func (f FeatureRecord) Request() inference.Request {
	return inference.Request{
		Origin:        f.Origin,
		Incident:      f.Incident,
		Normal:        f.Normal,
		ImageRGB:      f.ImageRGB,
		ImageDepth:    f.ImageDepth,
		ImagePosition: f.ImagePosition,
	}
}

// Vector returns the nine numeric features in FeatureNames order
func (f FeatureRecord) Vector() []float32 {
	v := make([]float32, 0, 9)
	v = append(v, f.Origin[:]...)
	v = append(v, f.Incident[:]...)
	return append(v, f.Normal[:]...)
}

// FeatureNames names the values of Vector followed by the image references
func FeatureNames() []string {
	return []string{
		"origin_x", "origin_y", "origin_z",
		"incident_x", "incident_y", "incident_z",
		"normal_x", "normal_y", "normal_z",
		inference.InputImageRGB, inference.InputImageDepth, inference.InputImagePosition,
	}
}
