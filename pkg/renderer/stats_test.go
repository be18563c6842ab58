package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Red 0.299, green 0.587, blue 0.114 and black average to 0.25
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	if avgLum := CalculateAverageLuminance(img); math.Abs(avgLum-0.25) > 1e-4 {
		t.Errorf("Expected average luminance 0.25, got %f", avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})

	if avgLum := CalculateAverageLuminance(img); math.Abs(avgLum-1) > 1e-4 {
		t.Errorf("Expected average luminance 1.0, got %f", avgLum)
	}
}

func TestCalculateAverageLuminance_Empty(t *testing.T) {
	if avgLum := CalculateAverageLuminance(image.NewRGBA(image.Rectangle{})); avgLum != 0 {
		t.Errorf("Expected 0 for an empty image, got %f", avgLum)
	}
}

func TestPixelStats(t *testing.T) {
	var ps PixelStats
	if ps.GetColor() != (core.Vec3{}) {
		t.Errorf("Expected black before any sample, got %v", ps.GetColor())
	}

	ps.AddSample(core.NewVec3(1, 0, 0.5))
	ps.AddSample(core.NewVec3(0, 1, 0.5))
	if ps.SampleCount != 2 {
		t.Errorf("Expected 2 samples, got %d", ps.SampleCount)
	}
	if got := ps.GetColor(); got != core.NewVec3(0.5, 0.5, 0.5) {
		t.Errorf("Expected average (0.5, 0.5, 0.5), got %v", got)
	}
}
