package lights

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/log"
)

func TestInfiniteLightEmit(t *testing.T) {
	top := core.NewVec3(0.5, 0.7, 1.0)
	bottom := core.NewVec3(1, 1, 1)

	tests := []struct {
		name      string
		light     Light
		direction core.Vec3
		expected  core.Vec3
	}{
		{"uniform up", NewUniformInfiniteLight(core.NewVec3(0.2, 0.3, 0.4), 1), core.NewVec3(0, 1, 0), core.NewVec3(0.2, 0.3, 0.4)},
		{"uniform down", NewUniformInfiniteLight(core.NewVec3(0.2, 0.3, 0.4), 1), core.NewVec3(0, -1, 0), core.NewVec3(0.2, 0.3, 0.4)},
		{"gradient up", NewGradientInfiniteLight(top, bottom, 1), core.NewVec3(0, 1, 0), top},
		{"gradient down", NewGradientInfiniteLight(top, bottom, 1), core.NewVec3(0, -1, 0), bottom},
		{"gradient horizon", NewGradientInfiniteLight(top, bottom, 1), core.NewVec3(1, 0, 0), top.Add(bottom).Multiply(0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.light.Emit(core.NewRay(core.Vec3{}, tt.direction))
			if math.Abs(got.X-tt.expected.X) > 1e-9 ||
				math.Abs(got.Y-tt.expected.Y) > 1e-9 ||
				math.Abs(got.Z-tt.expected.Z) > 1e-9 {
				t.Errorf("Emit = %v, want %v", got, tt.expected)
			}
			if tt.light.Type() != LightTypeInfinite {
				t.Errorf("Type = %v", tt.light.Type())
			}
		})
	}
}

func TestQuadLight(t *testing.T) {
	// Light at y=1 facing down
	light := NewQuadLight(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(15, 15, 15), 4)

	if light.NSamples() != 4 {
		t.Errorf("NSamples = %d, want 4", light.NSamples())
	}
	if !light.Emit(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))).IsBlack() {
		t.Errorf("area light should not contribute to escaping rays")
	}

	below := light.Sample(core.NewVec3(0.5, 0, 0.5), core.NewVec3(0, 1, 0), core.NewVec2(0.5, 0.5))
	if below.PDF <= 0 || below.Emission.X != 15 {
		t.Errorf("sample from below: pdf=%f emission=%v", below.PDF, below.Emission)
	}
	// Straight below the center: distance 1, cos 1, area 1
	if math.Abs(below.PDF-1) > 1e-9 {
		t.Errorf("PDF = %f, want 1", below.PDF)
	}

	above := light.Sample(core.NewVec3(0.5, 2, 0.5), core.NewVec3(0, -1, 0), core.NewVec2(0.5, 0.5))
	if above.PDF != 0 || !above.Emission.IsBlack() {
		t.Errorf("sample from the back side should carry nothing, got %+v", above)
	}
}

func TestDistribution1D(t *testing.T) {
	d := NewDistribution1D([]float64{1, 3})
	if math.Abs(d.PMF(0)-0.25) > 1e-12 || math.Abs(d.PMF(1)-0.75) > 1e-12 {
		t.Errorf("PMF = %f, %f", d.PMF(0), d.PMF(1))
	}
	if i, _ := d.Sample(0.2); i != 0 {
		t.Errorf("Sample(0.2) = %d, want 0", i)
	}
	if i, p := d.Sample(0.5); i != 1 || math.Abs(p-0.75) > 1e-12 {
		t.Errorf("Sample(0.5) = %d, %f", i, p)
	}

	zero := NewDistribution1D([]float64{0, 0, 0, 0})
	if math.Abs(zero.PMF(2)-0.25) > 1e-12 {
		t.Errorf("all-zero weights should be uniform, got %f", zero.PMF(2))
	}
}

func TestLightDistributionStrategies(t *testing.T) {
	dim := NewQuadLight(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 1), 1)
	bright := NewQuadLight(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(9, 9, 9), 1)
	lightList := []Light{dim, bright}
	bounds := core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	center := core.NewVec3(0.5, 0.5, 0.5)

	uniform := NewLightDistribution("uniform", lightList, bounds, nil).Lookup(center)
	if math.Abs(uniform.PMF(0)-0.5) > 1e-12 {
		t.Errorf("uniform PMF = %f, want 0.5", uniform.PMF(0))
	}

	power := NewLightDistribution("power", lightList, bounds, nil).Lookup(center)
	if math.Abs(power.PMF(1)-0.9) > 1e-9 {
		t.Errorf("power PMF = %f, want 0.9", power.PMF(1))
	}

	spatial := NewLightDistribution("spatial", lightList, bounds, nil).Lookup(center)
	if spatial.PMF(1) <= spatial.PMF(0) {
		t.Errorf("spatial should favour the brighter light: %f vs %f", spatial.PMF(1), spatial.PMF(0))
	}
}

func TestLightDistributionUnknownStrategyWarns(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	defer log.SetSink(&bytes.Buffer{})

	lightList := []Light{
		NewUniformInfiniteLight(core.NewVec3(1, 1, 1), 1),
		NewUniformInfiniteLight(core.NewVec3(2, 2, 2), 1),
	}
	bounds := core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(2, 1, 1))
	d := NewLightDistribution("bogus", lightList, bounds, log.New("lights"))

	if _, ok := d.(*SpatialLightDistribution); !ok {
		t.Errorf("unknown strategy should fall back to spatial, got %T", d)
	}
	if !strings.Contains(buf.String(), "bogus") {
		t.Errorf("expected a warning naming the strategy, got %q", buf.String())
	}
}

func TestSpatialLookupClampsOutsideBounds(t *testing.T) {
	lightList := []Light{
		NewUniformInfiniteLight(core.NewVec3(1, 1, 1), 1),
		NewUniformInfiniteLight(core.NewVec3(1, 1, 1), 1),
	}
	s := NewSpatialLightDistribution(lightList, core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(4, 2, 1)))
	if res := s.Resolution(); res != [3]int{64, 32, 16} {
		t.Errorf("Resolution = %v", res)
	}
	inside := s.Lookup(core.NewVec3(3.99, 1.99, 0.99))
	outside := s.Lookup(core.NewVec3(100, 100, 100))
	if inside != outside {
		t.Errorf("points past the max corner should share the last voxel")
	}
}
