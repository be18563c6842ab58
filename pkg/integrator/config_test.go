package integrator

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/lights"
	"github.com/df07/go-radiance-estimator/pkg/loaders"
	"github.com/df07/go-radiance-estimator/pkg/scene"
)

var testFilm = image.Rect(0, 0, 64, 32)

func integratorStatement(t *testing.T, line string) *loaders.PBRTStatement {
	t.Helper()
	parsed, err := loaders.ParsePBRT(strings.NewReader(line))
	if err != nil {
		t.Fatalf("ParsePBRT() error = %v", err)
	}
	if parsed.Integrator == nil {
		t.Fatalf("no Integrator statement in %q", line)
	}
	return parsed.Integrator
}

func TestCubeSceneBounds(t *testing.T) {
	cube := &boxScene{bound: core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))}
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0.5, 0.5, -1),
		LookAt:      core.NewVec3(0.5, 0.5, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       32,
		AspectRatio: 1,
		VFov:        45,
	})

	bounds, err := Preprocess(cube, camera, newRecordingSampler(), LightStrategyAll, 5)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	if math.Abs(bounds.MaxDist-math.Sqrt(4.5)) > 1e-9 {
		t.Errorf("MaxDist = %f, want %f", bounds.MaxDist, math.Sqrt(4.5))
	}
	if bounds.Min() != core.NewVec3(0, 0, 0) || bounds.Max() != core.NewVec3(1, 1, 1) {
		t.Errorf("bounds = %v .. %v, want unit cube", bounds.Min(), bounds.Max())
	}
	seen := make(map[core.Vec3]bool)
	for _, c := range bounds.Corners {
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Errorf("Corners = %v, want 8 distinct corners", bounds.Corners)
	}
}

func TestPreprocessRejectsInvalidBound(t *testing.T) {
	inverted := &boxScene{bound: core.NewAABB(core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0))}
	camera := geometry.NewCamera(geometry.CameraConfig{Center: core.NewVec3(0, 0, -1), LookAt: core.Vec3{}, Up: core.NewVec3(0, 1, 0), Width: 8, AspectRatio: 1, VFov: 45})
	if _, err := Preprocess(inverted, camera, newRecordingSampler(), LightStrategyAll, 5); err == nil {
		t.Errorf("inverted world bound should fail")
	}
}

func TestLightStrategyReservations(t *testing.T) {
	s := &boxScene{
		bound: core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)),
		lights: []lights.Light{
			&fakeLight{emission: core.NewVec3(1, 1, 1), nSamples: 3},
			&fakeLight{emission: core.NewVec3(1, 1, 1), nSamples: 1},
		},
	}
	camera := geometry.NewCamera(geometry.CameraConfig{Center: core.NewVec3(0.5, 0.5, -1), LookAt: core.NewVec3(0.5, 0.5, 0), Up: core.NewVec3(0, 1, 0), Width: 8, AspectRatio: 1, VFov: 45})

	reserve := func(strategy LightStrategy) []int {
		sampler := newRecordingSampler()
		if _, err := Preprocess(s, camera, sampler, strategy, 2); err != nil {
			t.Fatalf("Preprocess() error = %v", err)
		}
		return sampler.requests
	}

	all := reserve(LightStrategyAll)
	want := []int{4, 4, 1, 1, 4, 4, 1, 1}
	if len(all) != len(want) {
		t.Fatalf("all reserved %v, want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("all reserved %v, want %v", all, want)
			break
		}
	}

	if one := reserve(LightStrategyOne); len(one) != 0 {
		t.Errorf("one reserved %v, want nothing", one)
	}

	logs := captureLog(t)
	bogus := reserve(ParseLightStrategy("bogus", testLogger))
	if len(bogus) != len(all) {
		t.Fatalf("bogus reserved %v, want %v", bogus, all)
	}
	for i := range all {
		if bogus[i] != all[i] {
			t.Errorf("bogus reserved %v, want %v", bogus, all)
			break
		}
	}
	if !strings.Contains(logs.String(), `strategy "bogus" unknown`) {
		t.Errorf("expected a warning for the unknown strategy, got %q", logs.String())
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(integratorStatement(t, `Integrator "bk"`), testFilm, testLogger)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Kind != EstimatorLearned || cfg.MaxDepth != 5 || cfg.RRThreshold != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LightSampleStrategy != "spatial" || cfg.Strategy != LightStrategyAll || cfg.Mode != ModeRGB {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PixelBounds != testFilm {
		t.Errorf("PixelBounds = %v, want the full film", cfg.PixelBounds)
	}

	cfg, err = ParseConfig(nil, testFilm, testLogger)
	if err != nil || cfg.Kind != EstimatorAnalytic {
		t.Errorf("nil statement = %+v, %v", cfg, err)
	}
}

func TestParseConfigParameters(t *testing.T) {
	stmt := integratorStatement(t, `Integrator "position" "integer maxdepth" 3 "float rrthreshold" 0.5 `+
		`"string strategy" "one" "string mode" "depth" "integer pixelbounds" [8 128 4 16]`)
	cfg, err := ParseConfig(stmt, testFilm, testLogger)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Kind != EstimatorAnalytic || cfg.MaxDepth != 3 || cfg.RRThreshold != 0.5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Strategy != LightStrategyOne || cfg.Mode != ModeDepth {
		t.Errorf("strategy = %v, mode = %v", cfg.Strategy, cfg.Mode)
	}
	if want := image.Rect(8, 4, 64, 16); cfg.PixelBounds != want {
		t.Errorf("PixelBounds = %v, want %v", cfg.PixelBounds, want)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"degenerate pixel bounds", `Integrator "bk" "integer pixelbounds" [100 200 0 10]`, ErrDegeneratePixelBounds},
		{"inverted pixel bounds", `Integrator "bk" "integer pixelbounds" [10 5 0 10]`, ErrDegeneratePixelBounds},
		{"unknown integrator", `Integrator "path"`, ErrUnknownIntegrator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(integratorStatement(t, tt.line), testFilm, testLogger)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ParseConfig(integratorStatement(t, `Integrator "position" "string mode" "normals"`), testFilm, testLogger); err == nil {
		t.Errorf("unknown mode should fail")
	}
}

func TestPixelBoundsArityIsAWarning(t *testing.T) {
	logs := captureLog(t)
	cfg, err := ParseConfig(integratorStatement(t, `Integrator "bk" "integer pixelbounds" [0 16 0]`), testFilm, testLogger)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.PixelBounds != testFilm {
		t.Errorf("PixelBounds = %v, want the full film", cfg.PixelBounds)
	}
	if !strings.Contains(logs.String(), ErrPixelBoundsArity.Error()) {
		t.Errorf("expected an arity warning, got %q", logs.String())
	}
}

func TestNewIntegrator(t *testing.T) {
	s := scene.NewCornellScene(geometry.CameraConfig{Width: 16})
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	film := s.Camera.SampleBounds()

	t.Run("analytic", func(t *testing.T) {
		sampler := newRecordingSampler()
		it, err := New(DefaultConfig(EstimatorAnalytic, film), s, s.Camera, sampler, Options{}, testLogger)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		// One quad light, two arrays per depth
		if len(sampler.requests) != 2*5 {
			t.Errorf("reserved %d arrays, want 10", len(sampler.requests))
		}
		if it.Bounds.MaxDist <= 0 || it.LightDistribution != nil {
			t.Errorf("analytic integrator state: %+v", it)
		}

		ray := s.Camera.GetRay(8, 8, core.NewVec2(0.5, 0.5))
		L, err := it.RayColor(t.Context(), ray, s, sampler, newTestArena())
		if err != nil {
			t.Fatalf("RayColor() error = %v", err)
		}
		if L.IsBlack() {
			t.Errorf("center pixel of the Cornell box should not be black")
		}
	})

	t.Run("learned", func(t *testing.T) {
		session := &fakeSession{out: []float32{0.2, 0.4, 0.6}}
		sampler := newRecordingSampler()
		it, err := New(DefaultConfig(EstimatorLearned, film), s, s.Camera, sampler, Options{Session: session}, testLogger)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if len(sampler.requests) != 0 {
			t.Errorf("learned integrator reserved %v", sampler.requests)
		}
		if it.LightDistribution == nil {
			t.Errorf("learned integrator should build a light distribution")
		}

		ray := s.Camera.GetRay(8, 8, core.NewVec2(0.5, 0.5))
		L, err := it.RayColor(t.Context(), ray, s, sampler, newTestArena())
		if err != nil {
			t.Fatalf("RayColor() error = %v", err)
		}
		if !vecNear(L, core.NewVec3(0.2, 0.4, 0.6), 1e-6) {
			t.Errorf("RayColor() = %v, want the model output", L)
		}
		if session.last.ImageRGB != DefaultReferenceImages().RGB {
			t.Errorf("default images not applied: %+v", session.last)
		}

		if err := it.Close(); err != nil || !session.closed {
			t.Errorf("Close() = %v, session closed = %v", err, session.closed)
		}
	})

	t.Run("learned without session", func(t *testing.T) {
		_, err := New(DefaultConfig(EstimatorLearned, film), s, s.Camera, newRecordingSampler(), Options{}, testLogger)
		if !errors.Is(err, ErrModelLoad) {
			t.Errorf("New() error = %v, want ErrModelLoad", err)
		}
	})
}
