package cmd

import (
	"bytes"
	"encoding/csv"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-radiance-estimator/pkg/integrator"
	"github.com/df07/go-radiance-estimator/pkg/log"
)

// runApp runs the application with args and returns its log output
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	log.SetSink(&buf)
	t.Cleanup(func() { log.SetSink(os.Stdout) })

	err := NewApp().Run(append([]string{"radiance"}, args...))
	return buf.String(), err
}

func TestScenesCommand(t *testing.T) {
	out, err := runApp(t, "scenes", "--scenes-dir", "../scenes")
	if err != nil {
		t.Fatalf("scenes error = %v", err)
	}
	for _, want := range []string{"cornell-box", "builtin", "pbrt", "default"} {
		if !strings.Contains(out, want) {
			t.Errorf("scenes output missing %q:\n%s", want, out)
		}
	}
}

func TestBoundsCommand(t *testing.T) {
	out, err := runApp(t, "bounds", "--width", "8", "cornell-box")
	if err != nil {
		t.Fatalf("bounds error = %v", err)
	}
	if !strings.Contains(out, "MAX DIST") {
		t.Errorf("bounds table missing:\n%s", out)
	}
	// One area light, two arrays per depth up to maxdepth 5
	if !strings.Contains(out, ": 10 sample arrays reserved") {
		t.Errorf("unexpected reservation summary:\n%s", out)
	}

	out, err = runApp(t, "bounds", "--width", "8", "--strategy", "one", "cornell-box")
	if err != nil {
		t.Fatalf("bounds error = %v", err)
	}
	if !strings.Contains(out, ": 0 sample arrays reserved") {
		t.Errorf("strategy one should reserve nothing:\n%s", out)
	}
}

func TestRenderCommandAnalytic(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "frame.png")
	out, err := runApp(t, "render", "--width", "8", "--spp", "1", "--integrator", "position",
		"--mode", "depth", "--out", filename, "cornell-box")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, "frame statistics") || !strings.Contains(out, "path statistics") {
		t.Errorf("statistics tables missing:\n%s", out)
	}

	file, err := os.Open(filename)
	if err != nil {
		t.Fatalf("rendered frame not written: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("frame bounds = %v, want 8x8", b)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		stage   string
	}{
		{
			name:    "missing model",
			args:    []string{"render", "--width", "8", "--integrator", "bk", "--model", "does/not/exist.onnx", "cornell-box"},
			wantErr: integrator.ErrModelLoad,
			stage:   "model load",
		},
		{
			name:    "degenerate pixel bounds",
			args:    []string{"render", "--width", "8", "--pixelbounds", "20,30,0,8", "cornell-box"},
			wantErr: integrator.ErrDegeneratePixelBounds,
		},
		{
			name:    "unknown integrator",
			args:    []string{"render", "--width", "8", "--integrator", "path", "cornell-box"},
			wantErr: integrator.ErrUnknownIntegrator,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("render error = %v, want %v", err, tt.wantErr)
			}
			if tt.stage != "" && !strings.HasPrefix(err.Error(), tt.stage) {
				t.Errorf("error %q does not name the %s stage", err, tt.stage)
			}
		})
	}
}

func TestFeaturesCommand(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "features.csv")
	out, err := runApp(t, "features", "--width", "4", "--spp", "1", "--out", filename, "cornell-box")
	if err != nil {
		t.Fatalf("features error = %v", err)
	}
	if !strings.Contains(out, "feature rows") {
		t.Errorf("missing summary:\n%s", out)
	}

	file, err := os.Open(filename)
	if err != nil {
		t.Fatalf("features not written: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	// At most one estimate per camera ray; rays leaving the open front of the box record nothing
	if len(rows) < 2 || len(rows) > 1+16 {
		t.Errorf("got %d rows, want header + 1..16", len(rows))
	}
	if len(rows[0]) != 15 || rows[0][14] != "target_b" {
		t.Errorf("header = %v", rows[0])
	}
}

func TestParseInts(t *testing.T) {
	got, err := parseInts("0, 16,4 8")
	if err != nil {
		t.Fatalf("parseInts() error = %v", err)
	}
	want := []int{0, 16, 4, 8}
	if len(got) != len(want) {
		t.Fatalf("parseInts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseInts() = %v, want %v", got, want)
		}
	}

	if _, err := parseInts("1,two"); err == nil {
		t.Errorf("expected an error for a non-integer")
	}
}

func TestStageError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{integrator.ErrModelLoad, "model load: "},
		{integrator.ErrInference, "inference: "},
		{integrator.ErrInferenceTimeout, "inference: "},
		{errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		if got := stageError(tt.err).Error(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("stageError(%v) = %q, want prefix %q", tt.err, got, tt.want)
		}
	}
}
