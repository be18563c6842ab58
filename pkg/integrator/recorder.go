package integrator

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// Recorder writes one training row per estimated hit: the feature record
// followed by the radiance target. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	w    *csv.Writer
	rows int64
}

// NewRecorder writes the header row to w
func NewRecorder(w io.Writer) (*Recorder, error) {
	r := &Recorder{w: csv.NewWriter(w)}
	header := append(FeatureNames(), "target_r", "target_g", "target_b")
	if err := r.w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return r, nil
}

// Record appends a row
func (r *Recorder) Record(features FeatureRecord, target core.Vec3) error {
	row := make([]string, 0, 15)
	for _, v := range features.Vector() {
		row = append(row, strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	row = append(row, features.ImageRGB, features.ImageDepth, features.ImagePosition)
	for _, v := range []float64{target.X, target.Y, target.Z} {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("failed to write training row: %w", err)
	}
	r.rows++
	return nil
}

// Rows returns the number of rows recorded, excluding the header
func (r *Recorder) Rows() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows
}

// Flush writes buffered rows to the underlying writer
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	return r.w.Error()
}
