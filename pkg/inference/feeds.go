package inference

import (
	"context"
	"errors"
	"fmt"
)

// Tensor names of the radiance model graph
const (
	InputOrigin        = "origin"
	InputIncident      = "incident"
	InputNormal        = "normal"
	InputImageRGB      = "image_rgb"
	InputImageDepth    = "image_depth"
	InputImagePosition = "image_position"

	OutputName = "out"
)

// InputNames lists the graph inputs in feed order
var InputNames = []string{
	InputOrigin,
	InputIncident,
	InputNormal,
	InputImageRGB,
	InputImageDepth,
	InputImagePosition,
}

// ErrSessionClosed is returned by Run after Close
var ErrSessionClosed = errors.New("inference session closed")

// Request is one ray's worth of model input
type Request struct {
	Origin   [3]float32
	Incident [3]float32
	Normal   [3]float32

	ImageRGB      string
	ImageDepth    string
	ImagePosition string
}

// Session runs the radiance model for one request at a time. Implementations
// are read-only after loading and safe for concurrent Run calls.
type Session interface {
	// Run returns the flattened "out" tensor for req
	Run(ctx context.Context, req Request) ([]float32, error)
	Close() error
}

// BatchSession runs the model on several requests in one call
type BatchSession interface {
	// RunBatch returns one output row per request, in request order
	RunBatch(ctx context.Context, reqs []Request) ([][]float32, error)
	Close() error
}

// Feed is a named input tensor. Exactly one of Float32 and Strings is set.
type Feed struct {
	Name    string
	Shape   []int64
	Float32 []float32
	Strings []string
}

// EncodeFeeds builds the single-ray feed: [1,3] float32 vectors and scalar
// string tensors
func EncodeFeeds(req Request) []Feed {
	return []Feed{
		{Name: InputOrigin, Shape: []int64{1, 3}, Float32: req.Origin[:]},
		{Name: InputIncident, Shape: []int64{1, 3}, Float32: req.Incident[:]},
		{Name: InputNormal, Shape: []int64{1, 3}, Float32: req.Normal[:]},
		{Name: InputImageRGB, Shape: []int64{}, Strings: []string{req.ImageRGB}},
		{Name: InputImageDepth, Shape: []int64{}, Strings: []string{req.ImageDepth}},
		{Name: InputImagePosition, Shape: []int64{}, Strings: []string{req.ImagePosition}},
	}
}

// EncodeBatchFeeds stacks n requests into [n,3] float32 vectors and [n]
// string tensors
func EncodeBatchFeeds(reqs []Request) ([]Feed, error) {
	n := int64(len(reqs))
	if n == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	origin := make([]float32, 0, 3*n)
	incident := make([]float32, 0, 3*n)
	normal := make([]float32, 0, 3*n)
	rgb := make([]string, 0, n)
	depth := make([]string, 0, n)
	position := make([]string, 0, n)
	for _, req := range reqs {
		origin = append(origin, req.Origin[:]...)
		incident = append(incident, req.Incident[:]...)
		normal = append(normal, req.Normal[:]...)
		rgb = append(rgb, req.ImageRGB)
		depth = append(depth, req.ImageDepth)
		position = append(position, req.ImagePosition)
	}

	return []Feed{
		{Name: InputOrigin, Shape: []int64{n, 3}, Float32: origin},
		{Name: InputIncident, Shape: []int64{n, 3}, Float32: incident},
		{Name: InputNormal, Shape: []int64{n, 3}, Float32: normal},
		{Name: InputImageRGB, Shape: []int64{n}, Strings: rgb},
		{Name: InputImageDepth, Shape: []int64{n}, Strings: depth},
		{Name: InputImagePosition, Shape: []int64{n}, Strings: position},
	}, nil
}

// SplitBatchOutput cuts a flattened [n,k] output into n rows
func SplitBatchOutput(out []float32, n int) ([][]float32, error) {
	if n <= 0 || len(out) == 0 || len(out)%n != 0 {
		return nil, fmt.Errorf("output of %d values cannot be split into %d rows", len(out), n)
	}
	k := len(out) / n
	rows := make([][]float32, n)
	for i := range rows {
		rows[i] = out[i*k : (i+1)*k : (i+1)*k]
	}
	return rows, nil
}
