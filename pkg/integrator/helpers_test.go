package integrator

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/inference"
	"github.com/df07/go-radiance-estimator/pkg/lights"
	"github.com/df07/go-radiance-estimator/pkg/log"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

var testLogger = log.New("integrator-test")

func newTestSampler() *core.RandomSampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(42)))
}

func newTestArena() *core.Arena[material.SurfaceInteraction] {
	return core.NewArena[material.SurfaceInteraction](8)
}

// captureLog redirects log output to a buffer for the rest of the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetSink(&buf)
	t.Cleanup(func() { log.SetSink(os.Stdout) })
	return &buf
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

// fakeSession answers every request with out, or blocks until the context ends
type fakeSession struct {
	out    []float32
	err    error
	block  bool
	calls  int
	last   inference.Request
	closed bool
}

func (f *fakeSession) Run(ctx context.Context, req inference.Request) ([]float32, error) {
	f.calls++
	f.last = req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.out, f.err
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

// fakeLight is an environment light of constant radiance
type fakeLight struct {
	emission core.Vec3
	nSamples int
}

func (l *fakeLight) Type() lights.LightType { return lights.LightTypeInfinite }
func (l *fakeLight) Sample(point, normal core.Vec3, sample core.Vec2) lights.LightSample {
	return lights.LightSample{Direction: normal, Emission: l.emission, PDF: 1, Distance: math.Inf(1)}
}
func (l *fakeLight) Emit(ray core.Ray) core.Vec3 { return l.emission }
func (l *fakeLight) NSamples() int { return l.nSamples }
func (l *fakeLight) Power() float64 { return l.emission.Luminance() }

// boxScene reports a fixed world bound and lights, and never hits anything
type boxScene struct {
	bound  core.AABB
	lights []lights.Light
}

func (s *boxScene) Intersect(ray core.Ray, arena *core.Arena[material.SurfaceInteraction]) (*material.SurfaceInteraction, bool) {
	return nil, false
}
func (s *boxScene) WorldBound() core.AABB { return s.bound }
func (s *boxScene) Lights() []lights.Light { return s.lights }

// boundaryScene is an endless stack of medium boundaries: every ray hits a
// surface without a BSDF one unit ahead
type boundaryScene struct {
	intersections int
}

func (s *boundaryScene) Intersect(ray core.Ray, arena *core.Arena[material.SurfaceInteraction]) (*material.SurfaceInteraction, bool) {
	s.intersections++
	si, _ := arena.Alloc()
	si.T = 1
	si.Point = ray.At(1)
	si.SetFaceNormal(ray, ray.Direction.Negate())
	si.Material = material.NewInterface()
	si.ComputeScatteringFunctions()
	return si, true
}
func (s *boundaryScene) WorldBound() core.AABB { return core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)) }
func (s *boundaryScene) Lights() []lights.Light { return nil }

// recordingSampler records array reservations and rounds counts up to a power of two
type recordingSampler struct {
	*core.RandomSampler
	requests []int
}

func newRecordingSampler() *recordingSampler {
	return &recordingSampler{RandomSampler: newTestSampler()}
}

func (r *recordingSampler) Request2DArray(n int) {
	r.requests = append(r.requests, n)
}

func (r *recordingSampler) RoundCount(n int) int {
	rounded := 1
	for rounded < n {
		rounded *= 2
	}
	return rounded
}
