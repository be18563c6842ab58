package lights

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/log"
)

// Distribution1D is a piecewise-constant distribution over light indices
type Distribution1D struct {
	fn  []float64
	cdf []float64
	sum float64
}

// NewDistribution1D builds a distribution from non-negative weights.
// All-zero weights fall back to uniform.
func NewDistribution1D(weights []float64) *Distribution1D {
	n := len(weights)
	d := &Distribution1D{fn: make([]float64, n), cdf: make([]float64, n+1)}
	copy(d.fn, weights)
	for i := 0; i < n; i++ {
		d.cdf[i+1] = d.cdf[i] + math.Max(d.fn[i], 0)
	}
	d.sum = d.cdf[n]
	if d.sum == 0 {
		for i := 0; i < n; i++ {
			d.fn[i] = 1
			d.cdf[i+1] = float64(i + 1)
		}
		d.sum = float64(n)
	}
	for i := 1; i <= n; i++ {
		d.cdf[i] /= d.sum
	}
	return d
}

// Count returns the number of entries
func (d *Distribution1D) Count() int {
	return len(d.fn)
}

// Sample returns the index selected by u in [0,1) and its probability
func (d *Distribution1D) Sample(u float64) (int, float64) {
	n := len(d.fn)
	if n == 0 {
		return -1, 0
	}
	i := sort.Search(n, func(i int) bool { return d.cdf[i+1] > u })
	if i >= n {
		i = n - 1
	}
	return i, d.PMF(i)
}

// PMF returns the probability of selecting index i
func (d *Distribution1D) PMF(i int) float64 {
	if i < 0 || i >= len(d.fn) {
		return 0
	}
	return d.cdf[i+1] - d.cdf[i]
}

// LightDistribution maps a point in the scene to a distribution over its lights
type LightDistribution interface {
	Lookup(p core.Vec3) *Distribution1D
}

// NewLightDistribution creates the distribution named by strategy: "uniform",
// "power" or "spatial". Unknown names log a warning and use "spatial".
func NewLightDistribution(strategy string, lights []Light, bounds core.AABB, logger log.Logger) LightDistribution {
	if len(lights) == 1 {
		// Only one light: the choice cannot matter
		return NewUniformLightDistribution(lights)
	}
	switch strategy {
	case "uniform":
		return NewUniformLightDistribution(lights)
	case "power":
		return NewPowerLightDistribution(lights)
	case "spatial":
		return NewSpatialLightDistribution(lights, bounds)
	default:
		if logger != nil {
			logger.Warningf("light sample distribution type %q unknown; using \"spatial\"", strategy)
		}
		return NewSpatialLightDistribution(lights, bounds)
	}
}

type fixedLightDistribution struct {
	distrib *Distribution1D
}

func (f *fixedLightDistribution) Lookup(p core.Vec3) *Distribution1D {
	return f.distrib
}

// NewUniformLightDistribution gives every light the same probability
func NewUniformLightDistribution(lights []Light) LightDistribution {
	weights := make([]float64, len(lights))
	for i := range weights {
		weights[i] = 1
	}
	return &fixedLightDistribution{distrib: NewDistribution1D(weights)}
}

// NewPowerLightDistribution weights lights by emitted power
func NewPowerLightDistribution(lights []Light) LightDistribution {
	weights := make([]float64, len(lights))
	for i, l := range lights {
		weights[i] = l.Power()
	}
	return &fixedLightDistribution{distrib: NewDistribution1D(weights)}
}

const (
	maxVoxels           = 64
	spatialVoxelSamples = 128
)

type voxel struct {
	once    sync.Once
	distrib *Distribution1D
}

// SpatialLightDistribution partitions the scene bounds into voxels and
// estimates per-voxel light contributions on first lookup
type SpatialLightDistribution struct {
	lights []Light
	bounds core.AABB
	res    [3]int
	voxels []voxel
}

// NewSpatialLightDistribution creates a voxel grid whose longest axis has maxVoxels cells
func NewSpatialLightDistribution(lights []Light, bounds core.AABB) *SpatialLightDistribution {
	diag := bounds.Size()
	maxExtent := math.Max(diag.X, math.Max(diag.Y, diag.Z))
	var res [3]int
	for axis := 0; axis < 3; axis++ {
		r := 1
		if maxExtent > 0 {
			r = int(math.Round(float64(maxVoxels) * diag.Get(axis) / maxExtent))
		}
		res[axis] = max(r, 1)
	}
	return &SpatialLightDistribution{
		lights: lights,
		bounds: bounds,
		res:    res,
		voxels: make([]voxel, res[0]*res[1]*res[2]),
	}
}

// Resolution returns the voxel grid size per axis
func (s *SpatialLightDistribution) Resolution() [3]int {
	return s.res
}

// Lookup returns the distribution of the voxel containing p. Points outside
// the bounds are clamped to the nearest voxel.
func (s *SpatialLightDistribution) Lookup(p core.Vec3) *Distribution1D {
	var pi [3]int
	size := s.bounds.Size()
	for axis := 0; axis < 3; axis++ {
		offset := 0.0
		if size.Get(axis) > 0 {
			offset = (p.Get(axis) - s.bounds.Min.Get(axis)) / size.Get(axis)
		}
		pi[axis] = min(max(int(offset*float64(s.res[axis])), 0), s.res[axis]-1)
	}
	idx := (pi[2]*s.res[1]+pi[1])*s.res[0] + pi[0]
	v := &s.voxels[idx]
	v.once.Do(func() {
		v.distrib = s.computeDistribution(pi, int64(idx))
	})
	return v.distrib
}

func (s *SpatialLightDistribution) computeDistribution(pi [3]int, seed int64) *Distribution1D {
	size := s.bounds.Size()
	vmin := core.NewVec3(
		s.bounds.Min.X+size.X*float64(pi[0])/float64(s.res[0]),
		s.bounds.Min.Y+size.Y*float64(pi[1])/float64(s.res[1]),
		s.bounds.Min.Z+size.Z*float64(pi[2])/float64(s.res[2]),
	)
	vmax := core.NewVec3(
		s.bounds.Min.X+size.X*float64(pi[0]+1)/float64(s.res[0]),
		s.bounds.Min.Y+size.Y*float64(pi[1]+1)/float64(s.res[1]),
		s.bounds.Min.Z+size.Z*float64(pi[2]+1)/float64(s.res[2]),
	)

	random := rand.New(rand.NewSource(seed))
	contrib := make([]float64, len(s.lights))
	for i := 0; i < spatialVoxelSamples; i++ {
		p := core.NewVec3(
			vmin.X+(vmax.X-vmin.X)*random.Float64(),
			vmin.Y+(vmax.Y-vmin.Y)*random.Float64(),
			vmin.Z+(vmax.Z-vmin.Z)*random.Float64(),
		)
		n := randomUnitVector(random)
		u := core.NewVec2(random.Float64(), random.Float64())
		for j, l := range s.lights {
			ls := l.Sample(p, n, u)
			if ls.PDF > 0 {
				contrib[j] += ls.Emission.Luminance() / ls.PDF
			}
		}
	}

	// Never give a light zero probability: its contribution might just not
	// have been found by the samples
	sum := 0.0
	for _, c := range contrib {
		sum += c
	}
	avg := sum / float64(max(len(contrib), 1))
	minContrib := 0.001 * avg
	if avg == 0 {
		minContrib = 1
	}
	for j := range contrib {
		contrib[j] = math.Max(contrib[j], minContrib)
	}
	return NewDistribution1D(contrib)
}

// randomUnitVector picks a uniformly distributed orientation for the
// shading normal, since a voxel sample point has no surface
func randomUnitVector(random *rand.Rand) core.Vec3 {
	z := 1 - 2*random.Float64()
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * random.Float64()
	return core.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}
