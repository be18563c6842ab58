package core

import (
	"math/rand"
)

// Sampler provides sample values for rendering algorithms.
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2

	// Request2DArray reserves an array of n 2D samples per pixel sample.
	// Must be called before rendering starts.
	Request2DArray(n int)

	// RoundCount returns the array size the sampler would actually use for
	// a request of n samples.
	RoundCount(n int) int
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random    *rand.Rand
	arrays2D  []int
	array2D   [][]Vec2
	arrayNext int
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Request2DArray records a 2D sample array reservation
func (r *RandomSampler) Request2DArray(n int) {
	r.arrays2D = append(r.arrays2D, n)
	r.array2D = append(r.array2D, make([]Vec2, n))
}

// RoundCount returns n unchanged: independent random samples need no padding
func (r *RandomSampler) RoundCount(n int) int {
	return n
}

// Requested2DArrays returns the sizes of all reserved 2D arrays in request order
func (r *RandomSampler) Requested2DArrays() []int {
	return r.arrays2D
}

// StartPixelSample refills the reserved arrays for a new pixel sample
func (r *RandomSampler) StartPixelSample() {
	for _, arr := range r.array2D {
		for i := range arr {
			arr[i] = r.Get2D()
		}
	}
	r.arrayNext = 0
}

// Get2DArray returns the next reserved array of n samples, or nil when the
// next reservation does not match n
func (r *RandomSampler) Get2DArray(n int) []Vec2 {
	if r.arrayNext >= len(r.array2D) || len(r.array2D[r.arrayNext]) != n {
		return nil
	}
	arr := r.array2D[r.arrayNext]
	r.arrayNext++
	return arr
}

// Clone returns a sampler with the same reservations and an independent generator
func (r *RandomSampler) Clone(seed int64) *RandomSampler {
	clone := NewRandomSampler(rand.New(rand.NewSource(seed)))
	for _, n := range r.arrays2D {
		clone.Request2DArray(n)
	}
	return clone
}
