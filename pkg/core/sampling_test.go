package core

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestRandomSamplerRange(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	for i := 0; i < 1000; i++ {
		u := sampler.Get1D()
		if u < 0 || u >= 1 {
			t.Fatalf("Get1D out of range: %f", u)
		}
		s := sampler.Get2D()
		if s.X < 0 || s.X >= 1 || s.Y < 0 || s.Y >= 1 {
			t.Fatalf("Get2D out of range: %v", s)
		}
	}
}

func TestRandomSamplerArrays(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(1)))
	sampler.Request2DArray(4)
	sampler.Request2DArray(2)

	if got := sampler.Requested2DArrays(); !reflect.DeepEqual(got, []int{4, 2}) {
		t.Fatalf("Requested2DArrays: got %v", got)
	}
	if sampler.RoundCount(7) != 7 {
		t.Errorf("RoundCount should not pad for random sampling")
	}

	sampler.StartPixelSample()
	if arr := sampler.Get2DArray(4); len(arr) != 4 {
		t.Errorf("Expected first array of 4 samples, got %d", len(arr))
	}
	if arr := sampler.Get2DArray(3); arr != nil {
		t.Errorf("Expected nil for mismatched array size, got %v", arr)
	}

	clone := sampler.Clone(7)
	if !reflect.DeepEqual(clone.Requested2DArrays(), sampler.Requested2DArrays()) {
		t.Errorf("Clone should keep reservations, got %v", clone.Requested2DArrays())
	}
}
