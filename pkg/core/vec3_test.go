package core

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	if got := a.Add(b); got != NewVec3(5, 7, 9) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Subtract(a); got != NewVec3(3, 3, 3) {
		t.Errorf("Subtract: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: got %f, expected 32", got)
	}
	if got := NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)); got != NewVec3(0, 0, 1) {
		t.Errorf("Cross: got %v", got)
	}
	if got := a.Negate(); got != NewVec3(-1, -2, -3) {
		t.Errorf("Negate: got %v", got)
	}
	if got := NewVec3(3, 0, 4).Length(); got != 5 {
		t.Errorf("Length: got %f, expected 5", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize of zero vector should stay zero, got %v", got)
	}
}

func TestVec3ClampNonNegative(t *testing.T) {
	v := NewVec3(-1, 0.5, math.NaN()).ClampNonNegative()
	if v != NewVec3(0, 0.5, 0) {
		t.Errorf("Expected negatives and NaN clamped to zero, got %v", v)
	}
}

func TestVec3GetAndFloat32(t *testing.T) {
	v := NewVec3(0.2, 0.4, 0.6)
	for axis, expected := range []float64{0.2, 0.4, 0.6} {
		if v.Get(axis) != expected {
			t.Errorf("Get(%d): got %f, expected %f", axis, v.Get(axis), expected)
		}
	}
	f := v.Float32()
	if f != [3]float32{0.2, 0.4, 0.6} {
		t.Errorf("Float32: got %v", f)
	}
}

func TestSpawnRayOffsetsAlongDirectionSide(t *testing.T) {
	p := NewVec3(0, 0, 0)
	n := NewVec3(0, 1, 0)

	up := SpawnRay(p, n, NewVec3(0, 1, 0))
	if up.Origin.Y <= 0 {
		t.Errorf("Expected origin offset above surface, got %v", up.Origin)
	}

	down := SpawnRay(p, n, NewVec3(0, -1, 0))
	if down.Origin.Y >= 0 {
		t.Errorf("Expected origin offset below surface, got %v", down.Origin)
	}
	if down.Direction != NewVec3(0, -1, 0) {
		t.Errorf("Direction must be unchanged, got %v", down.Direction)
	}
}
