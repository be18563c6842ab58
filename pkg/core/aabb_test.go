package core

import "testing"

func TestAABBCorners(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 2, 3))

	expected := []Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 2, 0}, {1, 2, 0},
		{0, 0, 3}, {1, 0, 3}, {0, 2, 3}, {1, 2, 3},
	}
	for i, want := range expected {
		if got := box.Corner(i); got != want {
			t.Errorf("Corner(%d): got %v, expected %v", i, got, want)
		}
	}
}

func TestAABBFromPointsAndUnion(t *testing.T) {
	box := NewAABBFromPoints(NewVec3(1, -1, 0), NewVec3(-2, 3, 1))
	if box.Min != NewVec3(-2, -1, 0) || box.Max != NewVec3(1, 3, 1) {
		t.Errorf("Unexpected bounds %v", box)
	}

	union := box.Union(NewAABB(NewVec3(0, 0, -5), NewVec3(0, 0, 0)))
	if union.Min.Z != -5 || union.Max.Y != 3 {
		t.Errorf("Unexpected union %v", union)
	}
	if !union.IsValid() {
		t.Error("Union of valid boxes should be valid")
	}
}

func TestAABBHit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name string
		ray  Ray
		hit  bool
	}{
		{"through center", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), true},
		{"parallel outside", NewRay(NewVec3(2, 0, -5), NewVec3(0, 0, 1)), false},
		{"pointing away", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, -1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.ray, 0.001, 1000); got != tt.hit {
				t.Errorf("Hit: got %v, expected %v", got, tt.hit)
			}
		})
	}
}
