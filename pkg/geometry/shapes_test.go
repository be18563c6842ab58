package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

func vecClose(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestSphereHit(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	tests := []struct {
		name           string
		origin         core.Vec3
		direction      core.Vec3
		hit            bool
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{"miss", core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0), false, 0, false, core.Vec3{}},
		{"front face", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), true, 1, true, core.NewVec3(0, 0, 1)},
		{"back face", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), true, 1, false, core.NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var si material.SurfaceInteraction
			isHit := sphere.Hit(core.NewRay(tt.origin, tt.direction), 0.001, 1000, &si)
			if isHit != tt.hit {
				t.Fatalf("hit = %v, want %v", isHit, tt.hit)
			}
			if !tt.hit {
				return
			}
			if math.Abs(si.T-tt.expectedT) > 1e-9 {
				t.Errorf("t = %f, want %f", si.T, tt.expectedT)
			}
			if si.FrontFace != tt.expectedFront {
				t.Errorf("FrontFace = %v, want %v", si.FrontFace, tt.expectedFront)
			}
			if !vecClose(si.Normal, tt.expectedNormal, 1e-9) {
				t.Errorf("Normal = %v, want %v", si.Normal, tt.expectedNormal)
			}
			if si.Material != sphere.Material {
				t.Errorf("material not propagated")
			}
		})
	}
}

func TestQuadHit(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), nil)

	tests := []struct {
		name   string
		origin core.Vec3
		hit    bool
	}{
		{"center", core.NewVec3(0.5, 1, 0.5), true},
		{"outside x", core.NewVec3(1.5, 1, 0.5), false},
		{"outside z", core.NewVec3(0.5, 1, -0.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var si material.SurfaceInteraction
			got := quad.Hit(core.NewRay(tt.origin, core.NewVec3(0, -1, 0)), 0.001, 1000, &si)
			if got != tt.hit {
				t.Fatalf("hit = %v, want %v", got, tt.hit)
			}
			if got && !vecClose(si.Point, core.NewVec3(tt.origin.X, 0, tt.origin.Z), 1e-9) {
				t.Errorf("Point = %v", si.Point)
			}
		})
	}

	box := quad.BoundingBox()
	if box.Max.Y-box.Min.Y <= 0 {
		t.Errorf("flat quad bounds should be padded, got %v", box)
	}
}

func TestBoxFacesPointOutward(t *testing.T) {
	box := NewAxisAlignedBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), nil)

	dirs := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
	}
	for _, d := range dirs {
		var si material.SurfaceInteraction
		ray := core.NewRay(d.Multiply(5), d.Negate())
		if !box.Hit(ray, 0.001, 1000, &si) {
			t.Fatalf("ray from %v missed the box", d)
		}
		if !si.FrontFace {
			t.Errorf("ray from %v hit a back face", d)
		}
		if math.Abs(si.T-4) > 1e-9 {
			t.Errorf("ray from %v: t = %f, want 4", d, si.T)
		}
	}
}

func TestRotatedBoxBounds(t *testing.T) {
	box := NewBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), math.Pi/4, nil)
	bb := box.BoundingBox()
	want := math.Sqrt2
	if math.Abs(bb.Max.X-want) > 1e-9 || math.Abs(bb.Max.Y-1) > 1e-9 {
		t.Errorf("bounds = %v, want max x %f", bb, want)
	}
}

func TestBVHFindsClosestHit(t *testing.T) {
	var shapes []Shape
	for i := 0; i < 20; i++ {
		shapes = append(shapes, NewSphere(core.NewVec3(float64(i)*3, 0, 0), 1, nil))
	}
	bvh := NewBVH(shapes)

	tests := []struct {
		name      string
		ray       core.Ray
		hit       bool
		expectedT float64
	}{
		{"along row", core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0)), true, 4},
		{"into sphere 7", core.NewRay(core.NewVec3(21, 5, 0), core.NewVec3(0, -1, 0)), true, 4},
		{"above row", core.NewRay(core.NewVec3(-5, 5, 0), core.NewVec3(1, 0, 0)), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var si material.SurfaceInteraction
			got := bvh.Hit(tt.ray, 0.001, math.Inf(1), &si)
			if got != tt.hit {
				t.Fatalf("hit = %v, want %v", got, tt.hit)
			}
			if got && math.Abs(si.T-tt.expectedT) > 1e-9 {
				t.Errorf("t = %f, want %f", si.T, tt.expectedT)
			}
		})
	}

	bb := bvh.BoundingBox()
	if bb.Min.X != -1 || bb.Max.X != 58 {
		t.Errorf("bounds = %v", bb)
	}
}

func TestEmptyBVH(t *testing.T) {
	bvh := NewBVH(nil)
	var si material.SurfaceInteraction
	if bvh.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 0, 1, &si) {
		t.Errorf("empty BVH should never hit")
	}
}
