package geometry

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	Corner   core.Vec3 // One corner of the quad
	U        core.Vec3 // First edge vector
	V        core.Vec3 // Second edge vector
	Normal   core.Vec3 // Unit normal (U × V)
	Material material.Material
	D        float64   // Plane equation constant: n·p = d
	W        core.Vec3 // Cached n / (n · (U × V)) for planar coordinates
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, mat material.Material) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()
	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: mat,
		D:        normal.Dot(corner),
		W:        normal.Multiply(1.0 / normal.Dot(cross)),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	denominator := ray.Direction.Dot(q.Normal)

	// Parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return false
	}

	si.T = t
	si.Point = hitPoint
	si.Material = q.Material
	si.SetFaceNormal(ray, q.Normal)
	return true
}

// BoundingBox returns the bounds of the four corners, padded on flat axes
func (q *Quad) BoundingBox() core.AABB {
	box := core.NewAABBFromPoints(
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	)
	const pad = 1e-4
	min, max := box.Min, box.Max
	if max.X-min.X < pad {
		min.X -= pad
		max.X += pad
	}
	if max.Y-min.Y < pad {
		min.Y -= pad
		max.Y += pad
	}
	if max.Z-min.Z < pad {
		min.Z -= pad
		max.Z += pad
	}
	return core.NewAABB(min, max)
}

// Area returns the surface area of the quad
func (q *Quad) Area() float64 {
	return q.U.Cross(q.V).Length()
}
