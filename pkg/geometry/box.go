package geometry

import (
	"math"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// Box represents a rectangular box made up of 6 quads, optionally rotated about Y
type Box struct {
	Center    core.Vec3 // Center point of the box
	Size      core.Vec3 // Half-extents along each axis
	RotationY float64   // Rotation about the Y axis in radians
	Material  material.Material
	faces     [6]*Quad
	bbox      core.AABB
}

// NewBox creates a new box. Size holds half-extents, so (1,1,1) is a 2x2x2 box.
func NewBox(center, size core.Vec3, rotationY float64, mat material.Material) *Box {
	box := &Box{
		Center:    center,
		Size:      size,
		RotationY: rotationY,
		Material:  mat,
	}
	box.generateFaces()
	return box
}

// NewAxisAlignedBox creates a new axis-aligned box
func NewAxisAlignedBox(center, size core.Vec3, mat material.Material) *Box {
	return NewBox(center, size, 0, mat)
}

func (b *Box) generateFaces() {
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}

	sin, cos := math.Sincos(b.RotationY)
	for i, c := range corners {
		scaled := c.MultiplyVec(b.Size)
		rotated := core.NewVec3(
			cos*scaled.X+sin*scaled.Z,
			scaled.Y,
			-sin*scaled.X+cos*scaled.Z,
		)
		corners[i] = rotated.Add(b.Center)
	}

	// Each face winds so U × V points out of the box
	faces := [6][3]int{
		{4, 5, 7}, // front (Z+)
		{1, 0, 2}, // back (Z-)
		{5, 1, 6}, // right (X+)
		{0, 4, 3}, // left (X-)
		{3, 7, 2}, // top (Y+)
		{4, 0, 5}, // bottom (Y-)
	}
	for i, f := range faces {
		b.faces[i] = NewQuad(
			corners[f[0]],
			corners[f[1]].Subtract(corners[f[0]]),
			corners[f[2]].Subtract(corners[f[0]]),
			b.Material,
		)
	}

	b.bbox = core.NewAABBFromPoints(corners[:]...)
}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	hitAnything := false
	closest := tMax
	for _, face := range b.faces {
		if face.Hit(ray, tMin, closest, si) {
			hitAnything = true
			closest = si.T
		}
	}
	return hitAnything
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}
