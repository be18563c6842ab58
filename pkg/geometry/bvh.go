package geometry

import (
	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Shapes for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection
type BVH struct {
	Root   *BVHNode
	Center core.Vec3 // Finite scene center
	Radius float64   // Radius of the sphere bounding the scene
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 4

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}

	// Copy so partitioning never reorders the caller's slice
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	root := buildBVH(shapesCopy)
	center := root.BoundingBox.Center()
	return &BVH{
		Root:   root,
		Center: center,
		Radius: root.BoundingBox.Max.Subtract(center).Length(),
	}
}

// buildBVH recursively builds the tree with midpoint splits along the longest axis
func buildBVH(shapes []Shape) *BVHNode {
	boundingBox := shapes[0].BoundingBox()
	for _, s := range shapes[1:] {
		boundingBox = boundingBox.Union(s.BoundingBox())
	}

	leaf := &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	if len(shapes) <= leafThreshold {
		return leaf
	}

	axis := boundingBox.LongestAxis()
	minVal, maxVal := boundingBox.Min.Get(axis), boundingBox.Max.Get(axis)
	if maxVal <= minVal {
		return leaf
	}
	splitPos := (minVal + maxVal) * 0.5

	var left, right []Shape
	for _, s := range shapes {
		if s.BoundingBox().Center().Get(axis) < splitPos {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(left),
		Right:       buildBVH(right),
	}
}

// Hit finds the closest intersection and fills si with it
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.hitNode(bvh.Root, ray, tMin, tMax, si)
}

func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}

	hitAnything := false
	closestSoFar := tMax

	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if shape.Hit(ray, tMin, closestSoFar, si) {
				hitAnything = true
				closestSoFar = si.T
			}
		}
		return hitAnything
	}

	if node.Left != nil && bvh.hitNode(node.Left, ray, tMin, closestSoFar, si) {
		hitAnything = true
		closestSoFar = si.T
	}
	if node.Right != nil && bvh.hitNode(node.Right, ray, tMin, closestSoFar, si) {
		hitAnything = true
	}
	return hitAnything
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}
