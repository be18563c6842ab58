package geometry

import (
	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// Shape interface for objects that can be hit by rays.
// Hit fills si only when it reports an intersection closer than tMax.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool
	BoundingBox() core.AABB
}
