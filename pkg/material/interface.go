package material

// Interface marks the boundary of a participating medium. It has no BSDF, so
// paths pass straight through it.
type Interface struct{}

// NewInterface creates a new medium boundary material
func NewInterface() *Interface {
	return &Interface{}
}

func (*Interface) ComputeScatteringFunctions(si *SurfaceInteraction) {}
