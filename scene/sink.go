package scene

import (
	"github.com/lixenwraith/orrery/vmath"
)

// TransformSink receives body transforms each tick, implemented by the rendering host
type TransformSink interface {
	SetTransform(h Handle, position vmath.Vec3F, rotation float64)
}

// PositionSource reports the rendered position of a body
type PositionSource interface {
	GetPosition(h Handle) (vmath.Vec3F, bool)
}

// Transform is the state a scene graph node holds for a body
type Transform struct {
	Position vmath.Vec3F
	Rotation float64
}

// Graph is an in-memory scene graph implementing both TransformSink and PositionSource
// Used by headless hosts and tests; renderers that keep their own graph implement the interfaces directly
type Graph struct {
	nodes map[Handle]Transform
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{nodes: make(map[Handle]Transform)}
}

func (g *Graph) SetTransform(h Handle, position vmath.Vec3F, rotation float64) {
	g.nodes[h] = Transform{Position: position, Rotation: rotation}
}

func (g *Graph) GetPosition(h Handle) (vmath.Vec3F, bool) {
	t, ok := g.nodes[h]
	return t.Position, ok
}

// Transform returns the full node state for h
func (g *Graph) Transform(h Handle) (Transform, bool) {
	t, ok := g.nodes[h]
	return t, ok
}
