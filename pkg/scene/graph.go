// Package scene maintains the render-side counterpart of the loaded
// model: one node per body, one light node per light, with world
// transforms refreshed from simulation results every frame.
package scene

import (
	"github.com/physlab/physview.go/pkg/sim"
	"github.com/physlab/physview.go/pkg/sim/engine"
)

// Matrix is a row-major 4x4 transform.
type Matrix [16]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Node is the render counterpart of one body.
type Node struct {
	Name string
	Body int

	Pos   sim.Vec3
	Quat  sim.Quat
	World Matrix
}

// UpdateWorldMatrix recomposes the world transform from Pos and Quat.
func (n *Node) UpdateWorldMatrix() {
	q := n.Quat.Normalize()
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	n.World = Matrix{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy), n.Pos.X,
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx), n.Pos.Y,
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy), n.Pos.Z,
		0, 0, 0, 1,
	}
}

// LightNode is the render counterpart of one light.
type LightNode struct {
	Light  int
	Pos    sim.Vec3
	Target sim.Vec3
}

// Graph is the full render graph for one loaded model.
type Graph struct {
	Scene  string
	Nodes  []Node
	Lights []LightNode

	byName map[string]int
}

// NewGraph builds a graph for a model, with nodes placed at the model's
// initial poses.
func NewGraph(scene string, m *engine.Model) *Graph {
	g := &Graph{
		Scene:  scene,
		Nodes:  make([]Node, m.Bodies()),
		Lights: make([]LightNode, m.Lights()),
		byName: make(map[string]int, m.Bodies()),
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.Name = m.BodyName(i)
		n.Body = i
		n.Pos = m.BodyInitialPos(i)
		n.Quat = m.BodyInitialQuat(i)
		n.UpdateWorldMatrix()
		g.byName[n.Name] = i
	}
	for i := range g.Lights {
		l := &g.Lights[i]
		l.Light = i
		l.Pos = m.LightInitialPos(i)
		l.Target = l.Pos.Add(m.LightInitialDir(i))
	}
	return g
}

// Node looks up a node by body name.
func (g *Graph) Node(name string) *Node {
	if i, ok := g.byName[name]; ok {
		return &g.Nodes[i]
	}
	return nil
}
