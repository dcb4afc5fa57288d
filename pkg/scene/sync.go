package scene

import (
	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/sim/engine"
	"github.com/physlab/physview.go/pkg/sim/step"
)

// Sync keeps the render graph aligned with the live simulation. A new
// graph is built on scene load, torn down on unload, and refreshed from
// the data buffers once per frame after stepping.
type Sync struct {
	slot  *step.Slot
	graph *Graph
}

// NewSync creates a sync reading the live state from slot.
func NewSync(slot *step.Slot) *Sync {
	return &Sync{slot: slot}
}

// SceneLoaded builds the graph for the new scene.
func (s *Sync) SceneLoaded(name string, m *engine.Model, d *engine.Data) {
	s.graph = NewGraph(name, m)
}

// SceneUnloaded drops the graph.
func (s *Sync) SceneUnloaded(name string) {
	s.graph = nil
}

// Graph returns the current render graph, or nil when no scene is
// loaded.
func (s *Sync) Graph() *Graph {
	return s.graph
}

// AddToLoop implements LoopAdder.
func (s *Sync) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PhSync, fx.ControlFunc(s.Update))
}

// Update copies body and light poses from the data buffers into the
// graph and refreshes world transforms.
func (s *Sync) Update(fc fx.FrameContext) error {
	st := s.slot.Current()
	if st == nil || s.graph == nil {
		return nil
	}
	d := st.Data
	for i := range s.graph.Nodes {
		n := &s.graph.Nodes[i]
		n.Pos = d.BodyPos(n.Body)
		n.Quat = d.BodyQuat(n.Body)
		n.UpdateWorldMatrix()
	}
	for i := range s.graph.Lights {
		l := &s.graph.Lights[i]
		l.Pos = d.LightPos(l.Light)
		l.Target = l.Pos.Add(d.LightDir(l.Light))
	}
	return nil
}
