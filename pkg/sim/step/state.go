// Package step drives simulation time: the fixed-step clock with
// backlog-drop recovery, correlated control noise, and drag-based
// perturbation of the live scene.
package step

import (
	"github.com/physlab/physview.go/pkg/sim/engine"
)

// State is one live simulation: a model/data pair. It is replaced
// wholesale on scene switch, never partially mutated mid-identity.
type State struct {
	Name  string
	Model *engine.Model
	Data  *engine.Data
}

// Slot owns the single live State. Replace destroys the previous
// occupant; there is never more than one State alive.
type Slot struct {
	state *State
}

// Replace installs a new State, discarding any previous one.
func (s *Slot) Replace(name string, m *engine.Model, d *engine.Data) *State {
	s.state = &State{Name: name, Model: m, Data: d}
	return s.state
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.state = nil
}

// Current returns the live State, or nil when no scene is loaded.
func (s *Slot) Current() *State {
	return s.state
}
