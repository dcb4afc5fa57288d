// Package engine defines the surface of the physics engine collaborator:
// the model/data buffer pair behind named accessors, the solver
// primitives, and the engine's private virtual filesystem.
package engine

import (
	"github.com/physlab/physview.go/pkg/sim"
)

// Engine exposes the solver primitives consumed by the viewer. The
// viewer never steps or edits buffers behind the engine's back; it goes
// through these three entry points.
type Engine interface {
	// Step advances the simulation by exactly one model timestep.
	Step(m *Model, d *Data)
	// Forward recomputes derived quantities (world transforms) from the
	// current positions without integrating.
	Forward(m *Model, d *Data)
	// ApplyForceTorque accumulates an external force and torque, applied
	// at a world point on the given body, into the generalized
	// applied-force buffer consumed by the next Step.
	ApplyForceTorque(m *Model, d *Data, body int, force, torque, point sim.Vec3)
}

// Loader resolves a staged scene from the virtual filesystem into a
// model/data pair.
type Loader interface {
	LoadScene(fsys *FileSystem, name string) (*Model, *Data, error)
}
