package viewer

import (
	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/assets"
	"github.com/physlab/physview.go/pkg/sim"
)

// LoadRobotMsg loads a predefined robot by catalog name.
type LoadRobotMsg struct {
	Name  string
	Reply chan error
}

// NewMessage implements Message.
func (m *LoadRobotMsg) NewMessage() fx.Message { return &LoadRobotMsg{} }

// LoadUploadMsg loads a robot from an uploaded file set.
type LoadUploadMsg struct {
	Files []assets.UploadFile
	Reply chan error
}

// NewMessage implements Message.
func (m *LoadUploadMsg) NewMessage() fx.Message { return &LoadUploadMsg{} }

// LoadEnvironmentMsg loads an environment by catalog name.
type LoadEnvironmentMsg struct {
	Name  string
	Reply chan error
}

// NewMessage implements Message.
func (m *LoadEnvironmentMsg) NewMessage() fx.Message { return &LoadEnvironmentMsg{} }

// UnloadMsg tears the current scene down.
type UnloadMsg struct {
	Reply chan error
}

// NewMessage implements Message.
func (m *UnloadMsg) NewMessage() fx.Message { return &UnloadMsg{} }

// PauseMsg pauses or resumes the simulation clock.
type PauseMsg struct {
	Paused bool
}

// NewMessage implements Message.
func (m *PauseMsg) NewMessage() fx.Message { return &PauseMsg{} }

// NoiseMsg reconfigures control noise injection.
type NoiseMsg struct {
	Std  float64
	Rate float64
}

// NewMessage implements Message.
func (m *NoiseMsg) NewMessage() fx.Message { return &NoiseMsg{} }

// DragStartMsg opens a drag session on a body.
type DragStartMsg struct {
	Body int
	Hit  sim.Vec3
}

// NewMessage implements Message.
func (m *DragStartMsg) NewMessage() fx.Message { return &DragStartMsg{} }

// DragMoveMsg updates the pointer point of the active drag.
type DragMoveMsg struct {
	Point sim.Vec3
}

// NewMessage implements Message.
func (m *DragMoveMsg) NewMessage() fx.Message { return &DragMoveMsg{} }

// DragEndMsg closes the active drag session.
type DragEndMsg struct {
}

// NewMessage implements Message.
func (m *DragEndMsg) NewMessage() fx.Message { return &DragEndMsg{} }

// Status is a snapshot of the viewer state.
type Status struct {
	Scene    string  `json:"scene,omitempty"`
	Paused   bool    `json:"paused"`
	SimTime  float64 `json:"sim_time"`
	Dragging bool    `json:"dragging"`
}

// StatusQueryMsg queries the viewer state.
type StatusQueryMsg struct {
	Reply chan Status
}

// NewMessage implements Message.
func (m *StatusQueryMsg) NewMessage() fx.Message { return &StatusQueryMsg{} }

// reply delivers an error result without blocking the frame loop.
func reply(ch chan error, err error) {
	if ch == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}
