package step

import (
	"github.com/physlab/physview.go/pkg/sim"
	"github.com/physlab/physview.go/pkg/sim/engine"
)

// Drag tuning
const (
	// dragForceGain scales the pointer offset into a force on the
	// dragged body while the simulation is running.
	dragForceGain = 250
	// pausedDragGain scales the pointer offset into a direct pose edit
	// while the simulation is paused.
	pausedDragGain = 0.3
)

// DragSession is one active pointer drag: the grabbed body, the world
// hit point recorded at pointer-down, and the current pointer point.
// At most one session is active at a time.
type DragSession struct {
	Body      int
	HitPoint  sim.Vec3
	Current   sim.Vec3
	Kinematic bool
}

// Perturbation converts pointer-drag gestures into forces while the
// clock runs, or direct pose edits while it is paused. The mode is
// governed solely by the clock's pause flag; the two never run in the
// same frame.
type Perturbation struct {
	session *DragSession
}

// Start opens a drag session on a body. The hit point comes from the
// caller's ray cast. Any previous session is replaced.
func (p *Perturbation) Start(st *State, body int, hit sim.Vec3) {
	p.session = &DragSession{
		Body:      body,
		HitPoint:  hit,
		Current:   hit,
		Kinematic: st.Model.BodyMocap(body) >= 0,
	}
}

// Move updates the current world point of the active session.
func (p *Perturbation) Move(point sim.Vec3) {
	if p.session != nil {
		p.session.Current = point
	}
}

// End destroys the active session.
func (p *Perturbation) End() {
	p.session = nil
}

// Active reports whether a drag session exists.
func (p *Perturbation) Active() bool {
	return p.session != nil
}

// Session returns the active session, or nil.
func (p *Perturbation) Session() *DragSession {
	return p.session
}

// applyRunning zeroes the full applied-force buffer and, with an active
// session, applies the drag force at the hit point. The buffer is
// cleared before every running step so a released drag leaves no
// residual pull on the body.
func (p *Perturbation) applyRunning(st *State, eng engine.Engine) {
	st.Data.ZeroAppliedForces()
	s := p.session
	if s == nil {
		return
	}
	mass := st.Model.BodyMass(s.Body)
	force := s.Current.Sub(s.HitPoint).Scale(mass * dragForceGain)
	eng.ApplyForceTorque(st.Model, st.Data, s.Body, force, sim.Vec3{}, s.HitPoint)
}

// applyPaused edits the dragged body's pose directly: mocap bodies move
// by a damped offset, solver bodies move through their kinematic root's
// free-joint coordinates. Bodies whose root has no free joint stay put.
// Reports whether a forward recompute is needed.
func (p *Perturbation) applyPaused(st *State) bool {
	s := p.session
	if s == nil {
		return false
	}
	offset := s.Current.Sub(s.HitPoint).Scale(pausedDragGain)
	if s.Kinematic {
		st.Data.ShiftMocapPos(st.Model.BodyMocap(s.Body), offset)
		return true
	}
	adr, ok := st.Model.RootJointQPosAdr(s.Body)
	if !ok {
		return false
	}
	st.Data.ShiftQPos3(adr, offset)
	return true
}
