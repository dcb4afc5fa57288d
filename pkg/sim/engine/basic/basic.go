// Package basic is a reference implementation of the engine primitives:
// semi-implicit integration of actuator controls and applied generalized
// forces, with rigid attachment kinematics. It stands in for a full
// solver so scenes can be stepped, dragged and visualized end to end.
package basic

import (
	"math"

	"github.com/physlab/physview.go/pkg/sim"
	"github.com/physlab/physview.go/pkg/sim/engine"
)

// Engine implements engine.Engine.
type Engine struct {
	// Damping is the per-step velocity retention factor.
	Damping float64
}

// New creates the engine with default damping.
func New() *Engine {
	return &Engine{Damping: 0.995}
}

// LoadScene implements engine.Loader.
func (e *Engine) LoadScene(fsys *engine.FileSystem, name string) (*engine.Model, *engine.Data, error) {
	return engine.LoadScene(fsys, name)
}

// Step implements engine.Engine. Controls act as generalized forces on
// their joint's degrees of freedom; applied forces accumulate on top.
func (e *Engine) Step(m *engine.Model, d *engine.Data) {
	dt := m.Timestep()
	qvel, qpos := d.QVel(), d.QPos()
	qfrc := d.QFrcApplied()

	// actuator controls add to the generalized force of the driven dof
	force := make([]float64, m.NV())
	copy(force, qfrc)
	for a := 0; a < m.Actuators(); a++ {
		jnt := m.ActuatorJoint(a)
		if m.JointKind(jnt) == engine.JointFree {
			continue
		}
		force[m.JointDofAdr(jnt)] += d.CtrlValue(a)
	}

	for j := 0; j < m.Joints(); j++ {
		body := m.JointBody(j)
		mass := m.BodyMass(body)
		dof := m.JointDofAdr(j)
		adr := m.JointQPosAdr(j)
		switch m.JointKind(j) {
		case engine.JointFree:
			for k := 0; k < 3; k++ {
				qvel[dof+k] = e.Damping*qvel[dof+k] + dt*force[dof+k]/mass
				qpos[adr+k] += dt * qvel[dof+k]
			}
			// angular velocity integrates the orientation quaternion
			w := sim.Vec3{X: qvel[dof+3], Y: qvel[dof+4], Z: qvel[dof+5]}
			for k := 0; k < 3; k++ {
				qvel[dof+3+k] = e.Damping*qvel[dof+3+k] + dt*force[dof+3+k]/mass
			}
			if n := w.Norm(); n > 1e-12 {
				axis := w.Scale(1 / n)
				half := n * dt / 2
				dq := sim.Quat{W: math.Cos(half), X: axis.X * math.Sin(half), Y: axis.Y * math.Sin(half), Z: axis.Z * math.Sin(half)}
				q := sim.Quat{W: qpos[adr+3], X: qpos[adr+4], Y: qpos[adr+5], Z: qpos[adr+6]}
				q = dq.Mul(q).Normalize()
				qpos[adr+3], qpos[adr+4], qpos[adr+5], qpos[adr+6] = q.W, q.X, q.Y, q.Z
			}
		default:
			qvel[dof] = e.Damping*qvel[dof] + dt*force[dof]/mass
			qpos[adr] += dt * qvel[dof]
		}
	}

	d.Time += dt
	e.Forward(m, d)
}

// Forward implements engine.Engine. It recomputes world transforms from
// positions without integrating anything.
func (e *Engine) Forward(m *engine.Model, d *engine.Data) {
	type pose struct {
		pos  sim.Vec3
		quat sim.Quat
	}
	poses := make([]pose, m.Bodies())
	done := make([]bool, m.Bodies())

	var resolve func(i int) pose
	resolve = func(i int) pose {
		if done[i] {
			return poses[i]
		}
		var p pose
		if slot := m.BodyMocap(i); slot >= 0 {
			p = pose{pos: d.MocapPos(slot), quat: m.BodyInitialQuat(i)}
		} else {
			if parent := m.BodyParent(i); parent >= 0 {
				pp := resolve(parent)
				p.pos = pp.pos.Add(pp.quat.Rotate(m.BodyInitialPos(i)))
				p.quat = pp.quat.Mul(m.BodyInitialQuat(i))
			} else {
				p = pose{pos: m.BodyInitialPos(i), quat: m.BodyInitialQuat(i)}
			}
			p.pos, p.quat = applyJoint(m, d, i, p.pos, p.quat)
		}
		poses[i] = p
		done[i] = true
		return p
	}

	for i := 0; i < m.Bodies(); i++ {
		p := resolve(i)
		d.SetBodyPose(i, p.pos, p.quat)
	}
	for l := 0; l < m.Lights(); l++ {
		d.SetLightPose(l, m.LightInitialPos(l), m.LightInitialDir(l))
	}
}

func applyJoint(m *engine.Model, d *engine.Data, body int, pos sim.Vec3, quat sim.Quat) (sim.Vec3, sim.Quat) {
	jnt := m.BodyJoint(body)
	if jnt < 0 {
		return pos, quat
	}
	qpos := d.QPos()
	adr := m.JointQPosAdr(jnt)
	switch m.JointKind(jnt) {
	case engine.JointFree:
		pos = sim.Vec3{X: qpos[adr], Y: qpos[adr+1], Z: qpos[adr+2]}
		quat = sim.Quat{W: qpos[adr+3], X: qpos[adr+4], Y: qpos[adr+5], Z: qpos[adr+6]}.Normalize()
	case engine.JointHinge:
		half := qpos[adr] / 2
		quat = quat.Mul(sim.Quat{W: math.Cos(half), Z: math.Sin(half)})
	case engine.JointSlide:
		pos = pos.Add(quat.Rotate(sim.Vec3{Z: qpos[adr]}))
	}
	return pos, quat
}

// ApplyForceTorque implements engine.Engine. The force and torque are
// mapped onto the degrees of freedom of the body's kinematic root; a
// body without a free root silently absorbs the force.
func (e *Engine) ApplyForceTorque(m *engine.Model, d *engine.Data, body int, force, torque, point sim.Vec3) {
	root := m.BodyRoot(body)
	jnt := m.BodyJoint(root)
	if jnt < 0 || m.JointKind(jnt) != engine.JointFree {
		return
	}
	qfrc := d.QFrcApplied()
	dof := m.JointDofAdr(jnt)
	qfrc[dof] += force.X
	qfrc[dof+1] += force.Y
	qfrc[dof+2] += force.Z
	tau := torque.Add(point.Sub(d.BodyPos(root)).Cross(force))
	qfrc[dof+3] += tau.X
	qfrc[dof+4] += tau.Y
	qfrc[dof+5] += tau.Z
}
