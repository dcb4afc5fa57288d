package engine

import (
	"github.com/physlab/physview.go/pkg/sim"
)

// Data is the mutable half of a simulation: positions, velocities,
// controls, applied forces and derived world transforms. Exactly one
// Data is live per scene; it is replaced wholesale on scene switch.
type Data struct {
	// Time is the accumulated simulation time in seconds.
	Time float64

	qpos        []float64
	qvel        []float64
	ctrl        []float64
	qfrcApplied []float64

	xpos     []float64 // 3*nbody world positions
	xquat    []float64 // 4*nbody world orientations
	mocapPos []float64 // 3*nmocap externally driven positions

	lightPos []float64 // 3*nlight world positions
	lightDir []float64 // 3*nlight world directions
}

// QPos exposes the raw position vector for solver implementations.
func (d *Data) QPos() []float64 { return d.qpos }

// QVel exposes the raw velocity vector for solver implementations.
func (d *Data) QVel() []float64 { return d.qvel }

// Ctrl exposes the actuator control vector.
func (d *Data) Ctrl() []float64 { return d.ctrl }

// CtrlValue returns the control value of actuator i.
func (d *Data) CtrlValue(i int) float64 { return d.ctrl[i] }

// SetCtrl writes the control value of actuator i.
func (d *Data) SetCtrl(i int, v float64) { d.ctrl[i] = v }

// QFrcApplied exposes the generalized applied-force buffer.
func (d *Data) QFrcApplied() []float64 { return d.qfrcApplied }

// ZeroAppliedForces clears the full applied-force buffer.
func (d *Data) ZeroAppliedForces() {
	for i := range d.qfrcApplied {
		d.qfrcApplied[i] = 0
	}
}

// ShiftQPos3 adds an offset to three consecutive position coordinates
// starting at adr. Used for direct pose edits while paused.
func (d *Data) ShiftQPos3(adr int, offset sim.Vec3) {
	d.qpos[adr] += offset.X
	d.qpos[adr+1] += offset.Y
	d.qpos[adr+2] += offset.Z
}

// BodyPos returns the world position of body i.
func (d *Data) BodyPos(i int) sim.Vec3 { return vec3At(d.xpos, i) }

// BodyQuat returns the world orientation of body i.
func (d *Data) BodyQuat(i int) sim.Quat { return quatAt(d.xquat, i) }

// SetBodyPose writes the world transform of body i. Reserved for
// Engine implementations.
func (d *Data) SetBodyPose(i int, pos sim.Vec3, quat sim.Quat) {
	setVec3At(d.xpos, i, pos)
	setQuatAt(d.xquat, i, quat)
}

// MocapPos returns the position of mocap slot i.
func (d *Data) MocapPos(i int) sim.Vec3 { return vec3At(d.mocapPos, i) }

// SetMocapPos writes the position of mocap slot i.
func (d *Data) SetMocapPos(i int, v sim.Vec3) { setVec3At(d.mocapPos, i, v) }

// ShiftMocapPos adds an offset to the position of mocap slot i.
func (d *Data) ShiftMocapPos(i int, offset sim.Vec3) {
	v := vec3At(d.mocapPos, i).Add(offset)
	setVec3At(d.mocapPos, i, v)
}

// LightPos returns the world position of light i.
func (d *Data) LightPos(i int) sim.Vec3 { return vec3At(d.lightPos, i) }

// LightDir returns the world direction of light i.
func (d *Data) LightDir(i int) sim.Vec3 { return vec3At(d.lightDir, i) }

// SetLightPose writes the world pose of light i. Reserved for Engine
// implementations.
func (d *Data) SetLightPose(i int, pos, dir sim.Vec3) {
	setVec3At(d.lightPos, i, pos)
	setVec3At(d.lightDir, i, dir)
}
