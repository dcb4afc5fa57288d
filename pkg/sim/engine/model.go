package engine

import (
	"github.com/physlab/physview.go/pkg/sim"
)

// JointType enumerates supported joint kinds.
type JointType int

// Joint kinds
const (
	// JointFree has 7 position coordinates (3 translation + quaternion)
	// and 6 velocity coordinates.
	JointFree JointType = iota
	// JointHinge has a single angular coordinate.
	JointHinge
	// JointSlide has a single linear coordinate.
	JointSlide
)

// qpos/qvel widths per joint type.
func (t JointType) numPos() int {
	if t == JointFree {
		return 7
	}
	return 1
}

func (t JointType) numVel() int {
	if t == JointFree {
		return 6
	}
	return 1
}

// Model is the immutable description of a loaded scene. All buffers are
// flat, offset-addressed arrays as the engine lays them out; everything
// is accessed through named accessors so the indirection arithmetic
// lives in exactly one place.
type Model struct {
	name     string
	timestep float64

	nq, nv int

	// packed null-terminated name table with per-entity offsets
	names       []byte
	bodyNameAdr []int32
	actNameAdr  []int32

	bodyParent []int32
	bodyRoot   []int32
	bodyMocap  []int32 // mocap slot, -1 if solver-integrated
	bodyJnt    []int32 // first joint of the body, -1 if none
	bodyMass   []float64
	bodyPos    []float64 // 3*nbody initial positions
	bodyQuat   []float64 // 4*nbody initial orientations

	jntType    []JointType
	jntBody    []int32
	jntQPosAdr []int32
	jntDofAdr  []int32

	actJnt     []int32
	actLimited []bool
	actRange   []float64 // 2*nactuator

	lightPos []float64 // 3*nlight
	lightDir []float64 // 3*nlight

	nmocap int
}

// Name returns the scene name the model was loaded under.
func (m *Model) Name() string { return m.name }

// Timestep returns the fixed integration timestep in seconds.
func (m *Model) Timestep() float64 { return m.timestep }

// Bodies returns the number of bodies.
func (m *Model) Bodies() int { return len(m.bodyMass) }

// Joints returns the number of joints.
func (m *Model) Joints() int { return len(m.jntType) }

// Actuators returns the number of actuators.
func (m *Model) Actuators() int { return len(m.actNameAdr) }

// Lights returns the number of lights.
func (m *Model) Lights() int { return len(m.lightPos) / 3 }

// Mocaps returns the number of externally driven bodies.
func (m *Model) Mocaps() int { return m.nmocap }

// NQ returns the size of the position vector.
func (m *Model) NQ() int { return m.nq }

// NV returns the size of the velocity and applied-force vectors.
func (m *Model) NV() int { return m.nv }

// nameAt decodes one null-terminated entry of the packed name table.
func (m *Model) nameAt(adr int32) string {
	end := int(adr)
	for end < len(m.names) && m.names[end] != 0 {
		end++
	}
	return string(m.names[adr:end])
}

// BodyName returns the name of body i.
func (m *Model) BodyName(i int) string { return m.nameAt(m.bodyNameAdr[i]) }

// ActuatorName returns the name of actuator i.
func (m *Model) ActuatorName(i int) string { return m.nameAt(m.actNameAdr[i]) }

// ActuatorIndex resolves an actuator name to its index by scanning the
// packed name table at the per-actuator offsets.
func (m *Model) ActuatorIndex(name string) (int, bool) {
	for i := range m.actNameAdr {
		if m.nameAt(m.actNameAdr[i]) == name {
			return i, true
		}
	}
	return 0, false
}

// ActuatorLimited reports whether actuator i declares an enforced range.
func (m *Model) ActuatorLimited(i int) bool { return m.actLimited[i] }

// ActuatorRange returns the declared control range of actuator i.
func (m *Model) ActuatorRange(i int) (min, max float64) {
	return m.actRange[2*i], m.actRange[2*i+1]
}

// ActuatorJoint returns the joint driven by actuator i.
func (m *Model) ActuatorJoint(i int) int { return int(m.actJnt[i]) }

// BodyMass returns the mass of body i.
func (m *Model) BodyMass(i int) float64 { return m.bodyMass[i] }

// BodyMocap returns the mocap slot of body i, or -1 when the body is
// integrated by the solver.
func (m *Model) BodyMocap(i int) int { return int(m.bodyMocap[i]) }

// BodyRoot returns the kinematic root of body i.
func (m *Model) BodyRoot(i int) int { return int(m.bodyRoot[i]) }

// BodyParent returns the parent of body i, or -1 for top-level bodies.
func (m *Model) BodyParent(i int) int { return int(m.bodyParent[i]) }

// BodyJoint returns the first joint of body i, or -1 if it has none.
func (m *Model) BodyJoint(i int) int { return int(m.bodyJnt[i]) }

// JointKind returns the type of joint j.
func (m *Model) JointKind(j int) JointType { return m.jntType[j] }

// JointBody returns the body joint j belongs to.
func (m *Model) JointBody(j int) int { return int(m.jntBody[j]) }

// JointQPosAdr returns the offset of joint j in the position vector.
func (m *Model) JointQPosAdr(j int) int { return int(m.jntQPosAdr[j]) }

// JointDofAdr returns the offset of joint j in the velocity vector.
func (m *Model) JointDofAdr(j int) int { return int(m.jntDofAdr[j]) }

// RootJointQPosAdr resolves the kinematic root of a body and returns the
// position-vector offset of the root's free joint. ok is false when the
// root carries no joint or a one-coordinate joint: a translation offset
// only maps onto the three position coordinates of a free joint.
func (m *Model) RootJointQPosAdr(body int) (adr int, ok bool) {
	root := m.bodyRoot[body]
	jnt := m.bodyJnt[root]
	if jnt < 0 || m.jntType[jnt] != JointFree {
		return 0, false
	}
	return int(m.jntQPosAdr[jnt]), true
}

// BodyInitialPos returns the position body i was defined at.
func (m *Model) BodyInitialPos(i int) sim.Vec3 {
	return vec3At(m.bodyPos, i)
}

// BodyInitialQuat returns the orientation body i was defined at.
func (m *Model) BodyInitialQuat(i int) sim.Quat {
	return quatAt(m.bodyQuat, i)
}

// LightInitialPos returns the position light i was defined at.
func (m *Model) LightInitialPos(i int) sim.Vec3 {
	return vec3At(m.lightPos, i)
}

// LightInitialDir returns the direction light i was defined with.
func (m *Model) LightInitialDir(i int) sim.Vec3 {
	return vec3At(m.lightDir, i)
}

// MakeData allocates a Data sized for the model, with positions and
// orientations initialized from the model definition.
func (m *Model) MakeData() *Data {
	nbody := m.Bodies()
	nlight := m.Lights()
	d := &Data{
		qpos:        make([]float64, m.nq),
		qvel:        make([]float64, m.nv),
		ctrl:        make([]float64, m.Actuators()),
		qfrcApplied: make([]float64, m.nv),
		xpos:        make([]float64, 3*nbody),
		xquat:       make([]float64, 4*nbody),
		mocapPos:    make([]float64, 3*m.nmocap),
		lightPos:    make([]float64, 3*nlight),
		lightDir:    make([]float64, 3*nlight),
	}
	for j := 0; j < m.Joints(); j++ {
		if m.jntType[j] != JointFree {
			continue
		}
		body := int(m.jntBody[j])
		adr := int(m.jntQPosAdr[j])
		pos := m.BodyInitialPos(body)
		quat := m.BodyInitialQuat(body)
		d.qpos[adr], d.qpos[adr+1], d.qpos[adr+2] = pos.X, pos.Y, pos.Z
		d.qpos[adr+3], d.qpos[adr+4], d.qpos[adr+5], d.qpos[adr+6] = quat.W, quat.X, quat.Y, quat.Z
	}
	for i := 0; i < nbody; i++ {
		if slot := m.bodyMocap[i]; slot >= 0 {
			setVec3At(d.mocapPos, int(slot), m.BodyInitialPos(i))
		}
		setVec3At(d.xpos, i, m.BodyInitialPos(i))
		setQuatAt(d.xquat, i, m.BodyInitialQuat(i))
	}
	copy(d.lightPos, m.lightPos)
	copy(d.lightDir, m.lightDir)
	return d
}

func vec3At(buf []float64, i int) sim.Vec3 {
	return sim.Vec3{X: buf[3*i], Y: buf[3*i+1], Z: buf[3*i+2]}
}

func setVec3At(buf []float64, i int, v sim.Vec3) {
	buf[3*i], buf[3*i+1], buf[3*i+2] = v.X, v.Y, v.Z
}

func quatAt(buf []float64, i int) sim.Quat {
	return sim.Quat{W: buf[4*i], X: buf[4*i+1], Y: buf[4*i+2], Z: buf[4*i+3]}
}

func setQuatAt(buf []float64, i int, q sim.Quat) {
	buf[4*i], buf[4*i+1], buf[4*i+2], buf[4*i+3] = q.W, q.X, q.Y, q.Z
}
