package basic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/physlab/physview.go/pkg/sim"
	"github.com/physlab/physview.go/pkg/sim/engine"
)

const testDef = `
<model name="rig">
  <option timestep="0.01"/>
  <body name="base" pos="0 0 0.5" mass="2">
    <joint name="root" type="free"/>
  </body>
  <body name="arm" parent="base" pos="0 0 0.3">
    <joint name="lift" type="slide"/>
  </body>
  <body name="marker" mocap="true" pos="1 2 3"/>
  <actuator name="lift_motor" joint="lift"/>
</model>
`

func newRig(t *testing.T) (*engine.Model, *engine.Data) {
	m, err := engine.ParseModel("rig", []byte(testDef))
	require.NoError(t, err)
	return m, m.MakeData()
}

func TestStepAdvancesTime(t *testing.T) {
	e := New()
	m, d := newRig(t)
	e.Step(m, d)
	require.InDelta(t, 0.01, d.Time, 1e-12)
	e.Step(m, d)
	require.InDelta(t, 0.02, d.Time, 1e-12)
}

func TestStepControlMovesJoint(t *testing.T) {
	e := New()
	m, d := newRig(t)
	idx, ok := m.ActuatorIndex("lift_motor")
	require.True(t, ok)
	d.SetCtrl(idx, 1)

	jnt := m.ActuatorJoint(idx)
	adr := m.JointQPosAdr(jnt)
	before := d.QPos()[adr]
	for i := 0; i < 10; i++ {
		e.Step(m, d)
	}
	require.Greater(t, d.QPos()[adr], before)
}

func TestForwardPlacesBodies(t *testing.T) {
	e := New()
	m, d := newRig(t)
	e.Forward(m, d)

	// base sits at its free joint position
	require.Equal(t, sim.Vec3{Z: 0.5}, d.BodyPos(0))
	// arm hangs off the base by its local offset
	require.InDelta(t, 0.8, d.BodyPos(1).Z, 1e-12)
	// the mocap body tracks its mocap slot
	require.Equal(t, sim.Vec3{X: 1, Y: 2, Z: 3}, d.BodyPos(2))

	d.SetMocapPos(0, sim.Vec3{X: 9})
	e.Forward(m, d)
	require.Equal(t, sim.Vec3{X: 9}, d.BodyPos(2))
}

func TestApplyForceTorque(t *testing.T) {
	e := New()
	m, d := newRig(t)
	e.Forward(m, d)

	point := d.BodyPos(0)
	e.ApplyForceTorque(m, d, 0, sim.Vec3{X: 2}, sim.Vec3{}, point)
	qfrc := d.QFrcApplied()
	require.Equal(t, 2.0, qfrc[0])
	// force through the center of mass exerts no torque
	require.Equal(t, 0.0, qfrc[3])
	require.Equal(t, 0.0, qfrc[4])
	require.Equal(t, 0.0, qfrc[5])

	// an offset line of action does
	d.ZeroAppliedForces()
	e.ApplyForceTorque(m, d, 0, sim.Vec3{X: 2}, sim.Vec3{}, point.Add(sim.Vec3{Y: 0.5}))
	qfrc = d.QFrcApplied()
	require.InDelta(t, -1.0, qfrc[5], 1e-12)
}

func TestApplyForceTorqueOnChild(t *testing.T) {
	e := New()
	m, d := newRig(t)
	e.Forward(m, d)

	// force on the arm lands on the free joint of its kinematic root
	e.ApplyForceTorque(m, d, 1, sim.Vec3{Z: 3}, sim.Vec3{}, d.BodyPos(1))
	require.Equal(t, 3.0, d.QFrcApplied()[2])
}

func TestStepAppliedForceAccelerates(t *testing.T) {
	e := New()
	m, d := newRig(t)
	e.Forward(m, d)

	before := d.QPos()[0]
	for i := 0; i < 5; i++ {
		d.ZeroAppliedForces()
		e.ApplyForceTorque(m, d, 0, sim.Vec3{X: 10}, sim.Vec3{}, d.BodyPos(0))
		e.Step(m, d)
	}
	require.Greater(t, d.QPos()[0], before)
}
