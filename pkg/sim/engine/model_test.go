package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const cartDef = `
<model name="cart">
  <option timestep="0.01"/>
  <body name="base" pos="0 0 0.1" mass="2">
    <joint name="root" type="free"/>
  </body>
  <body name="arm" parent="base" pos="0 0 0.2">
    <joint name="shoulder" type="hinge"/>
  </body>
  <body name="marker" mocap="true" pos="1 0 0"/>
  <actuator name="shoulder_motor" joint="shoulder" ctrlrange="-1 1" limited="true"/>
  <light pos="0 0 3" dir="0 0 -1"/>
</model>
`

const objectsDef = `
<model>
  <body name="crate" pos="0.5 0 0.1" mass="5">
    <joint type="free"/>
  </body>
</model>
`

func mustParse(t *testing.T, docs ...string) *Model {
	raw := make([][]byte, len(docs))
	for i, d := range docs {
		raw[i] = []byte(d)
	}
	m, err := ParseModel("cart", raw...)
	require.NoError(t, err)
	return m
}

func TestParseModel(t *testing.T) {
	m := mustParse(t, cartDef)
	require.Equal(t, "cart", m.Name())
	require.Equal(t, 0.01, m.Timestep())
	require.Equal(t, 3, m.Bodies())
	require.Equal(t, 2, m.Joints())
	require.Equal(t, 1, m.Actuators())
	require.Equal(t, 1, m.Lights())
	require.Equal(t, 1, m.Mocaps())
	// free joint: 7 qpos, 6 dof; hinge: 1 and 1
	require.Equal(t, 8, m.NQ())
	require.Equal(t, 7, m.NV())
}

func TestModelNames(t *testing.T) {
	m := mustParse(t, cartDef)
	require.Equal(t, "base", m.BodyName(0))
	require.Equal(t, "arm", m.BodyName(1))
	require.Equal(t, "marker", m.BodyName(2))
	require.Equal(t, "shoulder_motor", m.ActuatorName(0))
}

func TestActuatorIndex(t *testing.T) {
	m := mustParse(t, cartDef)
	idx, ok := m.ActuatorIndex("shoulder_motor")
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.True(t, m.ActuatorLimited(idx))
	lo, hi := m.ActuatorRange(idx)
	require.Equal(t, -1.0, lo)
	require.Equal(t, 1.0, hi)

	_, ok = m.ActuatorIndex("nope")
	require.False(t, ok)
}

func TestRootJointQPosAdr(t *testing.T) {
	m := mustParse(t, cartDef)
	// arm's kinematic root is base, whose first joint is free
	adr, ok := m.RootJointQPosAdr(1)
	require.True(t, ok)
	require.Equal(t, 0, adr)
	// the mocap marker has no joints at all
	_, ok = m.RootJointQPosAdr(2)
	require.False(t, ok)
}

func TestRootJointQPosAdrHingeRoot(t *testing.T) {
	const doorDef = `
<model name="door">
  <body name="panel" pos="0 0 1">
    <joint name="swing" type="hinge"/>
  </body>
</model>
`
	m, err := ParseModel("door", []byte(doorDef))
	require.NoError(t, err)
	// a one-coordinate root joint cannot take a translation offset
	_, ok := m.RootJointQPosAdr(0)
	require.False(t, ok)
}

func TestParseModelMerge(t *testing.T) {
	m := mustParse(t, cartDef, objectsDef)
	require.Equal(t, 4, m.Bodies())
	require.Equal(t, "crate", m.BodyName(3))
	// timestep stays with the first document
	require.Equal(t, 0.01, m.Timestep())
}

func TestParseModelErrors(t *testing.T) {
	cases := []struct {
		name string
		def  string
	}{
		{"unnamed body", `<model><body/></model>`},
		{"duplicate body", `<model><body name="a"/><body name="a"/></model>`},
		{"unknown parent", `<model><body name="a" parent="b"/></model>`},
		{"mocap with joint", `<model><body name="a" mocap="true"><joint/></body></model>`},
		{"unknown actuator joint", `<model><body name="a"/><actuator name="m" joint="j"/></model>`},
		{"bad timestep", `<model><option timestep="-1"/></model>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseModel("bad", []byte(tc.def))
			require.Error(t, err)
		})
	}
}

func TestMakeData(t *testing.T) {
	m := mustParse(t, cartDef)
	d := m.MakeData()
	require.Len(t, d.QPos(), m.NQ())
	require.Len(t, d.QVel(), m.NV())
	require.Len(t, d.Ctrl(), m.Actuators())

	// free joint qpos initialized from the body's initial pose
	qpos := d.QPos()
	require.Equal(t, 0.1, qpos[2])
	require.Equal(t, 1.0, qpos[3])

	// mocap slot initialized from the body's initial position
	require.Equal(t, 1.0, d.MocapPos(0).X)
}
