package scene

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/physlab/physview.go/pkg/sim"
	"github.com/physlab/physview.go/pkg/sim/engine"
	"github.com/physlab/physview.go/pkg/sim/engine/basic"
	"github.com/physlab/physview.go/pkg/sim/step"
)

const rigDef = `
<model name="rig">
  <body name="ball" pos="0 0 1">
    <joint name="root" type="free"/>
  </body>
  <body name="arm" parent="ball" pos="0 0 0.5"/>
  <light pos="0 0 3" dir="0 0 -1"/>
</model>
`

func newRig(t *testing.T) (*engine.Model, *engine.Data) {
	m, err := engine.ParseModel("rig", []byte(rigDef))
	require.NoError(t, err)
	d := m.MakeData()
	basic.New().Forward(m, d)
	return m, d
}

func TestNewGraph(t *testing.T) {
	m, _ := newRig(t)
	g := NewGraph("rig", m)
	require.Equal(t, "rig", g.Scene)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Lights, 1)

	n := g.Node("ball")
	require.NotNil(t, n)
	require.Equal(t, 0, n.Body)
	require.Equal(t, sim.Vec3{Z: 1}, n.Pos)
	require.Nil(t, g.Node("nope"))

	require.Equal(t, sim.Vec3{Z: 3}, g.Lights[0].Pos)
	require.Equal(t, sim.Vec3{Z: 2}, g.Lights[0].Target)
}

func TestNodeWorldMatrix(t *testing.T) {
	n := Node{Pos: sim.Vec3{X: 1, Y: 2, Z: 3}, Quat: sim.QuatIdentity}
	n.UpdateWorldMatrix()
	want := Identity()
	want[3], want[7], want[11] = 1, 2, 3
	require.Equal(t, want, n.World)

	// 180 degrees about Z flips X and Y axes
	n.Quat = sim.Quat{Z: 1}
	n.UpdateWorldMatrix()
	require.InDelta(t, -1, n.World[0], 1e-12)
	require.InDelta(t, -1, n.World[5], 1e-12)
	require.InDelta(t, 1, n.World[10], 1e-12)
}

func TestSyncLifecycle(t *testing.T) {
	m, d := newRig(t)
	slot := &step.Slot{}
	s := NewSync(slot)
	require.Nil(t, s.Graph())

	slot.Replace("rig", m, d)
	s.SceneLoaded("rig", m, d)
	require.NotNil(t, s.Graph())

	// a position edit flows into the graph on update
	d.QPos()[0] = 2.5
	basic.New().Forward(m, d)
	require.NoError(t, s.Update(nil))
	require.InDelta(t, 2.5, s.Graph().Node("ball").Pos.X, 1e-12)
	require.InDelta(t, 2.5, s.Graph().Node("ball").World[3], 1e-12)
	// the attached arm follows
	require.InDelta(t, 2.5, s.Graph().Node("arm").Pos.X, 1e-12)

	s.SceneUnloaded("rig")
	require.Nil(t, s.Graph())
	require.NoError(t, s.Update(nil))
}
