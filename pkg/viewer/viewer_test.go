package viewer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/assets"
	"github.com/physlab/physview.go/pkg/control"
	"github.com/physlab/physview.go/pkg/sim"
	"github.com/physlab/physview.go/pkg/sim/engine"
	"github.com/physlab/physview.go/pkg/sim/engine/basic"
)

const rigDef = `
<model name="rig">
  <option timestep="0.01"/>
  <body name="base" pos="0 0 0.5">
    <joint name="root" type="free"/>
  </body>
  <body name="arm" parent="base">
    <joint name="lift" type="slide"/>
  </body>
  <actuator name="lift_motor" joint="lift"/>
</model>
`

const bindingsYAML = `
tables:
  - scene: rig
    bindings:
      - key: ArrowUp
        actuator: lift_motor
        step: 0.1
`

type mapFetcher struct {
	files map[string][]byte
}

func (f *mapFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	if data, ok := f.files[location]; ok {
		return data, nil
	}
	return nil, &assets.NetworkError{Location: location, Err: context.Canceled}
}

type recordListener struct {
	loaded   []string
	unloaded []string
}

func (l *recordListener) SceneLoaded(name string, m *engine.Model, d *engine.Data) {
	l.loaded = append(l.loaded, name)
}

func (l *recordListener) SceneUnloaded(name string) {
	l.unloaded = append(l.unloaded, name)
}

func newTestViewer(t *testing.T) (*Viewer, *control.Bus, *recordListener) {
	fsys, err := engine.NewFileSystem()
	require.NoError(t, err)
	eng := basic.New()
	fetcher := &mapFetcher{files: map[string][]byte{
		"robots/rig/rig.xml": []byte(rigDef),
	}}
	reg := assets.NewRegistry(fsys, fetcher)
	cat := &assets.Catalog{Robots: []assets.RobotEntry{{Name: "rig", BasePath: "robots"}}}
	conf, err := control.LoadConfig([]byte(bindingsYAML))
	require.NoError(t, err)
	bus := control.NewBus()

	v := New(fsys, eng, eng, reg, cat, control.NewMap(bus, conf))
	ln := &recordListener{}
	v.SubscribeSceneChange(ln)
	return v, bus, ln
}

func TestLoadRobot(t *testing.T) {
	v, _, ln := newTestViewer(t)
	require.NoError(t, v.LoadRobot(context.Background(), "rig"))

	st := v.Slot.Current()
	require.NotNil(t, st)
	require.Equal(t, "rig", st.Name)
	require.Equal(t, 2, st.Model.Bodies())
	require.Equal(t, []string{"rig"}, ln.loaded)
	require.Empty(t, ln.unloaded)
	require.True(t, v.Controls.Handles("ArrowUp"))
	require.True(t, v.Registry.IsStaged("rig"))
}

func TestLoadRobotUnknown(t *testing.T) {
	v, _, _ := newTestViewer(t)
	require.Error(t, v.LoadRobot(context.Background(), "nope"))
	require.Nil(t, v.Slot.Current())
}

func TestLoadRobotReplacesScene(t *testing.T) {
	v, _, ln := newTestViewer(t)
	require.NoError(t, v.LoadRobot(context.Background(), "rig"))
	require.NoError(t, v.LoadRobot(context.Background(), "rig"))
	require.Equal(t, []string{"rig", "rig"}, ln.loaded)
	require.Equal(t, []string{"rig"}, ln.unloaded)
}

func TestLoadUpload(t *testing.T) {
	v, _, ln := newTestViewer(t)
	files := []assets.UploadFile{
		{Path: "mybot/main.xml", Data: []byte(rigDef)},
	}
	require.NoError(t, v.LoadUpload(files))
	require.Equal(t, []string{"mybot"}, ln.loaded)

	// the upload is now a catalog robot
	_, ok := v.Catalog.Robot("mybot")
	require.True(t, ok)
}

func TestUnload(t *testing.T) {
	v, _, ln := newTestViewer(t)
	require.NoError(t, v.LoadRobot(context.Background(), "rig"))
	require.NoError(t, v.Unload())
	require.Nil(t, v.Slot.Current())
	require.Equal(t, []string{"rig"}, ln.unloaded)
	require.False(t, v.Registry.IsStaged("rig"))
	require.False(t, v.Controls.Handles("ArrowUp"))

	// unloading twice is a no-op
	require.NoError(t, v.Unload())
}

func TestDispatchMessages(t *testing.T) {
	v, _, _ := newTestViewer(t)
	loop := fx.NewLoop().Add(v, v.Controls)

	replyCh := make(chan error, 1)
	loop.PostMessage(&LoadRobotMsg{Name: "rig", Reply: replyCh})
	loop.RunFrame(context.Background())
	require.NoError(t, <-replyCh)
	require.NotNil(t, v.Slot.Current())

	loop.PostMessage(&PauseMsg{Paused: true})
	loop.RunFrame(context.Background())
	require.True(t, v.Clock.Paused())

	loop.PostMessage(&DragStartMsg{Body: 0, Hit: sim.Vec3{Z: 0.5}})
	loop.PostMessage(&DragMoveMsg{Point: sim.Vec3{X: 1, Z: 0.5}})
	loop.RunFrame(context.Background())
	require.True(t, v.Perturb.Active())
	require.Equal(t, sim.Vec3{X: 1, Z: 0.5}, v.Perturb.Session().Current)

	loop.PostMessage(&DragEndMsg{})
	loop.RunFrame(context.Background())
	require.False(t, v.Perturb.Active())

	statusCh := make(chan Status, 1)
	loop.PostMessage(&StatusQueryMsg{Reply: statusCh})
	loop.RunFrame(context.Background())
	status := <-statusCh
	require.Equal(t, "rig", status.Scene)
	require.True(t, status.Paused)

	loop.PostMessage(&NoiseMsg{Std: 0.2, Rate: 2})
	loop.RunFrame(context.Background())
	require.Equal(t, 0.2, v.Clock.NoiseStd)
	require.Equal(t, 2.0, v.Clock.NoiseRate)
}

func TestDispatchReportsLoadError(t *testing.T) {
	v, _, _ := newTestViewer(t)
	loop := fx.NewLoop().Add(v, v.Controls)

	replyCh := make(chan error, 1)
	loop.PostMessage(&LoadRobotMsg{Name: "nope", Reply: replyCh})
	loop.RunFrame(context.Background())
	require.Error(t, <-replyCh)
}
