// Package viewer orchestrates the interactive simulation: it owns the
// live scene slot, dispatches commands posted into the frame loop and
// advances the simulation clock every frame.
package viewer

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/assets"
	"github.com/physlab/physview.go/pkg/control"
	"github.com/physlab/physview.go/pkg/sim/engine"
	"github.com/physlab/physview.go/pkg/sim/step"
)

// Viewer wires assets, engine, clock and controls into the frame loop.
// All state mutation happens on the loop goroutine; other goroutines
// talk to it by posting messages.
type Viewer struct {
	FS       *engine.FileSystem
	Engine   engine.Engine
	Loader   engine.Loader
	Registry *assets.Registry
	Catalog  *assets.Catalog
	Clock    *step.Clock
	Perturb  *step.Perturbation
	Slot     *step.Slot
	Controls *control.Map

	SceneCaster
}

// New creates a viewer over the given engine and asset registry.
func New(fsys *engine.FileSystem, eng engine.Engine, loader engine.Loader,
	reg *assets.Registry, cat *assets.Catalog, controls *control.Map) *Viewer {
	return &Viewer{
		FS:       fsys,
		Engine:   eng,
		Loader:   loader,
		Registry: reg,
		Catalog:  cat,
		Clock:    step.NewClock(),
		Perturb:  &step.Perturbation{},
		Slot:     &step.Slot{},
		Controls: controls,
	}
}

// AddToLoop implements LoopAdder.
func (v *Viewer) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PhInput, fx.ControlFunc(v.DispatchMessages))
	l.AddController(fx.PhStep, fx.ControlFunc(v.Advance))
}

// DispatchMessages consumes viewer commands posted into the loop.
func (v *Viewer) DispatchMessages(fc fx.FrameContext) error {
	fc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageContext) {
		switch m := mc.CurrentMessage().(type) {
		case *LoadRobotMsg:
			reply(m.Reply, v.LoadRobot(fc.Context(), m.Name))
		case *LoadUploadMsg:
			reply(m.Reply, v.LoadUpload(m.Files))
		case *LoadEnvironmentMsg:
			reply(m.Reply, v.LoadEnvironment(fc.Context(), m.Name))
		case *UnloadMsg:
			reply(m.Reply, v.Unload())
		case *PauseMsg:
			v.Clock.SetPaused(m.Paused)
		case *NoiseMsg:
			v.Clock.NoiseStd, v.Clock.NoiseRate = m.Std, m.Rate
		case *DragStartMsg:
			if st := v.Slot.Current(); st != nil {
				v.Perturb.Start(st, m.Body, m.Hit)
			}
		case *DragMoveMsg:
			v.Perturb.Move(m.Point)
		case *DragEndMsg:
			v.Perturb.End()
		case *StatusQueryMsg:
			st := v.Status()
			select {
			case m.Reply <- st:
			default:
			}
		default:
			return
		}
		mc.MessageTaken()
	}))
	return nil
}

// Advance runs the simulation clock for this frame.
func (v *Viewer) Advance(fc fx.FrameContext) error {
	v.Clock.Advance(fc.Time(), v.Slot.Current(), v.Engine, v.Perturb)
	return nil
}

// LoadRobot resolves a predefined robot, stages it and activates its
// scene.
func (v *Viewer) LoadRobot(ctx context.Context, name string) error {
	entry, ok := v.Catalog.Robot(name)
	if !ok {
		return fmt.Errorf("unknown robot %q", name)
	}
	desc, err := v.Registry.LoadPredefinedRobot(ctx, entry.Name, entry.BasePath)
	if err != nil {
		return err
	}
	if err := v.Registry.Stage(desc); err != nil {
		return err
	}
	return v.activate(desc.Name)
}

// LoadUpload classifies an uploaded file set, stages it, registers the
// robot in the catalog and activates its scene.
func (v *Viewer) LoadUpload(files []assets.UploadFile) error {
	desc, err := v.Registry.LoadUploadedRobot(files)
	if err != nil {
		return err
	}
	if err := v.Registry.Stage(desc); err != nil {
		return err
	}
	v.Catalog.AddRobot(assets.RobotEntry{Name: desc.Name})
	return v.activate(desc.Name)
}

// LoadEnvironment stages a configured environment and activates its
// scene.
func (v *Viewer) LoadEnvironment(ctx context.Context, name string) error {
	env, ok := v.Catalog.Environment(name)
	if !ok {
		return fmt.Errorf("unknown environment %q", name)
	}
	if err := v.Registry.StageEnvironment(ctx, env); err != nil {
		return err
	}
	return v.activate(env.Name)
}

// Unload tears the current scene down and releases its bookkeeping.
func (v *Viewer) Unload() error {
	st := v.Slot.Current()
	if st == nil {
		return nil
	}
	v.teardown()
	v.Registry.Cleanup(st.Name)
	return nil
}

// Status reports the current viewer state.
func (v *Viewer) Status() Status {
	s := Status{
		Paused:   v.Clock.Paused(),
		Dragging: v.Perturb.Active(),
	}
	if st := v.Slot.Current(); st != nil {
		s.Scene = st.Name
		s.SimTime = st.Data.Time
	}
	return s
}

// activate replaces the live scene with the staged scene name. The old
// scene is fully torn down before the new model is parsed, so a failed
// load leaves no scene active.
func (v *Viewer) activate(name string) error {
	v.teardown()
	m, d, err := v.Loader.LoadScene(v.FS, name)
	if err != nil {
		return err
	}
	v.Slot.Replace(name, m, d)
	v.Clock.Rebase()
	v.Controls.Enable(name, m, d)
	v.SceneLoaded(name, m, d)
	glog.Infof("scene %s active (%d bodies, %d actuators)", name, m.Bodies(), m.Actuators())
	return nil
}

// teardown disables controls, cancels any drag and unloads the current
// scene.
func (v *Viewer) teardown() {
	v.Controls.Disable()
	v.Perturb.End()
	if st := v.Slot.Current(); st != nil {
		v.Slot.Clear()
		v.SceneUnloaded(st.Name)
	}
}
