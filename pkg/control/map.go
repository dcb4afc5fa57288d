package control

import (
	"sync"

	"github.com/golang/glog"

	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/sim/engine"
)

// resolved is a binding with actuator name resolved to an index.
type resolved struct {
	actuator int
	step     float64
	limited  bool
	min, max float64
}

// Map applies the active scene's binding table to the live control
// vector. While enabled it listens on the bus, tracks held keys and,
// once per frame, writes the clamped sum of the held bindings' steps to
// each actuator. Two held keys bound to the same actuator with opposite
// steps cancel out, and repeating a frame with unchanged key state
// writes the same values again.
type Map struct {
	Bus    *Bus
	Config *Config

	lock     sync.Mutex
	sub      *Subscription
	bindings map[string][]resolved
	pressed  map[string]bool
	data     *engine.Data
}

// NewMap creates a map reading tables from conf and events from bus.
func NewMap(bus *Bus, conf *Config) *Map {
	return &Map{Bus: bus, Config: conf}
}

// Enable activates the binding table for scene against the loaded
// model. Bindings naming actuators absent from the model are skipped
// with a log line; skips never fail the enable. Reports false, leaving
// the map disabled, only when the scene has no registered table.
func (m *Map) Enable(scene string, mdl *engine.Model, d *engine.Data) bool {
	m.Disable()
	table, ok := m.Config.Table(scene)
	if !ok {
		glog.V(2).Infof("no control table for scene %s", scene)
		return false
	}
	bindings := make(map[string][]resolved)
	count := 0
	for _, b := range table.Bindings {
		idx, ok := mdl.ActuatorIndex(b.Actuator)
		if !ok {
			glog.Warningf("scene %s: binding %q skipped, no actuator %q", scene, b.Key, b.Actuator)
			continue
		}
		r := resolved{actuator: idx, step: b.Step}
		if mdl.ActuatorLimited(idx) {
			r.limited = true
			r.min, r.max = mdl.ActuatorRange(idx)
		}
		bindings[b.Key] = append(bindings[b.Key], r)
		count++
	}

	m.lock.Lock()
	m.bindings = bindings
	m.pressed = make(map[string]bool)
	m.data = d
	m.lock.Unlock()
	m.sub = m.Bus.Subscribe(m.onKey)
	glog.Infof("controls enabled for scene %s (%d bindings)", scene, count)
	return true
}

// Disable detaches the map from the bus and forgets all key state.
// Idempotent.
func (m *Map) Disable() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.lock.Lock()
	m.bindings = nil
	m.pressed = nil
	m.data = nil
	m.lock.Unlock()
}

// Handles reports whether code belongs to the active table. Frontends
// use it to decide whether to intercept a key or let it through.
func (m *Map) Handles(code string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	_, ok := m.bindings[code]
	return ok
}

func (m *Map) onKey(ev KeyEvent) {
	if ev.FromTextInput {
		return
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.bindings[ev.Code]; !ok {
		return
	}
	if ev.Down {
		m.pressed[ev.Code] = true
	} else {
		delete(m.pressed, ev.Code)
	}
}

// AddToLoop implements LoopAdder.
func (m *Map) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PhControl, fx.ControlFunc(m.Update))
}

// Update is the per-frame controller writing held bindings into the
// control vector. Each touched actuator gets the sum of its pressed
// bindings' steps, clamped to the declared range when limited, so the
// write is idempotent while the key state does not change.
func (m *Map) Update(fc fx.FrameContext) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.data == nil || len(m.pressed) == 0 {
		return nil
	}
	sums := make(map[int]float64)
	clamp := make(map[int]resolved)
	for code := range m.pressed {
		for _, r := range m.bindings[code] {
			sums[r.actuator] += r.step
			clamp[r.actuator] = r
		}
	}
	for idx, val := range sums {
		if r := clamp[idx]; r.limited {
			if val < r.min {
				val = r.min
			}
			if val > r.max {
				val = r.max
			}
		}
		m.data.SetCtrl(idx, val)
	}
	return nil
}
