package see

import (
	"encoding/json"
	"fmt"

	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/scene"
	"github.com/physlab/physview.go/pkg/sim"
)

// Publisher delivers an encoded frame to a frontend.
type Publisher interface {
	Publish(frame []byte) error
}

// Adapter reports render-graph changes to the configured publishers.
// A scene switch emits a reset followed by a full dump; steady frames
// carry only the nodes whose pose changed.
type Adapter struct {
	Config *Config
	Sync   *scene.Sync

	publishers []Publisher
	lastScene  string
	lastPos    []sim.Vec3
	lastQuat   []sim.Quat
}

// NewAdapter creates the adapter.
func NewAdapter(config *Config, sync *scene.Sync) *Adapter {
	return &Adapter{Config: config, Sync: sync}
}

// AddPublisher attaches a frame publisher.
func (a *Adapter) AddPublisher(p Publisher) *Adapter {
	a.publishers = append(a.publishers, p)
	return a
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PhPublish, fx.ControlFunc(a.ReportChanges))
}

// ReportChanges is the per-frame controller emitting frame messages.
func (a *Adapter) ReportChanges(fc fx.FrameContext) error {
	g := a.Sync.Graph()
	if g == nil {
		if a.lastScene != "" {
			a.lastScene = ""
			a.lastPos, a.lastQuat = nil, nil
			return a.publish([]Message{{Action: ActionReset}})
		}
		return nil
	}

	full := g.Scene != a.lastScene
	var msgs []Message
	if full {
		msgs = append(msgs, Message{Action: ActionReset, Scene: g.Scene})
		a.lastScene = g.Scene
		a.lastPos = make([]sim.Vec3, len(g.Nodes))
		a.lastQuat = make([]sim.Quat, len(g.Nodes))
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if !full && n.Pos == a.lastPos[i] && n.Quat == a.lastQuat[i] {
			continue
		}
		a.lastPos[i], a.lastQuat[i] = n.Pos, n.Quat
		msgs = append(msgs, Message{
			Action: ActionObject,
			Object: NewObject(TypeBody, ObjectID(n.Name)).At(n.Pos).Rotate(n.Quat),
		})
	}
	for i := range g.Lights {
		l := &g.Lights[i]
		if !full {
			continue
		}
		id := fmt.Sprintf("light.%d", l.Light)
		msgs = append(msgs, Message{
			Action: ActionObject,
			Object: NewObject(TypeLight, id).At(l.Pos).Target(l.Target),
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	return a.publish(msgs)
}

func (a *Adapter) publish(msgs []Message) error {
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	errs := &fx.AggregatedError{}
	for _, p := range a.publishers {
		errs.Add(p.Publish(encoded))
	}
	return errs.Aggregate()
}
