package viewer

import (
	"github.com/physlab/physview.go/pkg/sim/engine"
)

// SceneListener is notified when the live scene changes identity.
type SceneListener interface {
	SceneLoaded(name string, m *engine.Model, d *engine.Data)
	SceneUnloaded(name string)
}

// SceneChangeSubscriber accepts scene change listeners.
type SceneChangeSubscriber interface {
	SubscribeSceneChange(SceneListener)
}

// SceneCaster provides a subscriber and implements listener to cast
// notifications.
type SceneCaster struct {
	listeners []SceneListener
}

// SubscribeSceneChange implements SceneChangeSubscriber.
func (c *SceneCaster) SubscribeSceneChange(ln SceneListener) {
	c.listeners = append(c.listeners, ln)
}

// SceneLoaded implements SceneListener.
func (c *SceneCaster) SceneLoaded(name string, m *engine.Model, d *engine.Data) {
	for _, ln := range c.listeners {
		ln.SceneLoaded(name, m, d)
	}
}

// SceneUnloaded implements SceneListener.
func (c *SceneCaster) SceneUnloaded(name string) {
	for _, ln := range c.listeners {
		ln.SceneUnloaded(name)
	}
}
