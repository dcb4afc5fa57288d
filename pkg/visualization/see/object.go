// Package see is the adapter to visualize the render graph in an
// external frontend over stdout, MQTT or a websocket stream.
package see

import (
	"strings"

	"github.com/physlab/physview.go/pkg/sim"
)

// Object is the data model used to represent a node.
type Object map[string]interface{}

// Pos is a world position.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rot is a world orientation quaternion.
type Rot struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Message is one frame item for the frontend.
type Message struct {
	Action   string `json:"action"`
	Scene    string `json:"scene,omitempty"`
	Object   Object `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Actions
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Properties
const (
	PropID     = "id"
	PropType   = "type"
	PropPos    = "pos"
	PropRot    = "rot"
	PropTarget = "target"
)

// Object types
const (
	TypeBody  = "body"
	TypeLight = "light"
)

// ObjectID converts a node name to an ID.
func ObjectID(name string) string {
	return strings.Replace(name, "/", ".", -1)
}

// NewObject creates Object.
func NewObject(typ, id string) Object {
	o := make(Object)
	o[PropID] = id
	o[PropType] = typ
	return o
}

// At sets position.
func (o Object) At(v sim.Vec3) Object {
	o[PropPos] = &Pos{X: v.X, Y: v.Y, Z: v.Z}
	return o
}

// Rotate sets orientation.
func (o Object) Rotate(q sim.Quat) Object {
	o[PropRot] = &Rot{W: q.W, X: q.X, Y: q.Y, Z: q.Z}
	return o
}

// Target sets the aim point of a light.
func (o Object) Target(v sim.Vec3) Object {
	o[PropTarget] = &Pos{X: v.X, Y: v.Y, Z: v.Z}
	return o
}

// With sets a custom property.
func (o Object) With(key string, val interface{}) Object {
	o[key] = val
	return o
}
