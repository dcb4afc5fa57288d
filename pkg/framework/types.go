package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Message is a unit of work handed to the frame loop, usually from
// another goroutine (console, network stream). Messages are delivered
// to controllers at the start of the next frame.
type Message interface {
	// NewMessage creates an empty message.
	NewMessage() Message
}

// Controller is a component invoked once per frame at its phase.
type Controller interface {
	Control(FrameContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(FrameContext) error

// Control implements Controller.
func (f ControlFunc) Control(fc FrameContext) error {
	return f(fc)
}

// TimeSource provides the wall time observed at the start of a frame.
// All controllers in one frame see the same time.
type TimeSource interface {
	Time() time.Time
}

// FrameContext is the context of the current frame iteration.
type FrameContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// Phase gets the phase currently being executed.
	Phase() int
	// Messages retrieves the messages collected when this frame started.
	Messages() MessageStore
	// PostFrame installs one-shot hooks at the current phase. If called
	// from a post hook, the hooks run next frame.
	PostFrame(hooks ...Controller)

	LoopControl
}

// NumPhases is the total number of frame phases.
const NumPhases int = 6

// Frame phases, executed in order within each frame.
const (
	// PhInput delivers pending input and commands.
	PhInput int = 0
	// PhControl writes actuator controls before stepping.
	PhControl int = 1
	// PhStep advances simulation time.
	PhStep int = 2
	// PhSync copies simulation results into the render graph.
	PhSync int = 3
	// PhPublish reports the frame to external observers.
	PhPublish int = 4
	// PhIdle runs housekeeping after everything else.
	PhIdle int = NumPhases - 1
)

// LoopControl exposes access to the frame loop.
type LoopControl interface {
	// PreRunAt installs one-shot pre-run hooks at the given phase.
	PreRunAt(phase int, controllers ...Controller)
	// PostRunAt installs one-shot post-run hooks at the given phase.
	PostRunAt(phase int, controllers ...Controller)
	// PostMessage enqueues a message for the next frame. Safe to call
	// from any goroutine.
	PostMessage(Message)
	// TriggerNext schedules the next frame to run immediately after the
	// current one instead of waiting for the frame interval.
	TriggerNext()
}

// MessageStore provides access to the messages of the current frame.
type MessageStore interface {
	// ProcessMessages runs a processor over all pending messages.
	ProcessMessages(MessageProcessor)

	MessageAppender
}

// MessageAppender appends messages to a store.
type MessageAppender interface {
	// AddMessages appends messages for the next processing cycle.
	AddMessages(msgs ...Message)
}

// MessageProcessor is used by MessageStore to examine messages.
type MessageProcessor interface {
	ProcessMessage(MessageContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageContext) {
	f(mc)
}

// MessageContext provides context for the message being examined.
type MessageContext interface {
	// CurrentMessage gets the message being processed.
	CurrentMessage() Message
	// MessageTaken marks the message consumed; it is removed from the store.
	MessageTaken()
	// StopProcessing skips examination of the remaining messages.
	StopProcessing()

	MessageAppender
}

// LoopAdder provides component-specific logic to register with a loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}
