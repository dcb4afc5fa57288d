package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the default frame interval (~60 frames per second).
const DefaultInterval = 16 * time.Millisecond

// Loop drives registered controllers once per frame, phase by phase.
// All controllers execute on the loop goroutine; a slow frame delays the
// next one, it never overlaps it.
type Loop struct {
	Interval time.Duration

	phases [NumPhases]phaseList

	runners []Runnable

	lock    sync.Mutex
	pending []Message

	wakeUpCh chan struct{}
}

type phaseList struct {
	lock        sync.Mutex
	preHooks    []Controller
	controllers []Controller
	postHooks   []Controller
}

type loopCtl struct {
	*Loop
}

type frame struct {
	loopCtl
	ctx   context.Context
	time  time.Time
	phase int
	msgs  []Message
}

var loopCtxKey = &Loop{}

// LoopCtlFrom gets LoopControl from context.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// FrameCtxFrom gets FrameContext from context.
func FrameCtxFrom(ctx context.Context) FrameContext {
	return ctx.Value(loopCtxKey).(FrameContext)
}

// NewLoop creates a Loop with the default frame interval.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at the given phase.
func (l *Loop) AddController(phase int, ctls ...Controller) *Loop {
	ph := &l.phases[phase]
	ph.controllers = append(ph.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background Runnable implementations.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. It spawns background runners and executes
// frames until the context is canceled.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, &loopCtl{l}))
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.RunFrame(ctx)
		case <-l.wakeUpCh:
			l.RunFrame(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.TODO()); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// RunFrame executes a single frame synchronously. External per-frame
// drivers can call this directly instead of Run.
func (l *Loop) RunFrame(ctx context.Context) {
	fr := &frame{loopCtl: loopCtl{l}, time: time.Now()}
	l.lock.Lock()
	fr.msgs, l.pending = l.pending, nil
	l.lock.Unlock()
	fr.ctx = context.WithValue(ctx, loopCtxKey, fr)
	for ph := 0; ph < NumPhases; ph++ {
		fr.phase = ph
		l.phases[ph].run(fr)
	}
}

// PreRunAt implements LoopControl.
func (l *Loop) PreRunAt(phase int, hooks ...Controller) {
	ph := &l.phases[phase]
	ph.lock.Lock()
	ph.preHooks = append(ph.preHooks, hooks...)
	ph.lock.Unlock()
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(phase int, hooks ...Controller) {
	ph := &l.phases[phase]
	ph.lock.Lock()
	ph.postHooks = append(ph.postHooks, hooks...)
	ph.lock.Unlock()
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.pending = append(l.pending, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (f *frame) Context() context.Context {
	return f.ctx
}

func (f *frame) Time() time.Time {
	return f.time
}

func (f *frame) Phase() int {
	return f.phase
}

func (f *frame) Messages() MessageStore {
	return f
}

func (f *frame) PostFrame(hooks ...Controller) {
	f.PostRunAt(f.phase, hooks...)
}

// MessageStore implementation

type msgContext struct {
	frame *frame
	msg   Message
	taken bool
	stop  bool
}

func (c *msgContext) CurrentMessage() Message     { return c.msg }
func (c *msgContext) MessageTaken()               { c.taken = true }
func (c *msgContext) StopProcessing()             { c.stop = true }
func (c *msgContext) AddMessages(msgs ...Message) { c.frame.AddMessages(msgs...) }

func (f *frame) ProcessMessages(proc MessageProcessor) {
	msgs := f.msgs
	f.msgs = nil
	var kept []Message
	for i, msg := range msgs {
		mc := &msgContext{frame: f, msg: msg}
		proc.ProcessMessage(mc)
		if !mc.taken {
			kept = append(kept, msg)
		}
		if mc.stop {
			kept = append(kept, msgs[i+1:]...)
			break
		}
	}
	// messages added during processing go after the kept ones
	f.msgs = append(kept, f.msgs...)
}

func (f *frame) AddMessages(msgs ...Message) {
	f.msgs = append(f.msgs, msgs...)
}

func (p *phaseList) run(fr *frame) {
	p.lock.Lock()
	hooks := p.preHooks
	p.preHooks = nil
	p.lock.Unlock()
	runControllers(fr, hooks)
	runControllers(fr, p.controllers)
	p.lock.Lock()
	hooks, p.postHooks = p.postHooks, nil
	p.lock.Unlock()
	runControllers(fr, hooks)
}

func runControllers(fr *frame, ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(fr); err != nil {
			glog.Errorf("controller error: %v", err)
		}
	}
}
