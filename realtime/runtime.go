package realtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/comalice/boundsx"
)

var (
	// ErrQueueFull is returned when more events are queued than a tick accepts.
	ErrQueueFull = errors.New("event queue full")
	// ErrInvalidHost is returned by Attach for a host without tag or screen.
	ErrInvalidHost = errors.New("invalid host")
	// ErrUnknownHost is returned by Detach for an id that is not attached.
	ErrUnknownHost = errors.New("unknown host")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("runtime already started")
)

// Frame is the navigation state observed at one tick.
type Frame struct {
	// Visible is the focused screen, the source side of a push.
	Visible boundsx.ScreenKey
	// Incoming is the screen transitioning in, nil while idle.
	Incoming *boundsx.ScreenIdentifier
	// Progress runs from 0 to 1 over the transition.
	Progress float64
	// Closing marks Incoming as being dismissed. Links already exist for a
	// dismissal so no capture happens.
	Closing bool
}

// Transitioning reports whether a push is in flight.
func (f Frame) Transitioning() bool {
	return f.Incoming != nil && !f.Closing
}

// FrameSource supplies the current frame to a running tick loop.
type FrameSource interface {
	Frame() Frame
}

// FrameFunc adapts a function to FrameSource.
type FrameFunc func() Frame

func (f FrameFunc) Frame() Frame { return f() }

// Runtime drives the capture protocol for mounted boundary hosts: it
// measures sources when a push starts, captures destinations with a bounded
// retry budget, and refreshes links after scroll and group changes.
type Runtime struct {
	engine *boundsx.Engine
	logger *log.Logger
	frames FrameSource

	tickRate time.Duration
	ticker   *time.Ticker
	tickNum  uint64

	// Event batching
	eventBatch  []EventWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64
	nextHost    HostID
	attached    map[HostID]Host

	// Tick state, guarded by stepMu
	stepMu       sync.Mutex
	hosts        map[HostID]*hostState
	lastIncoming boundsx.ScreenKey

	// Control
	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// Config configures the runtime.
type Config struct {
	TickRate         time.Duration // default: the engine's tick rate
	MaxEventsPerTick int           // event queue capacity (default: 1000)
	Frames           FrameSource   // polled once per tick by Start
	Logger           *log.Logger   // default: the engine's logger
}

// NewRuntime creates a runtime bound to engine.
func NewRuntime(engine *boundsx.Engine, cfg Config) *Runtime {
	if cfg.MaxEventsPerTick == 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = engine.Config().TickRate.Std()
	}
	if cfg.Logger == nil {
		cfg.Logger = engine.Logger()
	}

	return &Runtime{
		engine:     engine,
		logger:     cfg.Logger,
		frames:     cfg.Frames,
		tickRate:   cfg.TickRate,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
		attached:   make(map[HostID]Host),
		hosts:      make(map[HostID]*hostState),
		stopped:    make(chan struct{}),
	}
}

// Engine returns the engine the runtime writes to.
func (rt *Runtime) Engine() *boundsx.Engine {
	return rt.engine
}

// Start begins ticking at the configured rate until ctx is done or Stop is
// called.
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.tickCancel != nil {
		return ErrAlreadyStarted
	}
	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)

	go rt.tickLoop()

	return nil
}

// Stop halts the tick loop and waits for it to exit.
func (rt *Runtime) Stop() error {
	if rt.tickCancel == nil {
		return nil
	}
	rt.tickCancel()
	rt.ticker.Stop()
	<-rt.stopped
	return nil
}

func (rt *Runtime) tickLoop() {
	defer close(rt.stopped)

	for {
		select {
		case <-rt.tickCtx.Done():
			return
		case <-rt.ticker.C:
			var frame Frame
			if rt.frames != nil {
				frame = rt.frames.Frame()
			}
			rt.safeStep(frame)
		}
	}
}

// safeStep runs one tick, logging instead of crashing on a panic from a
// host's measure callback.
func (rt *Runtime) safeStep(frame Frame) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("tick panicked", "tick", rt.GetTickNumber(), "panic", fmt.Sprint(r))
		}
	}()
	rt.Step(frame)
}

// Step processes queued events and runs capture for frame. Start calls it
// once per tick; tests and hosts with their own frame clock call it directly.
func (rt *Runtime) Step(frame Frame) {
	rt.stepMu.Lock()
	defer rt.stepMu.Unlock()

	rt.processTick(frame)

	rt.batchMu.Lock()
	rt.tickNum++
	rt.batchMu.Unlock()
}

// Attach mounts a host. Its presence is registered immediately so a push
// that starts before the next tick already sees it.
func (rt *Runtime) Attach(h Host) (HostID, error) {
	if h.Tag == "" || h.Screen.ScreenKey == "" {
		return 0, fmt.Errorf("%w: tag %q screen %q", ErrInvalidHost, h.Tag, h.Screen.ScreenKey)
	}

	rt.batchMu.Lock()
	rt.nextHost++
	id := rt.nextHost
	err := rt.enqueueLocked(Event{Kind: EventAttach, Host: id, host: &h}, hostPriority)
	if err == nil {
		rt.attached[id] = h
	}
	rt.batchMu.Unlock()
	if err != nil {
		return 0, err
	}

	rt.engine.RegisterBoundaryPresence(h.Tag, h.Screen, h.Config)
	return id, nil
}

// Detach unmounts a host and releases its presence.
func (rt *Runtime) Detach(id HostID) error {
	rt.batchMu.Lock()
	h, ok := rt.attached[id]
	if !ok {
		rt.batchMu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownHost, id)
	}
	err := rt.enqueueLocked(Event{Kind: EventDetach, Host: id}, hostPriority)
	if err == nil {
		delete(rt.attached, id)
	}
	rt.batchMu.Unlock()
	if err != nil {
		return err
	}

	rt.engine.UnregisterBoundaryPresence(h.Tag, h.Screen.ScreenKey)
	return nil
}

// NotifyLayout asks for a fresh snapshot of host id on the next tick.
func (rt *Runtime) NotifyLayout(id HostID) error {
	return rt.enqueue(Event{Kind: EventLayout, Host: id}, 0)
}

// NotifyFocus reports that screen gained focus.
func (rt *Runtime) NotifyFocus(screen boundsx.ScreenKey) error {
	return rt.enqueue(Event{Kind: EventFocus, Screen: screen}, 0)
}

// NotifyBlur reports that screen lost focus. Its hosts are snapshotted.
func (rt *Runtime) NotifyBlur(screen boundsx.ScreenKey) error {
	return rt.enqueue(Event{Kind: EventBlur, Screen: screen}, 0)
}

// NotifyScrollSettled reports that the scroll container on screen came to
// rest. Its hosts are re-measured once no push is in flight.
func (rt *Runtime) NotifyScrollSettled(screen boundsx.ScreenKey) error {
	return rt.enqueue(Event{Kind: EventScrollSettled, Screen: screen}, 0)
}

// SetGroupActive changes the active member of group and re-captures the
// member's boundaries on the next tick.
func (rt *Runtime) SetGroupActive(group, id string) error {
	return rt.enqueue(Event{Kind: EventGroupActive, Group: group, ID: id}, 0)
}

func (rt *Runtime) enqueue(ev Event, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.enqueueLocked(ev, priority)
}

func (rt *Runtime) enqueueLocked(ev Event, priority int) error {
	if len(rt.eventBatch) >= cap(rt.eventBatch) {
		return ErrQueueFull
	}

	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       ev,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++

	return nil
}

// GetTickNumber returns the number of completed ticks.
func (rt *Runtime) GetTickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// HostCount returns the number of hosts known to the tick loop.
func (rt *Runtime) HostCount() int {
	rt.stepMu.Lock()
	defer rt.stepMu.Unlock()
	return len(rt.hosts)
}

// sortedHosts returns hosts in attach order so capture is reproducible.
func (rt *Runtime) sortedHosts() []*hostState {
	out := make([]*hostState, 0, len(rt.hosts))
	for _, hs := range rt.hosts {
		out = append(out, hs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
