package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/realtime"
)

// ErrStalled is returned when a ticking runtime does not advance in time.
var ErrStalled = errors.New("runtime did not advance")

// Driver plays scripted frames through a realtime runtime. It lets the same
// test run against a manually stepped runtime and a ticker-driven one.
type Driver interface {
	Start(ctx context.Context) error
	Stop() error
	Runtime() *realtime.Runtime
	Play(frames ...realtime.Frame) error
}

// StepDriver calls Step once per frame on the caller's goroutine.
type StepDriver struct {
	rt *realtime.Runtime
}

// NewStepDriver creates a driver that steps a new runtime for engine.
func NewStepDriver(engine *boundsx.Engine) *StepDriver {
	return &StepDriver{rt: realtime.NewRuntime(engine, realtime.Config{})}
}

func (d *StepDriver) Start(ctx context.Context) error { return nil }

func (d *StepDriver) Stop() error { return nil }

func (d *StepDriver) Runtime() *realtime.Runtime { return d.rt }

func (d *StepDriver) Play(frames ...realtime.Frame) error {
	for _, f := range frames {
		d.rt.Step(f)
	}
	return nil
}

// TickDriver feeds frames to a ticker-driven runtime through a Navigator and
// waits until each frame has been seen by a full tick.
type TickDriver struct {
	rt      *realtime.Runtime
	nav     *Navigator
	timeout time.Duration
}

// NewTickDriver creates a driver for a runtime ticking at tickRate.
func NewTickDriver(engine *boundsx.Engine, tickRate time.Duration) *TickDriver {
	nav := NewNavigator("")
	return &TickDriver{
		rt: realtime.NewRuntime(engine, realtime.Config{
			TickRate: tickRate,
			Frames:   nav,
		}),
		nav:     nav,
		timeout: time.Second + 100*tickRate,
	}
}

func (d *TickDriver) Start(ctx context.Context) error { return d.rt.Start(ctx) }

func (d *TickDriver) Stop() error { return d.rt.Stop() }

func (d *TickDriver) Runtime() *realtime.Runtime { return d.rt }

func (d *TickDriver) Play(frames ...realtime.Frame) error {
	for _, f := range frames {
		d.nav.Set(f)
		// A tick already in flight may have read the previous frame.
		target := d.rt.GetTickNumber() + 2
		deadline := time.Now().Add(d.timeout)
		for d.rt.GetTickNumber() < target {
			if time.Now().After(deadline) {
				return fmt.Errorf("%w: waiting for tick %d", ErrStalled, target)
			}
			time.Sleep(time.Millisecond)
		}
	}
	return nil
}

// Navigator is a FrameSource holding the current navigation frame.
type Navigator struct {
	mu    sync.Mutex
	frame realtime.Frame
}

// NewNavigator creates a navigator idle on visible.
func NewNavigator(visible boundsx.ScreenKey) *Navigator {
	return &Navigator{frame: realtime.Frame{Visible: visible}}
}

// Frame implements realtime.FrameSource.
func (n *Navigator) Frame() realtime.Frame {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.frame
}

// Set replaces the current frame.
func (n *Navigator) Set(f realtime.Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frame = f
}

// Idle returns the frame of a settled screen.
func Idle(visible boundsx.ScreenKey) realtime.Frame {
	return realtime.Frame{Visible: visible}
}

// PushFrames returns n frames of a push from the visible screen to incoming
// with progress running from 0 to 1.
func PushFrames(visible boundsx.ScreenKey, incoming boundsx.ScreenIdentifier, n int) []realtime.Frame {
	frames := make([]realtime.Frame, n)
	for i := range frames {
		in := incoming
		frames[i] = realtime.Frame{Visible: visible, Incoming: &in, Progress: progress(i, n)}
	}
	return frames
}

// DismissFrames returns n frames of closing onto the revealed screen with
// progress running from 1 to 0.
func DismissFrames(closing boundsx.ScreenIdentifier, revealed boundsx.ScreenKey, n int) []realtime.Frame {
	frames := make([]realtime.Frame, n)
	for i := range frames {
		c := closing
		frames[i] = realtime.Frame{Visible: revealed, Incoming: &c, Progress: 1 - progress(i, n), Closing: true}
	}
	return frames
}

func progress(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
