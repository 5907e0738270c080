package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/realtime"
)

// TestDriverInterface runs the same push on both drivers.
func TestDriverInterface(t *testing.T) {
	tests := []struct {
		name   string
		driver func(*boundsx.Engine) Driver
	}{
		{
			name:   "Stepped",
			driver: func(e *boundsx.Engine) Driver { return NewStepDriver(e) },
		},
		{
			name:   "TickBased",
			driver: func(e *boundsx.Engine) Driver { return NewTickDriver(e, 2*time.Millisecond) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := boundsx.NewEngine()
			d := tt.driver(e)
			RunCommonTests(t, e, d)
		})
	}
}

// RunCommonTests pushes grid to detail and back through d.
func RunCommonTests(t *testing.T, e *boundsx.Engine, d Driver) {
	t.Helper()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	cell := NewFakeHost(Rect(0, 200, 40, 40), boundsx.Styles{"borderRadius": 4})
	hero := NewFakeHost(Rect(0, 0, 400, 300), nil)
	hero.FailNext(1)

	rt := d.Runtime()
	if _, err := rt.Attach(realtime.Host{Tag: "photo", Screen: boundsx.Screen("grid"), Measure: cell.Measure}); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Attach(realtime.Host{Tag: "photo", Screen: boundsx.Screen("detail"), Measure: hero.Measure}); err != nil {
		t.Fatal(err)
	}

	if err := d.Play(Idle("grid")); err != nil {
		t.Fatal(err)
	}
	if err := d.Play(PushFrames("grid", boundsx.Screen("detail"), 5)...); err != nil {
		t.Fatal(err)
	}
	if err := d.Play(Idle("detail")); err != nil {
		t.Fatal(err)
	}

	links := e.Links("photo")
	if len(links) != 1 || !links[0].Complete() {
		t.Fatalf("links = %+v", links)
	}
	if links[0].Source.Snapshot.Styles["borderRadius"] != 4 {
		t.Errorf("source styles = %v", links[0].Source.Snapshot.Styles)
	}
	if hero.Calls() < 2 {
		t.Errorf("destination should have been retried, calls = %d", hero.Calls())
	}

	if err := d.Play(DismissFrames(boundsx.Screen("detail"), "grid", 3)...); err != nil {
		t.Fatal(err)
	}
	pair := e.ResolveTransitionPair("photo", boundsx.ResolveContext{
		CurrentScreenKey:  "detail",
		PreviousScreenKey: "grid",
		Entering:          true,
	})
	if !pair.Resolved() || pair.SourceBounds.PageY != 200 || pair.DestinationBounds.Width != 400 {
		t.Errorf("pair = %+v", pair)
	}
}

func TestPushFrames(t *testing.T) {
	frames := PushFrames("a", boundsx.Screen("b"), 3)
	want := []float64{0, 0.5, 1}
	for i, f := range frames {
		if f.Progress != want[i] || !f.Transitioning() || f.Incoming.ScreenKey != "b" {
			t.Errorf("frame %d = %+v", i, f)
		}
	}
	frames[0].Incoming.ScreenKey = "x"
	if frames[1].Incoming.ScreenKey != "b" {
		t.Error("frames share the incoming identifier")
	}

	dismiss := DismissFrames(boundsx.Screen("b"), "a", 2)
	if dismiss[0].Progress != 1 || dismiss[1].Progress != 0 || dismiss[0].Transitioning() {
		t.Errorf("dismiss = %+v", dismiss)
	}
	if single := PushFrames("a", boundsx.Screen("b"), 1); single[0].Progress != 0 {
		t.Errorf("single frame progress = %v", single[0].Progress)
	}
}

func TestFakeHost(t *testing.T) {
	h := NewFakeHost(Rect(1, 2, 3, 4), nil)
	h.FailNext(2)
	for i := 0; i < 2; i++ {
		if _, _, ok := h.Measure(); ok {
			t.Fatalf("measure %d should fail", i)
		}
	}
	h.SetBounds(Rect(5, 6, 7, 8))
	b, _, ok := h.Measure()
	if !ok || b.PageX != 5 || b.Width != 7 {
		t.Errorf("measure = %+v %v", b, ok)
	}
	if h.Calls() != 3 {
		t.Errorf("calls = %d", h.Calls())
	}
}
