package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/internal/production"
	"github.com/comalice/boundsx/realtime"
)

// navigator animates pushes and dismissals for the tick loop.
type navigator struct {
	mu    sync.Mutex
	frame realtime.Frame
}

func (n *navigator) Frame() realtime.Frame {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.frame
}

func (n *navigator) set(f realtime.Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frame = f
}

// animate moves progress from 0 to 1 (or back when closing) over d.
func (n *navigator) animate(ctx context.Context, visible boundsx.ScreenKey, incoming boundsx.ScreenIdentifier, closing bool, d time.Duration) {
	start := time.Now()
	for {
		p := float64(time.Since(start)) / float64(d)
		if p > 1 {
			p = 1
		}
		if closing {
			p = 1 - p
		}
		in := incoming
		n.set(realtime.Frame{Visible: visible, Incoming: &in, Progress: p, Closing: closing})
		if time.Since(start) >= d {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func cellMeasure(col int) realtime.MeasureFunc {
	return func() (boundsx.Bounds, boundsx.Styles, bool) {
		return boundsx.Bounds{Width: 100, Height: 100, PageX: float64(col) * 110, PageY: 300}, boundsx.Styles{"borderRadius": 12}, true
	}
}

func heroMeasure() (boundsx.Bounds, boundsx.Styles, bool) {
	return boundsx.Bounds{Width: 400, Height: 300, PageX: 0, PageY: 0}, nil, true
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05.00", Level: log.DebugLevel})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	changes := make(chan boundsx.Change, 100)
	publisher := production.NewChannelPublisher(changes)
	engine := boundsx.NewEngine(boundsx.WithPublisher(publisher))

	nav := &navigator{frame: realtime.Frame{Visible: "grid"}}
	rt := realtime.NewRuntime(engine, realtime.Config{Frames: nav, Logger: logger})

	for col := 0; col < 3; col++ {
		id := fmt.Sprint(col)
		tag := boundsx.GroupTag("photos", id)
		mustAttach(rt, realtime.Host{Tag: tag, Group: "photos", MemberID: id, Screen: boundsx.Screen("grid"), Measure: cellMeasure(col)})
		mustAttach(rt, realtime.Host{Tag: tag, Group: "photos", MemberID: id, Screen: boundsx.Screen("detail"), Measure: heroMeasure,
			Config: &boundsx.BoundaryConfig{Anchor: boundsx.AnchorTop}})
	}
	if err := rt.SetGroupActive("photos", "1"); err != nil {
		logger.Fatal("set group", "err", err)
	}

	if err := rt.Start(ctx); err != nil {
		logger.Fatal("start runtime", "err", err)
	}
	defer rt.Stop()

	go func() {
		for c := range changes {
			logger.Debug("change", "kind", c.Kind, "tag", c.Tag, "screen", c.Screen, "gen", c.Generation)
		}
	}()

	tag := boundsx.GroupTag("photos", "1")
	rc := boundsx.ResolveContext{CurrentScreenKey: "detail", PreviousScreenKey: "grid", Entering: true}
	cfg, _ := engine.BoundaryConfig(tag, "detail")

	done := make(chan struct{})
	go func() {
		defer close(done)
		nav.animate(ctx, "grid", boundsx.Screen("detail"), false, 300*time.Millisecond)
		nav.set(realtime.Frame{Visible: "detail"})
		time.Sleep(100 * time.Millisecond)
		nav.animate(ctx, "grid", boundsx.Screen("detail"), true, 300*time.Millisecond)
		nav.set(realtime.Frame{Visible: "grid"})
		time.Sleep(100 * time.Millisecond)
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			f := nav.Frame()
			pair := engine.ResolveTransitionPair(tag, rc)
			if p, ok := boundsx.Place(pair, boundsx.RequestFromConfig(cfg, true)); ok {
				fmt.Printf("tick %3d progress %.2f translate (%6.1f, %6.1f) scale %.2f\n",
					rt.GetTickNumber(), f.Progress, p.TranslateX, p.TranslateY, p.ScaleX)
			} else {
				fmt.Printf("tick %3d progress %.2f unresolved\n", rt.GetTickNumber(), f.Progress)
			}
		case <-done:
			finish(engine, logger)
			return
		case <-ctx.Done():
			fmt.Println("\nShutting down gracefully...")
			return
		}
	}
}

func mustAttach(rt *realtime.Runtime, h realtime.Host) {
	if _, err := rt.Attach(h); err != nil {
		log.Fatal("attach", "tag", h.Tag, "err", err)
	}
}

func finish(engine *boundsx.Engine, logger *log.Logger) {
	dir, err := os.MkdirTemp("", "boundsx-demo")
	if err != nil {
		logger.Error("temp dir", "err", err)
		return
	}
	persister, err := production.NewJSONPersister(dir)
	if err != nil {
		logger.Error("persister", "err", err)
		return
	}
	state := engine.Dump()
	if err := persister.Save(context.Background(), "demo", state); err != nil {
		logger.Error("save dump", "err", err)
		return
	}
	logger.Info("dump saved", "dir", dir)

	v := &production.DefaultVisualizer{}
	fmt.Println("DOT:\n" + v.ExportDOT(state))
}
