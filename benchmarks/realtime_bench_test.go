package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/realtime"
)

// Realtime runtime benchmarks measure the capture protocol as a host would
// drive it: queue capacity, full push cycles and per-tick cost.

func fixedMeasure(b boundsx.Bounds) realtime.MeasureFunc {
	return func() (boundsx.Bounds, boundsx.Styles, bool) { return b, nil, true }
}

// attachGrid mounts n grid cells and their detail counterparts.
func attachGrid(tb testing.TB, rt *realtime.Runtime, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		tag := TagName(i)
		if _, err := rt.Attach(realtime.Host{Tag: tag, Screen: gridScreen, Measure: fixedMeasure(CellBounds(i))}); err != nil {
			tb.Fatal(err)
		}
		if _, err := rt.Attach(realtime.Host{Tag: tag, Screen: detailScreen, Measure: fixedMeasure(HeroBounds())}); err != nil {
			tb.Fatal(err)
		}
	}
}

func pushFrame(progress float64) realtime.Frame {
	incoming := detailScreen
	return realtime.Frame{Visible: "grid", Incoming: &incoming, Progress: progress}
}

func BenchmarkRealtimePushCycle(b *testing.B) {
	for _, n := range []int{1, 16, 128} {
		b.Run(fmt.Sprintf("hosts=%d", n), func(b *testing.B) {
			e := boundsx.NewEngine()
			rt := realtime.NewRuntime(e, realtime.Config{MaxEventsPerTick: 4 * n})
			attachGrid(b, rt, n)
			rt.Step(realtime.Frame{Visible: "grid"})

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				rt.Step(pushFrame(0))
				rt.Step(pushFrame(1))
				rt.Step(realtime.Frame{Visible: "detail"})
				rt.Step(realtime.Frame{Visible: "grid"})
			}
			b.StopTimer()

			rc := boundsx.ResolveContext{CurrentScreenKey: "detail", PreviousScreenKey: "grid", Entering: true}
			if !e.ResolveTransitionPair(TagName(0), rc).Resolved() {
				b.Fatal("push did not produce a resolved pair")
			}
		})
	}
}

func BenchmarkRealtimeQueueCapacity(b *testing.B) {
	for _, capacity := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("capacity=%d", capacity), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				rt := realtime.NewRuntime(boundsx.NewEngine(), realtime.Config{MaxEventsPerTick: capacity})
				accepted := 0
				for {
					if err := rt.NotifyScrollSettled("grid"); err != nil {
						break
					}
					accepted++
				}
				if accepted != capacity {
					b.Fatalf("accepted %d events, want %d", accepted, capacity)
				}
			}
			b.ReportMetric(float64(capacity), "events")
		})
	}
}

func BenchmarkRealtimeTickProcessing(b *testing.B) {
	for _, batchSize := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("batch=%d", batchSize), func(b *testing.B) {
			rt := realtime.NewRuntime(boundsx.NewEngine(), realtime.Config{MaxEventsPerTick: batchSize + 64})
			attachGrid(b, rt, 16)
			rt.Step(realtime.Frame{Visible: "grid"})

			var total time.Duration
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				for j := 0; j < batchSize; j++ {
					if err := rt.NotifyScrollSettled("grid"); err != nil {
						b.Fatal(err)
					}
				}
				b.StartTimer()
				start := time.Now()
				rt.Step(realtime.Frame{Visible: "grid"})
				total += time.Since(start)
			}
			avg := total / time.Duration(b.N)
			b.ReportMetric(float64(avg.Nanoseconds()), "ns/tick")
			b.ReportMetric(float64(batchSize), "events/tick")
		})
	}
}

func BenchmarkRealtimeTickLoop(b *testing.B) {
	e := boundsx.NewEngine()
	frame := realtime.Frame{Visible: "grid"}
	rt := realtime.NewRuntime(e, realtime.Config{
		TickRate: time.Millisecond,
		Frames:   realtime.FrameFunc(func() realtime.Frame { return frame }),
	})
	attachGrid(b, rt, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rt.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer rt.Stop()

	b.ResetTimer()
	start := rt.GetTickNumber()
	for i := 0; i < b.N; i++ {
		want := start + uint64(i) + 1
		for rt.GetTickNumber() < want {
			time.Sleep(100 * time.Microsecond)
		}
	}
	b.ReportMetric(float64(rt.GetTickNumber()-start)/b.Elapsed().Seconds(), "ticks/sec")
}
