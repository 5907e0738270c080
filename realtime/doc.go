// Package realtime drives boundary capture on a fixed tick.
//
// Hosts (mounted UI elements that may be transition endpoints) are attached
// to a Runtime. Lifecycle notifications such as layout, focus, blur, scroll
// settle and group changes are queued from any goroutine and applied at the
// next tick in deterministic order: host set changes first, then by sequence
// number.
//
// Each tick then compares the hosts against the current Frame:
//   - When a push starts, every host on the visible screen whose tag is also
//     mounted on the incoming screen is measured and becomes a link source.
//   - Hosts on the incoming screen complete pending links from the visible
//     screen. The first attempt is immediate; later attempts happen only when
//     the transition progress enters a new bucket, up to the engine's retry
//     budget, after which a retry-exhausted change is reported.
//   - When a group's active member changes, the member's boundaries are
//     re-captured so the link follows the new member.
//   - After a scroll settles the affected hosts are re-measured and the links
//     they take part in are updated.
//
// # Example Usage
//
//	engine := boundsx.NewEngine()
//	rt := realtime.NewRuntime(engine, realtime.Config{
//		Frames: realtime.FrameFunc(nav.Frame),
//	})
//	rt.Attach(realtime.Host{Tag: "hero", Screen: boundsx.Screen("grid"), Measure: measureCell})
//	rt.Start(ctx)
//	defer rt.Stop()
//
// Hosts with their own frame clock call Step directly instead of Start.
package realtime
