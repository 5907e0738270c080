// Package boundsx matches shared-element boundaries across screens so a
// transition can morph one element from its bounds on a departing screen to
// its bounds on an arriving screen.
//
// An Engine holds four registries, all keyed by TagID:
//   - snapshots: last known bounds and styles per screen
//   - link stacks: ordered source to destination attempts, pending or complete
//   - presence: reference-counted mounts per screen, with boundary config
//   - groups: the active member id of list/grid collections
//
// ResolveTransitionPair is queried once per animation frame and picks the
// best pair available: complete links first, then pending links, then raw
// snapshots. Screen keys match through ancestor aliases so a boundary hosted
// inside a nested navigator is found under its parent's key as well.
//
// # Concurrency
//
// Every read is a single atomic load of an immutable registry; every write
// derives a new registry and publishes it with compare-and-swap. Nothing in
// the engine blocks, allocates goroutines, or performs I/O, so it is safe to
// call from a frame callback.
//
// # Failure semantics
//
// No method returns an error. A destination with no pending link, an update
// with no matching link, or a pair that cannot be resolved all come back as
// false or nil values, and the caller renders without special styling for
// that frame.
//
// # Example
//
//	e := boundsx.NewEngine()
//	e.SetLinkSource("hero", boundsx.Screen("list"), listBounds, nil)
//	e.SetLinkDestination("hero", boundsx.Screen("detail"), detailBounds, nil, "list")
//	pair := e.ResolveTransitionPair("hero", boundsx.ResolveContext{
//		CurrentScreenKey:  "detail",
//		PreviousScreenKey: "list",
//		Entering:          true,
//	})
//	placement, ok := boundsx.Place(pair, boundsx.PlacementRequest{Entering: true})
package boundsx
