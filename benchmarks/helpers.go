// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/boundsx"
)

var (
	gridScreen   = boundsx.ScreenIdentifier{ScreenKey: "grid", NavigatorKey: "root"}
	detailScreen = boundsx.ScreenIdentifier{ScreenKey: "detail", NavigatorKey: "root"}
)

// CellBounds returns the page bounds of cell i in a four column grid.
func CellBounds(i int) boundsx.Bounds {
	return boundsx.Bounds{
		Width:  80,
		Height: 80,
		PageX:  float64(i%4) * 90,
		PageY:  float64(i/4) * 90,
	}
}

// HeroBounds is the destination geometry on the detail screen.
func HeroBounds() boundsx.Bounds {
	return boundsx.Bounds{Width: 400, Height: 300}
}

// GenTags creates an engine with n tags, each present on the grid and
// detail screens with a completed link between them.
func GenTags(n int, opts ...boundsx.Option) *boundsx.Engine {
	if n < 1 {
		n = 1
	}
	e := boundsx.NewEngine(opts...)
	for i := 0; i < n; i++ {
		tag := TagName(i)
		e.RegisterBoundaryPresence(tag, gridScreen, nil)
		e.RegisterBoundaryPresence(tag, detailScreen, nil)
		e.SetLinkSource(tag, gridScreen, CellBounds(i), nil)
		e.SetLinkDestination(tag, detailScreen, HeroBounds(), nil, "grid")
	}
	return e
}

// GenDeepStack creates an engine with one tag pushed through depth screens,
// leaving a chain of completed links limited by the history limit.
func GenDeepStack(depth int) *boundsx.Engine {
	if depth < 1 {
		depth = 1
	}
	e := boundsx.NewEngine()
	prev := boundsx.Screen("s0")
	for i := 1; i <= depth; i++ {
		next := boundsx.Screen(boundsx.ScreenKey(fmt.Sprintf("s%d", i)))
		e.SetLinkSource("hero", prev, CellBounds(i), nil)
		e.SetLinkDestination("hero", next, HeroBounds(), nil, prev.ScreenKey)
		prev = next
	}
	return e
}

// TagName returns the tag used for index i.
func TagName(i int) boundsx.TagID {
	return boundsx.GroupTag("photos", fmt.Sprint(i))
}

// GenDumpYAML generates YAML bytes for a dump of an engine with n tags.
func GenDumpYAML(n int) []byte {
	data, err := yaml.Marshal(GenTags(n).Dump())
	if err != nil {
		panic(err)
	}
	return data
}
