package boundsx_test

import (
	"fmt"
	"testing"

	. "github.com/comalice/boundsx"
)

func rect(x, y, w, h float64) Bounds {
	return Bounds{X: x, Y: y, Width: w, Height: h, PageX: x, PageY: y}
}

func TestLinkSourceThenDestination(t *testing.T) {
	e := NewEngine()
	bA, bB := rect(0, 0, 10, 10), rect(100, 100, 50, 50)

	e.SetLinkSource("hero", Screen("A"), bA, nil)
	if !e.SetLinkDestination("hero", Screen("B"), bB, nil, "") {
		t.Fatal("expected destination to be set")
	}

	link, ok := e.ActiveLink("hero", "B")
	if !ok {
		t.Fatal("expected active link for B")
	}
	if link.Source.Screen.ScreenKey != "A" || link.Destination.Screen.ScreenKey != "B" {
		t.Errorf("got %s -> %s, want A -> B", link.Source.Screen.ScreenKey, link.Destination.Screen.ScreenKey)
	}
	if link.Source.Snapshot.Bounds != bA || link.Destination.Snapshot.Bounds != bB {
		t.Errorf("bounds mismatch: %+v", link)
	}
	if link.ID == "" {
		t.Error("expected link id")
	}
}

func TestLinkSourceCoalesces(t *testing.T) {
	e := NewEngine()
	b1, b2 := rect(0, 0, 10, 10), rect(5, 5, 12, 12)

	e.SetLinkSource("hero", Screen("A"), b1, nil)
	e.SetLinkSource("hero", Screen("A"), b2, nil)

	links := e.Links("hero")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if !links[0].Pending() {
		t.Error("expected pending link")
	}
	if links[0].Source.Snapshot.Bounds != b2 {
		t.Errorf("expected latest source bounds %+v, got %+v", b2, links[0].Source.Snapshot.Bounds)
	}
}

func TestLinkSourceCoalescesAcrossAncestorFamily(t *testing.T) {
	e := NewEngine()
	e.SetLinkSource("hero", Screen("child", "stack-a"), rect(0, 0, 10, 10), nil)
	e.SetLinkSource("hero", Screen("stack-a"), rect(1, 1, 10, 10), nil)

	if n := len(e.Links("hero")); n != 1 {
		t.Fatalf("expected family writes to coalesce into 1 link, got %d", n)
	}
}

func TestLinkSourcePushesAfterCompletion(t *testing.T) {
	e := NewEngine()
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)
	e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 20, 20), nil, "A")
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)

	links := e.Links("hero")
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if !links[0].Complete() || !links[1].Pending() {
		t.Errorf("expected [complete, pending], got [%v, %v]", links[0].Complete(), links[1].Complete())
	}
}

func TestLinkRetargetPreservesHistory(t *testing.T) {
	e := NewEngine()
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)
	e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 20, 20), nil, "A")

	e.SetLinkSource("hero", Screen("B"), rect(0, 0, 20, 20), nil)
	if !e.HasPendingLinkFromSource("hero", "B") {
		t.Fatal("expected pending link from B")
	}
	e.SetLinkDestination("hero", Screen("C"), rect(0, 0, 30, 30), nil, "B")

	toC, ok := e.ActiveLink("hero", "C")
	if !ok || toC.Source.Screen.ScreenKey != "B" {
		t.Fatalf("ActiveLink(C) = %+v, %v; want source B", toC, ok)
	}
	toB, ok := e.ActiveLink("hero", "B")
	if !ok {
		t.Fatal("expected ActiveLink(B)")
	}
	if toB.Source.Screen.ScreenKey != "A" || toB.Destination.Screen.ScreenKey != "B" {
		t.Errorf("ActiveLink(B) = %s -> %s, want A -> B", toB.Source.Screen.ScreenKey, toB.Destination.Screen.ScreenKey)
	}
}

func TestLinkGroupIsolation(t *testing.T) {
	e := NewEngine()
	one, two := GroupTag("G", "1"), GroupTag("G", "2")

	e.SetGroupActiveID("G", "1")
	e.SetLinkSource(one, Screen("grid"), rect(0, 0, 10, 10), nil)
	e.SetLinkDestination(one, Screen("detail"), rect(0, 0, 100, 100), nil, "grid")

	if e.HasSourceLink(two, "grid") || e.HasDestinationLink(two, "detail") {
		t.Fatal("links under G:1 leaked into G:2")
	}

	e.SetGroupActiveID("G", "2")
	e.SetLinkSource(two, Screen("grid"), rect(20, 0, 10, 10), nil)

	link, ok := e.ActiveLink(one, "detail")
	if !ok || link.Source.Snapshot.Bounds != rect(0, 0, 10, 10) {
		t.Errorf("G:1 link corrupted after switching active id: %+v", link)
	}
	if id, _ := e.GroupActiveID("G"); id != "2" {
		t.Errorf("expected active id 2, got %q", id)
	}
}

func TestLinkAncestorAliasing(t *testing.T) {
	direct := NewEngine()
	direct.SetLinkSource("hero", Screen("stack-a"), rect(0, 0, 10, 10), nil)

	nested := NewEngine()
	nested.SetLinkSource("hero", Screen("child", "stack-a"), rect(0, 0, 10, 10), nil)

	for name, e := range map[string]*Engine{"direct": direct, "nested": nested} {
		if !e.HasSourceLink("hero", "stack-a") {
			t.Errorf("%s: expected HasSourceLink(stack-a)", name)
		}
		if !e.HasPendingLinkFromSource("hero", "stack-a") {
			t.Errorf("%s: expected HasPendingLinkFromSource(stack-a)", name)
		}
	}
	if !nested.HasSourceLink("hero", "child") {
		t.Error("nested: expected HasSourceLink(child)")
	}
}

func TestSetLinkDestinationWithoutPendingIsNoop(t *testing.T) {
	e := NewEngine()
	gen := e.Generation()
	if e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 10, 10), nil, "") {
		t.Error("expected false without a pending link")
	}
	if e.Generation() != gen {
		t.Error("no-op destination must not commit")
	}
	if len(e.Links("hero")) != 0 {
		t.Error("no-op destination must not create links")
	}
}

func TestSetLinkDestinationExpectedSource(t *testing.T) {
	e := NewEngine()
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)

	if e.SetLinkDestination("hero", Screen("C"), rect(0, 0, 10, 10), nil, "B") {
		t.Fatal("expected mismatch on expected source")
	}
	if !e.SetLinkDestination("hero", Screen("C"), rect(0, 0, 10, 10), nil, "A") {
		t.Fatal("expected match on expected source")
	}
	// The link is now complete; a second set must not overwrite it.
	if e.SetLinkDestination("hero", Screen("D"), rect(0, 0, 10, 10), nil, "A") {
		t.Fatal("destination must be set at most once")
	}
	link, _ := e.ActiveLink("hero", "")
	if link.Destination.Screen.ScreenKey != "C" {
		t.Errorf("destination overwritten: %s", link.Destination.Screen.ScreenKey)
	}
}

func TestLinkHistoryIsBounded(t *testing.T) {
	e := NewEngine(WithConfig(Config{HistoryLimit: 3}))
	for i := 0; i < 5; i++ {
		e.SetLinkSource("hero", Screen(ScreenKey(fmt.Sprintf("s%d", i))), rect(0, 0, 10, 10), nil)
		e.SetLinkDestination("hero", Screen(ScreenKey(fmt.Sprintf("d%d", i))), rect(0, 0, 10, 10), nil, "")
	}
	links := e.Links("hero")
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if got := links[0].Source.Screen.ScreenKey; got != "s2" {
		t.Errorf("expected oldest kept link from s2, got %s", got)
	}
	if got := links[2].Source.Screen.ScreenKey; got != "s4" {
		t.Errorf("expected newest link from s4, got %s", got)
	}
}

func TestUpdateLinkSource(t *testing.T) {
	e := NewEngine()
	if e.UpdateLinkSource("hero", "A", rect(0, 0, 1, 1), nil) {
		t.Fatal("update without links must be a no-op")
	}

	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)
	if !e.UpdateLinkSource("hero", "A", rect(0, 50, 10, 10), nil) {
		t.Fatal("expected pending fallback update")
	}
	e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 20, 20), nil, "A")

	// A fresh pending link from A exists alongside the complete one; the
	// complete link is preferred.
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)
	if !e.UpdateLinkSource("hero", "A", rect(0, 200, 10, 10), nil) {
		t.Fatal("expected update")
	}
	links := e.Links("hero")
	if len(links) != 2 {
		t.Fatalf("update must not create links, got %d", len(links))
	}
	if links[0].Source.Snapshot.Bounds != rect(0, 200, 10, 10) {
		t.Errorf("complete link not updated: %+v", links[0].Source.Snapshot.Bounds)
	}
	if links[1].Source.Snapshot.Bounds != rect(0, 0, 10, 10) {
		t.Errorf("pending link should be untouched: %+v", links[1].Source.Snapshot.Bounds)
	}
}

func TestUpdateLinkDestination(t *testing.T) {
	e := NewEngine()
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)

	// Falls back to the pending link and fills it.
	if !e.UpdateLinkDestination("hero", Screen("B"), rect(0, 0, 20, 20), nil) {
		t.Fatal("expected pending fallback")
	}
	if !e.UpdateLinkDestination("hero", Screen("B"), rect(5, 5, 25, 25), nil) {
		t.Fatal("expected complete link update")
	}
	links := e.Links("hero")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if got := links[0].Destination.Snapshot.Bounds; got != rect(5, 5, 25, 25) {
		t.Errorf("destination bounds = %+v", got)
	}
	if e.UpdateLinkDestination("hero", Screen("A"), rect(0, 0, 1, 1), nil) {
		t.Error("source screen must not become its own destination")
	}
}

func TestActiveLinkWithoutKeyReturnsNewest(t *testing.T) {
	e := NewEngine()
	if _, ok := e.ActiveLink("hero", ""); ok {
		t.Fatal("expected no link")
	}
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)
	e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 10, 10), nil, "")
	e.SetLinkSource("hero", Screen("B"), rect(0, 0, 10, 10), nil)

	link, ok := e.ActiveLink("hero", "")
	if !ok || !link.Pending() || link.Source.Screen.ScreenKey != "B" {
		t.Errorf("expected newest pending link from B, got %+v", link)
	}
	if _, ok := e.ActiveLink("hero", "Z"); ok {
		t.Error("unexpected link for unrelated screen")
	}
}

func TestPendingQueries(t *testing.T) {
	e := NewEngine()
	if e.HasPendingLink("hero") {
		t.Fatal("unexpected pending link")
	}
	if _, ok := e.LatestPendingSourceScreenKey("hero"); ok {
		t.Fatal("unexpected pending source")
	}

	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)
	if !e.HasPendingLink("hero") {
		t.Error("expected pending link")
	}
	if key, ok := e.LatestPendingSourceScreenKey("hero"); !ok || key != "A" {
		t.Errorf("LatestPendingSourceScreenKey = %q, %v", key, ok)
	}
	if e.HasDestinationLink("hero", "B") {
		t.Error("pending link has no destination")
	}

	e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 10, 10), nil, "A")
	if e.HasPendingLink("hero") {
		t.Error("link should be complete")
	}
	if !e.HasDestinationLink("hero", "B") || !e.HasSourceLink("hero", "A") {
		t.Error("expected source and destination matches")
	}
}

func TestLinkReadIsCopy(t *testing.T) {
	e := NewEngine()
	e.SetLinkSource("hero", Screen("A", "stack"), rect(0, 0, 10, 10), Styles{"opacity": 1})
	e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 20, 20), Styles{"opacity": 1}, "A")

	link, ok := e.ActiveLink("hero", "B")
	if !ok {
		t.Fatal("expected ActiveLink(B)")
	}
	link.Destination.Snapshot.Bounds.Width = 999
	link.Destination.Snapshot.Styles["opacity"] = 0
	link.Source.Snapshot.Styles["opacity"] = 0
	link.Source.Screen.AncestorKeys[0] = "other"

	for _, links := range [][]TagLink{e.Links("hero"), e.Dump().Tags[0].Links} {
		links[0].Destination.Snapshot.Bounds.Height = 555
		links[0].Source.Snapshot.Styles["opacity"] = 0
	}

	again, _ := e.ActiveLink("hero", "B")
	if w := again.Destination.Snapshot.Bounds.Width; w != 20 {
		t.Errorf("destination width = %v, want 20", w)
	}
	if h := again.Destination.Snapshot.Bounds.Height; h != 20 {
		t.Errorf("destination height = %v, want 20", h)
	}
	if again.Destination.Snapshot.Styles["opacity"] != 1 || again.Source.Snapshot.Styles["opacity"] != 1 {
		t.Errorf("styles mutated through a returned link: %+v", again)
	}
	if !e.HasSourceLink("hero", "stack") {
		t.Error("ancestor keys mutated through a returned link")
	}

	pair := e.ResolveTransitionPair("hero", ResolveContext{CurrentScreenKey: "B", PreviousScreenKey: "A", Entering: true})
	assertBounds(t, "destination", pair.DestinationBounds, rect(0, 0, 20, 20))
	pair.DestinationStyles["opacity"] = 0
	pair = e.ResolveTransitionPair("hero", ResolveContext{CurrentScreenKey: "B", PreviousScreenKey: "A", Entering: true})
	if pair.DestinationStyles["opacity"] != 1 {
		t.Errorf("resolved styles share memory with the registry: %v", pair.DestinationStyles)
	}
}

func TestActiveLinkPrefersArrivalWhenBothComplete(t *testing.T) {
	e := NewEngine()
	e.SetLinkSource("hero", Screen("A"), rect(0, 0, 10, 10), nil)
	e.SetLinkDestination("hero", Screen("B"), rect(0, 0, 20, 20), nil, "A")
	e.SetLinkSource("hero", Screen("B"), rect(0, 0, 20, 20), nil)
	e.SetLinkDestination("hero", Screen("C"), rect(0, 0, 30, 30), nil, "B")

	// B is the destination of A->B and the source of the newer B->C.
	link, ok := e.ActiveLink("hero", "B")
	if !ok {
		t.Fatal("expected ActiveLink(B)")
	}
	if link.Source.Screen.ScreenKey != "A" || link.Destination.Screen.ScreenKey != "B" {
		t.Errorf("ActiveLink(B) = %s -> %s, want A -> B", link.Source.Screen.ScreenKey, link.Destination.Screen.ScreenKey)
	}

	// A screen that only ever acted as a source reports its newest departure.
	e.SetLinkSource("hero", Screen("A"), rect(5, 5, 10, 10), nil)
	e.SetLinkDestination("hero", Screen("D"), rect(0, 0, 40, 40), nil, "A")
	link, _ = e.ActiveLink("hero", "A")
	if link.Destination.Screen.ScreenKey != "D" {
		t.Errorf("ActiveLink(A) destination = %s, want D", link.Destination.Screen.ScreenKey)
	}
}
