package boundsx_test

import (
	"testing"

	. "github.com/comalice/boundsx"
)

func TestSnapshotUpsert(t *testing.T) {
	e := NewEngine()
	if _, ok := e.Snapshot("hero", "A"); ok {
		t.Fatal("expected no snapshot")
	}

	e.RegisterSnapshot("hero", Screen("A"), rect(0, 0, 10, 10), Styles{"borderRadius": 4})
	e.RegisterSnapshot("hero", Screen("A"), rect(1, 2, 30, 40), Styles{"borderRadius": 8})

	snap, ok := e.Snapshot("hero", "A")
	if !ok {
		t.Fatal("expected snapshot")
	}
	if snap.Bounds != rect(1, 2, 30, 40) {
		t.Errorf("bounds = %+v", snap.Bounds)
	}
	if snap.Styles["borderRadius"] != 8 {
		t.Errorf("styles = %v", snap.Styles)
	}
}

func TestSnapshotStylesAreCopied(t *testing.T) {
	e := NewEngine()
	styles := Styles{"opacity": 1.0}
	e.RegisterSnapshot("hero", Screen("A"), rect(0, 0, 10, 10), styles)
	styles["opacity"] = 0.0

	snap, _ := e.Snapshot("hero", "A")
	if snap.Styles["opacity"] != 1.0 {
		t.Errorf("caller mutation leaked into registry: %v", snap.Styles)
	}
}

func TestSnapshotAncestorLookup(t *testing.T) {
	e := NewEngine()
	e.RegisterSnapshot("hero", Screen("child", "stack-a", "root"), rect(0, 0, 10, 10), nil)

	for _, key := range []ScreenKey{"child", "stack-a", "root"} {
		if _, ok := e.Snapshot("hero", key); !ok {
			t.Errorf("expected snapshot via %q", key)
		}
	}
	if _, ok := e.Snapshot("hero", "other"); ok {
		t.Error("unexpected snapshot for unrelated key")
	}
}

func TestSnapshotExactMatchWins(t *testing.T) {
	e := NewEngine()
	e.RegisterSnapshot("hero", Screen("child", "stack-a"), rect(0, 0, 10, 10), nil)
	e.RegisterSnapshot("hero", Screen("stack-a"), rect(50, 50, 10, 10), nil)

	snap, _ := e.Snapshot("hero", "stack-a")
	if snap.Bounds != rect(50, 50, 10, 10) {
		t.Errorf("expected exact snapshot, got %+v", snap.Bounds)
	}
}

func TestSnapshotIgnoresEmptyKeys(t *testing.T) {
	e := NewEngine()
	e.RegisterSnapshot("", Screen("A"), rect(0, 0, 10, 10), nil)
	e.RegisterSnapshot("hero", Screen(""), rect(0, 0, 10, 10), nil)
	if e.Generation() != 0 {
		t.Errorf("empty keys must not commit, generation %d", e.Generation())
	}
}

func TestSnapshotReadIsCopy(t *testing.T) {
	e := NewEngine()
	e.RegisterSnapshot("hero", Screen("A", "stack"), rect(0, 0, 10, 10), Styles{"radius": 4})
	gen := e.Generation()

	snap, _ := e.Snapshot("hero", "A")
	snap.Styles["radius"] = 99

	again, _ := e.Snapshot("hero", "A")
	if again.Styles["radius"] != 4 {
		t.Errorf("returned styles share memory with the registry: %v", again.Styles)
	}
	if e.Generation() != gen {
		t.Errorf("generation changed on read: %d -> %d", gen, e.Generation())
	}
}
