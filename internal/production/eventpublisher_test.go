// Tests for ChannelPublisher delivery and engine integration.
package production

import (
	"testing"
	"time"

	"github.com/comalice/boundsx"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan boundsx.Change, 10)
	p := NewChannelPublisher(ch)

	p.Publish(boundsx.Change{Kind: boundsx.ChangeSnapshot, Tag: "hero", Screen: "A", Generation: 1})

	select {
	case got := <-ch:
		if got.Kind != boundsx.ChangeSnapshot || got.Tag != "hero" {
			t.Errorf("change mismatch: %+v", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No change delivered")
	}
}

func TestChannelPublisher_BackpressureDrop(t *testing.T) {
	ch := make(chan boundsx.Change, 1)
	p := NewChannelPublisher(ch)
	ch <- boundsx.Change{} // Fill buffer

	done := make(chan struct{})
	go func() {
		p.Publish(boundsx.Change{Kind: boundsx.ChangeCleared})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full channel")
	}
	if p.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", p.Dropped())
	}
}

func TestChannelPublisher_Close(t *testing.T) {
	ch := make(chan boundsx.Change, 1)
	p := NewChannelPublisher(ch)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	p.Publish(boundsx.Change{Kind: boundsx.ChangeSnapshot}) // must not panic
	if p.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", p.Dropped())
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

func TestChannelPublisher_Integration_Engine(t *testing.T) {
	ch := make(chan boundsx.Change, 16)
	e := boundsx.NewEngine(boundsx.WithPublisher(NewChannelPublisher(ch)))

	e.SetLinkSource("hero", boundsx.Screen("grid"), boundsx.Bounds{Width: 10, Height: 10}, nil)
	e.SetLinkDestination("hero", boundsx.Screen("detail"), boundsx.Bounds{Width: 50, Height: 50}, nil, "grid")

	var kinds []boundsx.ChangeKind
	for len(ch) > 0 {
		kinds = append(kinds, (<-ch).Kind)
	}
	if len(kinds) != 2 || kinds[0] != boundsx.ChangeLinkPushed || kinds[1] != boundsx.ChangeLinkCompleted {
		t.Errorf("kinds = %v", kinds)
	}
}
