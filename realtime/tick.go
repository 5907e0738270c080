package realtime

import (
	"fmt"

	"github.com/comalice/boundsx"
)

// processTick processes one complete tick
func (rt *Runtime) processTick(frame Frame) {
	// Phase 1: Collect events atomically
	events := rt.collectEvents()

	// Phase 2: Sort for deterministic order
	sortEvents(events)

	// Phase 3: Apply host set and measurement events
	rt.processEvents(events)

	// Phase 4: Capture against the frame
	hosts := rt.sortedHosts()
	rt.resetOnNavigation(frame, hosts)
	if frame.Transitioning() {
		rt.captureSources(frame, hosts)
	}
	rt.refreshGroups(frame, hosts)
	if frame.Transitioning() {
		rt.captureDestinations(frame, hosts)
	} else if frame.Incoming == nil {
		rt.refreshScrolled(hosts)
	}
}

// collectEvents atomically retrieves and clears the event batch
func (rt *Runtime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, cap(rt.eventBatch))

	return events
}

func (rt *Runtime) processEvents(events []EventWithMeta) {
	for _, meta := range events {
		ev := meta.Event
		switch ev.Kind {
		case EventAttach:
			rt.hosts[ev.Host] = &hostState{id: ev.Host, host: *ev.host}
		case EventDetach:
			delete(rt.hosts, ev.Host)
		case EventLayout:
			if hs, ok := rt.hosts[ev.Host]; ok {
				rt.snapshot(hs)
			}
		case EventFocus:
			for _, hs := range rt.sortedHosts() {
				if hs.host.CaptureOnFocus && hs.onScreen(ev.Screen) {
					rt.snapshot(hs)
				}
			}
		case EventBlur:
			for _, hs := range rt.sortedHosts() {
				if hs.onScreen(ev.Screen) {
					rt.snapshot(hs)
				}
			}
		case EventScrollSettled:
			for _, hs := range rt.hosts {
				if hs.onScreen(ev.Screen) {
					hs.scrollDirty = true
				}
			}
		case EventGroupActive:
			rt.engine.SetGroupActiveID(ev.Group, ev.ID)
			for _, hs := range rt.hosts {
				if hs.host.Group == ev.Group && hs.host.MemberID == ev.ID {
					hs.groupDirty = true
					hs.groupAttempts = 0
				}
			}
		}
	}
}

// snapshot measures hs and records the result, reporting a failed
// measurement instead of writing a zero rectangle.
func (rt *Runtime) snapshot(hs *hostState) (boundsx.Bounds, boundsx.Styles, bool) {
	b, s, ok := hs.measure()
	if !ok {
		rt.engine.Report(boundsx.Change{Kind: boundsx.ChangeMissingMeasurement, Tag: hs.host.Tag, Screen: hs.host.Screen.ScreenKey})
		return b, s, false
	}
	rt.engine.RegisterSnapshot(hs.host.Tag, hs.host.Screen, b, s)
	return b, s, true
}

func (rt *Runtime) resetOnNavigation(frame Frame, hosts []*hostState) {
	var key boundsx.ScreenKey
	if frame.Incoming != nil {
		key = frame.Incoming.ScreenKey
	}
	if key == rt.lastIncoming {
		return
	}
	rt.lastIncoming = key
	for _, hs := range hosts {
		hs.resetNavigation()
	}
}

// captureSources starts a link for every host on the visible screen whose
// tag is also present on the incoming screen.
func (rt *Runtime) captureSources(frame Frame, hosts []*hostState) {
	incoming := *frame.Incoming
	for _, hs := range hosts {
		if hs.sourcedFor == incoming.ScreenKey || !hs.onScreen(frame.Visible) || hs.host.Screen.SameFamily(incoming) {
			continue
		}
		if !rt.engine.HasBoundaryPresence(hs.host.Tag, incoming.ScreenKey) || !hs.activeMember(rt.engine) {
			continue
		}
		hs.sourcedFor = incoming.ScreenKey

		b, s, ok := rt.snapshot(hs)
		if !ok {
			snap, found := rt.engine.Snapshot(hs.host.Tag, hs.host.Screen.ScreenKey)
			if !found {
				continue
			}
			b, s = snap.Bounds, snap.Styles
		}
		rt.engine.SetLinkSource(hs.host.Tag, hs.host.Screen, b, s)
	}
}

// captureDestinations completes pending links from the visible screen. The
// first attempt is immediate; retries wait for the progress bucket to change
// and stop after the retry budget.
func (rt *Runtime) captureDestinations(frame Frame, hosts []*hostState) {
	cfg := rt.engine.Config()
	incoming := *frame.Incoming
	bucket := progressBucket(frame.Progress, cfg.ProgressBuckets)

	for _, hs := range hosts {
		if !hs.onScreen(incoming.ScreenKey) || !hs.activeMember(rt.engine) {
			continue
		}
		if hs.dest.screen != incoming.ScreenKey {
			hs.dest = destAttempt{screen: incoming.ScreenKey}
		}
		d := &hs.dest
		if d.done || !rt.engine.HasPendingLinkFromSource(hs.host.Tag, frame.Visible) {
			continue
		}
		if d.attempts > 0 && bucket == d.lastBucket {
			continue
		}
		d.attempts++
		d.lastBucket = bucket

		b, s, ok := hs.measure()
		if ok {
			rt.engine.RegisterSnapshot(hs.host.Tag, hs.host.Screen, b, s)
			if rt.engine.SetLinkDestination(hs.host.Tag, hs.host.Screen, b, s, frame.Visible) {
				d.done = true
			}
			continue
		}
		if d.attempts > cfg.RetryBudget {
			d.done = true
			rt.logger.Debug("destination capture gave up", "tag", hs.host.Tag, "screen", incoming.ScreenKey, "attempts", d.attempts)
			rt.engine.Report(boundsx.Change{
				Kind:   boundsx.ChangeRetryExhausted,
				Tag:    hs.host.Tag,
				Screen: incoming.ScreenKey,
				Detail: fmt.Sprintf("%d attempts", d.attempts),
			})
		}
	}
}

// refreshGroups re-captures members that just became active. Members off
// the visible screen act as sources, members on it as destinations.
func (rt *Runtime) refreshGroups(frame Frame, hosts []*hostState) {
	budget := rt.engine.Config().RetryBudget
	for _, pass := range []bool{false, true} {
		for _, hs := range hosts {
			if !hs.groupDirty || hs.onScreen(frame.Visible) != pass {
				continue
			}
			tag, key := hs.host.Tag, hs.host.Screen.ScreenKey
			b, s, ok := hs.measure()
			if !ok {
				hs.groupAttempts++
				if hs.groupAttempts > budget {
					hs.groupDirty = false
					rt.engine.Report(boundsx.Change{Kind: boundsx.ChangeRetryExhausted, Tag: tag, Screen: key, Detail: "group"})
				}
				continue
			}
			hs.groupDirty = false
			rt.engine.RegisterSnapshot(tag, hs.host.Screen, b, s)
			switch {
			case !pass && rt.engine.HasSourceLink(tag, key):
				rt.engine.UpdateLinkSource(tag, key, b, s)
			case !pass && rt.enteredThroughGroup(hs.host.Group, frame.Visible, hosts):
				rt.engine.SetLinkSource(tag, hs.host.Screen, b, s)
			case pass:
				rt.engine.UpdateLinkDestination(tag, hs.host.Screen, b, s)
			}
		}
	}
}

// enteredThroughGroup reports whether the visible screen was reached by a
// link from some member of group.
func (rt *Runtime) enteredThroughGroup(group string, visible boundsx.ScreenKey, hosts []*hostState) bool {
	if visible == "" {
		return false
	}
	for _, hs := range hosts {
		if hs.host.Group == group && hs.onScreen(visible) && rt.engine.HasDestinationLink(hs.host.Tag, visible) {
			return true
		}
	}
	return false
}

// refreshScrolled re-measures hosts whose scroll container settled and
// updates the links they take part in.
func (rt *Runtime) refreshScrolled(hosts []*hostState) {
	for _, hs := range hosts {
		if !hs.scrollDirty {
			continue
		}
		hs.scrollDirty = false
		b, s, ok := rt.snapshot(hs)
		if !ok {
			continue
		}
		tag := hs.host.Tag
		if rt.engine.HasSourceLink(tag, hs.host.Screen.ScreenKey) {
			rt.engine.UpdateLinkSource(tag, hs.host.Screen.ScreenKey, b, s)
		}
		if rt.engine.HasDestinationLink(tag, hs.host.Screen.ScreenKey) {
			rt.engine.UpdateLinkDestination(tag, hs.host.Screen, b, s)
		}
	}
}

func progressBucket(progress float64, buckets int) int {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return int(progress * float64(buckets))
}
