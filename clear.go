package boundsx

// screenFilter selects the state that a clear removes.
type screenFilter struct {
	// snapshot and presence entries are matched on their stored identifier
	entry func(ScreenIdentifier) bool
	// links are removed when either endpoint matches
	link func(ScreenIdentifier) bool
	kind string
	key  string
}

// Clear removes every snapshot and presence entry stored under key and every
// link with an endpoint matching key. Called once when a screen is
// permanently removed, not on blur.
func (e *Engine) Clear(key ScreenKey) {
	if key == "" {
		return
	}
	e.clear(screenFilter{
		entry: func(s ScreenIdentifier) bool { return s.MatchesExact(key) },
		link:  func(s ScreenIdentifier) bool { return s.Matches(key) },
		kind:  "screen",
		key:   string(key),
	})
}

// ClearByAncestor removes state stored under key or under any screen that
// lists key among its ancestors, tearing down a nested navigator as one unit.
func (e *Engine) ClearByAncestor(key ScreenKey) {
	if key == "" {
		return
	}
	match := func(s ScreenIdentifier) bool { return s.Matches(key) }
	e.clear(screenFilter{entry: match, link: match, kind: "ancestor", key: string(key)})
}

// ClearByBranch removes state of every screen belonging to navigator nav or
// a navigator nested inside it.
func (e *Engine) ClearByBranch(nav NavigatorKey) {
	if nav == "" {
		return
	}
	match := func(s ScreenIdentifier) bool { return s.InBranch(nav) }
	e.clear(screenFilter{entry: match, link: match, kind: "branch", key: string(nav)})
}

func (e *Engine) clear(f screenFilter) {
	e.commit(func(cur *registry) (*registry, []Change) {
		var (
			next    *registry
			changes []Change
		)
		ensure := func() {
			if next == nil {
				next = cur.clone()
			}
		}

		for tag, t := range cur.tags {
			if !t.touchedBy(f) {
				continue
			}
			ensure()
			ts := &tagState{snapshots: make(map[ScreenKey]snapshotEntry, len(t.snapshots))}
			for k, entry := range t.snapshots {
				if !f.entry(entry.screen) {
					ts.snapshots[k] = entry
				}
			}
			for _, l := range t.links {
				if f.link(l.Source.Screen) || (l.Destination != nil && f.link(l.Destination.Screen)) {
					continue
				}
				ts.links = append(ts.links, l)
			}
			next.withTag(tag, ts)
			changes = append(changes, Change{Kind: ChangeCleared, Tag: tag, Detail: f.kind + ":" + f.key})
		}

		for tag, entries := range cur.presence {
			var kept map[ScreenKey]PresenceEntry
			removed := false
			for k, entry := range entries {
				if f.entry(entry.Screen) {
					removed = true
					continue
				}
				if kept == nil {
					kept = make(map[ScreenKey]PresenceEntry, len(entries))
				}
				kept[k] = entry
			}
			if !removed {
				continue
			}
			ensure()
			next.withPresence(tag, kept)
			changes = append(changes, Change{Kind: ChangeCleared, Tag: tag, Detail: "presence " + f.kind + ":" + f.key})
		}

		return next, changes
	})
}

func (t *tagState) touchedBy(f screenFilter) bool {
	for _, entry := range t.snapshots {
		if f.entry(entry.screen) {
			return true
		}
	}
	for _, l := range t.links {
		if f.link(l.Source.Screen) || (l.Destination != nil && f.link(l.Destination.Screen)) {
			return true
		}
	}
	return false
}
