package boundsx

// RegisterSnapshot records the last known bounds and styles of tag on screen,
// replacing any previous snapshot for the same screen key.
func (e *Engine) RegisterSnapshot(tag TagID, screen ScreenIdentifier, bounds Bounds, styles Styles) {
	if tag == "" || screen.ScreenKey == "" {
		return
	}
	entry := snapshotEntry{
		screen:   screen.clone(),
		snapshot: Snapshot{Bounds: bounds, Styles: styles.clone()},
	}
	e.commit(func(cur *registry) (*registry, []Change) {
		next := cur.clone()
		ts := cur.tag(tag).clone()
		ts.snapshots[screen.ScreenKey] = entry
		next.withTag(tag, ts)
		return next, []Change{{Kind: ChangeSnapshot, Tag: tag, Screen: screen.ScreenKey}}
	})
}

// Snapshot returns the snapshot registered for key, or else one whose
// ancestor keys include key.
func (e *Engine) Snapshot(tag TagID, key ScreenKey) (Snapshot, bool) {
	entry, ok := e.load().tag(tag).lookupSnapshot(key)
	if !ok {
		return Snapshot{}, false
	}
	return entry.snapshot.clone(), true
}

func (t *tagState) lookupSnapshot(key ScreenKey) (snapshotEntry, bool) {
	if t == nil || key == "" {
		return snapshotEntry{}, false
	}
	if entry, ok := t.snapshots[key]; ok {
		return entry, true
	}
	// Map order is random; pick the lexically smallest matching key so
	// repeated lookups agree.
	var (
		found   snapshotEntry
		foundOK bool
	)
	for k, entry := range t.snapshots {
		if !entry.screen.Matches(key) {
			continue
		}
		if !foundOK || k < found.screen.ScreenKey {
			found, foundOK = entry, true
		}
	}
	return found, foundOK
}
