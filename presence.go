package boundsx

import "maps"

// RegisterBoundaryPresence counts one more mounted boundary for tag on
// screen. A non-nil cfg replaces the stored boundary config.
func (e *Engine) RegisterBoundaryPresence(tag TagID, screen ScreenIdentifier, cfg *BoundaryConfig) {
	if tag == "" || screen.ScreenKey == "" {
		return
	}
	var stored *BoundaryConfig
	if cfg != nil {
		c := *cfg
		stored = &c
	}
	e.commit(func(cur *registry) (*registry, []Change) {
		next := cur.clone()
		entries := maps.Clone(cur.presence[tag])
		if entries == nil {
			entries = map[ScreenKey]PresenceEntry{}
		}
		entry := entries[screen.ScreenKey]
		entry.Count++
		entry.Screen = screen.clone()
		if stored != nil {
			entry.Config = stored
		}
		entries[screen.ScreenKey] = entry
		next.withPresence(tag, entries)
		return next, []Change{{Kind: ChangePresence, Tag: tag, Screen: screen.ScreenKey, Detail: "+1"}}
	})
}

// UnregisterBoundaryPresence releases one mount of tag on key. The entry is
// removed when its count reaches zero.
func (e *Engine) UnregisterBoundaryPresence(tag TagID, key ScreenKey) {
	e.commit(func(cur *registry) (*registry, []Change) {
		entry, ok := cur.presence[tag][key]
		if !ok {
			return nil, nil
		}
		next := cur.clone()
		entries := maps.Clone(cur.presence[tag])
		entry.Count--
		if entry.Count <= 0 {
			delete(entries, key)
		} else {
			entries[key] = entry
		}
		next.withPresence(tag, entries)
		return next, []Change{{Kind: ChangePresence, Tag: tag, Screen: key, Detail: "-1"}}
	})
}

// HasBoundaryPresence reports whether a boundary for tag is mounted on key,
// directly or on a screen that lists key as an ancestor.
func (e *Engine) HasBoundaryPresence(tag TagID, key ScreenKey) bool {
	_, ok := lookupPresence(e.load().presence[tag], key)
	return ok
}

// BoundaryConfig returns the stored config of a mounted boundary for tag on
// key, matched directly or through ancestors.
func (e *Engine) BoundaryConfig(tag TagID, key ScreenKey) (BoundaryConfig, bool) {
	if key == "" {
		return BoundaryConfig{}, false
	}
	entries := e.load().presence[tag]
	if entry, ok := entries[key]; ok && entry.Count > 0 && entry.Config != nil {
		return *entry.Config, true
	}
	entry, ok := matchPresence(entries, key, func(p PresenceEntry) bool { return p.Config != nil })
	if !ok {
		return BoundaryConfig{}, false
	}
	return *entry.Config, true
}

// Presence returns a copy of the live presence entry of tag on key, if any.
func (e *Engine) Presence(tag TagID, key ScreenKey) (PresenceEntry, bool) {
	entry, ok := lookupPresence(e.load().presence[tag], key)
	if !ok {
		return PresenceEntry{}, false
	}
	return entry.clone(), true
}

func lookupPresence(entries map[ScreenKey]PresenceEntry, key ScreenKey) (PresenceEntry, bool) {
	if key == "" {
		return PresenceEntry{}, false
	}
	if entry, ok := entries[key]; ok && entry.Count > 0 {
		return entry, true
	}
	return matchPresence(entries, key, nil)
}

// matchPresence returns the live entry with the smallest key whose screen
// matches key and that accept allows.
func matchPresence(entries map[ScreenKey]PresenceEntry, key ScreenKey, accept func(PresenceEntry) bool) (PresenceEntry, bool) {
	var (
		found   PresenceEntry
		foundOK bool
	)
	for k, entry := range entries {
		if entry.Count <= 0 || !entry.Screen.Matches(key) {
			continue
		}
		if accept != nil && !accept(entry) {
			continue
		}
		if !foundOK || k < found.Screen.ScreenKey {
			found, foundOK = entry, true
		}
	}
	return found, foundOK
}
