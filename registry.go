package boundsx

import "maps"

// registry is the immutable engine state. A published registry is never
// modified; writers build a new one from clones and swap it in.
type registry struct {
	generation uint64
	tags       map[TagID]*tagState
	presence   map[TagID]map[ScreenKey]PresenceEntry
	groups     map[string]string
}

type tagState struct {
	snapshots map[ScreenKey]snapshotEntry
	links     []TagLink
}

type snapshotEntry struct {
	screen   ScreenIdentifier
	snapshot Snapshot
}

func emptyRegistry() *registry {
	return &registry{
		tags:     map[TagID]*tagState{},
		presence: map[TagID]map[ScreenKey]PresenceEntry{},
		groups:   map[string]string{},
	}
}

// clone copies the top-level maps. Per-tag values stay shared until a writer
// replaces them through withTag or withPresence.
func (r *registry) clone() *registry {
	return &registry{
		generation: r.generation,
		tags:       maps.Clone(r.tags),
		presence:   maps.Clone(r.presence),
		groups:     maps.Clone(r.groups),
	}
}

func (r *registry) tag(tag TagID) *tagState {
	if ts, ok := r.tags[tag]; ok {
		return ts
	}
	return nil
}

// withTag stores ts under tag, deleting the bucket when ts is empty.
func (r *registry) withTag(tag TagID, ts *tagState) {
	if ts == nil || ts.empty() {
		delete(r.tags, tag)
		return
	}
	r.tags[tag] = ts
}

func (r *registry) withPresence(tag TagID, entries map[ScreenKey]PresenceEntry) {
	if len(entries) == 0 {
		delete(r.presence, tag)
		return
	}
	r.presence[tag] = entries
}

func (t *tagState) clone() *tagState {
	if t == nil {
		return &tagState{snapshots: map[ScreenKey]snapshotEntry{}}
	}
	snaps := maps.Clone(t.snapshots)
	if snaps == nil {
		snaps = map[ScreenKey]snapshotEntry{}
	}
	links := make([]TagLink, len(t.links))
	copy(links, t.links)
	return &tagState{snapshots: snaps, links: links}
}

func (t *tagState) empty() bool {
	return len(t.snapshots) == 0 && len(t.links) == 0
}
