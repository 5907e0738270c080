package boundsx

import (
	"slices"
	"time"
)

// State is a serializable view of every registry at one generation. It is
// meant for inspection and never used to restore an engine.
type State struct {
	Generation uint64            `json:"generation" yaml:"generation"`
	Timestamp  time.Time         `json:"timestamp" yaml:"timestamp"`
	Tags       []TagDump         `json:"tags" yaml:"tags"`
	Presence   []PresenceDump    `json:"presence,omitempty" yaml:"presence,omitempty"`
	Groups     map[string]string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// TagDump is the snapshot registry and link stack of one tag.
type TagDump struct {
	Tag       TagID          `json:"tag" yaml:"tag"`
	Snapshots []SnapshotDump `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	Links     []TagLink      `json:"links,omitempty" yaml:"links,omitempty"`
}

// SnapshotDump is one registered snapshot.
type SnapshotDump struct {
	Screen   ScreenIdentifier `json:"screen" yaml:"screen"`
	Snapshot Snapshot         `json:"snapshot" yaml:"snapshot"`
}

// PresenceDump is one live presence entry.
type PresenceDump struct {
	Tag   TagID         `json:"tag" yaml:"tag"`
	Entry PresenceEntry `json:"entry" yaml:"entry"`
}

// Dump captures the current registries, sorted by tag and screen key.
func (e *Engine) Dump() State {
	r := e.load()
	out := State{
		Generation: r.generation,
		Timestamp:  time.Now(),
		Tags:       make([]TagDump, 0, len(r.tags)),
	}
	if len(r.groups) > 0 {
		out.Groups = make(map[string]string, len(r.groups))
		for g, id := range r.groups {
			out.Groups[g] = id
		}
	}
	for tag, t := range r.tags {
		td := TagDump{Tag: tag, Links: cloneLinks(t.links)}
		for _, entry := range t.snapshots {
			td.Snapshots = append(td.Snapshots, SnapshotDump{Screen: entry.screen.clone(), Snapshot: entry.snapshot.clone()})
		}
		slices.SortFunc(td.Snapshots, func(a, b SnapshotDump) int {
			return compareKeys(a.Screen.ScreenKey, b.Screen.ScreenKey)
		})
		out.Tags = append(out.Tags, td)
	}
	slices.SortFunc(out.Tags, func(a, b TagDump) int { return compareKeys(a.Tag, b.Tag) })
	for tag, entries := range r.presence {
		for _, entry := range entries {
			out.Presence = append(out.Presence, PresenceDump{Tag: tag, Entry: entry.clone()})
		}
	}
	slices.SortFunc(out.Presence, func(a, b PresenceDump) int {
		if c := compareKeys(a.Tag, b.Tag); c != 0 {
			return c
		}
		return compareKeys(a.Entry.Screen.ScreenKey, b.Entry.Screen.ScreenKey)
	})
	return out
}

func compareKeys[K ~string](a, b K) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
