package boundsx

// ResolveContext describes the screen asking for a pair on this frame.
type ResolveContext struct {
	CurrentScreenKey  ScreenKey
	PreviousScreenKey ScreenKey
	NextScreenKey     ScreenKey
	// Entering is true for the screen being revealed and false for the
	// screen being covered or popped.
	Entering bool
}

// ResolvedPair is the best known source and destination for one tag. Either
// bounds may be nil. Callers must re-resolve every frame instead of caching.
type ResolvedPair struct {
	SourceBounds            *Bounds   `json:"sourceBounds,omitempty" yaml:"sourceBounds,omitempty"`
	DestinationBounds       *Bounds   `json:"destinationBounds,omitempty" yaml:"destinationBounds,omitempty"`
	SourceStyles            Styles    `json:"sourceStyles,omitempty" yaml:"sourceStyles,omitempty"`
	DestinationStyles       Styles    `json:"destinationStyles,omitempty" yaml:"destinationStyles,omitempty"`
	SourceScreenKey         ScreenKey `json:"sourceScreenKey,omitempty" yaml:"sourceScreenKey,omitempty"`
	DestinationScreenKey    ScreenKey `json:"destinationScreenKey,omitempty" yaml:"destinationScreenKey,omitempty"`
	UsedPending             bool      `json:"usedPending" yaml:"usedPending"`
	UsedSnapshotSource      bool      `json:"usedSnapshotSource" yaml:"usedSnapshotSource"`
	UsedSnapshotDestination bool      `json:"usedSnapshotDestination" yaml:"usedSnapshotDestination"`
}

// Resolved reports whether both bounds are known.
func (p ResolvedPair) Resolved() bool {
	return p.SourceBounds != nil && p.DestinationBounds != nil
}

type linkRule struct {
	complete bool
	// onSource selects which endpoint is compared against key.
	onSource bool
	key      ScreenKey
}

// ResolveTransitionPair returns the best available source/destination pair
// for tag. Complete links beat pending links, which beat raw snapshots; within
// each rule the newest link wins. Screen matching honors ancestor aliases.
// An unresolved pair is returned with nil bounds, never an error.
func (e *Engine) ResolveTransitionPair(tag TagID, rc ResolveContext) ResolvedPair {
	t := e.load().tag(tag)
	if t == nil {
		return ResolvedPair{}
	}

	var (
		rules       []linkRule
		srcPriority []ScreenKey
		dstPriority []ScreenKey
	)
	if rc.Entering {
		rules = []linkRule{
			{complete: true, onSource: false, key: rc.CurrentScreenKey},
			{complete: false, onSource: true, key: rc.PreviousScreenKey},
			{complete: true, onSource: true, key: rc.PreviousScreenKey},
			{complete: true, onSource: false, key: rc.NextScreenKey},
		}
		srcPriority = []ScreenKey{rc.PreviousScreenKey, rc.CurrentScreenKey, rc.NextScreenKey}
		dstPriority = []ScreenKey{rc.CurrentScreenKey, rc.NextScreenKey}
	} else {
		rules = []linkRule{
			{complete: true, onSource: true, key: rc.CurrentScreenKey},
			{complete: true, onSource: false, key: rc.NextScreenKey},
			{complete: false, onSource: true, key: rc.CurrentScreenKey},
		}
		srcPriority = []ScreenKey{rc.CurrentScreenKey, rc.PreviousScreenKey, rc.NextScreenKey}
		dstPriority = []ScreenKey{rc.NextScreenKey, rc.CurrentScreenKey}
	}

	for _, rule := range rules {
		if rule.key == "" {
			continue
		}
		i := t.newestLink(rule.match)
		if i < 0 {
			continue
		}
		link := t.links[i]
		pair := ResolvedPair{UsedPending: link.Pending()}
		pair.setSource(link.Source.Screen.ScreenKey, link.Source.Snapshot)
		if link.Destination != nil {
			pair.setDestination(link.Destination.Screen.ScreenKey, link.Destination.Snapshot)
		} else if key, snap, ok := t.firstSnapshot(dstPriority, link.Source.Screen); ok {
			pair.setDestination(key, snap)
			pair.UsedSnapshotDestination = true
		}
		return pair
	}

	var pair ResolvedPair
	if key, snap, ok := t.firstSnapshot(srcPriority, ScreenIdentifier{}); ok {
		pair.setSource(key, snap)
		pair.UsedSnapshotSource = true
	}
	if key, snap, ok := t.firstSnapshot(dstPriority, ScreenIdentifier{}); ok {
		pair.setDestination(key, snap)
		pair.UsedSnapshotDestination = true
	}
	return pair
}

func (r linkRule) match(l TagLink) bool {
	if l.Complete() != r.complete {
		return false
	}
	if r.onSource {
		return l.Source.Screen.Matches(r.key)
	}
	return l.Destination.Screen.Matches(r.key)
}

// firstSnapshot returns the first snapshot found for keys in order, skipping
// snapshots that belong to the family of exclude. The returned key is the one
// the snapshot was registered under, not the alias that matched it.
func (t *tagState) firstSnapshot(keys []ScreenKey, exclude ScreenIdentifier) (ScreenKey, Snapshot, bool) {
	for _, key := range keys {
		entry, ok := t.lookupSnapshot(key)
		if !ok {
			continue
		}
		if exclude.ScreenKey != "" && entry.screen.SameFamily(exclude) {
			continue
		}
		return entry.screen.ScreenKey, entry.snapshot, true
	}
	return "", Snapshot{}, false
}

func (p *ResolvedPair) setSource(key ScreenKey, snap Snapshot) {
	b := snap.Bounds
	p.SourceBounds = &b
	p.SourceStyles = snap.Styles.clone()
	p.SourceScreenKey = key
}

func (p *ResolvedPair) setDestination(key ScreenKey, snap Snapshot) {
	b := snap.Bounds
	p.DestinationBounds = &b
	p.DestinationStyles = snap.Styles.clone()
	p.DestinationScreenKey = key
}
