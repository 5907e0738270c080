package realtime

import "github.com/comalice/boundsx"

// HostID identifies an attached boundary host.
type HostID uint64

// MeasureFunc returns corrected page-space bounds and a style snapshot. It
// reports false when layout is not ready yet.
type MeasureFunc func() (boundsx.Bounds, boundsx.Styles, bool)

// Host is a mounted boundary: a UI element that may be a transition endpoint.
type Host struct {
	Tag    boundsx.TagID
	Screen boundsx.ScreenIdentifier
	Config *boundsx.BoundaryConfig
	// Group and MemberID are set for list/grid members; Tag is then
	// usually boundsx.GroupTag(Group, MemberID).
	Group    string
	MemberID string
	// CaptureOnFocus refreshes the snapshot when the screen gains focus.
	CaptureOnFocus bool
	Measure        MeasureFunc
}

// hostState is owned by the tick goroutine.
type hostState struct {
	id   HostID
	host Host

	// sourcedFor is the incoming screen this host already committed a
	// source for during the current navigation.
	sourcedFor boundsx.ScreenKey
	dest       destAttempt

	scrollDirty   bool
	groupDirty    bool
	groupAttempts int
}

// destAttempt tracks destination capture for one incoming screen.
type destAttempt struct {
	screen     boundsx.ScreenKey
	attempts   int
	lastBucket int
	done       bool
}

func (hs *hostState) measure() (boundsx.Bounds, boundsx.Styles, bool) {
	if hs.host.Measure == nil {
		return boundsx.Bounds{}, nil, false
	}
	b, s, ok := hs.host.Measure()
	if !ok || !b.HasGeometry() {
		return boundsx.Bounds{}, nil, false
	}
	return b, s, true
}

func (hs *hostState) onScreen(key boundsx.ScreenKey) bool {
	return hs.host.Screen.Matches(key)
}

// activeMember reports whether the host may take part in a transition given
// the group's current active id. Hosts outside a group always may.
func (hs *hostState) activeMember(e *boundsx.Engine) bool {
	if hs.host.Group == "" {
		return true
	}
	id, ok := e.GroupActiveID(hs.host.Group)
	return !ok || id == hs.host.MemberID
}

func (hs *hostState) resetNavigation() {
	hs.sourcedFor = ""
	hs.dest = destAttempt{}
}
