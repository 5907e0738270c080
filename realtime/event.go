package realtime

import (
	"sort"

	"github.com/comalice/boundsx"
)

// EventKind names a boundary host lifecycle event.
type EventKind int

const (
	EventAttach EventKind = iota
	EventDetach
	EventLayout
	EventFocus
	EventBlur
	EventScrollSettled
	EventGroupActive
)

func (k EventKind) String() string {
	switch k {
	case EventAttach:
		return "attach"
	case EventDetach:
		return "detach"
	case EventLayout:
		return "layout"
	case EventFocus:
		return "focus"
	case EventBlur:
		return "blur"
	case EventScrollSettled:
		return "scroll-settled"
	case EventGroupActive:
		return "group-active"
	}
	return "unknown"
}

// Event is queued by the control context and applied on the next tick.
type Event struct {
	Kind   EventKind
	Host   HostID
	Screen boundsx.ScreenKey
	Group  string
	ID     string

	host *Host
}

// EventWithMeta adds sequencing metadata for deterministic ordering
type EventWithMeta struct {
	Event       Event
	SequenceNum uint64
	Priority    int
}

// Host set changes run before measurement events queued in the same tick.
const hostPriority = 1

// sortEvents orders events deterministically
func sortEvents(events []EventWithMeta) {
	// Stable sort preserves insertion order for equal priorities
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}
