package boundsx

// ChangeKind names a committed engine write.
type ChangeKind string

const (
	ChangeSnapshot           ChangeKind = "snapshot"
	ChangeLinkPushed         ChangeKind = "link-pushed"
	ChangeLinkCoalesced      ChangeKind = "link-coalesced"
	ChangeLinkCompleted      ChangeKind = "link-completed"
	ChangeLinkSourceUpdated  ChangeKind = "link-source-updated"
	ChangeLinkDestUpdated    ChangeKind = "link-destination-updated"
	ChangeLinkTrimmed        ChangeKind = "link-trimmed"
	ChangePresence           ChangeKind = "presence"
	ChangeGroupActive        ChangeKind = "group-active"
	ChangeCleared            ChangeKind = "cleared"
	ChangeStaleDestination   ChangeKind = "stale-destination"
	ChangeMissingMeasurement ChangeKind = "missing-measurement"
	ChangeRetryExhausted     ChangeKind = "retry-exhausted"
)

// Change describes one engine event. Generation is the registry generation
// after the write; it is zero for no-op reports such as ChangeStaleDestination.
type Change struct {
	Kind       ChangeKind `json:"kind" yaml:"kind"`
	Tag        TagID      `json:"tag,omitempty" yaml:"tag,omitempty"`
	Screen     ScreenKey  `json:"screen,omitempty" yaml:"screen,omitempty"`
	LinkID     string     `json:"linkId,omitempty" yaml:"linkId,omitempty"`
	Detail     string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	Generation uint64     `json:"generation" yaml:"generation"`
}

// Publisher receives engine changes. Publish runs on the writer's goroutine
// inside the frame hot path and must not block.
type Publisher interface {
	Publish(change Change)
}
