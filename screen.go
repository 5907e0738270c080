package boundsx

import "slices"

// TagID identifies one logical shared-element relationship. Group members use
// the "group:id" form produced by GroupTag.
type TagID string

// ScreenKey is an opaque identifier for one screen instance.
type ScreenKey string

// NavigatorKey identifies one navigator instance.
type NavigatorKey string

// GroupTag returns the tag used by member id of group.
func GroupTag(group, id string) TagID {
	return TagID(group + ":" + id)
}

// ScreenIdentifier locates a boundary host in the navigation tree. The
// ancestor keys are aliases: a query for any of them matches this identifier.
// Ancestor chains are computed by the caller; the engine never walks a tree.
type ScreenIdentifier struct {
	ScreenKey             ScreenKey      `json:"screenKey" yaml:"screenKey"`
	AncestorKeys          []ScreenKey    `json:"ancestorKeys,omitempty" yaml:"ancestorKeys,omitempty"`
	NavigatorKey          NavigatorKey   `json:"navigatorKey,omitempty" yaml:"navigatorKey,omitempty"`
	AncestorNavigatorKeys []NavigatorKey `json:"ancestorNavigatorKeys,omitempty" yaml:"ancestorNavigatorKeys,omitempty"`
}

// Screen is shorthand for an identifier with a key and optional ancestors.
func Screen(key ScreenKey, ancestors ...ScreenKey) ScreenIdentifier {
	return ScreenIdentifier{ScreenKey: key, AncestorKeys: ancestors}
}

// Matches reports whether key names this screen directly or via an ancestor alias.
func (s ScreenIdentifier) Matches(key ScreenKey) bool {
	if key == "" {
		return false
	}
	return s.ScreenKey == key || slices.Contains(s.AncestorKeys, key)
}

// MatchesExact reports whether key is this screen's own key.
func (s ScreenIdentifier) MatchesExact(key ScreenKey) bool {
	return key != "" && s.ScreenKey == key
}

// SameFamily reports whether s and other are the same screen or one is an
// ancestor alias of the other.
func (s ScreenIdentifier) SameFamily(other ScreenIdentifier) bool {
	return s.Matches(other.ScreenKey) || other.Matches(s.ScreenKey)
}

// InBranch reports whether the screen belongs to the navigator nav or any
// navigator nested inside it.
func (s ScreenIdentifier) InBranch(nav NavigatorKey) bool {
	if nav == "" {
		return false
	}
	return s.NavigatorKey == nav || slices.Contains(s.AncestorNavigatorKeys, nav)
}

func (s ScreenIdentifier) clone() ScreenIdentifier {
	s.AncestorKeys = slices.Clone(s.AncestorKeys)
	s.AncestorNavigatorKeys = slices.Clone(s.AncestorNavigatorKeys)
	return s
}
