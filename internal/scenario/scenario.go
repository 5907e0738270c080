// Package scenario runs scripted navigation against an engine and checks
// the resolved transition pairs with expr expressions.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/internal/production"
)

// ErrInvalidScenario is wrapped by every structural scenario error.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted session: the boundary hosts that exist and the
// navigation steps applied to them.
type Scenario struct {
	Name     string          `json:"name" yaml:"name" toml:"name"`
	Config   *boundsx.Config `json:"config,omitempty" yaml:"config,omitempty" toml:"config"`
	Viewport Viewport        `json:"viewport,omitempty" yaml:"viewport,omitempty" toml:"viewport"`
	Hosts    []HostSpec      `json:"hosts" yaml:"hosts" toml:"hosts"`
	Steps    []Step          `json:"steps" yaml:"steps" toml:"steps"`
}

// Viewport sizes content placements.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// HostSpec declares one simulated boundary.
type HostSpec struct {
	ID             string                  `json:"id" yaml:"id" toml:"id"`
	Tag            boundsx.TagID           `json:"tag" yaml:"tag" toml:"tag"`
	Group          string                  `json:"group,omitempty" yaml:"group,omitempty" toml:"group"`
	Member         string                  `json:"member,omitempty" yaml:"member,omitempty" toml:"member"`
	Screen         ScreenSpec              `json:"screen" yaml:"screen" toml:"screen"`
	Bounds         boundsx.Bounds          `json:"bounds" yaml:"bounds" toml:"bounds"`
	Styles         map[string]any          `json:"styles,omitempty" yaml:"styles,omitempty" toml:"styles"`
	Boundary       *boundsx.BoundaryConfig `json:"boundary,omitempty" yaml:"boundary,omitempty" toml:"boundary"`
	CaptureOnFocus bool                    `json:"captureOnFocus,omitempty" yaml:"captureOnFocus,omitempty" toml:"capture_on_focus"`
	// FailFirst makes the first n measurements report no layout.
	FailFirst int `json:"failFirst,omitempty" yaml:"failFirst,omitempty" toml:"fail_first"`
	// Deferred hosts wait for a mount step.
	Deferred bool `json:"deferred,omitempty" yaml:"deferred,omitempty" toml:"deferred"`
}

// tag returns the explicit tag, or the group tag for group members.
func (h HostSpec) tag() boundsx.TagID {
	if h.Tag == "" && h.Group != "" {
		return boundsx.GroupTag(h.Group, h.Member)
	}
	return h.Tag
}

// ScreenSpec is the file form of a screen identifier.
type ScreenSpec struct {
	Key                string   `json:"key" yaml:"key" toml:"key"`
	Ancestors          []string `json:"ancestors,omitempty" yaml:"ancestors,omitempty" toml:"ancestors"`
	Navigator          string   `json:"navigator,omitempty" yaml:"navigator,omitempty" toml:"navigator"`
	AncestorNavigators []string `json:"ancestorNavigators,omitempty" yaml:"ancestorNavigators,omitempty" toml:"ancestor_navigators"`
}

// Identifier converts s to an engine screen identifier.
func (s ScreenSpec) Identifier() boundsx.ScreenIdentifier {
	id := boundsx.ScreenIdentifier{
		ScreenKey:    boundsx.ScreenKey(s.Key),
		NavigatorKey: boundsx.NavigatorKey(s.Navigator),
	}
	for _, a := range s.Ancestors {
		id.AncestorKeys = append(id.AncestorKeys, boundsx.ScreenKey(a))
	}
	for _, n := range s.AncestorNavigators {
		id.AncestorNavigatorKeys = append(id.AncestorNavigatorKeys, boundsx.NavigatorKey(n))
	}
	return id
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	Push            *Navigation  `json:"push,omitempty" yaml:"push,omitempty" toml:"push"`
	Dismiss         *Navigation  `json:"dismiss,omitempty" yaml:"dismiss,omitempty" toml:"dismiss"`
	Idle            string       `json:"idle,omitempty" yaml:"idle,omitempty" toml:"idle"`
	Mount           []string     `json:"mount,omitempty" yaml:"mount,omitempty" toml:"mount"`
	Unmount         []string     `json:"unmount,omitempty" yaml:"unmount,omitempty" toml:"unmount"`
	Move            *Move        `json:"move,omitempty" yaml:"move,omitempty" toml:"move"`
	Fail            *Fail        `json:"fail,omitempty" yaml:"fail,omitempty" toml:"fail"`
	Layout          string       `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout"`
	Focus           string       `json:"focus,omitempty" yaml:"focus,omitempty" toml:"focus"`
	Blur            string       `json:"blur,omitempty" yaml:"blur,omitempty" toml:"blur"`
	ScrollSettled   string       `json:"scrollSettled,omitempty" yaml:"scrollSettled,omitempty" toml:"scroll_settled"`
	GroupActive     *GroupActive `json:"groupActive,omitempty" yaml:"groupActive,omitempty" toml:"group_active"`
	Clear           string       `json:"clear,omitempty" yaml:"clear,omitempty" toml:"clear"`
	ClearByAncestor string       `json:"clearByAncestor,omitempty" yaml:"clearByAncestor,omitempty" toml:"clear_by_ancestor"`
	ClearByBranch   string       `json:"clearByBranch,omitempty" yaml:"clearByBranch,omitempty" toml:"clear_by_branch"`
	Expect          *Expectation `json:"expect,omitempty" yaml:"expect,omitempty" toml:"expect"`
}

// Navigation moves between two screens over Frames frames. For a push To is
// the incoming screen; for a dismiss From is the closing one. Ancestors
// belong to that moving screen.
type Navigation struct {
	From      string   `json:"from" yaml:"from" toml:"from"`
	To        string   `json:"to" yaml:"to" toml:"to"`
	Ancestors []string `json:"ancestors,omitempty" yaml:"ancestors,omitempty" toml:"ancestors"`
	Frames    int      `json:"frames,omitempty" yaml:"frames,omitempty" toml:"frames"`
}

// Move changes the geometry a host will report.
type Move struct {
	Host   string         `json:"host" yaml:"host" toml:"host"`
	Bounds boundsx.Bounds `json:"bounds" yaml:"bounds" toml:"bounds"`
}

// Fail makes a host's next measurements report no layout.
type Fail struct {
	Host  string `json:"host" yaml:"host" toml:"host"`
	Times int    `json:"times" yaml:"times" toml:"times"`
}

// GroupActive selects the active member of a group.
type GroupActive struct {
	Group string `json:"group" yaml:"group" toml:"group"`
	ID    string `json:"id" yaml:"id" toml:"id"`
}

// Expectation resolves tag for one screen and checks every expression in
// That against the result.
type Expectation struct {
	Tag      boundsx.TagID `json:"tag" yaml:"tag" toml:"tag"`
	Current  string        `json:"current" yaml:"current" toml:"current"`
	Previous string        `json:"previous,omitempty" yaml:"previous,omitempty" toml:"previous"`
	Next     string        `json:"next,omitempty" yaml:"next,omitempty" toml:"next"`
	Entering bool          `json:"entering,omitempty" yaml:"entering,omitempty" toml:"entering"`
	That     []string      `json:"that" yaml:"that" toml:"that"`
}

func (e Expectation) context() boundsx.ResolveContext {
	return boundsx.ResolveContext{
		CurrentScreenKey:  boundsx.ScreenKey(e.Current),
		PreviousScreenKey: boundsx.ScreenKey(e.Previous),
		NextScreenKey:     boundsx.ScreenKey(e.Next),
		Entering:          e.Entering,
	}
}

// Load reads a scenario from a JSON, YAML or TOML file.
func Load(path string) (*Scenario, error) {
	f, err := production.FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sc, err := Parse(f, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario document.
func Parse(f production.Format, data []byte) (*Scenario, error) {
	var sc Scenario
	if err := production.Decode(f, data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks host references and that every step sets exactly one action.
func (sc *Scenario) Validate() error {
	hosts := make(map[string]bool, len(sc.Hosts))
	for i, h := range sc.Hosts {
		switch {
		case h.ID == "":
			return fmt.Errorf("%w: host[%d]: id is required", ErrInvalidScenario, i)
		case hosts[h.ID]:
			return fmt.Errorf("%w: host %q declared twice", ErrInvalidScenario, h.ID)
		case h.tag() == "":
			return fmt.Errorf("%w: host %q: tag or group is required", ErrInvalidScenario, h.ID)
		case h.Screen.Key == "":
			return fmt.Errorf("%w: host %q: screen key is required", ErrInvalidScenario, h.ID)
		}
		hosts[h.ID] = true
	}

	for i, st := range sc.Steps {
		if n := st.actions(); n != 1 {
			return fmt.Errorf("%w: step[%d]: %d actions set, want 1", ErrInvalidScenario, i, n)
		}
		for _, id := range st.hostRefs() {
			if !hosts[id] {
				return fmt.Errorf("%w: step[%d]: unknown host %q", ErrInvalidScenario, i, id)
			}
		}
		if nav := st.navigation(); nav != nil && (nav.From == "" || nav.To == "") {
			return fmt.Errorf("%w: step[%d]: navigation needs from and to", ErrInvalidScenario, i)
		}
		if st.Expect != nil && (st.Expect.Tag == "" || st.Expect.Current == "" || len(st.Expect.That) == 0) {
			return fmt.Errorf("%w: step[%d]: expect needs tag, current and at least one expression", ErrInvalidScenario, i)
		}
	}
	return nil
}

func (st Step) actions() int {
	set := []bool{
		st.Push != nil,
		st.Dismiss != nil,
		st.Idle != "",
		len(st.Mount) > 0,
		len(st.Unmount) > 0,
		st.Move != nil,
		st.Fail != nil,
		st.Layout != "",
		st.Focus != "",
		st.Blur != "",
		st.ScrollSettled != "",
		st.GroupActive != nil,
		st.Clear != "",
		st.ClearByAncestor != "",
		st.ClearByBranch != "",
		st.Expect != nil,
	}
	n := 0
	for _, ok := range set {
		if ok {
			n++
		}
	}
	return n
}

func (st Step) hostRefs() []string {
	refs := append(append([]string(nil), st.Mount...), st.Unmount...)
	if st.Move != nil {
		refs = append(refs, st.Move.Host)
	}
	if st.Fail != nil {
		refs = append(refs, st.Fail.Host)
	}
	if st.Layout != "" {
		refs = append(refs, st.Layout)
	}
	return refs
}

func (st Step) navigation() *Navigation {
	if st.Push != nil {
		return st.Push
	}
	return st.Dismiss
}
