package boundsx

import "maps"

// Bounds is a measured position and size. PageX/PageY are in the
// transform-independent page space used for placement.
type Bounds struct {
	X      float64 `json:"x" yaml:"x" toml:"x"`
	Y      float64 `json:"y" yaml:"y" toml:"y"`
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
	PageX  float64 `json:"pageX" yaml:"pageX" toml:"pageX"`
	PageY  float64 `json:"pageY" yaml:"pageY" toml:"pageY"`
}

// HasGeometry reports whether b describes a measurable area.
func (b Bounds) HasGeometry() bool {
	return b.Width > 0 && b.Height > 0
}

// Styles is a serializable style snapshot of a boundary.
type Styles map[string]any

func (s Styles) clone() Styles {
	if len(s) == 0 {
		return nil
	}
	return maps.Clone(s)
}

// Snapshot is the last known geometry and style of a tag on one screen.
type Snapshot struct {
	Bounds Bounds `json:"bounds" yaml:"bounds"`
	Styles Styles `json:"styles,omitempty" yaml:"styles,omitempty"`
}

func (s Snapshot) clone() Snapshot {
	s.Styles = s.Styles.clone()
	return s
}

// Endpoint is one side of a link.
type Endpoint struct {
	Screen   ScreenIdentifier `json:"screen" yaml:"screen"`
	Snapshot Snapshot         `json:"snapshot" yaml:"snapshot"`
}

func (ep Endpoint) clone() Endpoint {
	return Endpoint{Screen: ep.Screen.clone(), Snapshot: ep.Snapshot.clone()}
}

func newEndpoint(screen ScreenIdentifier, bounds Bounds, styles Styles) Endpoint {
	return Endpoint{
		Screen:   screen.clone(),
		Snapshot: Snapshot{Bounds: bounds, Styles: styles.clone()},
	}
}

// TagLink is one source to destination match attempt. A nil Destination
// means the link is pending.
type TagLink struct {
	ID          string    `json:"id" yaml:"id"`
	Source      Endpoint  `json:"source" yaml:"source"`
	Destination *Endpoint `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// clone returns a copy sharing no memory with l.
func (l TagLink) clone() TagLink {
	l.Source = l.Source.clone()
	if l.Destination != nil {
		dst := l.Destination.clone()
		l.Destination = &dst
	}
	return l
}

// Pending reports whether the destination is still unknown.
func (l TagLink) Pending() bool {
	return l.Destination == nil
}

// Complete reports whether both endpoints are known.
func (l TagLink) Complete() bool {
	return l.Destination != nil
}

// Anchor selects the reference point used when aligning two bounds.
type Anchor string

const (
	AnchorCenter         Anchor = "center"
	AnchorTop            Anchor = "top"
	AnchorBottom         Anchor = "bottom"
	AnchorLeading        Anchor = "leading"
	AnchorTrailing       Anchor = "trailing"
	AnchorTopLeading     Anchor = "topLeading"
	AnchorTopTrailing    Anchor = "topTrailing"
	AnchorBottomLeading  Anchor = "bottomLeading"
	AnchorBottomTrailing Anchor = "bottomTrailing"
)

// ScaleMode controls how width and height ratios combine.
type ScaleMode string

const (
	ScaleMatch   ScaleMode = "match"   // independent x/y scale
	ScaleUniform ScaleMode = "uniform" // single scale preserving aspect
	ScaleNone    ScaleMode = "none"
)

// Method selects which rendering values a placement produces.
type Method string

const (
	MethodTransform Method = "transform"
	MethodSize      Method = "size"
	MethodContent   Method = "content"
)

// BoundaryConfig is the per-boundary rendering configuration stored with presence.
type BoundaryConfig struct {
	Anchor    Anchor    `json:"anchor,omitempty" yaml:"anchor,omitempty" toml:"anchor"`
	ScaleMode ScaleMode `json:"scaleMode,omitempty" yaml:"scaleMode,omitempty" toml:"scaleMode"`
	Method    Method    `json:"method,omitempty" yaml:"method,omitempty" toml:"method"`
}

// PresenceEntry records how many boundaries for a tag are mounted on a screen.
type PresenceEntry struct {
	Count  int              `json:"count" yaml:"count"`
	Screen ScreenIdentifier `json:"screen" yaml:"screen"`
	Config *BoundaryConfig  `json:"config,omitempty" yaml:"config,omitempty"`
}

func (p PresenceEntry) clone() PresenceEntry {
	p.Screen = p.Screen.clone()
	if p.Config != nil {
		cfg := *p.Config
		p.Config = &cfg
	}
	return p
}

// Transform is one ancestor transform applied to a raw measurement.
type Transform struct {
	TranslateX float64
	TranslateY float64
	ScaleX     float64
	ScaleY     float64
	// OriginX/OriginY is the page-space point the scale is applied around.
	OriginX float64
	OriginY float64
}

// CorrectBounds removes ancestor transform effects from a raw measurement.
// Transforms are listed outermost first. Zero scales are treated as 1.
func CorrectBounds(raw Bounds, transforms ...Transform) Bounds {
	out := raw
	for _, t := range transforms {
		sx, sy := t.ScaleX, t.ScaleY
		if sx == 0 {
			sx = 1
		}
		if sy == 0 {
			sy = 1
		}
		out.PageX = (out.PageX-t.TranslateX-t.OriginX)/sx + t.OriginX
		out.PageY = (out.PageY-t.TranslateY-t.OriginY)/sy + t.OriginY
		out.Width /= sx
		out.Height /= sy
	}
	return out
}
