package boundsx

import "math"

// PlacementRequest selects how a resolved pair is turned into render values.
type PlacementRequest struct {
	Method    Method
	Anchor    Anchor
	ScaleMode ScaleMode
	// Entering places the destination element at the source bounds (start
	// pose of a reveal). Otherwise the source element is placed at the
	// destination bounds (end pose of a cover or pop).
	Entering bool
	// Viewport size, required by MethodContent.
	ViewportWidth  float64
	ViewportHeight float64
}

// Placement holds ready-to-apply values. The interpolation layer animates
// between the identity placement and this one.
type Placement struct {
	TranslateX float64 `json:"translateX" yaml:"translateX"`
	TranslateY float64 `json:"translateY" yaml:"translateY"`
	ScaleX     float64 `json:"scaleX" yaml:"scaleX"`
	ScaleY     float64 `json:"scaleY" yaml:"scaleY"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
}

// RequestFromConfig builds a request from a stored boundary config. Unset
// fields fall back to transform, center and match in Place.
func RequestFromConfig(cfg BoundaryConfig, entering bool) PlacementRequest {
	return PlacementRequest{
		Method:    cfg.Method,
		Anchor:    cfg.Anchor,
		ScaleMode: cfg.ScaleMode,
		Entering:  entering,
	}
}

// Place converts pair into placement values. It reports false when the pair
// is unresolved or the element being placed has no geometry.
func Place(pair ResolvedPair, req PlacementRequest) (Placement, bool) {
	if !pair.Resolved() {
		return Placement{}, false
	}
	own, target := *pair.SourceBounds, *pair.DestinationBounds
	if req.Entering {
		own, target = target, own
	}
	if !own.HasGeometry() {
		return Placement{}, false
	}
	if req.Method == "" {
		req.Method = MethodTransform
	}
	if req.ScaleMode == "" {
		req.ScaleMode = ScaleMatch
	}
	fx, fy := anchorFraction(req.Anchor)
	sx, sy := scaleFor(req.ScaleMode, target.Width/own.Width, target.Height/own.Height)
	tax, tay := target.PageX+fx*target.Width, target.PageY+fy*target.Height

	switch req.Method {
	case MethodSize:
		w, h := own.Width*sx, own.Height*sy
		return Placement{
			TranslateX: tax - (own.PageX + fx*w),
			TranslateY: tay - (own.PageY + fy*h),
			ScaleX:     1,
			ScaleY:     1,
			Width:      w,
			Height:     h,
		}, true
	case MethodContent:
		if req.ViewportWidth <= 0 || req.ViewportHeight <= 0 {
			return Placement{}, false
		}
		s := sx
		if req.ScaleMode != ScaleNone {
			s, _ = scaleFor(ScaleUniform, target.Width/own.Width, target.Height/own.Height)
		}
		cx, cy := req.ViewportWidth/2, req.ViewportHeight/2
		oax, oay := own.PageX+fx*own.Width, own.PageY+fy*own.Height
		return Placement{
			TranslateX: tax - cx - (oax-cx)*s,
			TranslateY: tay - cy - (oay-cy)*s,
			ScaleX:     s,
			ScaleY:     s,
			Width:      req.ViewportWidth,
			Height:     req.ViewportHeight,
		}, true
	default:
		// Scale applies around the element center.
		cx, cy := own.PageX+own.Width/2, own.PageY+own.Height/2
		oax := cx + (own.PageX+fx*own.Width-cx)*sx
		oay := cy + (own.PageY+fy*own.Height-cy)*sy
		return Placement{
			TranslateX: tax - oax,
			TranslateY: tay - oay,
			ScaleX:     sx,
			ScaleY:     sy,
			Width:      own.Width,
			Height:     own.Height,
		}, true
	}
}

func scaleFor(mode ScaleMode, rx, ry float64) (float64, float64) {
	switch mode {
	case ScaleNone:
		return 1, 1
	case ScaleUniform:
		s := math.Min(rx, ry)
		return s, s
	default:
		return rx, ry
	}
}

func anchorFraction(a Anchor) (float64, float64) {
	switch a {
	case AnchorTop:
		return 0.5, 0
	case AnchorBottom:
		return 0.5, 1
	case AnchorLeading:
		return 0, 0.5
	case AnchorTrailing:
		return 1, 0.5
	case AnchorTopLeading:
		return 0, 0
	case AnchorTopTrailing:
		return 1, 0
	case AnchorBottomLeading:
		return 0, 1
	case AnchorBottomTrailing:
		return 1, 1
	default:
		return 0.5, 0.5
	}
}
