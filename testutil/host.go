package testutil

import (
	"maps"
	"sync"

	"github.com/comalice/boundsx"
)

// FakeHost is a measurable boundary with scripted geometry.
type FakeHost struct {
	mu       sync.Mutex
	bounds   boundsx.Bounds
	styles   boundsx.Styles
	failures int
	calls    int
}

// NewFakeHost returns a host that measures as b.
func NewFakeHost(b boundsx.Bounds, styles boundsx.Styles) *FakeHost {
	return &FakeHost{bounds: b, styles: styles}
}

// Rect is shorthand for bounds whose page and local positions agree.
func Rect(x, y, w, h float64) boundsx.Bounds {
	return boundsx.Bounds{X: x, Y: y, Width: w, Height: h, PageX: x, PageY: y}
}

// Measure has the realtime.MeasureFunc signature.
func (h *FakeHost) Measure() (boundsx.Bounds, boundsx.Styles, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.failures > 0 {
		h.failures--
		return boundsx.Bounds{}, nil, false
	}
	return h.bounds, maps.Clone(h.styles), true
}

// SetBounds moves the host, as a scroll or relayout would.
func (h *FakeHost) SetBounds(b boundsx.Bounds) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bounds = b
}

// FailNext makes the next n measurements report no layout.
func (h *FakeHost) FailNext(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = n
}

// Calls returns how many times Measure ran.
func (h *FakeHost) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}
