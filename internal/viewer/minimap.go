package viewer

import (
	"sync"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
)

// MiniMap is the 2D overview in the corner of the screen. It records the
// viewport the projector fits it to.
type MiniMap struct {
	mu      sync.Mutex
	bounds  mapview.Bounds
	padding int
	zoom    int
	fitted  bool
}

// FitBounds records the area the minimap must show.
func (m *MiniMap) FitBounds(b mapview.Bounds, padding int) {
	m.mu.Lock()
	m.bounds = b
	m.padding = padding
	m.fitted = true
	m.mu.Unlock()
}

// SetZoom records the minimap zoom level.
func (m *MiniMap) SetZoom(zoom int) {
	m.mu.Lock()
	m.zoom = zoom
	m.mu.Unlock()
}

// Viewport returns the last fitted bounds and zoom. ok is false until the
// first fit.
func (m *MiniMap) Viewport() (b mapview.Bounds, zoom int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds, m.zoom, m.fitted
}

// Projection returns the projection of the minimap on a w×h panel: centered
// on the fitted bounds, wide enough to hold them plus the padding, and no
// tighter than the zoom level allows.
func (m *MiniMap) Projection(w, h int) Projection {
	b, zoom, ok := m.Viewport()
	if !ok {
		return Projection{Center: mapview.LatLng{}, Range: 180 * metersPerDegree, Width: w, Height: h}
	}
	center := mapview.LatLng{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}

	span := b.East - b.West
	if tall := (b.North - b.South) * float64(w) / float64(max(h, 1)); tall > span {
		span = tall
	}
	m.mu.Lock()
	pad := m.padding
	m.mu.Unlock()
	if w > 2*pad && span > 0 {
		span *= float64(w) / float64(w-2*pad)
	}
	// Zoom z shows roughly 360/2^z degrees across.
	if minSpan := 360 / float64(int(1)<<min(max(zoom, 0), 20)); span < minSpan {
		span = minSpan
	}
	return Projection{Center: center, Range: span * metersPerDegree / 2, Width: w, Height: h}
}
