package mapview

import (
	"sort"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// Marker is what the renderer draws for a travel.
type Marker struct {
	ID       string
	Position LatLngAltitude
	Title    string
}

// MarkerHandle is a marker owned by the renderer.
type MarkerHandle interface {
	Update(m Marker)
	Remove()
}

// MarkerLayer creates renderer markers. onClick is invoked when the user
// clicks the marker.
type MarkerLayer interface {
	AddMarker(m Marker, onClick func()) MarkerHandle
}

// MarkerSet keeps the renderer's markers in sync with a list of travels.
type MarkerSet struct {
	layer   MarkerLayer
	onClick func(id string, at LatLng)
	handles map[string]MarkerHandle
	markers map[string]Marker
}

// NewMarkerSet returns an empty set. onClick receives the travel id and
// location of a clicked marker.
func NewMarkerSet(layer MarkerLayer, onClick func(id string, at LatLng)) *MarkerSet {
	return &MarkerSet{
		layer:   layer,
		onClick: onClick,
		handles: make(map[string]MarkerHandle),
		markers: make(map[string]Marker),
	}
}

func markerFor(t domain.Travel) Marker {
	return Marker{
		ID:       t.ID,
		Position: LatLngAltitude{Lat: t.Location.Lat, Lng: t.Location.Lng},
		Title:    t.Title,
	}
}

// Reconcile adds markers for new travels, removes those of travels no longer
// listed and updates the rest in place when they changed.
func (s *MarkerSet) Reconcile(travels []domain.Travel) {
	seen := make(map[string]struct{}, len(travels))
	for _, t := range travels {
		m := markerFor(t)
		seen[m.ID] = struct{}{}

		h, ok := s.handles[m.ID]
		if !ok {
			id := m.ID
			s.handles[id] = s.layer.AddMarker(m, func() { s.click(id) })
			s.markers[id] = m
			continue
		}
		if s.markers[m.ID] != m {
			h.Update(m)
			s.markers[m.ID] = m
		}
	}

	for id, h := range s.handles {
		if _, ok := seen[id]; ok {
			continue
		}
		h.Remove()
		delete(s.handles, id)
		delete(s.markers, id)
	}
}

// IDs returns the ids of the current markers, sorted.
func (s *MarkerSet) IDs() []string {
	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear removes every marker.
func (s *MarkerSet) Clear() {
	s.Reconcile(nil)
}

func (s *MarkerSet) click(id string) {
	m, ok := s.markers[id]
	if !ok || s.onClick == nil {
		return
	}
	s.onClick(id, m.Position.LatLng())
}
