package mapview

import (
	"math"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/pkg/geospatial"
)

// Minimap tuning.
const (
	MiniMapDebounce = 200 * time.Millisecond
	MiniMapPadding  = 120 // pixels
)

// EstimateCameraPosition returns where the virtual camera sits for a
// camera looking at s.Center: range·sin(tilt) behind the target along the
// heading, range·cos(tilt) above it.
func EstimateCameraPosition(s CameraState) LatLngAltitude {
	tilt := s.Tilt * math.Pi / 180
	above := s.Range * math.Cos(tilt)
	around := s.Range * math.Sin(tilt)

	lat, lng := geospatial.Offset(s.Center.Lat, s.Center.Lng, around, s.Heading+180)
	return LatLngAltitude{Lat: lat, Lng: lng, Altitude: s.Center.Altitude + above}
}

// MiniMapZoom maps a camera range to a 2D map zoom level, never below 1.
func MiniMapZoom(rangeMeters float64) int {
	z := int(math.Round(24 - math.Log2(rangeMeters)))
	if z < 1 {
		return 1
	}
	return z
}

// Bounds is a lat/lng rectangle.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
	empty bool
}

// EmptyBounds returns bounds containing nothing.
func EmptyBounds() Bounds { return Bounds{empty: true} }

// Extend grows b to contain p.
func (b Bounds) Extend(p LatLng) Bounds {
	if b.empty {
		return Bounds{South: p.Lat, North: p.Lat, West: p.Lng, East: p.Lng}
	}
	b.South = math.Min(b.South, p.Lat)
	b.North = math.Max(b.North, p.Lat)
	b.West = math.Min(b.West, p.Lng)
	b.East = math.Max(b.East, p.Lng)
	return b
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p LatLng) bool {
	if b.empty {
		return false
	}
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// MiniMapView is the secondary 2D map.
type MiniMapView interface {
	FitBounds(b Bounds, padding int)
	SetZoom(zoom int)
}

// MiniMapProjector keeps the minimap in sync with the main camera. The
// camera marker follows every change; the minimap viewport is refitted only
// after the camera has been still for MiniMapDebounce.
type MiniMapProjector struct {
	view   MiniMapView
	timers Scheduler

	center    LatLngAltitude
	heading   float64
	rng       float64
	cameraPos LatLngAltitude
	pending   Timer
	primed    bool
}

// NewMiniMapProjector creates a projector refitting view.
func NewMiniMapProjector(view MiniMapView, timers Scheduler) *MiniMapProjector {
	return &MiniMapProjector{view: view, timers: timers}
}

// Update recomputes the camera marker for s and restarts the refit timer
// when the view center, range or camera position moved.
func (p *MiniMapProjector) Update(s CameraState) {
	pos := EstimateCameraPosition(s)
	changed := !p.primed || s.Center != p.center || s.Range != p.rng || pos != p.cameraPos

	p.primed = true
	p.center = s.Center
	p.heading = s.Heading
	p.rng = s.Range
	p.cameraPos = pos

	if !changed {
		return
	}
	if p.pending != nil {
		p.pending.Stop()
	}
	p.pending = p.timers.AfterFunc(MiniMapDebounce, p.fit)
}

// ViewCenter is the look-at marker position.
func (p *MiniMapProjector) ViewCenter() LatLngAltitude { return p.center }

// CameraMarker is the camera marker position and its heading in degrees.
func (p *MiniMapProjector) CameraMarker() (LatLngAltitude, float64) {
	return p.cameraPos, p.heading
}

// Dispose cancels a pending refit.
func (p *MiniMapProjector) Dispose() {
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
}

func (p *MiniMapProjector) fit() {
	p.pending = nil
	if p.view == nil {
		return
	}
	b := EmptyBounds().Extend(p.center.LatLng()).Extend(p.cameraPos.LatLng())
	p.view.FitBounds(b, MiniMapPadding)
	p.view.SetZoom(MiniMapZoom(p.rng))
}
