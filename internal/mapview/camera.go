// Package mapview models the interactive side of the globe view: the 3D
// camera, the fly-to choreography, the swipeable photo card stack, the
// minimap projection and the selection flow that ties them together.
//
// The package does not render anything. Renderers (the ebiten viewer, tests)
// plug in through the Renderer, FrameScheduler, Scheduler and MarkerLayer
// interfaces.
package mapview

import "sync"

// LatLng is a geographic point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LatLngAltitude is a geographic point with altitude in meters.
type LatLngAltitude struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

// LatLng drops the altitude.
func (p LatLngAltitude) LatLng() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}

// CameraState describes the 3D camera.
type CameraState struct {
	Center  LatLngAltitude `json:"center"`
	Range   float64        `json:"range"`   // meters, camera to target
	Heading float64        `json:"heading"` // degrees, 0-360
	Tilt    float64        `json:"tilt"`    // degrees, 0-90
	Roll    float64        `json:"roll"`    // degrees
}

const (
	// DefaultRange is the range restored when a selection is closed.
	DefaultRange = 5_000_000
	// DefaultTilt is the tilt restored when a selection is closed.
	DefaultTilt = 45
)

// InitialCamera is the camera the map view starts with (centered on India).
var InitialCamera = CameraState{
	Center:  LatLngAltitude{Lat: 20.5937, Lng: 78.9629, Altitude: 0},
	Range:   DefaultRange,
	Heading: 0,
	Tilt:    DefaultTilt,
	Roll:    0,
}

// Camera owns the current CameraState of a map view. It is safe for
// concurrent use: the choreography goroutine reads it while the UI loop
// writes renderer updates.
type Camera struct {
	mu        sync.Mutex
	state     CameraState
	listeners []func(CameraState)
}

// NewCamera creates a camera starting at initial.
func NewCamera(initial CameraState) *Camera {
	return &Camera{state: initial}
}

// State returns a copy of the current state.
func (c *Camera) State() CameraState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called after every change.
func (c *Camera) Subscribe(fn func(CameraState)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Recenter moves the look-at point to p and keeps range, heading, tilt and roll.
func (c *Camera) Recenter(p LatLng) {
	c.update(func(s *CameraState) {
		s.Center = LatLngAltitude{Lat: p.Lat, Lng: p.Lng, Altitude: 0}
	})
}

// OnCameraChange replaces the whole state with values reported by the
// renderer. Values are not clamped.
func (c *Camera) OnCameraChange(s CameraState) {
	c.update(func(cur *CameraState) { *cur = s })
}

// ResetZoom restores the default range and tilt, leaving the center where
// the user navigated.
func (c *Camera) ResetZoom() {
	c.update(func(s *CameraState) {
		s.Range = DefaultRange
		s.Tilt = DefaultTilt
	})
}

func (c *Camera) update(fn func(*CameraState)) {
	c.mu.Lock()
	fn(&c.state)
	s := c.state
	listeners := append([]func(CameraState){}, c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}
