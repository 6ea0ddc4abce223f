package viewer

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
	"github.com/wandering-tales/wandering-tales/internal/pkg/geospatial"
)

// ErrTransitionReplaced is returned by FlyCameraTo when a newer transition
// took over the camera before it finished.
var ErrTransitionReplaced = errors.New("camera transition replaced")

// Renderer animates camera transitions tick by tick and owns the marker
// layer. FlyCameraTo may be called from any goroutine; Step runs on the UI
// loop and reports each intermediate camera back to the Camera.
type Renderer struct {
	camera *mapview.Camera

	mu         sync.Mutex
	active     *transition
	markers    map[uint64]*markerHandle
	nextMarker uint64
}

type transition struct {
	from, to mapview.CameraState
	duration time.Duration
	elapsed  time.Duration
	started  bool
	done     chan error
}

// NewRenderer returns a renderer driving camera.
func NewRenderer(camera *mapview.Camera) *Renderer {
	return &Renderer{camera: camera, markers: make(map[uint64]*markerHandle)}
}

// FlyCameraTo starts a transition to opts.EndCamera and blocks until Step
// completes it, a newer transition replaces it or ctx is done.
func (r *Renderer) FlyCameraTo(ctx context.Context, opts mapview.FlyCameraOptions) error {
	tr := &transition{to: opts.EndCamera, duration: opts.Duration, done: make(chan error, 1)}

	r.mu.Lock()
	if r.active != nil {
		r.active.done <- ErrTransitionReplaced
	}
	r.active = tr
	r.mu.Unlock()

	select {
	case err := <-tr.done:
		return err
	case <-ctx.Done():
		r.mu.Lock()
		if r.active == tr {
			r.active = nil
		}
		r.mu.Unlock()
		return ctx.Err()
	}
}

// Animating reports whether a transition is running.
func (r *Renderer) Animating() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Step advances the running transition by dt.
func (r *Renderer) Step(dt time.Duration) {
	r.mu.Lock()
	tr := r.active
	if tr == nil {
		r.mu.Unlock()
		return
	}
	if !tr.started {
		tr.from = r.camera.State()
		tr.started = true
	}
	tr.elapsed += dt
	finished := tr.elapsed >= tr.duration
	if finished {
		r.active = nil
	}
	r.mu.Unlock()

	state := tr.to
	if !finished {
		state = interpolate(tr.from, tr.to, ease(float64(tr.elapsed)/float64(tr.duration)))
	}
	r.camera.OnCameraChange(state)
	if finished {
		tr.done <- nil
	}
}

// ease is a smoothstep curve on [0, 1].
func ease(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// interpolate blends two cameras. Longitude and heading take the short way
// round; range is blended geometrically so zooms feel even.
func interpolate(from, to mapview.CameraState, t float64) mapview.CameraState {
	rng := lerp(from.Range, to.Range, t)
	if from.Range > 0 && to.Range > 0 {
		rng = from.Range * math.Pow(to.Range/from.Range, t)
	}
	return mapview.CameraState{
		Center: mapview.LatLngAltitude{
			Lat:      lerp(from.Center.Lat, to.Center.Lat, t),
			Lng:      geospatial.NormalizeLng(from.Center.Lng + geospatial.LngDelta(from.Center.Lng, to.Center.Lng)*t),
			Altitude: lerp(from.Center.Altitude, to.Center.Altitude, t),
		},
		Range:   rng,
		Heading: math.Mod(from.Heading+geospatial.LngDelta(from.Heading, to.Heading)*t+360, 360),
		Tilt:    lerp(from.Tilt, to.Tilt, t),
		Roll:    lerp(from.Roll, to.Roll, t),
	}
}

type markerHandle struct {
	r       *Renderer
	id      uint64
	marker  mapview.Marker
	onClick func()
}

// Update replaces the drawn marker.
func (h *markerHandle) Update(m mapview.Marker) {
	h.r.mu.Lock()
	h.marker = m
	h.r.mu.Unlock()
}

// Remove takes the marker off the map.
func (h *markerHandle) Remove() {
	h.r.mu.Lock()
	delete(h.r.markers, h.id)
	h.r.mu.Unlock()
}

// AddMarker draws m until its handle is removed.
func (r *Renderer) AddMarker(m mapview.Marker, onClick func()) mapview.MarkerHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextMarker++
	h := &markerHandle{r: r, id: r.nextMarker, marker: m, onClick: onClick}
	r.markers[h.id] = h
	return h
}

// Markers returns the drawn markers sorted by id.
func (r *Renderer) Markers() []mapview.Marker {
	r.mu.Lock()
	out := make([]mapview.Marker, 0, len(r.markers))
	for _, h := range r.markers {
		out = append(out, h.marker)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Click invokes the click callback of the marker nearest to (x, y) within
// radius pixels. It reports whether a marker was hit.
func (r *Renderer) Click(p Projection, x, y, radius float64) bool {
	r.mu.Lock()
	var hit func()
	best := radius * radius
	for _, h := range r.markers {
		mx, my := p.Project(h.marker.Position.LatLng())
		d := (mx-x)*(mx-x) + (my-y)*(my-y)
		if d <= best {
			best = d
			hit = h.onClick
		}
	}
	r.mu.Unlock()

	if hit == nil {
		return false
	}
	hit()
	return true
}
