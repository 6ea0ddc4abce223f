package mapview

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FlyCameraOptions is one renderer transition.
type FlyCameraOptions struct {
	EndCamera CameraState
	Duration  time.Duration
}

// Renderer is the map rendering surface consumed by the choreography.
// FlyCameraTo blocks until the transition finishes, fails or ctx is done.
type Renderer interface {
	FlyCameraTo(ctx context.Context, opts FlyCameraOptions) error
}

// Choreography constants.
const (
	SurveyRange  = 8_000_000
	ArrivalRange = 500_000
	ArrivalTilt  = 60

	SurveyDuration  = 1000 * time.Millisecond
	TransitDuration = 2000 * time.Millisecond
	ArrivalDuration = 1200 * time.Millisecond
)

// Phase is a named step of a fly-to choreography.
type Phase struct {
	Name    string
	Options FlyCameraOptions
}

// Phases builds the survey, transit and arrival transitions that take the
// camera from `from` to dest.
func Phases(from CameraState, dest LatLng) []Phase {
	target := LatLngAltitude{Lat: dest.Lat, Lng: dest.Lng, Altitude: 0}
	return []Phase{
		{
			Name: "survey",
			Options: FlyCameraOptions{
				EndCamera: CameraState{
					Center:  LatLngAltitude{Lat: from.Center.Lat, Lng: from.Center.Lng, Altitude: 0},
					Range:   SurveyRange,
					Heading: from.Heading,
					Tilt:    0,
					Roll:    0,
				},
				Duration: SurveyDuration,
			},
		},
		{
			Name: "transit",
			Options: FlyCameraOptions{
				EndCamera: CameraState{Center: target, Range: SurveyRange},
				Duration:  TransitDuration,
			},
		},
		{
			Name: "arrival",
			Options: FlyCameraOptions{
				EndCamera: CameraState{Center: target, Range: ArrivalRange, Tilt: ArrivalTilt},
				Duration:  ArrivalDuration,
			},
		},
	}
}

// FlyToChoreographer runs at most one fly-to choreography at a time.
type FlyToChoreographer struct {
	camera   *Camera
	renderer Renderer
	logger   *slog.Logger

	mu         sync.Mutex
	inProgress bool
}

// NewFlyToChoreographer creates a choreographer driving renderer. A nil
// logger falls back to slog.Default().
func NewFlyToChoreographer(camera *Camera, renderer Renderer, logger *slog.Logger) *FlyToChoreographer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlyToChoreographer{camera: camera, renderer: renderer, logger: logger}
}

// InProgress reports whether a choreography is running.
func (f *FlyToChoreographer) InProgress() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inProgress
}

// FlightOutcome is how a fly-to request ended.
type FlightOutcome int

const (
	// FlightDropped means another choreography was running; nothing moved.
	FlightDropped FlightOutcome = iota
	// FlightFailed means a phase failed or ctx was done.
	FlightFailed
	// FlightCompleted means all three phases finished.
	FlightCompleted
)

// FlyTo zooms out, travels to dest and zooms in. It blocks until the last
// phase resolves and reports whether all phases completed.
//
// A call made while another choreography is running returns false at once
// without touching the camera. A failing phase ends the sequence; the error
// is logged and the camera stays wherever the renderer left it.
func (f *FlyToChoreographer) FlyTo(ctx context.Context, dest LatLng) bool {
	return f.Fly(ctx, dest) == FlightCompleted
}

// Fly is FlyTo reporting whether the request was dropped, failed or
// completed.
func (f *FlyToChoreographer) Fly(ctx context.Context, dest LatLng) FlightOutcome {
	if f.renderer == nil {
		return FlightDropped
	}

	f.mu.Lock()
	if f.inProgress {
		f.mu.Unlock()
		f.logger.Debug("fly-to dropped, choreography in progress", "lat", dest.Lat, "lng", dest.Lng)
		return FlightDropped
	}
	f.inProgress = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inProgress = false
		f.mu.Unlock()
	}()

	for _, p := range Phases(f.camera.State(), dest) {
		if err := f.renderer.FlyCameraTo(ctx, p.Options); err != nil {
			f.logger.Debug("fly-to interrupted", "phase", p.Name, "error", err)
			return FlightFailed
		}
	}
	return FlightCompleted
}
