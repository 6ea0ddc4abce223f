package viewer_test

import (
	"math"
	"testing"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
	"github.com/wandering-tales/wandering-tales/internal/viewer"
)

func TestProjection_CenterIsScreenCenter(t *testing.T) {
	p := viewer.ProjectionFor(mapview.InitialCamera, 1280, 800)
	x, y := p.Project(mapview.InitialCamera.Center.LatLng())
	if x != 640 || y != 400 {
		t.Errorf("expected (640, 400), got (%v, %v)", x, y)
	}
	// 5 000 km each side of the center.
	if span := p.SpanDegrees(); math.Abs(span-90.09) > 0.01 {
		t.Errorf("unexpected span %v", span)
	}
}

func TestProjection_RoundTrip(t *testing.T) {
	p := viewer.Projection{Center: mapview.LatLng{Lat: 10, Lng: 170}, Range: 2_000_000, Width: 800, Height: 600}
	pt := mapview.LatLng{Lat: 15, Lng: -175}

	x, y := p.Project(pt)
	if x <= 400 {
		t.Errorf("a point east across the antimeridian should be right of center, got x=%v", x)
	}
	back := p.Unproject(x, y)
	if math.Abs(back.Lat-pt.Lat) > 1e-9 || math.Abs(back.Lng-pt.Lng) > 1e-9 {
		t.Errorf("round trip drifted: %+v", back)
	}
}

func TestProjection_SpanIsClamped(t *testing.T) {
	p := viewer.Projection{Range: 1e9, Width: 360}
	if p.SpanDegrees() != 360 || p.Scale() != 1 {
		t.Errorf("expected the whole world, got span %v", p.SpanDegrees())
	}
	if !p.Visible(-5, 0, 10) || p.Visible(-50, 0, 10) {
		t.Error("unexpected visibility")
	}
}
