package viewer

import (
	"math"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
	"github.com/wandering-tales/wandering-tales/internal/pkg/geospatial"
)

const metersPerDegree = 111_000

// Projection maps geographic points onto the screen with a flat
// equirectangular projection centered on the camera target. The range
// sets how many degrees of longitude fit across the width.
type Projection struct {
	Center mapview.LatLng
	Range  float64
	Width  int
	Height int
}

// ProjectionFor returns the projection of camera s on a w×h screen.
func ProjectionFor(s mapview.CameraState, w, h int) Projection {
	return Projection{Center: s.Center.LatLng(), Range: s.Range, Width: w, Height: h}
}

// SpanDegrees is the longitude span visible across the screen.
func (p Projection) SpanDegrees() float64 {
	span := 2 * p.Range / metersPerDegree
	switch {
	case span <= 0:
		return 1
	case span > 360:
		return 360
	}
	return span
}

// Scale is the number of pixels per degree.
func (p Projection) Scale() float64 {
	return float64(p.Width) / p.SpanDegrees()
}

// Project returns the screen position of pt. Longitudes take the short way
// around the antimeridian.
func (p Projection) Project(pt mapview.LatLng) (x, y float64) {
	k := p.Scale()
	x = float64(p.Width)/2 + geospatial.LngDelta(p.Center.Lng, pt.Lng)*k
	y = float64(p.Height)/2 - (pt.Lat-p.Center.Lat)*k
	return x, y
}

// Unproject is the inverse of Project.
func (p Projection) Unproject(x, y float64) mapview.LatLng {
	k := p.Scale()
	lng := p.Center.Lng + (x-float64(p.Width)/2)/k
	lat := p.Center.Lat - (y-float64(p.Height)/2)/k
	return mapview.LatLng{Lat: math.Max(-90, math.Min(90, lat)), Lng: geospatial.NormalizeLng(lng)}
}

// Visible reports whether (x, y) lies on screen, with margin pixels of slack.
func (p Projection) Visible(x, y, margin float64) bool {
	return x >= -margin && y >= -margin && x <= float64(p.Width)+margin && y <= float64(p.Height)+margin
}
