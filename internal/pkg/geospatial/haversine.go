package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// Offset returns the point reached by travelling distanceMeters from
// (lat, lon) along the initial bearing headingDeg (clockwise from north).
// Longitude is normalised to [-180, 180).
func Offset(lat, lon, distanceMeters, headingDeg float64) (float64, float64) {
	d := distanceMeters / (earthRadiusKm * 1000)
	h := toRad(headingDeg)
	phi1 := toRad(lat)
	lambda1 := toRad(lon)

	sinPhi2 := math.Sin(phi1)*math.Cos(d) + math.Cos(phi1)*math.Sin(d)*math.Cos(h)
	phi2 := math.Asin(sinPhi2)
	lambda2 := lambda1 + math.Atan2(
		math.Sin(h)*math.Sin(d)*math.Cos(phi1),
		math.Cos(d)-math.Sin(phi1)*sinPhi2,
	)

	return toDeg(phi2), NormalizeLng(toDeg(lambda2))
}

// NormalizeLng wraps a longitude into [-180, 180).
func NormalizeLng(lng float64) float64 {
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}

// LngDelta is the signed shortest eastward step from one longitude to
// another, in (-180, 180].
func LngDelta(from, to float64) float64 {
	d := NormalizeLng(to - from)
	if d == -180 {
		return 180
	}
	return d
}

// PlanarDistanceKm is the rough "degrees times 111 km" distance shown in
// the location list. Latitude convergence is ignored.
func PlanarDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Sqrt(math.Pow(lat2-lat1, 2)+math.Pow(lon2-lon1, 2)) * kmPerDegree
}

const kmPerDegree = 111

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
