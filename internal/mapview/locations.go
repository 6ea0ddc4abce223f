package mapview

import (
	"math"
	"strings"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/pkg/geospatial"
)

// DefaultFlag marks countries without a known flag.
const DefaultFlag = "📍"

var countryFlags = map[string]string{
	"vietnam": "🇻🇳",
	"china":   "🇨🇳",
	"uae":     "🇦🇪",
	"japan":   "🇯🇵",
	"france":  "🇫🇷",
	"spain":   "🇪🇸",
	"india":   "🇮🇳",
}

// CountryFlag returns the flag emoji for a country name.
func CountryFlag(country string) string {
	if f, ok := countryFlags[strings.ToLower(strings.TrimSpace(country))]; ok {
		return f
	}
	return DefaultFlag
}

// LocationEntry is one row of the side list.
type LocationEntry struct {
	Index      int // 1-based
	ID         string
	Title      string
	Flag       string
	DistanceKm int
	Location   LatLng
}

// LocationList builds the side list of travels with their rough distance
// from the camera center.
func LocationList(travels []domain.Travel, center LatLng) []LocationEntry {
	out := make([]LocationEntry, 0, len(travels))
	for i, t := range travels {
		km := geospatial.PlanarDistanceKm(center.Lat, center.Lng, t.Location.Lat, t.Location.Lng)
		out = append(out, LocationEntry{
			Index:      i + 1,
			ID:         t.ID,
			Title:      t.Title,
			Flag:       CountryFlag(t.Location.Country),
			DistanceKm: int(math.Round(km)),
			Location:   LatLng{Lat: t.Location.Lat, Lng: t.Location.Lng},
		})
	}
	return out
}
