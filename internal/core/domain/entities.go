package domain

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors shared by the use cases and adapters.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTooLarge     = errors.New("payload too large")
)

// Location is where a travel took place.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Country string  `json:"country"`
}

// Travel is a journal entry pinned on the globe.
type Travel struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    Location  `json:"location"`
	VisitDate   string    `json:"visit_date"` // ISO date, e.g. 2024-03-15
	CreatedAt   time.Time `json:"created_at"`
	Tags        []string  `json:"tags"`
	IsPublished bool      `json:"is_published"`
}

// MediaType is the kind of a media item.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	switch t {
	case MediaPhoto, MediaVideo, MediaAudio:
		return true
	}
	return false
}

// MediaMetadata holds optional technical details of an upload.
type MediaMetadata struct {
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Duration *float64 `json:"duration,omitempty"` // seconds, video and audio
	FileSize int64    `json:"file_size"`
}

// Media is a photo, video or audio file attached to a travel.
type Media struct {
	ID                 string         `json:"id"`
	TravelID           string         `json:"travel_id"`
	Type               MediaType      `json:"type"`
	StorageID          string         `json:"storage_id"`
	ThumbnailStorageID string         `json:"thumbnail_storage_id,omitempty"`
	Caption            string         `json:"caption,omitempty"`
	OrderIndex         int            `json:"order_index"`
	Metadata           *MediaMetadata `json:"metadata,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// StorageIDs returns the blob ids referenced by m.
func (m Media) StorageIDs() []string {
	ids := []string{m.StorageID}
	if m.ThumbnailStorageID != "" {
		ids = append(ids, m.ThumbnailStorageID)
	}
	return ids
}

// MediaItem is a media entry as shown to viewers.
type MediaItem struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Type         MediaType `json:"type"`
	OrderIndex   int       `json:"order_index"`
}

// TravelDetail is a travel with its media, ordered by OrderIndex.
type TravelDetail struct {
	Travel
	Media []MediaItem `json:"media"`
}

// HasMedia reports whether the travel has at least one media item.
func (d *TravelDetail) HasMedia() bool {
	return d != nil && len(d.Media) > 0
}

// ResolveStorageURL maps a storage id to a URL. Absolute http(s) ids, as
// used by the sample data, are returned unchanged.
func ResolveStorageURL(storageID string) string {
	if storageID == "" {
		return ""
	}
	if strings.HasPrefix(storageID, "http://") || strings.HasPrefix(storageID, "https://") {
		return storageID
	}
	return "/v1/files/" + storageID
}
