package usecases

import "github.com/wandering-tales/wandering-tales/internal/core/domain"

// SeedPhoto is a sample photo referenced by URL.
type SeedPhoto struct {
	URL     string `yaml:"url" json:"url"`
	Caption string `yaml:"caption" json:"caption"`
}

// SeedTravel is a sample travel with its photos.
type SeedTravel struct {
	Title       string          `yaml:"title" json:"title"`
	Description string          `yaml:"description" json:"description"`
	Location    domain.Location `yaml:"location" json:"location"`
	VisitDate   string          `yaml:"visit_date" json:"visit_date"`
	Tags        []string        `yaml:"tags" json:"tags"`
	IsPublished bool            `yaml:"is_published" json:"is_published"`
	Photos      []SeedPhoto     `yaml:"photos" json:"photos"`
}

// Travel returns the travel part of the fixture, without id or timestamps.
func (f SeedTravel) Travel() domain.Travel {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Travel{
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		VisitDate:   f.VisitDate,
		Tags:        tags,
		IsPublished: f.IsPublished,
	}
}
