// Package fixtures loads sample travels from YAML.
package fixtures

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
)

//go:embed travels.yaml
var sampleTravels []byte

// Default returns the built-in sample travels.
func Default() ([]usecases.SeedTravel, error) {
	return parse(sampleTravels)
}

// Load reads sample travels from r.
func Load(r io.Reader) ([]usecases.SeedTravel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return parse(data)
}

// LoadFile reads sample travels from a YAML file, or returns the built-in
// set when path is empty.
func LoadFile(path string) ([]usecases.SeedTravel, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func parse(data []byte) ([]usecases.SeedTravel, error) {
	var travels []usecases.SeedTravel
	if err := yaml.Unmarshal(data, &travels); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	var errs []error
	for i, t := range travels {
		if t.Title == "" {
			errs = append(errs, fmt.Errorf("travel %d: title is required", i))
		}
		for j, p := range t.Photos {
			if p.URL == "" {
				errs = append(errs, fmt.Errorf("travel %d photo %d: url is required", i, j))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return travels, nil
}
