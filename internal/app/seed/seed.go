// Package seed loads the static destination catalogue into the store at
// startup.
package seed

import (
	_ "embed"
	"fmt"

	"github.com/ghodss/yaml"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

//go:embed destinations.yaml
var defaultDocument []byte

type Writer interface {
	CreateDestination(d models.Destination) (*models.Destination, error)
	CreateDestinationDetail(d models.DestinationDetail) (*models.DestinationDetail, error)
}

type Entry struct {
	models.Destination
	Details *models.DestinationDetail `json:"details,omitempty"`
}

type document struct {
	Destinations []Entry `json:"destinations"`
}

// Parse decodes a catalogue document and checks every entry.
func Parse(data []byte) ([]Entry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode seed document: %w", err)
	}

	for i, e := range doc.Destinations {
		if e.Name == "" {
			return nil, fmt.Errorf("destination #%d has no name: %w", i+1, models.ErrValidation)
		}
		if e.PriceLevel < 1 || e.PriceLevel > 3 {
			return nil, fmt.Errorf("destination %q has price level %d: %w", e.Name, e.PriceLevel, models.ErrValidation)
		}
		if !models.ValidRegion(e.Region) {
			return nil, fmt.Errorf("destination %q has unknown region %q: %w", e.Name, e.Region, models.ErrValidation)
		}
		for _, c := range e.Categories {
			if !models.ValidCategory(c) {
				return nil, fmt.Errorf("destination %q has unknown category %q: %w", e.Name, c, models.ErrValidation)
			}
		}
	}
	return doc.Destinations, nil
}

// Load writes the embedded catalogue into w and returns the number of
// destinations created.
func Load(w Writer, logger *zap.Logger) (int, error) {
	return LoadDocument(w, defaultDocument, logger)
}

func LoadDocument(w Writer, data []byte, logger *zap.Logger) (int, error) {
	entries, err := Parse(data)
	if err != nil {
		return 0, err
	}

	for _, e := range entries {
		d, err := w.CreateDestination(e.Destination)
		if err != nil {
			return 0, fmt.Errorf("failed to create destination %q: %w", e.Name, err)
		}
		if e.Details == nil {
			continue
		}
		detail := *e.Details
		detail.DestinationID = d.ID
		if _, err := w.CreateDestinationDetail(detail); err != nil {
			return 0, fmt.Errorf("failed to create details for %q: %w", e.Name, err)
		}
	}

	logger.Info("Destination catalogue loaded", zap.Int("destinations", len(entries)))
	return len(entries), nil
}
