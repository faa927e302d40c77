package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"compsight/server/internal/models"
)

// SearchCriteria narrows a candidate fetch. Zero values mean unconstrained.
type SearchCriteria struct {
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	RadiusMiles float64 `json:"radius_miles,omitempty"`
	MaxResults  int     `json:"max_results,omitempty"`
}

// Source supplies candidate properties from an external data provider.
// Connectors (MLS feeds, assessor APIs, scrapers) implement this interface
// out of tree; the engine only needs best-effort Property records with nil
// for any field the provider does not know.
type Source interface {
	Name() string
	FetchCandidates(ctx context.Context, criteria SearchCriteria) ([]models.Property, error)
}

// FileSource reads candidate properties from a JSON file: an array of
// Property records. It backs offline valuations and repeatable test runs.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the given JSON file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

// FetchCandidates loads all properties from the file, applying only the
// MaxResults criterion; geographic filtering is the comp engine's job.
func (s *FileSource) FetchCandidates(_ context.Context, criteria SearchCriteria) ([]models.Property, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates file: %w", err)
	}

	var properties []models.Property
	if err := json.Unmarshal(data, &properties); err != nil {
		return nil, fmt.Errorf("failed to parse candidates file: %w", err)
	}

	if criteria.MaxResults > 0 && len(properties) > criteria.MaxResults {
		properties = properties[:criteria.MaxResults]
	}
	return properties, nil
}
