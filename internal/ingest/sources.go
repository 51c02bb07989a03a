package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lioncity/rentqa/internal/models"
)

// LoadSources reads the source allow-list file: a JSON array of
// {url, title, category} records. Records without a URL are rejected.
func LoadSources(path string) ([]models.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	var sources []models.SourceRecord
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	for i, s := range sources {
		if s.URL == "" {
			return nil, fmt.Errorf("source %d has no url", i)
		}
	}
	return sources, nil
}
