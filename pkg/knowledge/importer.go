package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// seedSchema validates knowledge seed documents before import. A seed
// file is a JSON document with a list of entries.
const seedSchema = `{
	"type": "object",
	"required": ["entries"],
	"properties": {
		"source": {"type": "string"},
		"entries": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "title", "content"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"title": {"type": "string", "minLength": 1},
					"content": {"type": "string", "minLength": 1},
					"tags": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

type seedDocument struct {
	Source  string  `json:"source"`
	Entries []Entry `json:"entries"`
}

// Importer loads seed documents into the knowledge store.
type Importer struct {
	store  *Store
	schema *gojsonschema.Schema
	logger zerolog.Logger
}

// NewImporter creates a seed importer.
func NewImporter(store *Store, logger zerolog.Logger) (*Importer, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(seedSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile seed schema: %w", err)
	}
	return &Importer{
		store:  store,
		schema: schema,
		logger: logger.With().Str("component", "knowledge_importer").Logger(),
	}, nil
}

// ImportFile validates and imports one seed file. Invalid files are
// rejected whole; a valid file imports all of its entries.
func (i *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	result, err := i.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to validate seed file %s: %w", path, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return 0, fmt.Errorf("seed file %s is invalid: %s", path, strings.Join(issues, "; "))
	}

	var doc seedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	imported := 0
	for _, entry := range doc.Entries {
		if entry.Source == "" {
			entry.Source = doc.Source
		}
		if entry.Source == "" {
			entry.Source = filepath.Base(path)
		}
		if err := i.store.Add(ctx, entry); err != nil {
			return imported, fmt.Errorf("failed to import entry %s: %w", entry.ID, err)
		}
		imported++
	}

	i.logger.Info().Str("file", filepath.Base(path)).Int("entries", imported).Msg("Seed file imported")
	return imported, nil
}

// ImportDir imports every .json seed file in a directory. Files that
// fail validation are skipped with a warning so one bad file cannot
// block the rest of the corpus.
func (i *Importer) ImportDir(ctx context.Context, dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list seed directory: %w", err)
	}

	total := 0
	for _, path := range files {
		n, err := i.ImportFile(ctx, path)
		total += n
		if err != nil {
			i.logger.Warn().Err(err).Str("file", filepath.Base(path)).Msg("Skipping seed file")
		}
	}
	return total, nil
}
