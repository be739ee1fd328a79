package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSeed = `{
	"source": "algebra-basics",
	"entries": [
		{"id": "quadratic-formula", "title": "Quadratic formula", "content": "x = (-b ± sqrt(b^2-4ac)) / 2a", "tags": ["algebra"]},
		{"id": "difference-of-squares", "title": "Difference of squares", "content": "a^2 - b^2 = (a-b)(a+b)"}
	]
}`

func writeSeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newTestImporter(t *testing.T) (*Importer, *Store) {
	t.Helper()
	store := newKeywordStore(t)
	importer, err := NewImporter(store, zerolog.Nop())
	require.NoError(t, err)
	return importer, store
}

func TestImporter_ImportFile(t *testing.T) {
	importer, store := newTestImporter(t)

	path := writeSeed(t, t.TempDir(), "algebra.json", validSeed)
	n, err := importer.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The document source is applied to entries without their own.
	results, err := store.Search(context.Background(), "quadratic", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "algebra-basics", results[0].Entry.Source)
}

func TestImporter_RejectsInvalidSchema(t *testing.T) {
	importer, store := newTestImporter(t)

	tests := []struct {
		name    string
		content string
	}{
		{"missing entries", `{"source": "x"}`},
		{"entry without id", `{"entries": [{"title": "t", "content": "c"}]}`},
		{"entry with empty content", `{"entries": [{"id": "a", "title": "t", "content": ""}]}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSeed(t, t.TempDir(), "bad.json", tt.content)
			_, err := importer.ImportFile(context.Background(), path)
			assert.Error(t, err)
		})
	}

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestImporter_ImportDirSkipsBadFiles(t *testing.T) {
	importer, store := newTestImporter(t)

	dir := t.TempDir()
	writeSeed(t, dir, "good.json", validSeed)
	writeSeed(t, dir, "bad.json", `{"entries": "not an array"}`)
	writeSeed(t, dir, "ignored.txt", "not a seed file")

	n, err := importer.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImporter_MissingFile(t *testing.T) {
	importer, _ := newTestImporter(t)

	_, err := importer.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
