package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func init() {
	// Auto-register sqlite-vec extension
	sqlite_vec.Auto()
}

// Entry is one reference item in the knowledge base: a definition,
// theorem, formula, or worked technique.
type Entry struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// SearchResult is an entry with its relevance score.
type SearchResult struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}

// Config holds knowledge store configuration.
type Config struct {
	DBPath   string
	Embedder EmbeddingProvider // optional; nil disables vector search
	Logger   zerolog.Logger
}

// Store is the reference corpus backing the research capability. It
// keeps an FTS5 keyword index and, when an embedder is configured, a
// vec0 vector index, and merges both at query time.
type Store struct {
	db       *sql.DB
	embedder EmbeddingProvider
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewStore opens the knowledge database, creating the schema if needed.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_fts5=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:       db,
		embedder: cfg.Embedder,
		logger:   cfg.Logger.With().Str("component", "knowledge_store").Logger(),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().Str("db", cfg.DBPath).Bool("vector", cfg.Embedder != nil).Msg("Knowledge store opened")
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			tags TEXT,
			source TEXT,
			added_at INTEGER NOT NULL
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			entry_id UNINDEXED,
			title,
			content,
			tokenize='porter unicode61'
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if s.embedder != nil {
		vectorSchema := fmt.Sprintf(`
			CREATE VIRTUAL TABLE IF NOT EXISTS entry_embeddings USING vec0(
				entry_id TEXT PRIMARY KEY,
				embedding float[%d] distance_metric=cosine
			);
		`, s.embedder.Dimension())
		if _, err := s.db.Exec(vectorSchema); err != nil {
			return fmt.Errorf("failed to create vector table: %w", err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts or replaces an entry in all indexes.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	if entry.ID == "" || entry.Content == "" {
		return errors.New("entry id and content are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tags := strings.Join(entry.Tags, ",")
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO entries (id, title, content, tags, source, added_at)
		 VALUES (?, ?, ?, ?, ?, strftime('%s','now'))`,
		entry.ID, entry.Title, entry.Content, tags, entry.Source,
	); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries_fts WHERE entry_id = ?`, entry.ID); err != nil {
		return fmt.Errorf("failed to clear fts row: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries_fts (entry_id, title, content) VALUES (?, ?, ?)`,
		entry.ID, entry.Title, entry.Content,
	); err != nil {
		return fmt.Errorf("failed to index entry: %w", err)
	}

	if s.embedder != nil {
		embedding, err := s.embedder.GenerateEmbedding(ctx, entry.Title+"\n"+entry.Content)
		if err != nil {
			return fmt.Errorf("failed to embed entry: %w", err)
		}
		embeddingJSON, err := json.Marshal(embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM entry_embeddings WHERE entry_id = ?`, entry.ID); err != nil {
			return fmt.Errorf("failed to clear embedding row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entry_embeddings (entry_id, embedding) VALUES (?, ?)`,
			entry.ID, string(embeddingJSON),
		); err != nil {
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
	}

	return tx.Commit()
}

// Count returns the number of entries in the corpus.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Search runs a hybrid keyword + vector query and returns the merged
// top results. With no embedder it is keyword-only.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keywordScores, err := s.keywordSearch(ctx, query, limit*2)
	if err != nil {
		return nil, err
	}

	vectorScores := map[string]float64{}
	if s.embedder != nil {
		vectorScores, err = s.vectorSearch(ctx, query, limit*2)
		if err != nil {
			// Vector search is an enhancement over the keyword index;
			// keep keyword results when it fails.
			s.logger.Warn().Err(err).Msg("Vector search failed, using keyword results only")
			vectorScores = map[string]float64{}
		}
	}

	merged := mergeScores(keywordScores, vectorScores)
	if len(merged) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return merged[ids[i]] > merged[ids[j]] })
	if len(ids) > limit {
		ids = ids[:limit]
	}

	results := make([]SearchResult, 0, len(ids))
	for _, id := range ids {
		entry, err := s.getEntry(ctx, id)
		if err != nil {
			continue
		}
		results = append(results, SearchResult{Entry: entry, Score: merged[id]})
	}
	return results, nil
}

func (s *Store) keywordSearch(ctx context.Context, query string, limit int) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, bm25(entries_fts) AS score
		 FROM entries_fts
		 WHERE entries_fts MATCH ?
		 ORDER BY score
		 LIMIT ?`,
		ftsQuery(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var id string
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, err
		}
		// BM25 scores are negative; flip to positive
		scores[id] = -score
	}
	return scores, rows.Err()
}

func (s *Store) vectorSearch(ctx context.Context, query string, limit int) (map[string]float64, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, vec_distance_cosine(embedding, ?) AS distance
		 FROM entry_embeddings
		 ORDER BY distance ASC
		 LIMIT ?`,
		string(embeddingJSON), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, err
		}
		scores[id] = 1.0 - distance
	}
	return scores, rows.Err()
}

func (s *Store) getEntry(ctx context.Context, id string) (Entry, error) {
	var entry Entry
	var tags sql.NullString
	var source sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, tags, source FROM entries WHERE id = ?`, id,
	).Scan(&entry.ID, &entry.Title, &entry.Content, &tags, &source)
	if err != nil {
		return Entry{}, err
	}
	if tags.Valid && tags.String != "" {
		entry.Tags = strings.Split(tags.String, ",")
	}
	entry.Source = source.String
	return entry, nil
}

// mergeScores combines normalized keyword and vector scores with equal
// weight.
func mergeScores(keyword, vector map[string]float64) map[string]float64 {
	normalize := func(scores map[string]float64) {
		var max float64
		for _, v := range scores {
			if v > max {
				max = v
			}
		}
		if max <= 0 {
			return
		}
		for k, v := range scores {
			scores[k] = v / max
		}
	}
	normalize(keyword)
	normalize(vector)

	merged := make(map[string]float64, len(keyword)+len(vector))
	for id, score := range keyword {
		merged[id] += 0.5 * score
	}
	for id, score := range vector {
		merged[id] += 0.5 * score
	}
	return merged
}

// ftsQuery quotes each term so user input with FTS5 operators cannot
// break the MATCH expression.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " OR ")
}
