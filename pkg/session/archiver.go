package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// archiveEntry is one line of the JSONL archive file.
type archiveEntry struct {
	ArchivedAt time.Time `json:"archived_at"`
	SessionID  string    `json:"session_id"`
	Status     Status    `json:"status"`
	Topic      string    `json:"topic,omitempty"`
	Transcript []Message `json:"transcript"`
}

// Archiver appends finished sessions to a JSONL archive file before they
// are reclaimed. Writes are best-effort history, not durable state.
type Archiver struct {
	path   string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewArchiver creates an archiver writing to the given file path.
func NewArchiver(path string, logger zerolog.Logger) (*Archiver, error) {
	if path == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archiver{
		path:   path,
		logger: logger.With().Str("component", "session_archiver").Logger(),
	}, nil
}

// Archive appends one session snapshot to the archive file.
func (a *Archiver) Archive(v View) error {
	entry := archiveEntry{
		ArchivedAt: time.Now(),
		SessionID:  v.SessionID,
		Status:     v.Status,
		Transcript: v.Transcript,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal archive entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write archive entry: %w", err)
	}

	a.logger.Debug().Str("session_id", v.SessionID).Msg("Session archived")
	return nil
}
