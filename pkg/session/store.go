package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// record pairs a session with its mutation lock. The lock serializes
// read-modify-write cycles per session id; updates to different sessions
// proceed independently.
type record struct {
	mu   sync.Mutex
	sess *Session
}

// Store is the process-wide keyed session store. It owns all mutation
// arbitration: a second update against the same session queues behind the
// one in flight, never interleaves with it.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
	logger  zerolog.Logger
}

// NewStore creates an empty session store. The store is created once at
// process start and injected into every component that touches sessions.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		records: make(map[string]*record),
		logger:  logger.With().Str("component", "session_store").Logger(),
	}
}

// newSessionID generates an opaque session identifier.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create registers a new session in the processing state and returns its
// snapshot.
func (st *Store) Create() View {
	now := time.Now()
	sess := &Session{
		ID:        newSessionID(),
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	st.mu.Lock()
	st.records[sess.ID] = &record{sess: sess}
	st.mu.Unlock()

	st.logger.Debug().Str("session_id", sess.ID).Msg("Session created")
	return sess.View()
}

// Get returns a read-only snapshot of a session. It never mutates and is
// safe to call arbitrarily often.
func (st *Store) Get(id string) (View, error) {
	rec, err := st.lookup(id)
	if err != nil {
		return View{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.sess.View(), nil
}

// Update applies an atomic read-modify-write to a session. The mutator
// runs under the session's lock, so concurrent updates to the same id
// serialize. Mutations applied before the mutator returns an error are
// kept: committed pipeline progress persists even when a later step fails.
func (st *Store) Update(id string, fn func(*Session) error) (View, error) {
	rec, err := st.lookup(id)
	if err != nil {
		return View{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	mutErr := fn(rec.sess)
	return rec.sess.View(), mutErr
}

// Delete removes a session from the store.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.records[id]; !ok {
		return ErrNotFound
	}
	delete(st.records, id)
	st.logger.Debug().Str("session_id", id).Msg("Session deleted")
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.records)
}

// Snapshots returns a point-in-time view of every live session. Used by
// the retention janitor; the result is not a consistent cut across
// sessions.
func (st *Store) Snapshots() []View {
	st.mu.RLock()
	recs := make([]*record, 0, len(st.records))
	for _, rec := range st.records {
		recs = append(recs, rec)
	}
	st.mu.RUnlock()

	views := make([]View, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		views = append(views, rec.sess.View())
		rec.mu.Unlock()
	}
	return views
}

// UpdatedAt returns the last mutation time for a session.
func (st *Store) UpdatedAt(id string) (time.Time, error) {
	rec, err := st.lookup(id)
	if err != nil {
		return time.Time{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.sess.UpdatedAt, nil
}

func (st *Store) lookup(id string) (*record, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	rec, ok := st.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}
