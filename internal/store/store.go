// Package store persists corrections, personal overrides, ignored words, and
// usage statistics.
//
// A [Backend] is the raw database access layer; SQLite (default, file-backed)
// and Postgres implementations are provided. [CachedStore] wraps a backend
// with in-memory read caches so the hot path — personal-correction lookup and
// ignore-list checks on every completed word — never touches the database.
// Writes go through to the backend and update the cache on success.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// CorrectionRecord is one applied correction, as persisted to history.
type CorrectionRecord struct {
	Original   string
	Corrected  string
	Source     string
	Confidence float64
	Context    string
	Timestamp  time.Time
}

// PersonalCorrection is one user-defined override.
type PersonalCorrection struct {
	Original  string
	Corrected string
	Frequency int
	CreatedAt time.Time
}

// Stats is an aggregate snapshot for display and the stats endpoint.
type Stats struct {
	TotalCorrections    int
	PersonalCorrections int
	IgnoredWords        int
	CorrectionsToday    int
}

// Backend is the raw persistence contract. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Migrate creates or upgrades the schema. Idempotent.
	Migrate(ctx context.Context) error

	// PersonalCorrections returns all personal overrides keyed by lowercase
	// original word.
	PersonalCorrections(ctx context.Context) (map[string]string, error)

	// UpsertPersonalCorrection inserts or updates an override, bumping its
	// frequency counter when it already exists.
	UpsertPersonalCorrection(ctx context.Context, original, corrected string) error

	// IgnoredWords returns the ignore list as a lowercase set.
	IgnoredWords(ctx context.Context) (map[string]struct{}, error)

	// AddIgnoredWord adds a word to the ignore list. Adding an existing word
	// is a no-op.
	AddIgnoredWord(ctx context.Context, word, reason string) error

	// LogCorrection appends an applied correction to history and bumps the
	// daily statistics counter.
	LogCorrection(ctx context.Context, rec CorrectionRecord) error

	// CorrectionHistory returns the most recent corrections, newest first.
	CorrectionHistory(ctx context.Context, limit int) ([]CorrectionRecord, error)

	// Stats returns the aggregate counters.
	Stats(ctx context.Context) (Stats, error)

	// CleanupOldData deletes correction history older than the retention
	// window and returns the number of rows removed.
	CleanupOldData(ctx context.Context, olderThan time.Duration) (int64, error)

	// Close releases the underlying connection(s).
	Close() error
}

// CachedStore fronts a Backend with read caches for the per-word hot path.
//
// Lookup methods (PersonalCorrection, IsIgnored) are cache-only and never
// block on the database; a failed initial load degrades to empty caches with
// a logged warning rather than an error, so typing keeps flowing even with
// the database down.
type CachedStore struct {
	backend Backend

	mu       sync.RWMutex
	personal map[string]string
	ignored  map[string]struct{}
}

// NewCached wraps backend and performs the initial cache load. Load failures
// degrade to empty caches; call Refresh to retry later.
func NewCached(ctx context.Context, backend Backend) *CachedStore {
	s := &CachedStore{
		backend:  backend,
		personal: map[string]string{},
		ignored:  map[string]struct{}{},
	}
	if err := s.Refresh(ctx); err != nil {
		slog.Warn("store: initial cache load failed, starting with empty caches", "err", err)
	}
	return s
}

// Refresh reloads both caches from the backend. On error the previous cache
// contents are kept.
func (s *CachedStore) Refresh(ctx context.Context) error {
	personal, err := s.backend.PersonalCorrections(ctx)
	if err != nil {
		return fmt.Errorf("store: load personal corrections: %w", err)
	}
	ignored, err := s.backend.IgnoredWords(ctx)
	if err != nil {
		return fmt.Errorf("store: load ignored words: %w", err)
	}

	s.mu.Lock()
	s.personal = personal
	s.ignored = ignored
	s.mu.Unlock()
	return nil
}

// PersonalCorrection resolves word against the personal override cache.
// Case-insensitive; cache-only.
func (s *CachedStore) PersonalCorrection(word string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	corrected, ok := s.personal[strings.ToLower(word)]
	return corrected, ok
}

// IsIgnored reports ignore-list membership. Case-insensitive; cache-only.
func (s *CachedStore) IsIgnored(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ignored[strings.ToLower(word)]
	return ok
}

// AddPersonalCorrection persists an override and updates the cache on
// success.
func (s *CachedStore) AddPersonalCorrection(ctx context.Context, original, corrected string) error {
	original = strings.ToLower(original)
	if err := s.backend.UpsertPersonalCorrection(ctx, original, corrected); err != nil {
		return fmt.Errorf("store: upsert personal correction: %w", err)
	}
	s.mu.Lock()
	s.personal[original] = corrected
	s.mu.Unlock()
	return nil
}

// AddIgnoredWord persists an ignore-list entry and updates the cache on
// success.
func (s *CachedStore) AddIgnoredWord(ctx context.Context, word, reason string) error {
	word = strings.ToLower(word)
	if err := s.backend.AddIgnoredWord(ctx, word, reason); err != nil {
		return fmt.Errorf("store: add ignored word: %w", err)
	}
	s.mu.Lock()
	s.ignored[word] = struct{}{}
	s.mu.Unlock()
	return nil
}

// LogCorrection appends to history. Pass-through; history is not cached.
func (s *CachedStore) LogCorrection(ctx context.Context, rec CorrectionRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if err := s.backend.LogCorrection(ctx, rec); err != nil {
		return fmt.Errorf("store: log correction: %w", err)
	}
	return nil
}

// CorrectionHistory returns the most recent corrections, newest first.
func (s *CachedStore) CorrectionHistory(ctx context.Context, limit int) ([]CorrectionRecord, error) {
	recs, err := s.backend.CorrectionHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store: correction history: %w", err)
	}
	return recs, nil
}

// Stats returns the aggregate counters.
func (s *CachedStore) Stats(ctx context.Context) (Stats, error) {
	st, err := s.backend.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("store: stats: %w", err)
	}
	return st, nil
}

// CleanupOldData deletes old correction history.
func (s *CachedStore) CleanupOldData(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.backend.CleanupOldData(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("store: cleanup: %w", err)
	}
	return n, nil
}

// Close closes the underlying backend.
func (s *CachedStore) Close() error {
	return s.backend.Close()
}
