package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteBackend implements [Backend] on a local SQLite file. The default
// persistence layer: zero external services, one file on disk.
type SQLiteBackend struct {
	db *sql.DB
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens or creates the SQLite database at path and applies
// migrations. Parent directories are created as needed.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.Migrate(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return b, nil
}

// Migrate creates the schema. Idempotent.
func (b *SQLiteBackend) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS corrections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			original TEXT NOT NULL,
			corrected TEXT NOT NULL,
			source TEXT NOT NULL,
			confidence REAL NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS personal_corrections (
			original TEXT PRIMARY KEY,
			corrected TEXT NOT NULL,
			frequency INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ignored_words (
			word TEXT PRIMARY KEY,
			reason TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS statistics (
			day TEXT PRIMARY KEY,
			corrections_made INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_corrections_created_at ON corrections(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// PersonalCorrections returns all overrides keyed by lowercase original.
func (b *SQLiteBackend) PersonalCorrections(ctx context.Context) (map[string]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT original, corrected FROM personal_corrections`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]string{}
	for rows.Next() {
		var original, corrected string
		if err := rows.Scan(&original, &corrected); err != nil {
			return nil, err
		}
		result[original] = corrected
	}
	return result, rows.Err()
}

// UpsertPersonalCorrection inserts an override or, when the original already
// has one, replaces it and bumps the frequency counter.
func (b *SQLiteBackend) UpsertPersonalCorrection(ctx context.Context, original, corrected string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO personal_corrections (original, corrected, frequency, created_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(original) DO UPDATE SET
			corrected = excluded.corrected,
			frequency = personal_corrections.frequency + 1`,
		original, corrected, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// IgnoredWords returns the ignore list as a set.
func (b *SQLiteBackend) IgnoredWords(ctx context.Context) (map[string]struct{}, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT word FROM ignored_words`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]struct{}{}
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, err
		}
		result[word] = struct{}{}
	}
	return result, rows.Err()
}

// AddIgnoredWord adds a word to the ignore list. Duplicate adds are no-ops.
func (b *SQLiteBackend) AddIgnoredWord(ctx context.Context, word, reason string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO ignored_words (word, reason, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(word) DO NOTHING`,
		word, reason, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LogCorrection appends to history and bumps today's statistics counter in
// one transaction.
func (b *SQLiteBackend) LogCorrection(ctx context.Context, rec CorrectionRecord) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO corrections (original, corrected, source, confidence, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Original, rec.Corrected, rec.Source, rec.Confidence, rec.Context,
		ts.Format(time.RFC3339Nano),
	); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO statistics (day, corrections_made) VALUES (?, 1)
		 ON CONFLICT(day) DO UPDATE SET corrections_made = statistics.corrections_made + 1`,
		ts.Format(time.DateOnly),
	); err != nil {
		return err
	}

	return tx.Commit()
}

// CorrectionHistory returns the most recent corrections, newest first.
func (b *SQLiteBackend) CorrectionHistory(ctx context.Context, limit int) ([]CorrectionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := b.db.QueryContext(ctx,
		`SELECT original, corrected, source, confidence, context, created_at
		 FROM corrections ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []CorrectionRecord
	for rows.Next() {
		var rec CorrectionRecord
		var createdAt string
		if err := rows.Scan(&rec.Original, &rec.Corrected, &rec.Source, &rec.Confidence, &rec.Context, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = parsed
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Stats returns the aggregate counters.
func (b *SQLiteBackend) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corrections`).Scan(&st.TotalCorrections); err != nil {
		return Stats{}, err
	}
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM personal_corrections`).Scan(&st.PersonalCorrections); err != nil {
		return Stats{}, err
	}
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ignored_words`).Scan(&st.IgnoredWords); err != nil {
		return Stats{}, err
	}
	err := b.db.QueryRowContext(ctx,
		`SELECT corrections_made FROM statistics WHERE day = ?`,
		time.Now().UTC().Format(time.DateOnly),
	).Scan(&st.CorrectionsToday)
	if err != nil && err != sql.ErrNoRows {
		return Stats{}, err
	}
	return st, nil
}

// CleanupOldData deletes correction history older than the retention window.
func (b *SQLiteBackend) CleanupOldData(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := b.db.ExecContext(ctx,
		`DELETE FROM corrections WHERE created_at < ?`,
		cutoff.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
