package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the SQL DDL for the correction tables. Executed via
// [PostgresBackend.Migrate], or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS corrections (
    id         BIGSERIAL PRIMARY KEY,
    original   TEXT NOT NULL,
    corrected  TEXT NOT NULL,
    source     TEXT NOT NULL,
    confidence DOUBLE PRECISION NOT NULL,
    context    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS personal_corrections (
    original   TEXT PRIMARY KEY,
    corrected  TEXT NOT NULL,
    frequency  INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS ignored_words (
    word       TEXT PRIMARY KEY,
    reason     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS statistics (
    day              DATE PRIMARY KEY,
    corrections_made INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_corrections_created_at ON corrections(created_at);
`

// DB is the database interface used by [PostgresBackend]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresBackend implements [Backend] on PostgreSQL, for deployments where
// several machines share one correction store.
type PostgresBackend struct {
	db    DB
	close func()
}

// Compile-time interface check.
var _ Backend = (*PostgresBackend)(nil)

// NewPostgresBackend creates a backend on an existing connection or pool.
// The caller is responsible for calling Migrate before issuing queries and
// for closing the connection.
func NewPostgresBackend(db DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// OpenPostgres connects a new pool with the given DSN, migrates, and returns
// a backend that owns (and closes) the pool.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	b := &PostgresBackend{db: pool, close: pool.Close}
	if err := b.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// Migrate executes the [Schema] DDL. Idempotent.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// PersonalCorrections returns all overrides keyed by lowercase original.
func (b *PostgresBackend) PersonalCorrections(ctx context.Context) (map[string]string, error) {
	rows, err := b.db.Query(ctx, `SELECT original, corrected FROM personal_corrections`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

// UpsertPersonalCorrection inserts an override or replaces an existing one,
// bumping its frequency counter.
func (b *PostgresBackend) UpsertPersonalCorrection(ctx context.Context, original, corrected string) error {
	_, err := b.db.Exec(ctx,
		`INSERT INTO personal_corrections (original, corrected) VALUES ($1, $2)
		 ON CONFLICT (original) DO UPDATE SET
			corrected = EXCLUDED.corrected,
			frequency = personal_corrections.frequency + 1`,
		original, corrected,
	)
	return err
}

// IgnoredWords returns the ignore list as a set.
func (b *PostgresBackend) IgnoredWords(ctx context.Context) (map[string]struct{}, error) {
	rows, err := b.db.Query(ctx, `SELECT word FROM ignored_words`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
func (b *PostgresBackend) AddIgnoredWord(ctx context.Context, word, reason string) error {
	_, err := b.db.Exec(ctx,
		`INSERT INTO ignored_words (word, reason) VALUES ($1, $2)
		 ON CONFLICT (word) DO NOTHING`,
		word, reason,
	)
	return err
}

// LogCorrection appends to history and bumps today's statistics counter.
func (b *PostgresBackend) LogCorrection(ctx context.Context, rec CorrectionRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	if _, err := b.db.Exec(ctx,
		`INSERT INTO corrections (original, corrected, source, confidence, context, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.Original, rec.Corrected, rec.Source, rec.Confidence, rec.Context, ts,
	); err != nil {
		return err
	}

	_, err := b.db.Exec(ctx,
		`INSERT INTO statistics (day, corrections_made) VALUES ($1::date, 1)
		 ON CONFLICT (day) DO UPDATE SET corrections_made = statistics.corrections_made + 1`,
		ts,
	)
	return err
}

// CorrectionHistory returns the most recent corrections, newest first.
func (b *PostgresBackend) CorrectionHistory(ctx context.Context, limit int) ([]CorrectionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := b.db.Query(ctx,
		`SELECT original, corrected, source, confidence, context, created_at
		 FROM corrections ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CorrectionRecord
	for rows.Next() {
		var rec CorrectionRecord
		if err := rows.Scan(&rec.Original, &rec.Corrected, &rec.Source, &rec.Confidence, &rec.Context, &rec.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Stats returns the aggregate counters.
func (b *PostgresBackend) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := b.db.QueryRow(ctx, `SELECT COUNT(*) FROM corrections`).Scan(&st.TotalCorrections); err != nil {
		return Stats{}, err
	}
	if err := b.db.QueryRow(ctx, `SELECT COUNT(*) FROM personal_corrections`).Scan(&st.PersonalCorrections); err != nil {
		return Stats{}, err
	}
	if err := b.db.QueryRow(ctx, `SELECT COUNT(*) FROM ignored_words`).Scan(&st.IgnoredWords); err != nil {
		return Stats{}, err
	}
	err := b.db.QueryRow(ctx,
		`SELECT corrections_made FROM statistics WHERE day = CURRENT_DATE`,
	).Scan(&st.CorrectionsToday)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Stats{}, err
	}
	return st, nil
}

// CleanupOldData deletes correction history older than the retention window.
func (b *PostgresBackend) CleanupOldData(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := b.db.Exec(ctx,
		`DELETE FROM corrections WHERE created_at < $1`,
		time.Now().Add(-olderThan),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Close closes the pool when this backend owns it.
func (b *PostgresBackend) Close() error {
	if b.close != nil {
		b.close()
	}
	return nil
}
