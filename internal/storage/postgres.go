// Stores the record document and coaching table as jsonb rows in Postgres.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarkari/portal/internal/record"
)

const (
	pgDocumentRow = "data"
	pgCoachingRow = "coaching"

	pgSchema = `CREATE TABLE IF NOT EXISTS portal_documents (
	name TEXT PRIMARY KEY,
	body JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
)

// PostgresBackend implements Backend with one row per stored document.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to databaseURL and creates the table if needed.
func NewPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create portal_documents: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

// LoadDocument implements Backend.
func (b *PostgresBackend) LoadDocument(ctx context.Context) (*record.Document, error) {
	doc := record.NewDocument()
	found, err := b.load(ctx, pgDocumentRow, doc)
	if err != nil || !found {
		return record.NewDocument(), err
	}
	return doc, nil
}

// SaveDocument implements Backend.
func (b *PostgresBackend) SaveDocument(ctx context.Context, doc *record.Document) error {
	return b.save(ctx, pgDocumentRow, doc)
}

// LoadCoaching implements Backend.
func (b *PostgresBackend) LoadCoaching(ctx context.Context) (*record.CoachingTable, error) {
	t := record.NewCoachingTable()
	found, err := b.load(ctx, pgCoachingRow, t)
	if err != nil || !found {
		return record.NewCoachingTable(), err
	}
	return t, nil
}

// SaveCoaching implements Backend.
func (b *PostgresBackend) SaveCoaching(ctx context.Context, t *record.CoachingTable) error {
	return b.save(ctx, pgCoachingRow, t)
}

// Close implements Backend.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

func (b *PostgresBackend) load(ctx context.Context, name string, v any) (bool, error) {
	var body []byte
	err := b.pool.QueryRow(ctx, `SELECT body FROM portal_documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}

func (b *PostgresBackend) save(ctx context.Context, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	_, err = b.pool.Exec(ctx, `INSERT INTO portal_documents (name, body, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`, name, string(body))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
