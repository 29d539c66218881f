package dedup

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/archivemark/urlcanon/internal/config"
	"github.com/archivemark/urlcanon/pkg/urlcanon"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// pgxIface is the subset of pgxpool.Pool the store uses, extracted so tests
// can substitute a pgxmock pool.
type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store on top of a Postgres table. The expected
// schema is:
//
//	CREATE TABLE canonical_urls (
//	    id UUID PRIMARY KEY,
//	    canonical TEXT NOT NULL UNIQUE,
//	    first_url TEXT NOT NULL,
//	    platform TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool  pgxIface
	table string
}

// NewPostgresStore creates a Postgres-backed Store using the provided config.
func NewPostgresStore(ctx context.Context, cfg config.StoreConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "canonical_urls"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnLifetime() > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnLifetime()
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool pgxIface, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "canonical_urls"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Register implements Store. The insert relies on the UNIQUE constraint on
// canonical so concurrent registrations of the same content race safely: the
// loser reads back the winner's row.
func (s *PostgresStore) Register(ctx context.Context, rawURL string) (Record, bool, error) {
	canonical := urlcanon.Normalize(rawURL)
	if canonical == "" {
		return Record{}, false, errors.New("url is required")
	}

	rec := Record{
		ID:        uuid.NewString(),
		Canonical: canonical,
		FirstURL:  rawURL,
		Platform:  urlcanon.PlatformOf(rawURL).String(),
		CreatedAt: time.Now().UTC(),
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, canonical, first_url, platform, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (canonical) DO NOTHING`, s.table)

	tag, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Canonical, rec.FirstURL, rec.Platform, rec.CreatedAt)
	if err != nil {
		return Record{}, false, fmt.Errorf("insert record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return rec, false, nil
	}

	existing, err := s.lookupCanonical(ctx, canonical)
	if err != nil {
		return Record{}, false, fmt.Errorf("fetch existing record: %w", err)
	}
	return existing, true, nil
}

// Lookup implements Store.
func (s *PostgresStore) Lookup(ctx context.Context, rawURL string) (Record, error) {
	return s.lookupCanonical(ctx, urlcanon.Normalize(rawURL))
}

func (s *PostgresStore) lookupCanonical(ctx context.Context, canonical string) (Record, error) {
	query := fmt.Sprintf(`
SELECT id, canonical, first_url, platform, created_at
FROM %s
WHERE canonical = $1`, s.table)

	var rec Record
	err := s.pool.QueryRow(ctx, query, canonical).Scan(
		&rec.ID, &rec.Canonical, &rec.FirstURL, &rec.Platform, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("select record: %w", err)
	}
	return rec, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}
