// Package dedup persists canonical URL records so that previously archived
// content can be recognized when it is submitted again under a different URL.
// By using an interface, we decouple the service from a specific backend,
// allowing a real Postgres store in production and an in-memory one in tests.
package dedup

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/archivemark/urlcanon/pkg/urlcanon"
)

// ErrNotFound is returned by Lookup when no record exists for a URL's
// canonical form.
var ErrNotFound = errors.New("record not found")

// Record is one deduplicated piece of content, keyed by its canonical URL.
// FirstURL preserves the raw URL under which the content was first seen.
type Record struct {
	ID        string    `db:"id"`
	Canonical string    `db:"canonical"`
	FirstURL  string    `db:"first_url"`
	Platform  string    `db:"platform"`
	CreatedAt time.Time `db:"created_at"`
}

// Store defines the common interface for the dedup record layer.
type Store interface {
	// Register canonicalizes rawURL and stores a record for it. If a record
	// with the same canonical form already exists, the existing record is
	// returned with duplicate=true and nothing is written.
	Register(ctx context.Context, rawURL string) (rec Record, duplicate bool, err error)

	// Lookup returns the record matching rawURL's canonical form, or
	// ErrNotFound.
	Lookup(ctx context.Context, rawURL string) (Record, error)

	// Close releases any resources held by the store.
	Close()
}

// MemoryStore is a Store backed by a process-local map. Suitable for tests
// and single-instance local runs only.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Register implements Store.
func (s *MemoryStore) Register(_ context.Context, rawURL string) (Record, bool, error) {
	canonical := urlcanon.Normalize(rawURL)
	if canonical == "" {
		return Record{}, false, errors.New("url is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[canonical]; ok {
		return existing, true, nil
	}

	rec := Record{
		ID:        uuid.NewString(),
		Canonical: canonical,
		FirstURL:  rawURL,
		Platform:  urlcanon.PlatformOf(rawURL).String(),
		CreatedAt: time.Now().UTC(),
	}
	s.records[canonical] = rec
	return rec, false, nil
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(_ context.Context, rawURL string) (Record, error) {
	canonical := urlcanon.Normalize(rawURL)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[canonical]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Close implements Store. The memory store holds no external resources.
func (s *MemoryStore) Close() {}
