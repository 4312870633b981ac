package store

import (
	"context"
	"sync"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
)

// MemoryStore is a process-local record store used by tests and the
// `memory` backend for running the bot without external storage.
type MemoryStore struct {
	mu   sync.Mutex
	rows [][]string
}

// NewMemoryStore starts with the canonical header row.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: [][]string{append([]string(nil), domain.HeaderRow...)}}
}

// NewMemoryStoreFrom seeds the store with the given rows verbatim.
func NewMemoryStoreFrom(rows [][]string) *MemoryStore {
	s := &MemoryStore{}
	for _, row := range rows {
		s.rows = append(s.rows, append([]string(nil), row...))
	}
	return s
}

// AppendRecord stores a copy of the row.
func (s *MemoryStore) AppendRecord(_ context.Context, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, append([]string(nil), row...))
	return nil
}

// ReadAllRecords returns a copy of every row.
func (s *MemoryStore) ReadAllRecords(_ context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, append([]string(nil), row...))
	}
	return out, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }
