// Package session keeps one in-memory conversation state per user,
// guarded by a per-user lock. Two users never contend on the same lock;
// all reads and writes of a session go through WithLock.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
	"github.com/kopaska88/pengaduan-jokerbola/internal/observability"
)

type entry struct {
	mu      sync.Mutex
	session domain.Session
}

// Store is the keyed session arena.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	clock   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[int64]*entry),
		clock:   time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

func (s *Store) getOrCreateEntry(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{session: domain.Session{
			UserID:         userID,
			LastActivityAt: s.clock(),
		}}
		s.entries[userID] = e
	}
	return e
}

// GetOrCreate returns a snapshot of the user's session, creating a
// default one if absent. Mutation must go through WithLock.
func (s *Store) GetOrCreate(userID int64) domain.Session {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// WithLock runs fn against the user's session under that user's
// exclusive lock, creating the session if absent. The lock is released
// on every exit path. Touches LastActivityAt after fn succeeds.
func (s *Store) WithLock(userID int64, fn func(*domain.Session) error) error {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(&e.session); err != nil {
		return err
	}
	e.session.LastActivityAt = s.clock()
	return nil
}

// Clear removes the session and its lock entry. A goroutine currently
// holding the old entry's lock keeps operating on its own copy; the
// next WithLock for the user starts from a fresh default session.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartSweeper reclaims sessions idle past ttl, off the critical path.
// A zero ttl disables the sweep. Entries whose lock is currently held
// are skipped and revisited next cycle.
func (s *Store) StartSweeper(ctx context.Context, interval, ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				swept := s.sweep(ttl)
				if swept > 0 {
					metrics.Add(observability.MetricSessionsSwept, int64(swept))
					logger.Info("swept idle sessions", zap.Int("count", swept))
				}
			}
		}
	}()
}

func (s *Store) sweep(ttl time.Duration) int {
	cutoff := s.clock().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	swept := 0
	for userID, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.session.LastActivityAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.entries, userID)
			swept++
		}
	}
	return swept
}
