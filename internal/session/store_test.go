package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
)

func TestGetOrCreateThenClearLeavesNoState(t *testing.T) {
	s := NewStore()

	snap := s.GetOrCreate(42)
	assert.Equal(t, int64(42), snap.UserID)
	assert.Equal(t, domain.ModeNone, snap.Mode)
	require.Equal(t, 1, s.Len())

	s.Clear(42)
	assert.Equal(t, 0, s.Len())

	// A fresh session comes back untouched by the previous one.
	err := s.WithLock(42, func(sess *domain.Session) error {
		sess.Mode = domain.ModeIntake
		sess.Fields.ReporterName = "Budi"
		return nil
	})
	require.NoError(t, err)
	s.Clear(42)

	snap = s.GetOrCreate(42)
	assert.Equal(t, domain.ModeNone, snap.Mode)
	assert.Empty(t, snap.Fields.ReporterName)
}

func TestWithLockSerializesPerUser(t *testing.T) {
	s := NewStore()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock(7, func(sess *domain.Session) error {
				sess.Fields.ComplaintText += "x"
				return nil
			})
		}()
	}
	wg.Wait()

	snap := s.GetOrCreate(7)
	assert.Len(t, snap.Fields.ComplaintText, workers)
}

func TestDifferentUsersDoNotContend(t *testing.T) {
	s := NewStore()

	blocked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.WithLock(1, func(*domain.Session) error {
			close(blocked)
			<-release
			return nil
		})
	}()
	<-blocked

	// User 2 proceeds while user 1's lock is held.
	done := make(chan struct{})
	go func() {
		_ = s.WithLock(2, func(*domain.Session) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("user 2 blocked on user 1's lock")
	}
	close(release)
}

func TestSweepReclaimsIdleSessions(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	s.GetOrCreate(1)
	s.GetOrCreate(2)

	// User 2 stays active.
	now = now.Add(30 * time.Minute)
	_ = s.WithLock(2, func(*domain.Session) error { return nil })

	now = now.Add(31 * time.Minute)
	swept := s.sweep(time.Hour)
	assert.Equal(t, 1, swept)
	assert.Equal(t, 1, s.Len())
}
