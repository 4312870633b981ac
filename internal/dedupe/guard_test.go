package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalGuardFirstSeenOncePerUpdate(t *testing.T) {
	g := NewLocalGuard(time.Minute)
	ctx := context.Background()

	assert.True(t, g.FirstSeen(ctx, 100))
	assert.False(t, g.FirstSeen(ctx, 100))
	assert.True(t, g.FirstSeen(ctx, 101))
}

func TestLocalGuardConcurrentDeliveriesAdmitExactlyOne(t *testing.T) {
	g := NewLocalGuard(time.Minute)
	ctx := context.Background()

	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.FirstSeen(ctx, 42) {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted)
}

func TestLocalGuardExpiredEntriesAreSeenAgain(t *testing.T) {
	g := NewLocalGuard(10 * time.Millisecond)
	ctx := context.Background()

	assert.True(t, g.FirstSeen(ctx, 7))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, g.FirstSeen(ctx, 7))
}
