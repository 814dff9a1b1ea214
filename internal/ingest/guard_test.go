package ingest

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardTryAcquire(t *testing.T) {
	g := NewGuard()

	assert.False(t, g.IsRunning())
	assert.True(t, g.TryAcquire())
	assert.True(t, g.IsRunning())

	assert.False(t, g.TryAcquire())

	g.SetRunning(false)
	assert.False(t, g.IsRunning())
	assert.True(t, g.TryAcquire())
}

func TestGuardSingleWinnerUnderContention(t *testing.T) {
	g := NewGuard()

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.True(t, g.IsRunning())
}

func TestGuardReleaseAllowsNextRound(t *testing.T) {
	g := NewGuard()

	for i := 0; i < 10; i++ {
		assert.True(t, g.TryAcquire())
		g.SetRunning(false)
	}
	assert.False(t, g.IsRunning())
}
