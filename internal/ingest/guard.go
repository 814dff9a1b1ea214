package ingest

import "sync"

// Guard is the single-flight flag shared by the scheduled job and manual
// triggers: at most one ingestion pass runs at a time. There is no
// queueing; a caller that loses the race reports contention and returns.
type Guard struct {
	mu      sync.Mutex
	running bool
}

func NewGuard() *Guard {
	return &Guard{}
}

// IsRunning reports the current state without side effects.
func (g *Guard) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// SetRunning unconditionally overwrites the state. Release must happen on
// every exit path of a pass, or all future passes silently no-op until
// process restart.
func (g *Guard) SetRunning(running bool) {
	g.mu.Lock()
	g.running = running
	g.mu.Unlock()
}

// TryAcquire checks and sets the flag in one step so concurrent callers
// cannot both proceed. Returns false when a pass is already in flight.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return false
	}
	g.running = true
	return true
}
