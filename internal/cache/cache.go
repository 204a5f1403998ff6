package cache

import "sync"

// StreakCache holds computed streak values keyed by username. Entries never
// expire by time; the only way a value leaves the cache is an explicit
// Invalidate when the user writes a new post.
//
// Implementations backed by an external store may fail; callers treat any
// error as a miss and recompute.
type StreakCache interface {
	Get(username string) (int, bool, error)
	Set(username string, streak int) error
	Invalidate(username string) error
}

// InMemory is the process-local StreakCache used in production. It is
// constructed in main and injected into the stats service.
type InMemory struct {
	mu      sync.RWMutex
	streaks map[string]int
}

func NewInMemory() *InMemory {
	return &InMemory{
		streaks: make(map[string]int),
	}
}

func (c *InMemory) Get(username string) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	streak, ok := c.streaks[username]
	return streak, ok, nil
}

func (c *InMemory) Set(username string, streak int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.streaks[username] = streak
	return nil
}

func (c *InMemory) Invalidate(username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.streaks, username)
	return nil
}
