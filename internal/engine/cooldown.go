package engine

import (
	"sync"
	"time"
)

// Cooldown suppresses repeat firings of the same rule while the streaming
// path re-evaluates on every sample. A zero cooldown always allows.
type Cooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{last: make(map[string]time.Time)}
}

func (c *Cooldown) Allow(ruleID string, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return true
	}
	now := time.Now().UTC()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts, ok := c.last[ruleID]; ok {
		if now.Sub(ts) < cooldown {
			return false
		}
	}
	c.last[ruleID] = now
	return true
}
