package engine

import "sync"

// Baseline tracks the last-known value per metric for regression checks.
type Baseline struct {
	mu     sync.RWMutex
	values map[string]float64
}

func NewBaseline() *Baseline {
	return &Baseline{values: make(map[string]float64)}
}

func (b *Baseline) Get(name string) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[name]
	return v, ok
}

func (b *Baseline) Set(name string, value float64) {
	if name == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[name] = value
}

// Replace swaps the whole mapping; there is no partial merge.
func (b *Baseline) Replace(values map[string]float64) {
	next := make(map[string]float64, len(values))
	for name, v := range values {
		next[name] = v
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = next
}

func (b *Baseline) Snapshot() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]float64, len(b.values))
	for name, v := range b.values {
		out[name] = v
	}
	return out
}
