package metrics

import (
	"sync"
	"time"

	"contrastguard/internal/model"
)

// Store keeps the latest observed value per metric name. When the number of
// tracked metrics exceeds the limit, the stalest entry is evicted.
type Store struct {
	mu        sync.RWMutex
	values    map[string]float64
	updatedAt map[string]time.Time
	limit     int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 5000
	}
	return &Store{
		values:    make(map[string]float64),
		updatedAt: make(map[string]time.Time),
		limit:     limit,
	}
}

func (s *Store) Observe(sample model.MetricSample) {
	if sample.Name == "" {
		return
	}
	ts := sample.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[sample.Name] = sample.Value
	s.updatedAt[sample.Name] = ts
	if len(s.values) > s.limit {
		s.evictStalest()
	}
}

func (s *Store) Get(name string) (float64, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok {
		return 0, time.Time{}, false
	}
	return v, s.updatedAt[name], true
}

// Snapshot returns a copy of the current name→value mapping, suitable for a
// batch EvaluateMetrics call.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.values))
	for name, v := range s.values {
		out[name] = v
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *Store) evictStalest() {
	var stalest string
	var oldest time.Time
	for name, ts := range s.updatedAt {
		if stalest == "" || ts.Before(oldest) {
			stalest = name
			oldest = ts
		}
	}
	if stalest != "" {
		delete(s.values, stalest)
		delete(s.updatedAt, stalest)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]float64)
	s.updatedAt = make(map[string]time.Time)
}
