package alerts

import (
	"sync"
	"time"

	"contrastguard/internal/model"
)

// recentWindow bounds the "recent" bucket in statistics.
const recentWindow = 24 * time.Hour

// Store holds fired alerts in insertion order and applies the retention
// policy after every insertion. Single writer; readers get copies.
type Store struct {
	mu        sync.RWMutex
	buf       []model.Alert
	retention model.RetentionPolicy
}

func NewStore(retention model.RetentionPolicy) *Store {
	if retention.MaxAlerts <= 0 {
		retention.MaxAlerts = 1000
	}
	return &Store{retention: retention}
}

func (s *Store) Add(alert model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, alert)
	s.applyRetention(time.Now().UTC())
}

// applyRetention drops age-expired alerts first, then truncates to the
// newest MaxAlerts. Caller holds the lock.
func (s *Store) applyRetention(now time.Time) {
	if s.retention.MaxAge > 0 {
		cutoff := now.Add(-s.retention.MaxAge)
		kept := s.buf[:0]
		for _, a := range s.buf {
			if !a.CreatedAt.Before(cutoff) {
				kept = append(kept, a)
			}
		}
		s.buf = kept
	}
	if excess := len(s.buf) - s.retention.MaxAlerts; excess > 0 {
		s.buf = append([]model.Alert{}, s.buf[excess:]...)
	}
}

// List returns up to limit alerts, newest first; limit <= 0 means all.
func (s *Store) List(limit int) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.buf) {
		limit = len(s.buf)
	}
	out := make([]model.Alert, 0, limit)
	for i := len(s.buf) - 1; i >= len(s.buf)-limit; i-- {
		out = append(out, s.buf[i])
	}
	return out
}

func (s *Store) Since(ts time.Time) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, 0)
	for i := len(s.buf) - 1; i >= 0; i-- {
		if !s.buf[i].CreatedAt.Before(ts) {
			out = append(out, s.buf[i])
		}
	}
	return out
}

func (s *Store) Get(id string) (model.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.buf {
		if a.ID == id {
			return a, true
		}
	}
	return model.Alert{}, false
}

// Acknowledge marks the alert acknowledged. Returns false when the id is
// unknown or the alert was already acknowledged; no mutation in either case.
func (s *Store) Acknowledge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buf {
		if s.buf[i].ID != id {
			continue
		}
		if s.buf[i].Acknowledged {
			return false
		}
		s.buf[i].Acknowledged = true
		return true
	}
	return false
}

// Resolve sets the resolution timestamp and acknowledges atomically, so a
// resolved alert is always acknowledged. Returns false when the id is
// unknown or already resolved.
func (s *Store) Resolve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buf {
		if s.buf[i].ID != id {
			continue
		}
		if s.buf[i].ResolvedAt != nil {
			return false
		}
		now := time.Now().UTC()
		s.buf[i].ResolvedAt = &now
		s.buf[i].Acknowledged = true
		return true
	}
	return false
}

// Stats is a read-only projection over the current store contents.
func (s *Store) Stats() model.AlertStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := model.AlertStats{
		Total:      len(s.buf),
		BySeverity: make(map[model.Severity]int),
	}
	recentCutoff := time.Now().UTC().Add(-recentWindow)
	for _, a := range s.buf {
		stats.BySeverity[a.Severity]++
		if a.Acknowledged {
			stats.Acknowledged++
		}
		if a.ResolvedAt != nil {
			stats.Resolved++
		}
		if !a.CreatedAt.Before(recentCutoff) {
			stats.Recent++
		}
	}
	return stats
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buf)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
}
