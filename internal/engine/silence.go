package engine

import (
	"strings"

	"contrastguard/internal/config"
)

// SilenceSet mutes alerting for named metrics, globally or per rule.
// Silenced matches evaluate normally but never produce an alert.
type SilenceSet struct {
	Global  map[string]struct{}
	PerRule map[string]map[string]struct{}
}

func buildSilences(cfg *config.Config) *SilenceSet {
	s := &SilenceSet{}
	s.Global = buildMetricSet(cfg.Alerting.Silences.Metrics)
	if len(cfg.Alerting.Silences.RuleMetrics) > 0 {
		s.PerRule = make(map[string]map[string]struct{}, len(cfg.Alerting.Silences.RuleMetrics))
		for ruleID, list := range cfg.Alerting.Silences.RuleMetrics {
			ruleID = strings.TrimSpace(ruleID)
			set := buildMetricSet(list)
			if ruleID == "" || len(set) == 0 {
				continue
			}
			s.PerRule[ruleID] = set
		}
		if len(s.PerRule) == 0 {
			s.PerRule = nil
		}
	}
	return s
}

func buildMetricSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		name := normalizeMetricName(v)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func (s *SilenceSet) Muted(ruleID, metric string) bool {
	if s == nil {
		return false
	}
	name := normalizeMetricName(metric)
	if name == "" {
		return false
	}
	if s.Global != nil {
		if _, ok := s.Global[name]; ok {
			return true
		}
	}
	if s.PerRule != nil {
		if set, ok := s.PerRule[ruleID]; ok {
			if _, ok := set[name]; ok {
				return true
			}
		}
	}
	return false
}

func normalizeMetricName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
