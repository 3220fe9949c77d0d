package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"contrastguard/internal/alerts"
	"contrastguard/internal/config"
	"contrastguard/internal/metrics"
	"contrastguard/internal/model"
	"contrastguard/internal/storage"
)

// DefaultRegressionThreshold is the fraction of baseline growth treated as
// a regression when the caller does not supply one.
const DefaultRegressionThreshold = 0.2

// Notifier receives every fired alert. Implementations live outside the
// engine; it only evaluates and classifies.
type Notifier interface {
	Notify(alert model.Alert)
}

// Engine evaluates metric values against configured threshold rules,
// owns the alert store and the regression baseline, and publishes fired
// alerts to its notifiers. Writes are expected from a single producer;
// reads may run concurrently.
type Engine struct {
	logger    *slog.Logger
	metrics   *metrics.Store
	alerts    *alerts.Store
	store     storage.Store
	notifiers []Notifier
	cfg       atomic.Value
	silence   atomic.Value
	baseline  *Baseline
	cooldown  *Cooldown
	started   time.Time
}

func NewEngine(cfg *config.Config, logger *slog.Logger, metricsStore *metrics.Store, alertsStore *alerts.Store, store storage.Store, notifiers ...Notifier) *Engine {
	e := &Engine{
		logger:    logger,
		metrics:   metricsStore,
		alerts:    alertsStore,
		store:     store,
		notifiers: notifiers,
		baseline:  NewBaseline(),
		cooldown:  NewCooldown(),
		started:   time.Now().UTC(),
	}
	e.cfg.Store(cfg)
	e.silence.Store(buildSilences(cfg))
	return e
}

func (e *Engine) UpdateConfig(cfg *config.Config) {
	e.cfg.Store(cfg)
	e.silence.Store(buildSilences(cfg))
}

func (e *Engine) config() *config.Config {
	if v := e.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

func (e *Engine) silences() *SilenceSet {
	if v := e.silence.Load(); v != nil {
		if s, ok := v.(*SilenceSet); ok {
			return s
		}
	}
	return nil
}

// WarmStart restores the regression baseline from persistent storage, so a
// restart does not re-seed every metric as a first observation.
func (e *Engine) WarmStart(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	values, err := e.store.LoadBaseline(ctx)
	if err != nil {
		return err
	}
	if len(values) > 0 {
		e.baseline.Replace(values)
	}
	return nil
}

// Start drains the sample channel until the context is cancelled.
func (e *Engine) Start(ctx context.Context, in <-chan model.MetricSample) {
	go func() {
		for {
			select {
			case sample := <-in:
				e.ProcessSample(sample)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ProcessSample records a sample and runs the streaming evaluation path:
// threshold rules for that metric, then the regression check when enabled.
func (e *Engine) ProcessSample(sample model.MetricSample) []model.Alert {
	if sample.Name == "" {
		return nil
	}
	cfg := e.config()
	if e.metrics != nil {
		e.metrics.Observe(sample)
	}
	if e.store != nil {
		_ = e.store.SaveSamples(context.Background(), []model.MetricSample{sample})
	}

	out := e.evaluateRules(cfg, map[string]float64{sample.Name: sample.Value}, cfg.Alerting.Cooldown)

	if cfg.Alerting.Regression.Enabled {
		if e.DetectRegression(sample.Name, sample.Value, cfg.Alerting.Regression.Threshold) {
			if alert, ok := e.fireRegression(cfg, sample.Name, sample.Value); ok {
				out = append(out, alert)
			}
		}
	}
	return out
}

// EvaluateMetrics applies every enabled rule to the given name→value map.
// Metrics absent from the map are skipped; no rule match means no alert.
// The one-shot path honors the configured cooldown like the streaming path
// (zero by default, so plain calls always fire).
func (e *Engine) EvaluateMetrics(values map[string]float64) []model.Alert {
	cfg := e.config()
	return e.evaluateRules(cfg, values, cfg.Alerting.Cooldown)
}

func (e *Engine) evaluateRules(cfg *config.Config, values map[string]float64, cooldown time.Duration) []model.Alert {
	silences := e.silences()
	out := make([]model.Alert, 0)
	for _, rule := range cfg.Alerting.Rules {
		if !rule.Enabled {
			continue
		}
		value, ok := values[rule.MetricName]
		if !ok {
			continue
		}
		if !compare(rule.Comparator, value, rule.Threshold) {
			continue
		}
		if silences.Muted(rule.ID, rule.MetricName) {
			continue
		}
		if !e.cooldown.Allow(rule.ID, cooldown) {
			continue
		}
		alert := e.fire(model.Alert{
			ID:            alertID(rule.ID),
			RuleID:        rule.ID,
			MetricName:    rule.MetricName,
			ObservedValue: value,
			Threshold:     rule.Threshold,
			Severity:      rule.Severity,
			Message:       fmt.Sprintf("%s: observed %.2f %s threshold %.2f", rule.MetricName, value, rule.Comparator, rule.Threshold),
			CreatedAt:     time.Now().UTC(),
		})
		out = append(out, alert)
	}
	return out
}

func (e *Engine) fireRegression(cfg *config.Config, metric string, value float64) (model.Alert, bool) {
	ruleID := "regression-" + metric
	if e.silences().Muted(ruleID, metric) {
		return model.Alert{}, false
	}
	if !e.cooldown.Allow(ruleID, cfg.Alerting.Cooldown) {
		return model.Alert{}, false
	}
	base, _ := e.baseline.Get(metric)
	alert := e.fire(model.Alert{
		ID:            alertID(ruleID),
		RuleID:        ruleID,
		MetricName:    metric,
		ObservedValue: value,
		Threshold:     base,
		Severity:      cfg.Alerting.Regression.Severity,
		Message:       fmt.Sprintf("%s: observed %.2f regressed more than %.0f%% over baseline %.2f", metric, value, cfg.Alerting.Regression.Threshold*100, base),
		CreatedAt:     time.Now().UTC(),
	})
	return alert, true
}

func (e *Engine) fire(alert model.Alert) model.Alert {
	e.alerts.Add(alert)
	if e.logger != nil {
		e.logger.Warn("alert fired",
			"id", alert.ID,
			"rule_id", alert.RuleID,
			"metric", alert.MetricName,
			"observed", alert.ObservedValue,
			"severity", alert.Severity,
		)
	}
	if e.store != nil {
		_ = e.store.SaveAlert(context.Background(), alert)
	}
	for _, n := range e.notifiers {
		n.Notify(alert)
	}
	return alert
}

// DetectRegression compares a current value against the recorded baseline.
// The first observation of a metric seeds the baseline and is never a
// regression. threshold <= 0 selects the default fraction.
func (e *Engine) DetectRegression(name string, current float64, threshold float64) bool {
	if name == "" {
		return false
	}
	if threshold <= 0 {
		threshold = DefaultRegressionThreshold
	}
	base, ok := e.baseline.Get(name)
	if !ok {
		e.baseline.Set(name, current)
		if e.store != nil {
			_ = e.store.SaveBaseline(context.Background(), name, current)
		}
		return false
	}
	return (current-base)/base > threshold
}

// UpdateBaseline replaces the baseline wholesale.
func (e *Engine) UpdateBaseline(values map[string]float64) {
	e.baseline.Replace(values)
	if e.store != nil {
		for name, v := range values {
			_ = e.store.SaveBaseline(context.Background(), name, v)
		}
	}
}

// SetBaseline upserts a single metric's baseline value.
func (e *Engine) SetBaseline(name string, value float64) {
	if name == "" {
		return
	}
	e.baseline.Set(name, value)
	if e.store != nil {
		_ = e.store.SaveBaseline(context.Background(), name, value)
	}
}

func (e *Engine) BaselineSnapshot() map[string]float64 {
	return e.baseline.Snapshot()
}

// AcknowledgeAlert marks an alert acknowledged. False means unknown id or
// already acknowledged; either way nothing changed.
func (e *Engine) AcknowledgeAlert(id string) bool {
	if !e.alerts.Acknowledge(id) {
		return false
	}
	if e.store != nil {
		if a, ok := e.alerts.Get(id); ok {
			_ = e.store.MarkAlert(context.Background(), id, true, a.ResolvedAt)
		}
	}
	return true
}

// ResolveAlert resolves an alert, acknowledging it in the same step.
func (e *Engine) ResolveAlert(id string) bool {
	if !e.alerts.Resolve(id) {
		return false
	}
	if e.store != nil {
		if a, ok := e.alerts.Get(id); ok {
			_ = e.store.MarkAlert(context.Background(), id, true, a.ResolvedAt)
		}
	}
	return true
}

func (e *Engine) GetAlerts(limit int) []model.Alert {
	return e.alerts.List(limit)
}

func (e *Engine) GetStatistics() model.AlertStats {
	return e.alerts.Stats()
}

func (e *Engine) Reset() {
	e.alerts.Clear()
	if e.metrics != nil {
		e.metrics.Clear()
	}
	e.baseline.Replace(nil)
	e.cooldown = NewCooldown()
}

func alertID(ruleID string) string {
	return fmt.Sprintf("%s-%d-%s", ruleID, time.Now().UTC().UnixMilli(), uuid.NewString()[:8])
}

// compare applies a rule comparator. An unknown comparator reaching this
// point is a programmer error: config validation rejects it up front.
func compare(c model.Comparator, value, threshold float64) bool {
	switch c {
	case model.CompareGT:
		return value > threshold
	case model.CompareGE:
		return value >= threshold
	case model.CompareLT:
		return value < threshold
	case model.CompareLE:
		return value <= threshold
	case model.CompareEQ:
		return value == threshold
	default:
		panic(fmt.Sprintf("unknown comparator %q", c))
	}
}
