package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contrastguard/internal/model"
)

func TestDefaultConfigValid(t *testing.T) {
	if errs := Validate(DefaultConfig()); len(errs) != 0 {
		t.Fatalf("default config invalid: %v", errs)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suite.Level = "AAAA"
	cfg.Alerting.Rules = []model.AlertRule{
		{ID: "", MetricName: "", Comparator: "~", Severity: "urgent"},
		{ID: "dup", MetricName: "m", Comparator: model.CompareGT, Severity: model.SeverityLow},
		{ID: "dup", MetricName: "m", Comparator: model.CompareGT, Severity: model.SeverityLow},
	}
	cfg.Notify.Webhook.Enabled = true
	cfg.Notify.Webhook.URL = ""
	errs := Validate(cfg)
	if len(errs) < 5 {
		t.Fatalf("expected every problem reported, got %d: %v", len(errs), errs)
	}
	joined := strings.Join(errs, "\n")
	for _, want := range []string{"suite.level", "comparator", "severity", "duplicate id", "webhook.url"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in validation errors:\n%s", want, joined)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
log_level: debug
suite:
  level: AAA
alerting:
  rules:
    - id: fps-low
      metric_name: frames_per_second
      threshold: 30
      comparator: "<"
      severity: critical
      enabled: true
  retention:
    max_alerts: 50
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %s", cfg.LogLevel)
	}
	if cfg.Suite.Level != model.LevelAAA {
		t.Fatalf("suite.level = %s", cfg.Suite.Level)
	}
	if len(cfg.Alerting.Rules) != 1 || cfg.Alerting.Rules[0].ID != "fps-low" {
		t.Fatalf("rules = %+v", cfg.Alerting.Rules)
	}
	if cfg.Alerting.Rules[0].Comparator != model.CompareLT {
		t.Fatalf("comparator = %q", cfg.Alerting.Rules[0].Comparator)
	}
	if cfg.Alerting.Retention.MaxAlerts != 50 {
		t.Fatalf("retention = %+v", cfg.Alerting.Retention)
	}
	// Untouched sections keep their defaults.
	if cfg.Ingest.ChannelBuffer != 10000 {
		t.Fatalf("channel buffer default lost: %d", cfg.Ingest.ChannelBuffer)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"log_level":"warn","suite":{"level":"AA"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("log_level = %s", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
suite:
  level: AB
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestStaticManagerUpdate(t *testing.T) {
	m := NewStaticManager(DefaultConfig())
	next := DefaultConfig()
	next.LogLevel = "debug"
	if err := m.Update(next); err != nil {
		t.Fatalf("update: %v", err)
	}
	if m.Get().LogLevel != "debug" {
		t.Fatalf("update not visible")
	}
	bad := DefaultConfig()
	bad.Suite.Level = "nope"
	if err := m.Update(bad); err == nil {
		t.Fatalf("expected invalid config rejected")
	}
}
