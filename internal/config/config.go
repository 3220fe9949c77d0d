package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"contrastguard/internal/model"
)

type Config struct {
	LogLevel string         `json:"log_level" yaml:"log_level"`
	Suite    SuiteConfig    `json:"suite" yaml:"suite"`
	Alerting AlertingConfig `json:"alerting" yaml:"alerting"`
	Notify   NotifyConfig   `json:"notify" yaml:"notify"`
	Ingest   IngestConfig   `json:"ingest" yaml:"ingest"`
	API      APIConfig      `json:"api" yaml:"api"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

type SuiteConfig struct {
	Level model.WCAGLevel   `json:"level" yaml:"level"`
	Pairs []model.ColorPair `json:"pairs" yaml:"pairs"`
}

type AlertingConfig struct {
	Rules      []model.AlertRule     `json:"rules" yaml:"rules"`
	Retention  model.RetentionPolicy `json:"retention" yaml:"retention"`
	Cooldown   time.Duration         `json:"cooldown" yaml:"cooldown"`
	Regression RegressionConfig      `json:"regression" yaml:"regression"`
	Silences   SilenceConfig         `json:"silences" yaml:"silences"`
}

type RegressionConfig struct {
	Enabled   bool           `json:"enabled" yaml:"enabled"`
	Threshold float64        `json:"threshold" yaml:"threshold"`
	Severity  model.Severity `json:"severity" yaml:"severity"`
}

type SilenceConfig struct {
	Metrics     []string            `json:"metrics" yaml:"metrics"`
	RuleMetrics map[string][]string `json:"rule_metrics" yaml:"rule_metrics"`
}

type NotifyConfig struct {
	Console ConsoleNotifyConfig `json:"console" yaml:"console"`
	Webhook WebhookConfig       `json:"webhook" yaml:"webhook"`
	Kafka   KafkaNotifyConfig   `json:"kafka" yaml:"kafka"`
}

type ConsoleNotifyConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type WebhookConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

type KafkaNotifyConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

type IngestConfig struct {
	ChannelBuffer int             `json:"channel_buffer" yaml:"channel_buffer"`
	REST          RESTConfig      `json:"rest" yaml:"rest"`
	Kafka         KafkaConfig     `json:"kafka" yaml:"kafka"`
	FileTail      FileTailConfig  `json:"file_tail" yaml:"file_tail"`
	Sampler       SamplerConfig   `json:"sampler" yaml:"sampler"`
}

type RESTConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

type FileTailConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	StartAtEnd bool     `json:"start_at_end" yaml:"start_at_end"`
	Files      []string `json:"files" yaml:"files"`
}

type SamplerConfig struct {
	Timezone string `json:"timezone" yaml:"timezone"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type MetricsConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Suite: SuiteConfig{
			Level: model.LevelAA,
		},
		Alerting: AlertingConfig{
			Rules: []model.AlertRule{
				{ID: "lcp-high", MetricName: "largest_contentful_paint_ms", Threshold: 2500, Comparator: model.CompareGT, Severity: model.SeverityHigh, Enabled: true},
				{ID: "cls-high", MetricName: "cumulative_layout_shift", Threshold: 0.1, Comparator: model.CompareGT, Severity: model.SeverityMedium, Enabled: true},
				{ID: "style-recalc-slow", MetricName: "style_recalc_ms", Threshold: 50, Comparator: model.CompareGE, Severity: model.SeverityMedium, Enabled: true},
				{ID: "css-payload-large", MetricName: "css_bytes", Threshold: 150000, Comparator: model.CompareGT, Severity: model.SeverityLow, Enabled: true},
			},
			Retention: model.RetentionPolicy{
				MaxAlerts: 1000,
				MaxAge:    24 * time.Hour,
			},
			Cooldown: 0,
			Regression: RegressionConfig{
				Enabled:   true,
				Threshold: 0.2,
				Severity:  model.SeverityHigh,
			},
		},
		Notify: NotifyConfig{
			Console: ConsoleNotifyConfig{Enabled: true},
			Webhook: WebhookConfig{Enabled: false, Timeout: 5 * time.Second},
			Kafka:   KafkaNotifyConfig{Enabled: false},
		},
		Ingest: IngestConfig{
			ChannelBuffer: 10000,
			REST:          RESTConfig{Enabled: true, Addr: ":8080"},
			Kafka:         KafkaConfig{Enabled: false},
			FileTail:      FileTailConfig{Enabled: false, StartAtEnd: true},
			Sampler:       SamplerConfig{Timezone: "UTC"},
		},
		API:     APIConfig{Enabled: true, Addr: ":8081"},
		Storage: StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:contrastguard.db?_pragma=busy_timeout(5000)"},
		Metrics: MetricsConfig{StoreLimit: 5000},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.Suite.Level == "" {
		cfg.Suite.Level = model.LevelAA
	}
	if cfg.Alerting.Retention.MaxAlerts <= 0 {
		cfg.Alerting.Retention.MaxAlerts = 1000
	}
	if cfg.Alerting.Regression.Threshold <= 0 {
		cfg.Alerting.Regression.Threshold = 0.2
	}
	if cfg.Alerting.Regression.Severity == "" {
		cfg.Alerting.Regression.Severity = model.SeverityHigh
	}
	if cfg.Ingest.ChannelBuffer <= 0 {
		cfg.Ingest.ChannelBuffer = 10000
	}
	if cfg.Ingest.Sampler.Timezone == "" {
		cfg.Ingest.Sampler.Timezone = "UTC"
	}
	if cfg.Notify.Webhook.Timeout <= 0 {
		cfg.Notify.Webhook.Timeout = 5 * time.Second
	}
	if cfg.Metrics.StoreLimit <= 0 {
		cfg.Metrics.StoreLimit = 5000
	}
}

// Validate collects every configuration problem instead of stopping at the
// first; callers must refuse to run on a non-empty result rather than fall
// back to defaults.
func Validate(cfg *Config) []string {
	var errs []string
	if !cfg.Suite.Level.Valid() {
		errs = append(errs, fmt.Sprintf("suite.level must be AA or AAA, got %q", cfg.Suite.Level))
	}
	for i, pair := range cfg.Suite.Pairs {
		if pair.Name == "" {
			errs = append(errs, fmt.Sprintf("suite.pairs[%d] missing name", i))
		}
		if pair.Foreground == "" || pair.Background == "" {
			errs = append(errs, fmt.Sprintf("suite.pairs[%d] (%s) requires foreground and background", i, pair.Name))
		}
		switch pair.Context {
		case "", model.ContextNormal, model.ContextLarge, model.ContextUI:
		default:
			errs = append(errs, fmt.Sprintf("suite.pairs[%d] (%s) has unknown context %q", i, pair.Name, pair.Context))
		}
	}
	seen := make(map[string]struct{}, len(cfg.Alerting.Rules))
	for i, rule := range cfg.Alerting.Rules {
		if rule.ID == "" {
			errs = append(errs, fmt.Sprintf("alerting.rules[%d] missing id", i))
		} else if _, dup := seen[rule.ID]; dup {
			errs = append(errs, fmt.Sprintf("alerting.rules[%d] duplicate id %q", i, rule.ID))
		} else {
			seen[rule.ID] = struct{}{}
		}
		if rule.MetricName == "" {
			errs = append(errs, fmt.Sprintf("alerting.rules[%d] (%s) missing metric_name", i, rule.ID))
		}
		if !rule.Comparator.Valid() {
			errs = append(errs, fmt.Sprintf("alerting.rules[%d] (%s) has unknown comparator %q", i, rule.ID, rule.Comparator))
		}
		if !rule.Severity.Valid() {
			errs = append(errs, fmt.Sprintf("alerting.rules[%d] (%s) has unknown severity %q", i, rule.ID, rule.Severity))
		}
	}
	if cfg.Alerting.Retention.MaxAlerts <= 0 {
		errs = append(errs, "alerting.retention.max_alerts must be > 0")
	}
	if cfg.Alerting.Retention.MaxAge < 0 {
		errs = append(errs, "alerting.retention.max_age must be >= 0")
	}
	if cfg.Alerting.Regression.Enabled {
		if cfg.Alerting.Regression.Threshold <= 0 {
			errs = append(errs, "alerting.regression.threshold must be > 0")
		}
		if !cfg.Alerting.Regression.Severity.Valid() {
			errs = append(errs, fmt.Sprintf("alerting.regression.severity unknown: %q", cfg.Alerting.Regression.Severity))
		}
	}
	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL == "" {
		errs = append(errs, "notify.webhook.url required when notify.webhook.enabled is true")
	}
	if cfg.Notify.Kafka.Enabled && (len(cfg.Notify.Kafka.Brokers) == 0 || cfg.Notify.Kafka.Topic == "") {
		errs = append(errs, "notify.kafka requires brokers and topic")
	}
	if cfg.Ingest.REST.Enabled && cfg.Ingest.REST.Addr == "" {
		errs = append(errs, "ingest.rest.addr required when ingest.rest.enabled is true")
	}
	if cfg.Ingest.Kafka.Enabled {
		if len(cfg.Ingest.Kafka.Brokers) == 0 || cfg.Ingest.Kafka.Topic == "" || cfg.Ingest.Kafka.GroupID == "" {
			errs = append(errs, "ingest.kafka requires brokers, topic, group_id")
		}
	}
	if cfg.Ingest.FileTail.Enabled && len(cfg.Ingest.FileTail.Files) == 0 {
		errs = append(errs, "ingest.file_tail.files required when ingest.file_tail.enabled is true")
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		errs = append(errs, "api.addr required when api.enabled is true")
	}
	if cfg.Storage.Enabled {
		switch strings.ToLower(cfg.Storage.Driver) {
		case "sqlite", "postgres", "postgresql":
		default:
			errs = append(errs, fmt.Sprintf("storage.driver unsupported: %q", cfg.Storage.Driver))
		}
	}
	return errs
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	info, err := os.Stat(path)
	if err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

// NewStaticManager wraps an in-memory config with no backing file; Reload
// and Watch are no-ops for it.
func NewStaticManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &Manager{}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	if m.path == "" {
		return m.Get(), nil
	}
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) Update(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	if m.path != "" {
		if err := Save(m.path, cfg); err != nil {
			return err
		}
		if info, err := os.Stat(m.path); err == nil {
			m.modTime = info.ModTime()
		}
	}
	m.cfg.Store(cfg)
	return nil
}

func (m *Manager) NeedsReload() (bool, error) {
	if m.path == "" {
		return false, nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func (m *Manager) Watch(interval time.Duration, onReload func(*Config), onError func(error), stop <-chan struct{}) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			needs, err := m.NeedsReload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if !needs {
				continue
			}
			cfg, err := m.Reload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onReload != nil {
				onReload(cfg)
			}
		case <-stop:
			return
		}
	}
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
