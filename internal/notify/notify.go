package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"

	"contrastguard/internal/config"
	"contrastguard/internal/model"
)

// Notifier receives every fired alert. The engine only evaluates and
// classifies; formatting and delivery live here.
type Notifier interface {
	Notify(alert model.Alert)
}

// FromConfig builds the notifier set the config enables.
func FromConfig(cfg config.NotifyConfig, logger *slog.Logger) []Notifier {
	var out []Notifier
	if cfg.Console.Enabled {
		out = append(out, NewConsole(logger))
	}
	if cfg.Webhook.Enabled {
		out = append(out, NewWebhook(cfg.Webhook, logger))
	}
	if cfg.Kafka.Enabled {
		out = append(out, NewKafka(cfg.Kafka, logger))
	}
	return out
}

type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) Notify(alert model.Alert) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("alert fired",
		"id", alert.ID,
		"rule_id", alert.RuleID,
		"metric", alert.MetricName,
		"observed", alert.ObservedValue,
		"threshold", alert.Threshold,
		"severity", alert.Severity,
	)
}

// Webhook POSTs the JSON-serialized alert to a single URL. Delivery
// failures are logged and dropped; alerting never blocks on a slow sink.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhook(cfg config.WebhookConfig, logger *slog.Logger) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *Webhook) Notify(alert model.Alert) {
	body, err := json.Marshal(alert)
	if err != nil {
		return
	}
	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("webhook notify failed", "url", w.url, "err", err)
		}
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 && w.logger != nil {
		w.logger.Warn("webhook notify rejected", "url", w.url, "status", resp.StatusCode)
	}
}

// Kafka publishes alerts to a topic, keyed by rule id so one rule's alerts
// land on one partition.
type Kafka struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafka(cfg config.KafkaNotifyConfig, logger *slog.Logger) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.Hash{},
		},
		logger: logger,
	}
}

func (k *Kafka) Notify(alert model.Alert) {
	body, err := json.Marshal(alert)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.RuleID),
		Value: body,
	})
	if err != nil && k.logger != nil {
		k.logger.Warn("kafka notify failed", "topic", k.writer.Topic, "err", err)
	}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
