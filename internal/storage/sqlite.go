package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"contrastguard/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:contrastguard.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			rule_id TEXT NOT NULL,
			metric TEXT NOT NULL,
			observed REAL NOT NULL,
			threshold REAL NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL,
			acknowledged INTEGER NOT NULL DEFAULT 0,
			resolved_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at)`,
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_name ON samples(name)`,
		`CREATE TABLE IF NOT EXISTS baseline (
			metric TEXT PRIMARY KEY,
			value REAL NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	if s.db == nil {
		return nil
	}
	var resolved any
	if alert.ResolvedAt != nil {
		resolved = alert.ResolvedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, rule_id, metric, observed, threshold, severity, message, created_at, acknowledged, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID,
		alert.RuleID,
		alert.MetricName,
		alert.ObservedValue,
		alert.Threshold,
		string(alert.Severity),
		alert.Message,
		alert.CreatedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(alert.Acknowledged),
		resolved,
	)
	return err
}

func (s *sqliteStore) MarkAlert(ctx context.Context, id string, acknowledged bool, resolvedAt *time.Time) error {
	if s.db == nil {
		return nil
	}
	var resolved any
	if resolvedAt != nil {
		resolved = resolvedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET acknowledged = ?, resolved_at = ? WHERE id = ?`,
		boolToInt(acknowledged), resolved, id)
	return err
}

func (s *sqliteStore) SaveSamples(ctx context.Context, samples []model.MetricSample) error {
	if s.db == nil || len(samples) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (ts, name, value, source) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, sample := range samples {
		ts := sample.Timestamp
		if ts.IsZero() {
			ts = nowUTC()
		}
		if _, err := stmt.ExecContext(ctx,
			ts.UTC().Format(time.RFC3339Nano),
			sample.Name,
			sample.Value,
			sample.Source,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) SaveBaseline(ctx context.Context, metric string, value float64) error {
	if s.db == nil || metric == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO baseline (metric, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(metric) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		metric, value, nowUTC().Format(time.RFC3339Nano))
	return err
}

func (s *sqliteStore) LoadBaseline(ctx context.Context) (map[string]float64, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT metric, value FROM baseline`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]float64)
	for rows.Next() {
		var metric string
		var value float64
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, err
		}
		out[metric] = value
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
