package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"contrastguard/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/contrastguard?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			rule_id TEXT NOT NULL,
			metric TEXT NOT NULL,
			observed DOUBLE PRECISION NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at)`,
		`CREATE TABLE IF NOT EXISTS samples (
			id BIGSERIAL PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			name TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_name ON samples(name)`,
		`CREATE TABLE IF NOT EXISTS baseline (
			metric TEXT PRIMARY KEY,
			value DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	if s.db == nil {
		return nil
	}
	var resolved *time.Time
	if alert.ResolvedAt != nil {
		t := alert.ResolvedAt.UTC()
		resolved = &t
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, rule_id, metric, observed, threshold, severity, message, created_at, acknowledged, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		alert.ID,
		alert.RuleID,
		alert.MetricName,
		alert.ObservedValue,
		alert.Threshold,
		string(alert.Severity),
		alert.Message,
		alert.CreatedAt.UTC(),
		alert.Acknowledged,
		resolved,
	)
	return err
}

func (s *postgresStore) MarkAlert(ctx context.Context, id string, acknowledged bool, resolvedAt *time.Time) error {
	if s.db == nil {
		return nil
	}
	var resolved *time.Time
	if resolvedAt != nil {
		t := resolvedAt.UTC()
		resolved = &t
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET acknowledged = $1, resolved_at = $2 WHERE id = $3`,
		acknowledged, resolved, id)
	return err
}

func (s *postgresStore) SaveSamples(ctx context.Context, samples []model.MetricSample) error {
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
		`INSERT INTO samples (ts, name, value, source) VALUES ($1, $2, $3, $4)`)
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
			ts.UTC(),
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

func (s *postgresStore) SaveBaseline(ctx context.Context, metric string, value float64) error {
	if s.db == nil || metric == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO baseline (metric, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (metric) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		metric, value, nowUTC())
	return err
}

func (s *postgresStore) LoadBaseline(ctx context.Context) (map[string]float64, error) {
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
