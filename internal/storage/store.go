package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"contrastguard/internal/config"
	"contrastguard/internal/model"
)

// Store persists alert history, metric samples and the regression baseline.
// The caller owns the store and injects it; the core never opens one on its
// own and treats a nil Store as "persistence disabled".
type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveAlert(ctx context.Context, alert model.Alert) error
	MarkAlert(ctx context.Context, id string, acknowledged bool, resolvedAt *time.Time) error
	SaveSamples(ctx context.Context, samples []model.MetricSample) error
	SaveBaseline(ctx context.Context, metric string, value float64) error
	LoadBaseline(ctx context.Context) (map[string]float64, error)
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
