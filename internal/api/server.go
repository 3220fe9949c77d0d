package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contrastguard/internal/alerts"
	"contrastguard/internal/config"
	"contrastguard/internal/metrics"
	"contrastguard/internal/model"
	"contrastguard/internal/report"
	"contrastguard/internal/suite"
	"contrastguard/internal/wcag"
)

// EngineControl is the slice of the alert engine the API needs; alert
// lifecycle goes through it so acknowledgements reach persistent storage.
type EngineControl interface {
	Reset()
	UpdateConfig(cfg *config.Config)
	AcknowledgeAlert(id string) bool
	ResolveAlert(id string) bool
}

type Server struct {
	cfg     *config.Manager
	metrics *metrics.Store
	alerts  *alerts.Store
	engine  EngineControl
	logger  *slog.Logger
	version string
}

type statusResponse struct {
	Status     string         `json:"status"`
	Time       string         `json:"time"`
	Version    string         `json:"version"`
	ConfigPath string         `json:"config_path"`
	Suite      suiteStatus    `json:"suite"`
	Ingest     ingestStatus   `json:"ingest"`
	API        apiStatus      `json:"api"`
	Alerting   alertingStatus `json:"alerting"`
}

type suiteStatus struct {
	Level model.WCAGLevel `json:"level"`
	Pairs int             `json:"pairs"`
}

type ingestStatus struct {
	REST     bool `json:"rest"`
	FileTail bool `json:"file_tail"`
	Kafka    bool `json:"kafka"`
}

type apiStatus struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

type alertingStatus struct {
	Rules      int  `json:"rules"`
	Regression bool `json:"regression"`
}

func Start(ctx context.Context, cfg *config.Manager, metricsStore *metrics.Store, alertsStore *alerts.Store, engine EngineControl, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:     cfg,
		metrics: metricsStore,
		alerts:  alertsStore,
		engine:  engine,
		logger:  logger,
		version: version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/metrics", server.handleMetrics)
	mux.HandleFunc("/metrics/", server.handleMetrics)
	mux.HandleFunc("/alerts", server.handleAlerts)
	mux.HandleFunc("/alerts/", server.handleAlertLifecycle)
	mux.HandleFunc("/alerts/stats", server.handleStats)
	mux.HandleFunc("/validate", server.handleValidate)
	mux.HandleFunc("/report", server.handleReport)
	mux.HandleFunc("/config/rules", server.handleRules)
	mux.HandleFunc("/admin/clear", server.handleClear)
	mux.HandleFunc("/admin/restart", server.handleRestart)

	httpServer := &http.Server{Addr: current.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	resp := statusResponse{
		Status:     "ok",
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		Version:    s.version,
		ConfigPath: s.cfg.Path(),
		Suite: suiteStatus{
			Level: cfg.Suite.Level,
			Pairs: len(suite.New(cfg.Suite.Pairs).Catalog()),
		},
		Ingest: ingestStatus{
			REST:     cfg.Ingest.REST.Enabled,
			FileTail: cfg.Ingest.FileTail.Enabled,
			Kafka:    cfg.Ingest.Kafka.Enabled,
		},
		API: apiStatus{Enabled: cfg.API.Enabled, Addr: cfg.API.Addr},
		Alerting: alertingStatus{
			Rules:      len(cfg.Alerting.Rules),
			Regression: cfg.Alerting.Regression.Enabled,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/metrics")
	path = strings.TrimPrefix(path, "/")
	if path != "" {
		value, updated, ok := s.metrics.Get(path)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"name":       path,
			"value":      value,
			"updated_at": updated.Format(time.RFC3339Nano),
		})
		return
	}
	all := s.metrics.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": all,
		"count":   len(all),
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	sinceStr := r.URL.Query().Get("since")
	var list []model.Alert
	if sinceStr != "" {
		if ts, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			list = s.alerts.Since(ts)
		} else {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	} else {
		list = s.alerts.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": list,
		"count":  len(list),
	})
}

// handleAlertLifecycle serves POST /alerts/{id}/acknowledge and
// /alerts/{id}/resolve. A second transition on the same alert is a conflict.
func (s *Server) handleAlertLifecycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/alerts/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id, action := parts[0], parts[1]
	if _, ok := s.alerts.Get(id); !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var done bool
	switch action {
	case "acknowledge":
		done = s.engine.AcknowledgeAlert(id)
	case "resolve":
		done = s.engine.ResolveAlert(id)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !done {
		w.WriteHeader(http.StatusConflict)
		return
	}
	alert, _ := s.alerts.Get(id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "alert": alert})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.alerts.Stats())
}

type validateRequest struct {
	Foreground string          `json:"foreground"`
	Background string          `json:"background"`
	Level      model.WCAGLevel `json:"level"`
	LargeText  bool            `json:"large_text"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var req validateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Foreground == "" || req.Background == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Level == "" {
		req.Level = s.cfg.Get().Suite.Level
	}
	if !req.Level.Valid() {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contrast": wcag.Validate(req.Foreground, req.Background, req.Level, req.LargeText),
		"cvd":      wcag.ValidateColorBlindFriendly(req.Foreground, req.Background),
	})
}

// handleReport runs the configured accessibility suite and merges the result
// with current alert statistics. The same structure the CLI prints.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	results := suite.New(cfg.Suite.Pairs).Run(cfg.Suite.Level)
	rep := report.Build(results, s.alerts.Stats())
	writeJSON(w, http.StatusOK, rep)
}

// handleRules reads or replaces the alert rule set at runtime. Replacement
// goes through full config validation and is pushed into the engine.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg := s.cfg.Get()
		writeJSON(w, http.StatusOK, map[string]any{
			"rules": cfg.Alerting.Rules,
		})
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var rules []model.AlertRule
		if err := json.Unmarshal(body, &rules); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		current := s.cfg.Get()
		next := *current
		next.Alerting.Rules = rules
		if err := s.cfg.Update(&next); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if s.engine != nil {
			s.engine.UpdateConfig(&next)
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	var req struct {
		Target string `json:"target"`
	}
	_ = json.Unmarshal(body, &req)
	target := strings.ToLower(strings.TrimSpace(req.Target))
	if target == "" {
		target = "all"
	}
	switch target {
	case "all":
		if s.metrics != nil {
			s.metrics.Clear()
		}
		if s.alerts != nil {
			s.alerts.Clear()
		}
	case "alerts":
		if s.alerts != nil {
			s.alerts.Clear()
		}
	case "metrics":
		if s.metrics != nil {
			s.metrics.Clear()
		}
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.engine != nil {
		s.engine.Reset()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
