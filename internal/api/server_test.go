package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contrastguard/internal/alerts"
	"contrastguard/internal/config"
	"contrastguard/internal/engine"
	"contrastguard/internal/metrics"
	"contrastguard/internal/model"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine, *alerts.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	manager := config.NewStaticManager(cfg)
	metricsStore := metrics.NewStore(100)
	alertsStore := alerts.NewStore(cfg.Alerting.Retention)
	eng := engine.NewEngine(cfg, nil, metricsStore, alertsStore, nil)
	s := &Server{
		cfg:     manager,
		metrics: metricsStore,
		alerts:  alertsStore,
		engine:  eng,
		version: "test",
	}
	return s, eng, alertsStore
}

func TestHandleValidate(t *testing.T) {
	s, _, _ := newTestServer(t)
	body := `{"foreground":"#111827","background":"#ffffff","level":"AA"}`
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleValidate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Contrast model.ContrastResult            `json:"contrast"`
		CVD      map[string]model.ContrastResult `json:"cvd"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Contrast.Passed {
		t.Fatalf("near-black on white must pass AA: %+v", resp.Contrast)
	}
	if len(resp.CVD) != 4 {
		t.Fatalf("expected 4 deficiency results, got %d", len(resp.CVD))
	}
}

func TestHandleValidateRejectsBadRequests(t *testing.T) {
	s, _, _ := newTestServer(t)
	cases := []string{
		`{"foreground":"","background":"#ffffff"}`,
		`{"foreground":"#111827","background":"#ffffff","level":"A"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		s.handleValidate(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
	}
}

func TestAlertLifecycleEndpoints(t *testing.T) {
	s, eng, _ := newTestServer(t)
	fired := eng.EvaluateMetrics(map[string]float64{"largest_contentful_paint_ms": 9000})
	if len(fired) != 1 {
		t.Fatalf("expected one alert, got %d", len(fired))
	}
	id := fired[0].ID

	rec := httptest.NewRecorder()
	s.handleAlertLifecycle(rec, httptest.NewRequest(http.MethodPost, "/alerts/"+id+"/acknowledge", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("acknowledge status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleAlertLifecycle(rec, httptest.NewRequest(http.MethodPost, "/alerts/"+id+"/acknowledge", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second acknowledge status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleAlertLifecycle(rec, httptest.NewRequest(http.MethodPost, "/alerts/"+id+"/resolve", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleAlertLifecycle(rec, httptest.NewRequest(http.MethodPost, "/alerts/unknown/resolve", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d", rec.Code)
	}
}

func TestHandleReport(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleReport(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rep struct {
		Passed  bool `json:"passed"`
		Summary struct {
			TotalTests int `json:"totalTests"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rep.Passed || rep.Summary.TotalTests == 0 {
		t.Fatalf("default catalog report: %+v", rep)
	}
}

func TestHandleRulesReplace(t *testing.T) {
	s, _, _ := newTestServer(t)
	body := `[{"id":"fps-low","metric_name":"fps","threshold":30,"comparator":"<","severity":"critical","enabled":true}]`
	rec := httptest.NewRecorder()
	s.handleRules(rec, httptest.NewRequest(http.MethodPost, "/config/rules", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("replace status = %d", rec.Code)
	}
	if rules := s.cfg.Get().Alerting.Rules; len(rules) != 1 || rules[0].ID != "fps-low" {
		t.Fatalf("rules not replaced: %+v", rules)
	}

	// Invalid comparator must be rejected by validation.
	bad := `[{"id":"x","metric_name":"fps","threshold":1,"comparator":"~","severity":"low","enabled":true}]`
	rec = httptest.NewRecorder()
	s.handleRules(rec, httptest.NewRequest(http.MethodPost, "/config/rules", strings.NewReader(bad)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid rules status = %d", rec.Code)
	}
}
