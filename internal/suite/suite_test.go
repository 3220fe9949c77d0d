package suite

import (
	"fmt"
	"testing"

	"contrastguard/internal/model"
)

func TestDefaultCatalogPassesAA(t *testing.T) {
	s := New(nil)
	results := s.Run(model.LevelAA)
	if len(results) != len(DefaultCatalog()) {
		t.Fatalf("result count %d != catalog size %d", len(results), len(DefaultCatalog()))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("canonical pair %q fails AA: %+v", r.Name, r.Contrast)
		}
		if len(r.CVDResults) != 4 {
			t.Fatalf("pair %q missing CVD results", r.Name)
		}
	}
	sum := Summarize(results)
	if sum.Critical != 0 {
		t.Fatalf("default catalog has critical failures: %+v", sum)
	}
	if !Passed(sum) {
		t.Fatalf("default catalog should pass the suite: %+v", sum)
	}
}

func TestSeverityLadder(t *testing.T) {
	pairs := []model.ColorPair{
		{Name: "critical-fail", Foreground: "#777777", Background: "#888888", Context: model.ContextNormal, Critical: true},
		{Name: "plain-fail", Foreground: "#777777", Background: "#888888", Context: model.ContextNormal, Critical: false},
		{Name: "clean", Foreground: "#000000", Background: "#ffffff", Context: model.ContextNormal, Critical: true},
	}
	results := New(pairs).Run(model.LevelAA)
	bySeverity := map[string]model.Severity{}
	for _, r := range results {
		bySeverity[r.Name] = r.Severity
	}
	if bySeverity["critical-fail"] != model.SeverityCritical {
		t.Fatalf("critical pair failing base check must be critical, got %s", bySeverity["critical-fail"])
	}
	if bySeverity["plain-fail"] != model.SeverityHigh {
		t.Fatalf("non-critical pair failing base check must be high, got %s", bySeverity["plain-fail"])
	}
	if bySeverity["clean"] != model.SeverityLow {
		t.Fatalf("black on white must be low, got %s", bySeverity["clean"])
	}
}

func TestFailureRecommendationsOrdered(t *testing.T) {
	pairs := []model.ColorPair{
		{Name: "bad", Foreground: "#777777", Background: "#888888", Context: model.ContextNormal, Critical: false},
	}
	results := New(pairs).Run(model.LevelAA)
	recs := results[0].Recommendations
	if len(recs) < 3 {
		t.Fatalf("expected base recommendations, got %v", recs)
	}
	// Base WCAG recommendations come first, in their fixed order.
	if recs[0][:7] != "current" {
		t.Fatalf("first recommendation must state the observed ratio: %q", recs[0])
	}
}

func TestSummaryCounts(t *testing.T) {
	pairs := []model.ColorPair{
		{Name: "a", Foreground: "#000000", Background: "#ffffff", Context: model.ContextNormal, Critical: true},
		{Name: "b", Foreground: "#777777", Background: "#888888", Context: model.ContextNormal, Critical: true},
		{Name: "c", Foreground: "#777777", Background: "#888888", Context: model.ContextNormal, Critical: false},
		{Name: "d", Foreground: "#ffffff", Background: "#2563eb", Context: model.ContextNormal, Critical: false},
	}
	sum := Summarize(New(pairs).Run(model.LevelAA))
	if sum.TotalTests != 4 || sum.Passed != 2 || sum.Failed != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Critical != 1 {
		t.Fatalf("expected one critical, got %+v", sum)
	}
	if sum.PassRate != 50.0 {
		t.Fatalf("expected 50%% pass rate, got %v", sum.PassRate)
	}
	if Passed(sum) {
		t.Fatalf("suite with critical failure cannot pass")
	}
}

func TestTwelveCriticalPairsEndToEnd(t *testing.T) {
	// Twelve critical pairs, all comfortably above the AA thresholds.
	pairs := make([]model.ColorPair, 0, 12)
	fgs := []string{"#000000", "#111827", "#1d4ed8", "#b91c1c", "#065f46", "#92400e"}
	for i := 0; i < 12; i++ {
		pairs = append(pairs, model.ColorPair{
			Name:       fmt.Sprintf("critical-%02d", i),
			Foreground: fgs[i%len(fgs)],
			Background: "#ffffff",
			Context:    model.ContextNormal,
			Critical:   true,
		})
	}
	sum := Summarize(New(pairs).Run(model.LevelAA))
	if sum.Critical != 0 {
		t.Fatalf("expected zero critical, got %+v", sum)
	}
	if sum.PassRate < 90 {
		t.Fatalf("expected pass rate >= 90, got %v", sum.PassRate)
	}
}

func TestPassRateThresholdBoundary(t *testing.T) {
	sum := model.Summary{TotalTests: 20, Passed: 17, Failed: 3, PassRate: 85.0}
	if !Passed(sum) {
		t.Fatalf("85.0%% with zero critical must pass")
	}
	sum.PassRate = 84.9
	if Passed(sum) {
		t.Fatalf("below threshold must fail")
	}
}
