package report

import (
	"strings"
	"testing"

	"contrastguard/internal/model"
	"contrastguard/internal/suite"
)

func passing(name string) model.TestResult {
	return model.TestResult{Name: name, Passed: true, Severity: model.SeverityLow}
}

func failing(name string, sev model.Severity, recs ...string) model.TestResult {
	return model.TestResult{Name: name, Passed: false, Severity: sev, Recommendations: recs}
}

func TestBuildPassingReport(t *testing.T) {
	results := suite.New(nil).Run(model.LevelAA)
	rep := Build(results, model.AlertStats{})
	if !rep.Passed {
		t.Fatalf("default catalog report must pass: %+v", rep.Summary)
	}
	if rep.ExitCode() != ExitOK {
		t.Fatalf("exit code = %d", rep.ExitCode())
	}
	if rep.Summary.TotalTests != len(results) {
		t.Fatalf("summary totals wrong: %+v", rep.Summary)
	}
}

func TestBuildFailsOnCritical(t *testing.T) {
	results := []model.TestResult{
		passing("a"), passing("b"), passing("c"),
		failing("d", model.SeverityCritical, "fix d"),
	}
	rep := Build(results, model.AlertStats{})
	if rep.Passed {
		t.Fatalf("critical failure must fail the report")
	}
	if rep.ExitCode() != ExitFailed {
		t.Fatalf("exit code = %d", rep.ExitCode())
	}
	found := false
	for _, r := range rep.Recommendations {
		if strings.Contains(r, "critical contrast failure") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing critical recommendation: %v", rep.Recommendations)
	}
}

func TestBuildFailsBelowPassRate(t *testing.T) {
	results := []model.TestResult{
		passing("a"),
		failing("b", model.SeverityHigh),
		failing("c", model.SeverityHigh),
	}
	rep := Build(results, model.AlertStats{})
	if rep.Passed {
		t.Fatalf("33%% pass rate must fail")
	}
	found := false
	for _, r := range rep.Recommendations {
		if strings.Contains(r, "below the 85% threshold") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing pass-rate recommendation: %v", rep.Recommendations)
	}
}

func TestRecommendationsOrderedAndDeduped(t *testing.T) {
	results := []model.TestResult{
		failing("a", model.SeverityHigh, "shared advice", "a advice"),
		failing("b", model.SeverityHigh, "shared advice", "b advice"),
	}
	rep := Build(results, model.AlertStats{})
	want := []string{"shared advice", "a advice", "b advice"}
	if len(rep.Recommendations) < 3 {
		t.Fatalf("recommendations: %v", rep.Recommendations)
	}
	for i, w := range want {
		if rep.Recommendations[i] != w {
			t.Fatalf("order/dedupe wrong at %d: %v", i, rep.Recommendations)
		}
	}
}

func TestAlertStatsAddRecommendationsNotVerdict(t *testing.T) {
	results := suite.New(nil).Run(model.LevelAA)
	stats := model.AlertStats{
		Total:      3,
		Resolved:   1,
		BySeverity: map[model.Severity]int{model.SeverityCritical: 2},
	}
	rep := Build(results, stats)
	if !rep.Passed {
		t.Fatalf("alert activity must not flip the suite verdict")
	}
	joined := strings.Join(rep.Recommendations, "\n")
	if !strings.Contains(joined, "2 critical performance alert(s)") {
		t.Fatalf("missing critical alert recommendation: %v", rep.Recommendations)
	}
	if !strings.Contains(joined, "2 performance alert(s) are unresolved") {
		t.Fatalf("missing unresolved alert recommendation: %v", rep.Recommendations)
	}
}
