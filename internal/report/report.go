package report

import (
	"fmt"

	"contrastguard/internal/model"
	"contrastguard/internal/suite"
)

// Exit codes for automated pipelines. ExitConfigError is produced by the
// caller when configuration fails before the core runs.
const (
	ExitOK          = 0
	ExitFailed      = 1
	ExitConfigError = 2
)

// Report is the merged verdict over the accessibility suite and the alert
// engine. Summary, results and recommendations keep their field names;
// downstream report generators parse them.
type Report struct {
	Summary         model.Summary      `json:"summary"`
	Results         []model.TestResult `json:"results"`
	Recommendations []string           `json:"recommendations"`
	Alerts          model.AlertStats   `json:"alerts"`
	Passed          bool               `json:"passed"`
}

// Build merges suite results with alert statistics. The pass verdict is the
// suite's own rule (zero critical, pass rate at threshold); alert activity
// adds recommendations but never flips the verdict.
func Build(results []model.TestResult, stats model.AlertStats) Report {
	sum := suite.Summarize(results)
	rep := Report{
		Summary: sum,
		Results: results,
		Alerts:  stats,
		Passed:  suite.Passed(sum),
	}
	rep.Recommendations = collectRecommendations(results, sum, stats)
	return rep
}

func (r Report) ExitCode() int {
	if r.Passed {
		return ExitOK
	}
	return ExitFailed
}

// collectRecommendations gathers per-test advice in result order, then
// alert-derived warnings, deduplicated keeping first occurrence.
func collectRecommendations(results []model.TestResult, sum model.Summary, stats model.AlertStats) []string {
	var recs []string
	for _, r := range results {
		recs = append(recs, r.Recommendations...)
	}
	if sum.Critical > 0 {
		recs = append(recs, fmt.Sprintf("%d critical contrast failure(s) must be fixed before release", sum.Critical))
	}
	if sum.PassRate < suite.PassRateThreshold {
		recs = append(recs, fmt.Sprintf("pass rate %.1f%% is below the %.0f%% threshold", sum.PassRate, suite.PassRateThreshold))
	}
	if n := stats.BySeverity[model.SeverityCritical]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d critical performance alert(s) need attention", n))
	}
	if open := stats.Total - stats.Resolved; open > 0 {
		recs = append(recs, fmt.Sprintf("%d performance alert(s) are unresolved", open))
	}
	return dedupe(recs)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
