package suite

import (
	"fmt"

	"contrastguard/internal/model"
	"contrastguard/internal/wcag"
)

// PassRateThreshold is the policy line for the whole suite: the catalog
// passes when no critical failures exist and at least this percentage of
// pairs pass. The report aggregator reuses the same constant.
const PassRateThreshold = 85.0

// cvdFailureTolerance: more than this many failing deficiency types on an
// otherwise-passing pair escalates severity.
const cvdFailureTolerance = 2

type Suite struct {
	catalog []model.ColorPair
}

// New builds a suite over the given catalog; an empty catalog falls back
// to the design system's canonical pairs.
func New(pairs []model.ColorPair) *Suite {
	if len(pairs) == 0 {
		pairs = DefaultCatalog()
	}
	catalog := make([]model.ColorPair, len(pairs))
	copy(catalog, pairs)
	return &Suite{catalog: catalog}
}

func (s *Suite) Catalog() []model.ColorPair {
	out := make([]model.ColorPair, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Run validates every catalog pair at the given level and attaches
// color-vision-deficiency results checked at AA over the simulated pair.
func (s *Suite) Run(level model.WCAGLevel) []model.TestResult {
	results := make([]model.TestResult, 0, len(s.catalog))
	for _, pair := range s.catalog {
		results = append(results, runPair(pair, level))
	}
	return results
}

func runPair(pair model.ColorPair, level model.WCAGLevel) model.TestResult {
	isLarge := pair.Context == model.ContextLarge
	base := wcag.Validate(pair.Foreground, pair.Background, level, isLarge)
	cvdResults := wcag.ValidateColorBlindFriendly(pair.Foreground, pair.Background)

	cvdFailures := 0
	for _, res := range cvdResults {
		if !res.Passed {
			cvdFailures++
		}
	}

	severity := model.SeverityLow
	switch {
	case !base.Passed && pair.Critical:
		severity = model.SeverityCritical
	case !base.Passed:
		severity = model.SeverityHigh
	case cvdFailures > cvdFailureTolerance && pair.Critical:
		severity = model.SeverityHigh
	case cvdFailures > cvdFailureTolerance:
		severity = model.SeverityMedium
	}

	recs := append([]string(nil), base.Recommendations...)
	for _, t := range model.CVDTypes() {
		if res := cvdResults[t]; !res.Passed {
			recs = append(recs, fmt.Sprintf("%s: contrast drops to %.2f:1 under %s simulation", pair.Name, res.Ratio, t))
		}
	}

	return model.TestResult{
		Name:            pair.Name,
		Passed:          base.Passed,
		Contrast:        base,
		CVDResults:      cvdResults,
		Severity:        severity,
		Recommendations: recs,
	}
}

// Summarize is a pure projection over a result list.
func Summarize(results []model.TestResult) model.Summary {
	sum := model.Summary{TotalTests: len(results)}
	for _, r := range results {
		if r.Passed {
			sum.Passed++
		} else {
			sum.Failed++
		}
		switch r.Severity {
		case model.SeverityMedium:
			sum.Warnings++
		case model.SeverityCritical:
			sum.Critical++
		}
	}
	if sum.TotalTests > 0 {
		sum.PassRate = float64(sum.Passed) / float64(sum.TotalTests) * 100.0
	}
	return sum
}

// Passed applies the suite pass criterion: zero critical failures and a
// pass rate at or above the threshold.
func Passed(sum model.Summary) bool {
	return sum.Critical == 0 && sum.PassRate >= PassRateThreshold
}

// DefaultCatalog lists the design system's canonical foreground/background
// pairs. Hex values mirror the published palette tokens.
func DefaultCatalog() []model.ColorPair {
	return []model.ColorPair{
		{Name: "body-text", Foreground: "#111827", Background: "#ffffff", Context: model.ContextNormal, Critical: true},
		{Name: "body-text-inverted", Foreground: "#f9fafb", Background: "#111827", Context: model.ContextNormal, Critical: true},
		{Name: "heading", Foreground: "#111827", Background: "#f9fafb", Context: model.ContextLarge, Critical: false},
		{Name: "muted-text", Foreground: "#6b7280", Background: "#ffffff", Context: model.ContextNormal, Critical: false},
		{Name: "link", Foreground: "#1d4ed8", Background: "#ffffff", Context: model.ContextNormal, Critical: true},
		{Name: "primary-button", Foreground: "#ffffff", Background: "#2563eb", Context: model.ContextNormal, Critical: true},
		{Name: "primary-button-hover", Foreground: "#ffffff", Background: "#1d4ed8", Context: model.ContextNormal, Critical: true},
		{Name: "secondary-button", Foreground: "#111827", Background: "#e5e7eb", Context: model.ContextNormal, Critical: false},
		{Name: "danger-button", Foreground: "#ffffff", Background: "#dc2626", Context: model.ContextNormal, Critical: true},
		{Name: "error-text", Foreground: "#b91c1c", Background: "#ffffff", Context: model.ContextNormal, Critical: true},
		{Name: "success-badge", Foreground: "#065f46", Background: "#d1fae5", Context: model.ContextUI, Critical: false},
		{Name: "warning-badge", Foreground: "#92400e", Background: "#fef3c7", Context: model.ContextUI, Critical: false},
		{Name: "nav-text", Foreground: "#e5e7eb", Background: "#111827", Context: model.ContextNormal, Critical: false},
		{Name: "focus-ring", Foreground: "#2563eb", Background: "#ffffff", Context: model.ContextUI, Critical: false},
	}
}
