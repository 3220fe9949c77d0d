package wcag

import (
	"fmt"

	"contrastguard/internal/colormath"
	"contrastguard/internal/cvd"
	"contrastguard/internal/model"
)

// Required contrast ratios per WCAG 2.1 success criteria 1.4.3 / 1.4.6.
const (
	AANormal  = 4.5
	AALarge   = 3.0
	AAANormal = 7.0
	AAALarge  = 4.5
)

func RequiredRatio(level model.WCAGLevel, isLargeText bool) float64 {
	if level == model.LevelAAA {
		if isLargeText {
			return AAALarge
		}
		return AAANormal
	}
	if isLargeText {
		return AALarge
	}
	return AANormal
}

func ValidateAA(fg, bg string, isLargeText bool) model.ContrastResult {
	return Validate(fg, bg, model.LevelAA, isLargeText)
}

func ValidateAAA(fg, bg string, isLargeText bool) model.ContrastResult {
	return Validate(fg, bg, model.LevelAAA, isLargeText)
}

func Validate(fg, bg string, level model.WCAGLevel, isLargeText bool) model.ContrastResult {
	ratio := colormath.ContrastRatio(fg, bg)
	required := RequiredRatio(level, isLargeText)
	res := model.ContrastResult{
		Ratio:    ratio,
		Required: required,
		Passed:   ratio >= required,
		Level:    level,
	}
	if !res.Passed {
		res.Recommendations = recommendations(ratio, required, level, isLargeText)
	}
	return res
}

// ValidateColorBlindFriendly simulates both colors per deficiency type and
// re-checks the simulated pair at AA. No AAA variant is exposed here.
func ValidateColorBlindFriendly(fg, bg string) map[model.CVDType]model.ContrastResult {
	out := make(map[model.CVDType]model.ContrastResult, 4)
	for _, t := range model.CVDTypes() {
		simFg := cvd.Simulate(fg, t)
		simBg := cvd.Simulate(bg, t)
		out[t] = ValidateAA(simFg, simBg, false)
	}
	return out
}

// recommendations is descriptive text only; nothing re-validates it.
// Order is fixed: observed ratio, required ratio, remediation advice.
func recommendations(ratio, required float64, level model.WCAGLevel, isLargeText bool) []string {
	size := "normal"
	if isLargeText {
		size = "large"
	}
	return []string{
		fmt.Sprintf("current contrast ratio is %.2f:1", ratio),
		fmt.Sprintf("%s level requires at least %.2f:1 for %s text", level, required, size),
		"darken the foreground or lighten the background to increase contrast",
	}
}
