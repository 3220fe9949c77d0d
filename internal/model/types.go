package model

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type WCAGLevel string

const (
	LevelAA  WCAGLevel = "AA"
	LevelAAA WCAGLevel = "AAA"
)

func (l WCAGLevel) Valid() bool {
	return l == LevelAA || l == LevelAAA
}

type CVDType string

const (
	Protanopia    CVDType = "protanopia"
	Deuteranopia  CVDType = "deuteranopia"
	Tritanopia    CVDType = "tritanopia"
	Achromatopsia CVDType = "achromatopsia"
)

func (t CVDType) Valid() bool {
	switch t {
	case Protanopia, Deuteranopia, Tritanopia, Achromatopsia:
		return true
	}
	return false
}

func CVDTypes() []CVDType {
	return []CVDType{Protanopia, Deuteranopia, Tritanopia, Achromatopsia}
}

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ContrastResult is immutable once created; Passed always equals
// Ratio >= Required, nothing else may set it.
type ContrastResult struct {
	Ratio           float64   `json:"ratio"`
	Required        float64   `json:"requiredRatio"`
	Passed          bool      `json:"passed"`
	Level           WCAGLevel `json:"level"`
	Recommendations []string  `json:"recommendations,omitempty"`
}

type PairContext string

const (
	ContextNormal PairContext = "normal"
	ContextLarge  PairContext = "large"
	ContextUI     PairContext = "ui"
)

type ColorPair struct {
	Name       string      `json:"name" yaml:"name"`
	Foreground string      `json:"foreground" yaml:"foreground"`
	Background string      `json:"background" yaml:"background"`
	Context    PairContext `json:"context" yaml:"context"`
	Critical   bool        `json:"critical" yaml:"critical"`
}

type TestResult struct {
	Name            string                     `json:"name"`
	Passed          bool                       `json:"passed"`
	Contrast        ContrastResult             `json:"contrastResult"`
	CVDResults      map[CVDType]ContrastResult `json:"cvdResults,omitempty"`
	Severity        Severity                   `json:"severity"`
	Recommendations []string                   `json:"recommendations,omitempty"`
}

type Summary struct {
	TotalTests int     `json:"totalTests"`
	Passed     int     `json:"passed"`
	Failed     int     `json:"failed"`
	Warnings   int     `json:"warnings"`
	Critical   int     `json:"critical"`
	PassRate   float64 `json:"passRate"`
}

type Comparator string

const (
	CompareGT Comparator = ">"
	CompareGE Comparator = ">="
	CompareLT Comparator = "<"
	CompareLE Comparator = "<="
	CompareEQ Comparator = "=="
)

func (c Comparator) Valid() bool {
	switch c {
	case CompareGT, CompareGE, CompareLT, CompareLE, CompareEQ:
		return true
	}
	return false
}

type AlertRule struct {
	ID         string     `json:"id" yaml:"id"`
	MetricName string     `json:"metric_name" yaml:"metric_name"`
	Threshold  float64    `json:"threshold" yaml:"threshold"`
	Comparator Comparator `json:"comparator" yaml:"comparator"`
	Severity   Severity   `json:"severity" yaml:"severity"`
	Enabled    bool       `json:"enabled" yaml:"enabled"`
}

type Alert struct {
	ID            string     `json:"id"`
	RuleID        string     `json:"rule_id"`
	MetricName    string     `json:"metric_name"`
	ObservedValue float64    `json:"observed_value"`
	Threshold     float64    `json:"threshold"`
	Severity      Severity   `json:"severity"`
	Message       string     `json:"message"`
	CreatedAt     time.Time  `json:"created_at"`
	Acknowledged  bool       `json:"acknowledged"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

func (a Alert) Resolved() bool {
	return a.ResolvedAt != nil
}

type MetricSample struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Source    string    `json:"source,omitempty"`
	Raw       string    `json:"raw,omitempty"`
}

type RetentionPolicy struct {
	MaxAlerts int           `json:"max_alerts" yaml:"max_alerts"`
	MaxAge    time.Duration `json:"max_age" yaml:"max_age"`
}

type AlertStats struct {
	Total        int              `json:"total"`
	BySeverity   map[Severity]int `json:"by_severity"`
	Acknowledged int              `json:"acknowledged"`
	Resolved     int              `json:"resolved"`
	Recent       int              `json:"recent"`
}
