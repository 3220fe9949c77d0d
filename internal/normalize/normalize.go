package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"contrastguard/internal/config"
	"contrastguard/internal/model"
)

// SampleFields is the loosely-typed shape every ingest source parses into
// before normalization. Value stays a string until Normalize validates it.
type SampleFields struct {
	Timestamp string
	Name      string
	Value     string
	Extras    map[string]string
	Raw       string
}

// Normalize converts parsed fields into a MetricSample. A missing timestamp
// falls back to now; a missing or non-numeric value is an error because a
// sample without a value cannot be evaluated.
func Normalize(fields SampleFields, cfg *config.Config) (model.MetricSample, error) {
	name := strings.ToLower(strings.TrimSpace(fields.Name))
	if name == "" {
		return model.MetricSample{}, errors.New("sample has no metric name")
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(fields.Value), 64)
	if err != nil {
		return model.MetricSample{}, fmt.Errorf("parse value %q: %w", fields.Value, err)
	}

	loc := time.UTC
	if cfg.Ingest.Sampler.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Ingest.Sampler.Timezone); err == nil {
			loc = l
		}
	}

	ts := time.Now().UTC()
	if fields.Timestamp != "" {
		parsed, err := ParseTimestamp(fields.Timestamp, loc)
		if err != nil {
			return model.MetricSample{}, fmt.Errorf("parse timestamp: %w", err)
		}
		ts = parsed.UTC()
	}

	return model.MetricSample{
		Timestamp: ts,
		Name:      name,
		Value:     value,
		Raw:       fields.Raw,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
}

// ParseTimestamp accepts the layouts above plus unix seconds and unix
// milliseconds (13+ digits).
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if isNumeric(value) {
		if ts, err := parseUnix(value); err == nil {
			return ts, nil
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}

func isNumeric(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(value) > 0
}

func parseUnix(value string) (time.Time, error) {
	if len(value) >= 13 {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC(), nil
	}
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
