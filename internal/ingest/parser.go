package ingest

import (
	"regexp"
	"strings"

	"contrastguard/internal/normalize"
)

var (
	reTimestamp = regexp.MustCompile(`^\s*([0-9]{4}-[0-9]{2}-[0-9]{2}[ T][0-9:.+-Z]+)`)
	reKV        = regexp.MustCompile(`(?i)([a-zA-Z_][a-zA-Z0-9_]*)=([^\s]+)`)
)

// Parser turns a raw line from Kafka or a tailed file into SampleFields.
// Supported shapes: a JSON object, or key=value text with an optional
// leading timestamp. A line like "lcp_ms=2800" uses its single pair as
// metric name and value.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParseLine(line string) (*normalize.SampleFields, error) {
	trim := strings.TrimSpace(line)
	if trim == "" {
		return nil, nil
	}
	if looksLikeJSON(trim) {
		if fields, err := parseJSON(trim); err == nil {
			fields.Raw = line
			return fields, nil
		}
	}
	fields := parsePlain(trim)
	if fields == nil {
		return nil, nil
	}
	fields.Raw = line
	return fields, nil
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func parseJSON(line string) (*normalize.SampleFields, error) {
	return ParseJSONBytes([]byte(line))
}

func parsePlain(line string) *normalize.SampleFields {
	fields := &normalize.SampleFields{Extras: map[string]string{}}
	ts, _ := extractTimestamp(line)
	fields.Timestamp = ts

	kv := map[string]string{}
	var order []string
	for _, match := range reKV.FindAllStringSubmatch(line, -1) {
		key := strings.ToLower(match[1])
		if _, seen := kv[key]; !seen {
			order = append(order, key)
		}
		kv[key] = match[2]
	}
	if len(kv) == 0 {
		return nil
	}
	fields.Name = firstNonEmpty(kv, "name", "metric", "metric_name")
	fields.Value = firstNonEmpty(kv, "value", "val", "measurement")
	if fields.Timestamp == "" {
		fields.Timestamp = firstNonEmpty(kv, "timestamp", "time", "ts")
	}
	for k, v := range kv {
		fields.Extras[k] = v
	}

	// Bare "metric_name=123" lines carry the metric as the key itself.
	if fields.Name == "" || fields.Value == "" {
		for _, key := range order {
			if reserved(key) {
				continue
			}
			fields.Name = key
			fields.Value = kv[key]
			break
		}
	}
	return fields
}

func reserved(key string) bool {
	switch key {
	case "name", "metric", "metric_name", "value", "val", "measurement", "timestamp", "time", "ts", "source":
		return true
	}
	return false
}

func extractTimestamp(line string) (string, string) {
	m := reTimestamp.FindStringSubmatchIndex(line)
	if len(m) >= 4 {
		ts := strings.TrimSpace(line[m[2]:m[3]])
		rest := strings.TrimSpace(line[m[3]:])
		return ts, rest
	}
	return "", line
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			return v
		}
	}
	return ""
}
