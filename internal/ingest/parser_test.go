package ingest

import "testing"

func TestParsePlainKeyValue(t *testing.T) {
	p := NewParser()
	line := "2026-02-23 12:34:56 metric=lcp_ms value=2800"
	fields, err := p.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Name != "lcp_ms" {
		t.Fatalf("name: %s", fields.Name)
	}
	if fields.Value != "2800" {
		t.Fatalf("value: %s", fields.Value)
	}
	if fields.Timestamp == "" {
		t.Fatalf("timestamp missing")
	}
}

func TestParseBareMetricPair(t *testing.T) {
	p := NewParser()
	fields, err := p.ParseLine("style_recalc_ms=61.5")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Name != "style_recalc_ms" || fields.Value != "61.5" {
		t.Fatalf("bare pair mismatch: %+v", fields)
	}
}

func TestParseJSON(t *testing.T) {
	p := NewParser()
	line := `{"timestamp":"2026-02-23T12:34:56Z","metric":"cumulative_layout_shift","value":0.18}`
	fields, err := p.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Name != "cumulative_layout_shift" || fields.Value != "0.18" {
		t.Fatalf("json parse mismatch: %+v", fields)
	}
}

func TestParseEmptyAndGarbage(t *testing.T) {
	p := NewParser()
	if fields, _ := p.ParseLine("   "); fields != nil {
		t.Fatalf("blank line should yield nil")
	}
	if fields, _ := p.ParseLine("no pairs here"); fields != nil {
		t.Fatalf("line without key=value pairs should yield nil")
	}
}
