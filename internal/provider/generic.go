package provider

import (
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Generic is the best-effort fallback adapter used when no registered
// adapter clears the minimum confidence threshold (spec.md §4.2,
// DetectionAmbiguous). It maps Name/Type/Content|Value/TTL if present.
type Generic struct{}

func (Generic) ID() string { return "generic" }

// Confidence is intentionally not consulted by Registry.Detect for the
// fallback path, but is defined so Generic also satisfies Adapter and can
// be selected explicitly via --provider generic.
func (Generic) Confidence(header []string) float64 {
	idx := headerIndex(header)
	score := 0.0
	if _, ok := idx["name"]; ok {
		score += 0.34
	}
	if _, ok := idx["type"]; ok {
		score += 0.33
	}
	if _, hasContent := idx["content"]; hasContent {
		score += 0.33
	} else if _, hasValue := idx["value"]; hasValue {
		score += 0.33
	}
	return clamp01(score)
}

func (Generic) Decode(header []string, row []string, zone string) DecodeResult {
	idx := headerIndex(header)

	name, ok := col(row, idx, "name")
	if !ok || name == "" {
		return DecodeResult{Outcome: OutcomeSkip, Reason: "missing name column"}
	}
	name = applyApex(name, zone)

	typStr, _ := col(row, idx, "type")
	typ, ok := record.ParseType(typStr)
	if !ok {
		return DecodeResult{Outcome: OutcomeSkip, Reason: "unsupported record type " + typStr}
	}

	content, ok := col(row, idx, "content")
	if !ok {
		content, _ = col(row, idx, "value")
	}

	ttlStr, _ := col(row, idx, "ttl")

	r := record.Record{
		Name:     record.NormalizeName(name),
		Type:     typ,
		Content:  content,
		TTL:      parseTTL(ttlStr),
		Provider: "generic",
	}

	return DecodeResult{Outcome: OutcomeOK, Record: r}
}
