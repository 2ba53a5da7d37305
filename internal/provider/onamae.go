package provider

import (
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Onamae decodes the Onamae.com (お名前.com) zone-export CSV format, which
// uses Japanese column headers: ホスト名,TYPE,VALUE,優先度,TTL
// (host name, type, value, priority, TTL).
type Onamae struct{}

func (Onamae) ID() string { return "onamae" }

// onamaeHostHeader/onamaePriorityHeader are the locale-specific column
// names unified onto the canonical lookups in Decode.
const (
	onamaeHostHeader     = "ホスト名"
	onamaePriorityHeader = "優先度"
)

func (Onamae) Confidence(header []string) float64 {
	idx := headerIndex(header)
	score := 0.0

	if _, ok := idx[onamaeHostHeader]; ok {
		score += 0.6
	}
	if _, ok := idx["type"]; ok {
		score += 0.2
	}
	if _, ok := idx["value"]; ok {
		score += 0.2
	}

	return clamp01(score)
}

func (Onamae) Decode(header []string, row []string, zone string) DecodeResult {
	idx := headerIndex(header)

	name, ok := col(row, idx, onamaeHostHeader)
	if !ok || name == "" {
		return DecodeResult{Outcome: OutcomeSkip, Reason: "missing host column"}
	}
	name = applyApex(name, zone)

	typStr, _ := col(row, idx, "type")
	typ, ok := record.ParseType(typStr)
	if !ok {
		return DecodeResult{Outcome: OutcomeSkip, Reason: "unsupported record type " + typStr}
	}

	value, _ := col(row, idx, "value")
	ttlStr, _ := col(row, idx, "ttl")

	content := value
	if typ == record.TypeMX {
		if priority, ok := col(row, idx, onamaePriorityHeader); ok && priority != "" {
			content = priority + " " + value
		}
	}

	r := record.Record{
		Name:     record.NormalizeName(name),
		Type:     typ,
		Content:  content,
		TTL:      parseTTL(ttlStr),
		Provider: "onamae",
	}

	return DecodeResult{Outcome: OutcomeOK, Record: r}
}
