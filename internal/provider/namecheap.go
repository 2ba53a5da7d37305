package provider

import (
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Namecheap decodes the Namecheap zone-export CSV format:
// Host,Type,Value,TTL,Priority
type Namecheap struct{}

func (Namecheap) ID() string { return "namecheap" }

func (Namecheap) Confidence(header []string) float64 {
	idx := headerIndex(header)
	score := 0.0

	_, hasHost := idx["host"]
	_, hasPriority := idx["priority"]
	if hasHost && hasPriority {
		score += 0.5
	}

	required := []string{"host", "type", "value", "ttl"}
	present := 0
	for _, c := range required {
		if _, ok := idx[c]; ok {
			present++
		}
	}
	score += 0.5 * float64(present) / float64(len(required))

	if _, ok := idx["routingpolicy"]; ok {
		score -= 0.4
	}
	if _, ok := idx["proxied"]; ok {
		score -= 0.4
	}

	return clamp01(score)
}

func (Namecheap) Decode(header []string, row []string, zone string) DecodeResult {
	idx := headerIndex(header)

	name, ok := col(row, idx, "host")
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
		if priority, ok := col(row, idx, "priority"); ok && priority != "" {
			content = priority + " " + value
		}
	}

	r := record.Record{
		Name:     record.NormalizeName(name),
		Type:     typ,
		Content:  content,
		TTL:      parseTTL(ttlStr),
		Provider: "namecheap",
	}

	return DecodeResult{Outcome: OutcomeOK, Record: r}
}
