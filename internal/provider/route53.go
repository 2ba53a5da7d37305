package provider

import (
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Route53 decodes the AWS Route53 zone-export CSV format:
// Name,Type,Value,TTL,RoutingPolicy
type Route53 struct{}

func (Route53) ID() string { return "route53" }

func (Route53) Confidence(header []string) float64 {
	idx := headerIndex(header)
	score := 0.0

	if _, ok := idx["routingpolicy"]; ok {
		score += 0.5
	}

	required := []string{"name", "type", "value", "ttl"}
	present := 0
	for _, c := range required {
		if _, ok := idx[c]; ok {
			present++
		}
	}
	score += 0.5 * float64(present) / float64(len(required))

	if _, ok := idx["proxied"]; ok {
		score -= 0.4
	}

	return clamp01(score)
}

func (Route53) Decode(header []string, row []string, zone string) DecodeResult {
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

	value, _ := col(row, idx, "value")
	ttlStr, _ := col(row, idx, "ttl")

	r := record.Record{
		Name:     record.NormalizeName(name),
		Type:     typ,
		Content:  value,
		TTL:      parseTTL(ttlStr),
		Provider: "route53",
	}

	return DecodeResult{Outcome: OutcomeOK, Record: r}
}
