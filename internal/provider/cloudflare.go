package provider

import (
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Cloudflare decodes the Cloudflare zone-export CSV format:
// Name,Type,Content,TTL,Proxied,Created,Modified
type Cloudflare struct{}

func (Cloudflare) ID() string { return "cloudflare" }

func (Cloudflare) Confidence(header []string) float64 {
	idx := headerIndex(header)
	score := 0.0

	// Signature column unique to Cloudflare exports.
	if _, ok := idx["proxied"]; ok {
		score += 0.5
	}

	required := []string{"name", "type", "content", "ttl"}
	present := 0
	for _, c := range required {
		if _, ok := idx[c]; ok {
			present++
		}
	}
	score += 0.5 * float64(present) / float64(len(required))

	// RoutingPolicy is Route53's signature; its presence here is a
	// conflict, not a Cloudflare export.
	if _, ok := idx["routingpolicy"]; ok {
		score -= 0.4
	}

	return clamp01(score)
}

func (Cloudflare) Decode(header []string, row []string, zone string) DecodeResult {
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

	content, _ := col(row, idx, "content")
	ttlStr, _ := col(row, idx, "ttl")
	createdStr, _ := col(row, idx, "created")
	modifiedStr, _ := col(row, idx, "modified")

	r := record.Record{
		Name:     record.NormalizeName(name),
		Type:     typ,
		Content:  content,
		TTL:      parseTTL(ttlStr),
		Created:  createdStr,
		Modified: modifiedStr,
		Provider: "cloudflare",
	}

	if proxiedStr, ok := col(row, idx, "proxied"); ok {
		if b, ok := parseBool(proxiedStr); ok {
			r.Proxied = &b
		}
	}

	return DecodeResult{Outcome: OutcomeOK, Record: r}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
