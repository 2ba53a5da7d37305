package provider

import (
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// AzureDNS decodes the Azure DNS zone-export CSV format:
// Name,Type,TTL,Value (bare "@" for the zone apex).
type AzureDNS struct{}

func (AzureDNS) ID() string { return "azure-dns" }

func (AzureDNS) Confidence(header []string) float64 {
	idx := headerIndex(header)
	score := 0.0

	required := []string{"name", "type", "ttl", "value"}
	present := 0
	for _, c := range required {
		if _, ok := idx[c]; ok {
			present++
		}
	}
	score += 0.6 * float64(present) / float64(len(required))

	// Azure's column set is a subset of Route53's and Cloudflare's; absence
	// of their signature columns is the only positive signal beyond the
	// required set, so this adapter never reaches Cloudflare/Route53
	// confidence on their own exports.
	if _, ok := idx["routingpolicy"]; ok {
		score -= 0.3
	}
	if _, ok := idx["proxied"]; ok {
		score -= 0.3
	}
	if _, ok := idx["rrdatas"]; ok {
		score -= 0.3
	}

	return clamp01(score)
}

func (AzureDNS) Decode(header []string, row []string, zone string) DecodeResult {
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
		Provider: "azure-dns",
	}

	return DecodeResult{Outcome: OutcomeOK, Record: r}
}
