package provider

import (
	"strings"

	"github.com/dnsscience/dnsriskscan/internal/record"
)

// GoogleDNS decodes the Google Cloud DNS zone-export CSV format:
// dns_name,record_type,ttl,rrdatas
type GoogleDNS struct{}

func (GoogleDNS) ID() string { return "google-dns" }

func (GoogleDNS) Confidence(header []string) float64 {
	idx := headerIndex(header)
	score := 0.0

	if _, ok := idx["rrdatas"]; ok {
		score += 0.5
	}

	required := []string{"dns_name", "record_type", "ttl"}
	present := 0
	for _, c := range required {
		if _, ok := idx[c]; ok {
			present++
		}
	}
	score += 0.5 * float64(present) / float64(len(required))

	return clamp01(score)
}

func (GoogleDNS) Decode(header []string, row []string, zone string) DecodeResult {
	idx := headerIndex(header)

	name, ok := col(row, idx, "dns_name")
	if !ok || name == "" {
		return DecodeResult{Outcome: OutcomeSkip, Reason: "missing dns_name column"}
	}
	name = applyApex(name, zone)

	typStr, _ := col(row, idx, "record_type")
	typ, ok := record.ParseType(typStr)
	if !ok {
		return DecodeResult{Outcome: OutcomeSkip, Reason: "unsupported record type " + typStr}
	}

	// rrdatas may carry several space/semicolon separated values; the
	// first is taken as the canonical content.
	rrdatas, _ := col(row, idx, "rrdatas")
	content := rrdatas
	if i := strings.IndexAny(rrdatas, " ;"); i > 0 && typ != record.TypeMX && typ != record.TypeSRV && typ != record.TypeTXT {
		content = rrdatas[:i]
	}

	ttlStr, _ := col(row, idx, "ttl")

	r := record.Record{
		Name:     record.NormalizeName(name),
		Type:     typ,
		Content:  content,
		TTL:      parseTTL(ttlStr),
		Provider: "google-dns",
	}

	return DecodeResult{Outcome: OutcomeOK, Record: r}
}
