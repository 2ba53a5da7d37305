// Package provider implements the Provider Registry (C2) and the Provider
// Adapter contract (C3): per-format header detection plus per-row decoding
// into the canonical record.Record. The "capability set implemented by N
// concrete adapters registered in an ordered list" replaces the source's
// runtime class hierarchy, per spec.md §9's translation strategy.
package provider

import (
	"strings"

	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Outcome tags what a row decode produced, replacing the source's
// exception-driven control flow with an explicit result variant
// (spec.md §9): a row is either Ok, Skip (warning, counted, not fatal) or
// never reaches the adapter at all if the CSV source itself failed.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeSkip
)

// DecodeResult is what a row decoder returns.
type DecodeResult struct {
	Outcome Outcome
	Record  record.Record
	Reason  string // set when Outcome == OutcomeSkip
}

// Adapter is implemented once per supported export format.
type Adapter interface {
	// ID is the stable, language-independent provider identifier, e.g.
	// "cloudflare". Accepted as the --provider override value.
	ID() string

	// Confidence scores a detected header row in [0,1]; higher wins.
	Confidence(header []string) float64

	// Decode maps one raw data row (aligned to header) into a canonical
	// record, or a skip/rejection reason. zone is the apex hint derived
	// from the input filename, used only to qualify a bare "@" row.
	Decode(header []string, row []string, zone string) DecodeResult
}

// minConfidence is the detection floor below which the Registry falls back
// to the generic adapter instead of guessing, per spec.md §4.2.
const minConfidence = 0.5

// Registry holds one Adapter per supported format and answers detection
// queries against a header row.
type Registry struct {
	adapters []Adapter // preference order; also the tie-break order
	generic  Adapter
}

// NewRegistry builds the registry with every built-in adapter, fixed
// preference order for tie-breaks.
func NewRegistry() *Registry {
	return &Registry{
		adapters: []Adapter{
			&Cloudflare{},
			&Route53{},
			&GoogleDNS{},
			&AzureDNS{},
			&Onamae{},
			&Namecheap{},
		},
		generic: &Generic{},
	}
}

// Detect picks the adapter with the highest confidence for header, falling
// back to the generic adapter when no adapter clears minConfidence
// (DetectionAmbiguous, per spec.md §7 — a warning, not fatal).
func (r *Registry) Detect(header []string) (adapter Adapter, ambiguous bool) {
	var best Adapter
	bestScore := -1.0

	for _, a := range r.adapters {
		score := a.Confidence(header)
		if score > bestScore {
			best, bestScore = a, score
		}
	}

	if best == nil || bestScore < minConfidence {
		return r.generic, true
	}
	return best, false
}

// ByID returns the adapter with the given identifier for --provider
// overrides, or the generic adapter if id is unknown/empty.
func (r *Registry) ByID(id string) Adapter {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, a := range r.adapters {
		if a.ID() == id {
			return a
		}
	}
	return r.generic
}

// headerIndex builds a case-insensitive column-name -> index map, the
// shared lookup every adapter's Decode uses.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func col(row []string, idx map[string]int, name string) (string, bool) {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

// parseBool tolerates true/false/YES/NO/1/0 per spec.md §4.2.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	default:
		return false, false
	}
}

// parseTTL coerces a TTL column to a non-negative integer, defaulting when
// blank, absent, or unparsable — uniformly across providers (spec.md §9's
// recorded Open Question: no provider-specific default).
func parseTTL(s string) uint32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return record.DefaultTTL
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return record.DefaultTTL
		}
		n = n*10 + int(c-'0')
	}
	return uint32(n)
}

// applyApex replaces a bare zone apex symbol ("@") with the zone name when a
// zone is known from context (e.g. the source filename), per
// spec.md §4.2. With no zone context the literal "@" is kept, per the
// recorded Open Question decision in spec.md §9.
func applyApex(name, zone string) string {
	if name != "@" {
		return name
	}
	if zone == "" {
		return name
	}
	return zone
}
