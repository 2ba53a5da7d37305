// Package record defines the canonical DNS zone-export record model that
// every provider adapter decodes into and every downstream stage consumes.
package record

import (
	"strings"

	"github.com/miekg/dns"
)

// Type is the canonical resource record type. Unknown types never reach this
// enum — the provider adapter rejects the row before a Record is built.
type Type uint16

// Supported canonical types, backed by miekg/dns's type table rather than a
// hand-rolled string-to-int map.
const (
	TypeA     = dns.TypeA
	TypeAAAA  = dns.TypeAAAA
	TypeCNAME = dns.TypeCNAME
	TypeMX    = dns.TypeMX
	TypeTXT   = dns.TypeTXT
	TypeSRV   = dns.TypeSRV
	TypePTR   = dns.TypePTR
	TypeNS    = dns.TypeNS
)

// supported is the fixed set of types this analyzer accepts; every other
// dns.Type* constant is a RowMalformed rejection for this pipeline.
var supported = map[uint16]bool{
	TypeA: true, TypeAAAA: true, TypeCNAME: true, TypeMX: true,
	TypeTXT: true, TypeSRV: true, TypePTR: true, TypeNS: true,
}

// ParseType maps a provider's textual record type to the canonical type,
// case-insensitively. ok is false for unsupported or unrecognised types.
func ParseType(s string) (uint16, bool) {
	t, ok := dns.StringToType[strings.ToUpper(strings.TrimSpace(s))]
	if !ok || !supported[t] {
		return 0, false
	}
	return t, true
}

// TypeString renders the canonical type the way the report formatter and
// test fixtures expect it: upper-case, no trailing dot concerns.
func TypeString(t uint16) string {
	return dns.TypeToString[t]
}

// Record is the canonical, normalised zone-export row. Every provider
// adapter (internal/provider) produces one of these from a raw CSV row; the
// classifier, pipeline, aggregator and formatter operate only on Record.
type Record struct {
	Name     string // lower-cased, trailing dot stripped
	Type     uint16
	Content  string // format-dependent: MX carries "priority host", SRV carries "priority weight port target"
	TTL      uint32 // non-negative; DefaultTTL when the column was blank
	Proxied  *bool  // nil when the provider has no such concept
	Created  string // ISO-8601 or empty
	Modified string // ISO-8601 or empty
	Provider string // adapter identifier that produced this record
}

// DefaultTTL is applied whenever a provider's TTL column is blank or absent,
// uniformly across providers (spec.md's recorded Open Question decision).
const DefaultTTL = 300

// NormalizeName lower-cases a DNS name and strips a single trailing dot, the
// shared rule every adapter and the classifier apply before matching.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".")
}

// Fqdn returns the fully-qualified (trailing-dot) form of a name, using
// miekg/dns's canonicalisation so wildcard/apex handling matches the
// resolver-grade semantics the rest of the pack relies on.
func Fqdn(name string) string {
	return dns.Fqdn(name)
}
