// Package classifier implements the Risk Classifier (C6): a pure,
// deterministic function from (record.Record, catalog.Catalog) to a
// Result. The label-walking technique — normalise once, then test a name
// against a token set label-by-label — generalizes the RPZ matcher's
// exact/wildcard domain walking (internal/engine/rpz.go in the teacher),
// reshaped here for prefix/suffix/keyword scoring instead of policy actions.
package classifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miekg/dns"

	"github.com/dnsscience/dnsriskscan/internal/catalog"
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Result carries the original record, its score, level, the ordered set of
// matched pattern identifiers, and the parallel list of human-readable
// reasons. matchedPatterns and reasons always have equal length.
type Result struct {
	Record          record.Record
	Score           int
	Level           string
	MatchedPatterns []string
	Reasons         []string
}

// minScore/maxScore bound the clamped total, per spec.md §4.4 step 4.
const (
	minScore = 0
	maxScore = 100
)

// Classify scores one record against the catalog. It never fails: a record
// either matches nothing (score 0, level safe) or accumulates points from
// every matching token across every bucket — there is no early exit, so a
// name that matches three prefixes in the same bucket scores three times.
func Classify(c *catalog.Catalog, r record.Record) Result {
	name := record.NormalizeName(r.Name)
	label := leftmostLabel(name)
	suffixLabel, hasSuffixLabel := rightmostNonTLDLabel(name)

	var (
		total   int
		matched []string
		reasons []string
		anyHit  bool
	)

	// Group-traversal order is prefix, suffix, keyword, per spec.md §9's
	// recorded Open Question: a token matching both prefix and keyword
	// records both hits in that order, not keyword-first.
	for _, severity := range catalog.Severities() {
		bucketScore := c.Score(severity)

		for _, tok := range sortedMatches(c.Tokens(catalog.GroupPrefixes, severity), func(t string) bool {
			return strings.HasPrefix(label, t)
		}) {
			total += bucketScore
			matched = append(matched, fmt.Sprintf("%s:%s", catalog.GroupPrefixes, tok))
			reasons = append(reasons, fmt.Sprintf("name starts with prefix pattern %q (%s)", tok, severity))
			anyHit = true
		}

		if hasSuffixLabel {
			for _, tok := range sortedMatches(c.Tokens(catalog.GroupSuffixes, severity), func(t string) bool {
				return strings.HasSuffix(suffixLabel, t)
			}) {
				total += bucketScore
				matched = append(matched, fmt.Sprintf("%s:%s", catalog.GroupSuffixes, tok))
				reasons = append(reasons, fmt.Sprintf("name contains suffix pattern %q (%s)", tok, severity))
				anyHit = true
			}
		}

		for _, tok := range sortedMatches(c.Tokens(catalog.GroupKeywords, severity), func(t string) bool {
			return strings.Contains(name, t)
		}) {
			total += bucketScore
			matched = append(matched, fmt.Sprintf("%s:%s", catalog.GroupKeywords, tok))
			reasons = append(reasons, fmt.Sprintf("name contains keyword pattern %q (%s)", tok, severity))
			anyHit = true
		}
	}

	if anyHit {
		total += c.Score("base")
	}

	if total < minScore {
		total = minScore
	}
	if total > maxScore {
		total = maxScore
	}

	return Result{
		Record:          r,
		Score:           total,
		Level:           c.Level(total),
		MatchedPatterns: matched,
		Reasons:         reasons,
	}
}

// sortedMatches returns every token in tokens for which pred holds true, in
// a fixed (lexical) order. The catalog stores tokens in a map for O(1)
// membership tests elsewhere, but scoring must be order-independent of Go's
// randomised map iteration to satisfy the determinism invariant (P1), so
// every caller here sorts before walking.
func sortedMatches(tokens map[string]bool, pred func(string) bool) []string {
	if len(tokens) == 0 {
		return nil
	}
	all := make([]string, 0, len(tokens))
	for tok := range tokens {
		all = append(all, tok)
	}
	sort.Strings(all)

	var out []string
	for _, tok := range all {
		if pred(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// leftmostLabel returns the first label of name — the token a prefix
// pattern is tested against. Splitting with dns.SplitDomainName (rather than
// strings.Split) respects backslash-escaped dots within a label, so a name
// like `foo\.bar.example.com` is split into ["foo.bar", "example", "com"],
// not four pieces.
func leftmostLabel(name string) string {
	labels := dns.SplitDomainName(name)
	if len(labels) == 0 {
		return name
	}
	return labels[0]
}

// rightmostNonTLDLabel returns the rightmost label left of the last two
// labels (the registered domain and its TLD) — e.g. "corp" in
// "internal.corp.example.com". Names with fewer than three labels have no
// such label and suffix matching is skipped for them.
func rightmostNonTLDLabel(name string) (string, bool) {
	labels := dns.SplitDomainName(name)
	if len(labels) < 3 {
		return "", false
	}
	return labels[len(labels)-3], true
}
