package classifier

import (
	"testing"

	"github.com/dnsscience/dnsriskscan/internal/catalog"
	"github.com/dnsscience/dnsriskscan/internal/record"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `
version: "test"
patterns:
  prefixes:
    high: ["old-", "legacy-"]
    medium: ["test-"]
    low: ["new-"]
  suffixes:
    high: ["-deprecated"]
    medium: ["-staging"]
    low: []
  keywords:
    high: ["decommission"]
    medium: ["sandbox"]
    low: []
scoring:
  high: 80
  medium: 50
  low: 15
  base: 10
thresholds:
  critical: 90
  high: 70
  medium: 40
  low: 10
  safe: 0
`

func loadTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.LoadBytes([]byte(testCatalogYAML))
	require.NoError(t, err)
	return c
}

func TestClassify_NoMatchIsSafeWithNoBasePoints(t *testing.T) {
	c := loadTestCatalog(t)
	r := Classify(c, record.Record{Name: "www.example.com", Type: record.TypeA})

	require.Equal(t, 0, r.Score)
	require.Equal(t, catalog.LevelSafe, r.Level)
	require.Empty(t, r.MatchedPatterns)
	require.Empty(t, r.Reasons)
}

func TestClassify_SinglePrefixMatchAddsBaseOnce(t *testing.T) {
	c := loadTestCatalog(t)
	r := Classify(c, record.Record{Name: "old-vpn.example.com", Type: record.TypeA})

	// one high prefix hit (80) + base (10) = 90 -> critical
	require.Equal(t, 90, r.Score)
	require.Equal(t, catalog.LevelCritical, r.Level)
	require.Equal(t, []string{"prefixes:old-"}, r.MatchedPatterns)
}

func TestClassify_AccumulatesAcrossMultipleBuckets(t *testing.T) {
	c := loadTestCatalog(t)
	// prefix "old-" (high, 80) + keyword "decommission" (high, 80) + base (10)
	// clamps to maxScore (100), not the raw 170.
	r := Classify(c, record.Record{Name: "old-decommission.example.com", Type: record.TypeA})

	require.Equal(t, 100, r.Score)
	require.Equal(t, catalog.LevelCritical, r.Level)
	require.Len(t, r.MatchedPatterns, 2)
}

func TestClassify_SuffixMatchRequiresThreeLabels(t *testing.T) {
	c := loadTestCatalog(t)

	// "corp-deprecated" is the leftmost label of a 2-label name, so there's
	// no label left of the registered domain for suffix matching to test against.
	r := Classify(c, record.Record{Name: "corp-deprecated.com", Type: record.TypeA})
	require.Empty(t, r.MatchedPatterns)

	// with a third label, the suffix bucket is reachable.
	r = Classify(c, record.Record{Name: "internal.corp-deprecated.example.com", Type: record.TypeA})
	require.Equal(t, []string{"suffixes:-deprecated"}, r.MatchedPatterns)
}

func TestClassify_GroupOrderIsPrefixThenSuffixThenKeyword(t *testing.T) {
	c := loadTestCatalog(t)
	// "sandbox" matches the medium keyword bucket; "test-" matches the
	// medium prefix bucket. Both are medium severity, but prefix must be
	// recorded before keyword regardless of matched token's own ordering.
	r := Classify(c, record.Record{Name: "test-sandbox.internal.example.com", Type: record.TypeA})
	require.Equal(t, []string{"prefixes:test-", "keywords:sandbox"}, r.MatchedPatterns)
}

func TestClassify_ScoreNeverGoesBelowZero(t *testing.T) {
	c := loadTestCatalog(t)
	r := Classify(c, record.Record{Name: "plain.example.com", Type: record.TypeA})
	require.GreaterOrEqual(t, r.Score, 0)
}
