// Package catalog loads and validates the pattern-based risk scoring rubric
// (the "Pattern Catalog") that drives internal/classifier. Loading follows
// the teacher's zone-file idiom: read the whole document, unmarshal with
// gopkg.in/yaml.v3 into a typed struct, then validate before anything else
// in the process touches it.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigInvalid is returned (wrapped with detail) for any malformed or
// missing pattern catalog. The system refuses to proceed without a valid one.
var ErrConfigInvalid = errors.New("pattern catalog invalid")

// Severity buckets, evaluated high -> medium -> low, highest first always.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

var severityOrder = []string{SeverityHigh, SeverityMedium, SeverityLow}

// Risk levels, highest first.
const (
	LevelCritical = "critical"
	LevelHigh     = "high"
	LevelMedium   = "medium"
	LevelLow      = "low"
	LevelSafe     = "safe"
)

var levelOrder = []string{LevelCritical, LevelHigh, LevelMedium, LevelLow, LevelSafe}

// document is the on-disk shape of the pattern catalog, per spec.md §6.
type document struct {
	Version  string             `yaml:"version"`
	Patterns map[string]buckets `yaml:"patterns"`
	Scoring  map[string]int     `yaml:"scoring"`
	Thresholds map[string]int   `yaml:"thresholds"`
}

type buckets struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
	Low    []string `yaml:"low"`
}

// Catalog is the validated, immutable, read-only rubric. Once Load returns
// one successfully, nothing in the process may mutate it — every lookup
// structure here is built once and shared by reference (including across
// worker-pool copies, which hold the same *Catalog rather than cloning it,
// since it is read-only).
type Catalog struct {
	Version string

	// group -> severity -> set of lower-cased tokens
	prefixes groupSet
	suffixes groupSet
	keywords groupSet

	scoring    map[string]int
	thresholds []thresholdBand // sorted highest-threshold-first
}

type groupSet map[string]map[string]bool // severity -> token set

type thresholdBand struct {
	level     string
	threshold int
}

// GroupPrefixes, GroupSuffixes, GroupKeywords name the three pattern groups,
// used as the "<group>:<token>" identifier prefix in ClassificationResult.
const (
	GroupPrefixes = "prefixes"
	GroupSuffixes = "suffixes"
	GroupKeywords = "keywords"
)

// Load reads, parses and validates a pattern catalog document from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfigInvalid, path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfigInvalid, path, err)
	}

	return build(&doc)
}

// LoadBytes parses and validates a pattern catalog already in memory
// (tests and tools/bench_ingest's built-in catalog go through this; a
// catalog file, including a --patterns override, goes through Load).
func LoadBytes(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return build(&doc)
}

func build(doc *document) (*Catalog, error) {
	c := &Catalog{
		Version: doc.Version,
		scoring: doc.Scoring,
	}

	var err error
	if c.prefixes, err = buildGroup(doc.Patterns[GroupPrefixes]); err != nil {
		return nil, fmt.Errorf("%w: prefixes: %v", ErrConfigInvalid, err)
	}
	if c.suffixes, err = buildGroup(doc.Patterns[GroupSuffixes]); err != nil {
		return nil, fmt.Errorf("%w: suffixes: %v", ErrConfigInvalid, err)
	}
	if c.keywords, err = buildGroup(doc.Patterns[GroupKeywords]); err != nil {
		return nil, fmt.Errorf("%w: keywords: %v", ErrConfigInvalid, err)
	}

	for _, key := range []string{"high", "medium", "low", "base"} {
		if _, ok := c.scoring[key]; !ok {
			return nil, fmt.Errorf("%w: scoring missing %q", ErrConfigInvalid, key)
		}
	}

	bands, err := buildThresholds(doc.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("%w: thresholds: %v", ErrConfigInvalid, err)
	}
	c.thresholds = bands

	return c, nil
}

func buildGroup(b buckets) (groupSet, error) {
	gs := groupSet{
		SeverityHigh:   map[string]bool{},
		SeverityMedium: map[string]bool{},
		SeverityLow:    map[string]bool{},
	}
	seen := map[string]string{} // token -> severity that claimed it first

	add := func(severity string, tokens []string) error {
		for _, tok := range tokens {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" {
				return fmt.Errorf("empty token in %s bucket", severity)
			}
			if prior, dup := seen[tok]; dup {
				return fmt.Errorf("token %q appears in both %s and %s buckets", tok, prior, severity)
			}
			seen[tok] = severity
			gs[severity][tok] = true
		}
		return nil
	}

	if err := add(SeverityHigh, b.High); err != nil {
		return nil, err
	}
	if err := add(SeverityMedium, b.Medium); err != nil {
		return nil, err
	}
	if err := add(SeverityLow, b.Low); err != nil {
		return nil, err
	}
	return gs, nil
}

func buildThresholds(t map[string]int) ([]thresholdBand, error) {
	bands := make([]thresholdBand, 0, len(levelOrder))
	for _, level := range levelOrder {
		v, ok := t[level]
		if !ok {
			return nil, fmt.Errorf("missing threshold for level %q", level)
		}
		bands = append(bands, thresholdBand{level: level, threshold: v})
	}

	for i := 1; i < len(bands); i++ {
		if bands[i].threshold > bands[i-1].threshold {
			return nil, fmt.Errorf("thresholds not monotonically decreasing: %s=%d before %s=%d",
				bands[i-1].level, bands[i-1].threshold, bands[i].level, bands[i].threshold)
		}
	}
	return bands, nil
}

// Severities returns the evaluation order, high to low, for callers that
// need to walk buckets deterministically (the classifier does).
func Severities() []string { return severityOrder }

// Tokens returns the lower-cased token set for a (group, severity) pair.
func (c *Catalog) Tokens(group, severity string) map[string]bool {
	switch group {
	case GroupPrefixes:
		return c.prefixes[severity]
	case GroupSuffixes:
		return c.suffixes[severity]
	case GroupKeywords:
		return c.keywords[severity]
	default:
		return nil
	}
}

// Score returns the point value for a severity bucket or "base".
func (c *Catalog) Score(key string) int { return c.scoring[key] }

// Level maps a clamped score to its risk level: the first band (highest
// threshold first) whose threshold is met.
func (c *Catalog) Level(score int) string {
	for _, b := range c.thresholds {
		if score >= b.threshold {
			return b.level
		}
	}
	return LevelSafe
}
