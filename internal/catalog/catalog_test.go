package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
version: "1.0"
patterns:
  prefixes:
    high: ["old-"]
    medium: ["test-"]
    low: []
  suffixes:
    high: []
    medium: []
    low: []
  keywords:
    high: ["decommission"]
    medium: []
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

func TestLoadBytes_ValidDocument(t *testing.T) {
	c, err := LoadBytes([]byte(validYAML))
	require.NoError(t, err)
	assert.Equal(t, "1.0", c.Version)
	assert.True(t, c.Tokens(GroupPrefixes, SeverityHigh)["old-"])
	assert.Equal(t, 80, c.Score("high"))
}

func TestLoadBytes_DuplicateTokenAcrossSeveritiesIsInvalid(t *testing.T) {
	const dup = `
version: "1.0"
patterns:
  prefixes:
    high: ["old-"]
    medium: ["old-"]
    low: []
  suffixes:
    high: []
    medium: []
    low: []
  keywords:
    high: []
    medium: []
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
	_, err := LoadBytes([]byte(dup))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestLoadBytes_MissingScoringKeyIsInvalid(t *testing.T) {
	const missing = `
version: "1.0"
patterns:
  prefixes: {high: [], medium: [], low: []}
  suffixes: {high: [], medium: [], low: []}
  keywords: {high: [], medium: [], low: []}
scoring:
  high: 80
  medium: 50
  low: 15
thresholds:
  critical: 90
  high: 70
  medium: 40
  low: 10
  safe: 0
`
	_, err := LoadBytes([]byte(missing))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestLoadBytes_NonMonotonicThresholdsIsInvalid(t *testing.T) {
	const bad = `
version: "1.0"
patterns:
  prefixes: {high: [], medium: [], low: []}
  suffixes: {high: [], medium: [], low: []}
  keywords: {high: [], medium: [], low: []}
scoring:
  high: 80
  medium: 50
  low: 15
  base: 10
thresholds:
  critical: 50
  high: 70
  medium: 40
  low: 10
  safe: 0
`
	_, err := LoadBytes([]byte(bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestCatalog_LevelMapsScoreToHighestQualifyingBand(t *testing.T) {
	c, err := LoadBytes([]byte(validYAML))
	require.NoError(t, err)

	cases := []struct {
		score int
		want  string
	}{
		{0, LevelSafe},
		{9, LevelSafe},
		{10, LevelLow},
		{39, LevelLow},
		{40, LevelMedium},
		{69, LevelMedium},
		{70, LevelHigh},
		{89, LevelHigh},
		{90, LevelCritical},
		{100, LevelCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Level(tc.score), "score %d", tc.score)
	}
}

func TestLoad_MissingFileIsInvalid(t *testing.T) {
	_, err := Load("/nonexistent/path/patterns.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}
