package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noctisium/internal/progression"
)

func TestEmbeddedDefaultsParse(t *testing.T) {
	cfg, err := Parse(defaultTuning)
	require.NoError(t, err)

	// The embedded tuning mirrors the in-code defaults.
	assert.Equal(t, progression.DefaultConfig(), cfg)
}

func TestParseRejectsInvalidTuning(t *testing.T) {
	_, err := Parse([]byte(`week_xp_rate: -1`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
week_xp_rate: 1
rr_per_points: 10
rank_ladder:
  - { tier: copper, min_rr: 0 }
`))
	assert.Error(t, err, "unknown tier")
}
