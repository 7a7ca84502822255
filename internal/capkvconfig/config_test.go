package capkvconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidConfigReturnsZoneRoots(t *testing.T) {
	raw := []byte(`
zones:
  - path: ./zones/core
  - path: ./zones/plugins
`)
	cfg, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"./zones/core", "./zones/plugins"}, cfg.ZoneRoots())
}

func TestParse_MissingZonesFailsSchemaValidation(t *testing.T) {
	raw := []byte(`foo: bar`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParse_EmptyZonesListFailsSchemaValidation(t *testing.T) {
	raw := []byte(`zones: []`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParse_ZoneMissingPathFailsSchemaValidation(t *testing.T) {
	raw := []byte(`
zones:
  - notpath: oops
`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParse_InvalidYAMLIsConfigurationError(t *testing.T) {
	raw := []byte("zones: [unterminated")
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestLoad_MissingFileIsConfigurationError(t *testing.T) {
	_, err := Load("/nonexistent/path/to/capkv.yaml")
	assert.Error(t, err)
}
