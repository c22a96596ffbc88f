package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15, cfg.WindowSize)
	assert.Equal(t, 25, cfg.LockFrames)
	assert.Equal(t, 8, cfg.StabilityThreshold)
	assert.Equal(t, 5, cfg.PreviewMinSamples)
	assert.Equal(t, float32(0.5), cfg.ForegroundThreshold)
	assert.Equal(t, 20, cfg.MinForegroundCols)
	assert.Equal(t, 0.15, cfg.WaistBias)

	require.NoError(t, QuickConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"WindowSize", func(c *Config) { c.WindowSize = 0 }},
		{"LockFrames", func(c *Config) { c.LockFrames = -1 }},
		{"StabilityThreshold", func(c *Config) { c.StabilityThreshold = 0 }},
		{"PreviewMinSamples", func(c *Config) { c.PreviewMinSamples = -1 }},
		{"ForegroundThreshold", func(c *Config) { c.ForegroundThreshold = 1 }},
		{"MinForegroundCols", func(c *Config) { c.MinForegroundCols = 0 }},
		{"WaistBias", func(c *Config) { c.WaistBias = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
