package camera

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	presets := Presets()
	require.Len(t, presets, len(PresetNames()))
	for _, name := range PresetNames() {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.Empty(t, cfg.Validate(), name)
	}
	assert.Nil(t, GetPreset("4k"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative device", func(c *Config) { c.Device = -1 }},
		{"tiny width", func(c *Config) { c.Width = 100 }},
		{"huge height", func(c *Config) { c.Height = 5000 }},
		{"zero fps", func(c *Config) { c.Framerate = 0 }},
		{"quality", func(c *Config) { c.Quality = 101 }},
		{"zoom below one", func(c *Config) { c.ZoomLevel = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Len(t, cfg.Validate(), 1)
		})
	}
}

func TestManager_UpdateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Device = 2
	m := NewManager(cfg)

	var applied []Config
	m.OnConfigChange(func(c Config) error {
		applied = append(applied, c)
		return nil
	})

	require.NoError(t, m.UpdateConfig(map[string]any{"preset": Preset720p, "mirror": false, "quality": 90.0}))
	got := m.GetConfig()
	assert.Equal(t, 1280, got.Width)
	assert.Equal(t, 2, got.Device, "preset keeps the device")
	assert.False(t, got.Mirror)
	assert.Equal(t, 90, got.Quality)
	require.Len(t, applied, 1)
	assert.Equal(t, got, applied[0])

	assert.Equal(t, 1280.0, m.GetConfigJSON()["width"])
	assert.Equal(t, CustomPreset, m.GetConfigJSON()["preset"], "mirror and quality diverge from 720p")
}

func TestManager_TracksPreset(t *testing.T) {
	m := NewManager(DefaultConfig())
	assert.Equal(t, PresetDefault, m.Preset())

	require.NoError(t, m.UpdateConfig(map[string]any{"preset": PresetZoom2x}))
	assert.Equal(t, PresetZoom2x, m.Preset())
	assert.Equal(t, 2.0, m.GetConfig().ZoomLevel)

	require.NoError(t, m.UpdateConfig(map[string]any{"zoom_level": 1.0}))
	assert.Equal(t, PresetDefault, m.Preset(), "editing back to defaults matches the preset again")

	require.NoError(t, m.UpdateConfig(map[string]any{"framerate": 24}))
	assert.Equal(t, CustomPreset, m.Preset())
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager(DefaultConfig())
	before := m.GetConfig()

	assert.ErrorIs(t, m.UpdateConfig(map[string]any{"preset": "nope"}), ErrUnknownPreset)
	assert.Error(t, m.UpdateConfig(map[string]any{"width": 10}))
	assert.ErrorIs(t, m.UpdateConfig(map[string]any{"iso": 800}), ErrUnknownSetting)
	assert.ErrorIs(t, m.UpdateConfig(map[string]any{"mirror": "yes"}), ErrSettingType)
	assert.ErrorIs(t, m.UpdateConfig(map[string]any{"width": 640.5}), ErrSettingType)

	var se *SettingError
	require.ErrorAs(t, m.UpdateConfig(map[string]any{"quality": "high"}), &se)
	assert.Equal(t, "quality", se.Key)

	m.OnConfigChange(func(Config) error { return errors.New("device busy") })
	assert.ErrorContains(t, m.UpdateConfig(map[string]any{"zoom_level": 2}), "device busy")

	assert.Equal(t, before, m.GetConfig())
}
