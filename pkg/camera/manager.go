package camera

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
)

// Update errors. Both are wrapped in a *SettingError naming the key.
var (
	ErrUnknownSetting = errors.New("camera: unknown setting")
	ErrUnknownPreset  = errors.New("camera: unknown preset")
	ErrSettingType    = errors.New("camera: wrong value type")
)

// SettingError reports a rejected key in an update.
type SettingError struct {
	Key   string
	Value any
	Err   error
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("%v: %s=%v", e.Err, e.Key, e.Value)
}

func (e *SettingError) Unwrap() error {
	return e.Err
}

// CustomPreset names a config that no longer matches the preset it was
// derived from.
const CustomPreset = "custom"

// setter applies one JSON value to a config field.
type setter func(cfg *Config, v any) bool

var setters = map[string]setter{
	"width":      intSetter(func(c *Config, v int) { c.Width = v }),
	"height":     intSetter(func(c *Config, v int) { c.Height = v }),
	"framerate":  intSetter(func(c *Config, v int) { c.Framerate = v }),
	"quality":    intSetter(func(c *Config, v int) { c.Quality = v }),
	"brightness": floatSetter(func(c *Config, v float64) { c.Brightness = v }),
	"exposure":   floatSetter(func(c *Config, v float64) { c.Exposure = v }),
	"zoom_level": floatSetter(func(c *Config, v float64) { c.ZoomLevel = v }),
	"mirror":     setMirror,
}

func setMirror(c *Config, v any) bool {
	b, ok := v.(bool)
	if ok {
		c.Mirror = b
	}
	return ok
}

// Manager holds the live capture settings. Changes go through the
// OnConfigChange callback first and are only kept when it succeeds.
type Manager struct {
	mu     sync.RWMutex
	config Config
	preset string

	onChange func(cfg Config) error
}

// NewManager creates a camera manager starting from cfg.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg, preset: matchPreset(cfg)}
}

// OnConfigChange registers the callback that applies a new config to the
// capture device.
func (m *Manager) OnConfigChange(fn func(cfg Config) error) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Preset returns the active preset name, or CustomPreset.
func (m *Manager) Preset() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preset
}

// SetConfig validates and applies cfg.
func (m *Manager) SetConfig(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply(cfg, matchPreset(cfg))
}

func (m *Manager) apply(cfg Config, preset string) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("camera: invalid settings: %v", errs)
	}
	if m.onChange != nil {
		if err := m.onChange(cfg); err != nil {
			return fmt.Errorf("camera: apply: %w", err)
		}
	}
	m.config = cfg
	m.preset = preset
	return nil
}

// UpdateConfig applies a partial update decoded from JSON. "preset" picks
// the base config (keeping the current device); the remaining keys
// override its fields. The update is all-or-nothing.
func (m *Manager) UpdateConfig(params map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.config
	if v, ok := params["preset"]; ok {
		name, _ := v.(string)
		p := GetPreset(name)
		if p == nil {
			return &SettingError{Key: "preset", Value: v, Err: ErrUnknownPreset}
		}
		device := cfg.Device
		cfg = *p
		cfg.Device = device
	}

	for key, value := range params {
		if key == "preset" {
			continue
		}
		set, ok := setters[key]
		if !ok {
			return &SettingError{Key: key, Value: value, Err: ErrUnknownSetting}
		}
		if !set(&cfg, value) {
			return &SettingError{Key: key, Value: value, Err: ErrSettingType}
		}
	}

	return m.apply(cfg, matchPreset(cfg))
}

// GetConfigJSON returns the current config plus the active preset name.
func (m *Manager) GetConfigJSON() map[string]any {
	m.mu.RLock()
	cfg, preset := m.config, m.preset
	m.mu.RUnlock()

	data, _ := json.Marshal(cfg)
	var out map[string]any
	json.Unmarshal(data, &out)
	out["preset"] = preset
	return out
}

// matchPreset names the preset cfg equals, ignoring the device.
func matchPreset(cfg Config) string {
	for _, name := range PresetNames() {
		p := GetPreset(name)
		p.Device = cfg.Device
		if *p == cfg {
			return name
		}
	}
	return CustomPreset
}

func intSetter(set func(*Config, int)) setter {
	return func(c *Config, v any) bool {
		n, ok := toInt(v)
		if ok {
			set(c, n)
		}
		return ok
	}
}

func floatSetter(set func(*Config, float64)) setter {
	return func(c *Config, v any) bool {
		f, ok := toFloat(v)
		if ok {
			set(c, f)
		}
		return ok
	}
}

// toInt accepts JSON numbers with no fractional part.
func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	}
	return 0, false
}
