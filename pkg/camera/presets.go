package camera

// Preset names accepted by UpdateConfig.
const (
	PresetDefault = "default"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
	PresetFast    = "fast"
	PresetZoom2x  = "zoom2x"
	PresetRaw     = "raw"
)

// presetTable lists presets in display order. Each entry modifies
// DefaultConfig.
var presetTable = []struct {
	name   string
	modify func(*Config)
}{
	{PresetDefault, func(*Config) {}},
	// Sharper silhouette edges at the cost of segmentation time.
	{Preset720p, func(c *Config) { c.Width, c.Height = 1280, 720 }},
	// Detection can't keep up at 30 fps.
	{Preset1080p, func(c *Config) { c.Width, c.Height, c.Framerate = 1920, 1080, 15 }},
	// Slow machines: smaller frames, cheaper JPEGs.
	{PresetFast, func(c *Config) { c.Width, c.Height, c.Quality = 320, 240, 70 }},
	// Subject standing far from the camera.
	{PresetZoom2x, func(c *Config) { c.ZoomLevel = 2 }},
	// Rear-facing camera, no selfie flip.
	{PresetRaw, func(c *Config) { c.Mirror = false }},
}

// Presets returns every preset config by name.
func Presets() map[string]Config {
	out := make(map[string]Config, len(presetTable))
	for _, p := range presetTable {
		cfg := DefaultConfig()
		p.modify(&cfg)
		out[p.name] = cfg
	}
	return out
}

// PresetNames returns preset names in display order.
func PresetNames() []string {
	names := make([]string, len(presetTable))
	for i, p := range presetTable {
		names[i] = p.name
	}
	return names
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	for _, p := range presetTable {
		if p.name == name {
			cfg := DefaultConfig()
			p.modify(&cfg)
			return &cfg
		}
	}
	return nil
}
