package scan

import "github.com/teslashibe/go-bodyscan/pkg/silhouette"

// Config holds the tunable parameters of a scan session.
type Config struct {
	// Smoothing / lock gate
	WindowSize int // Samples kept per rolling window; lock needs full windows
	LockFrames int // Consecutive stable frames required before lock

	// Stability
	StabilityThreshold int // Max torso-center row change (px) between stable frames

	// Preview
	PreviewMinSamples int // Windows need more than this many samples for a preview

	// Silhouette sampling
	ForegroundThreshold float32 // Mask probability above which a pixel is foreground
	MinForegroundCols   int     // Fewer foreground pixels on a row means no reading

	// Anchors
	WaistBias float64 // Waist row position along hip→shoulder span (0 = hip, 1 = shoulder)
}

// DefaultConfig returns the scanner's standard tuning.
func DefaultConfig() Config {
	return Config{
		WindowSize: 15,
		LockFrames: 25,

		StabilityThreshold: 8,

		PreviewMinSamples: 5,

		ForegroundThreshold: silhouette.DefaultThreshold,
		MinForegroundCols:   silhouette.DefaultMinColumns,

		WaistBias: 0.15,
	}
}

// QuickConfig locks sooner with a shorter window. Useful for demos and for
// replaying short recordings; confidence is noisier.
func QuickConfig() Config {
	cfg := DefaultConfig()
	cfg.WindowSize = 8
	cfg.LockFrames = 12
	return cfg
}

// Validate reports the first out-of-range parameter.
func (c Config) Validate() error {
	switch {
	case c.WindowSize < 1:
		return &ConfigError{Field: "WindowSize", Reason: "must be at least 1"}
	case c.LockFrames < 1:
		return &ConfigError{Field: "LockFrames", Reason: "must be at least 1"}
	case c.StabilityThreshold < 1:
		return &ConfigError{Field: "StabilityThreshold", Reason: "must be at least 1 pixel"}
	case c.PreviewMinSamples < 0:
		return &ConfigError{Field: "PreviewMinSamples", Reason: "must not be negative"}
	case c.ForegroundThreshold < 0 || c.ForegroundThreshold >= 1:
		return &ConfigError{Field: "ForegroundThreshold", Reason: "must be in [0,1)"}
	case c.MinForegroundCols < 1:
		return &ConfigError{Field: "MinForegroundCols", Reason: "must be at least 1"}
	case c.WaistBias < 0 || c.WaistBias > 1:
		return &ConfigError{Field: "WaistBias", Reason: "must be in [0,1]"}
	}
	return nil
}

func (c Config) sampler() silhouette.Sampler {
	return silhouette.Sampler{
		Threshold:  c.ForegroundThreshold,
		MinColumns: c.MinForegroundCols,
	}
}
