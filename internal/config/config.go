// Package config loads go-bodyscan application settings.
//
// Sources, lowest precedence first: built-in defaults, an optional config
// file (bodyscan.toml, .yaml or .json in the working directory, or an
// explicit path), then BODYSCAN_* environment variables. Nested keys map to
// env names with "." replaced by "_", e.g. BODYSCAN_SCAN_LOCK_FRAMES.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-bodyscan/internal/log"
	"github.com/teslashibe/go-bodyscan/pkg/camera"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "BODYSCAN"

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Camera CameraConfig `mapstructure:"camera"`
	Models ModelsConfig `mapstructure:"models"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Debug  DebugConfig  `mapstructure:"debug"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
	AccessLog bool   `mapstructure:"access_log"`
}

// CameraConfig configures frame capture.
type CameraConfig struct {
	Device   int     `mapstructure:"device"`
	Width    int     `mapstructure:"width"`
	Height   int     `mapstructure:"height"`
	FPS      int     `mapstructure:"fps"`
	Quality  int     `mapstructure:"quality"`
	Mirror   bool    `mapstructure:"mirror"`
	Zoom     float64 `mapstructure:"zoom"`
	Annotate bool    `mapstructure:"annotate"` // Draw the scan overlay on published frames
}

// ModelsConfig points at the ONNX models used for detection.
type ModelsConfig struct {
	Pose         string  `mapstructure:"pose"`
	Segmentation string  `mapstructure:"segmentation"`
	PoseMinScore float64 `mapstructure:"pose_min_score"`
}

// ScanConfig mirrors scan.Config with file/env friendly names.
type ScanConfig struct {
	WindowSize           int     `mapstructure:"window_size"`
	LockFrames           int     `mapstructure:"lock_frames"`
	StabilityThreshold   int     `mapstructure:"stability_threshold"`
	PreviewMinSamples    int     `mapstructure:"preview_min_samples"`
	MinForegroundColumns int     `mapstructure:"min_foreground_columns"`
	ForegroundThreshold  float64 `mapstructure:"foreground_threshold"`
	WaistBias            float64 `mapstructure:"waist_bias"`
}

// StoreConfig configures the profile archive.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DebugConfig enables verbose traces.
type DebugConfig struct {
	Frames bool `mapstructure:"frames"`
}

// SetDefaults registers every key with its default value. AutomaticEnv only
// applies to keys viper knows about, so every key must appear here.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8000")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.access_log", false)

	v.SetDefault("camera.device", 0)
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.fps", 30)
	v.SetDefault("camera.quality", 85)
	v.SetDefault("camera.mirror", true)
	v.SetDefault("camera.zoom", 1.0)
	v.SetDefault("camera.annotate", true)

	v.SetDefault("models.pose", "models/movenet_singlepose_lightning.onnx")
	v.SetDefault("models.segmentation", "models/selfie_segmentation.onnx")
	v.SetDefault("models.pose_min_score", 0.6)

	d := scan.DefaultConfig()
	v.SetDefault("scan.window_size", d.WindowSize)
	v.SetDefault("scan.lock_frames", d.LockFrames)
	v.SetDefault("scan.stability_threshold", d.StabilityThreshold)
	v.SetDefault("scan.preview_min_samples", d.PreviewMinSamples)
	v.SetDefault("scan.min_foreground_columns", d.MinForegroundCols)
	v.SetDefault("scan.foreground_threshold", float64(d.ForegroundThreshold))
	v.SetDefault("scan.waist_bias", d.WaistBias)

	v.SetDefault("store.path", "bodyscan.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("debug.frames", false)
}

// New builds a viper instance with defaults, the config file and env
// bindings. An empty path searches the working directory for bodyscan.*;
// a missing file is not an error in that case. An explicit path must exist.
func New(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("bodyscan")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return v, nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is New followed by Decode.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is empty")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("config: camera size %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("config: camera.fps must be positive, got %d", c.Camera.FPS)
	}
	if c.Camera.Quality < 1 || c.Camera.Quality > 100 {
		return fmt.Errorf("config: camera.quality must be in [1,100], got %d", c.Camera.Quality)
	}
	if c.Camera.Zoom < 1 {
		return fmt.Errorf("config: camera.zoom must be at least 1, got %v", c.Camera.Zoom)
	}
	if c.Models.PoseMinScore < 0 || c.Models.PoseMinScore > 1 {
		return fmt.Errorf("config: models.pose_min_score must be in [0,1], got %v", c.Models.PoseMinScore)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.ScanParams().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// CameraParams converts the camera section to a camera.Config.
func (c *Config) CameraParams() camera.Config {
	cfg := camera.DefaultConfig()
	cfg.Device = c.Camera.Device
	cfg.Width = c.Camera.Width
	cfg.Height = c.Camera.Height
	cfg.Framerate = c.Camera.FPS
	cfg.Quality = c.Camera.Quality
	cfg.Mirror = c.Camera.Mirror
	cfg.ZoomLevel = c.Camera.Zoom
	return cfg
}

// ScanParams converts the scan section to a scan.Config.
func (c *Config) ScanParams() scan.Config {
	return scan.Config{
		WindowSize:          c.Scan.WindowSize,
		LockFrames:          c.Scan.LockFrames,
		StabilityThreshold:  c.Scan.StabilityThreshold,
		PreviewMinSamples:   c.Scan.PreviewMinSamples,
		ForegroundThreshold: float32(c.Scan.ForegroundThreshold),
		MinForegroundCols:   c.Scan.MinForegroundColumns,
		WaistBias:           c.Scan.WaistBias,
	}
}

// Watch calls onChange with the re-decoded config whenever the config file
// is written. It is a no-op when no file was loaded. Only runtime-safe
// settings (log level, debug flags) should be applied by the callback.
func Watch(v *viper.Viper, onChange func(*Config, error)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		log.Debug("config file changed", "file", e.Name, "op", e.Op.String())
		onChange(Decode(v))
	})
	v.WatchConfig()
}
