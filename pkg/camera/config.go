// Package camera provides runtime-configurable capture settings for the
// scanner. The gocv capture device that applies them lives in pkg/vision.
package camera

import "errors"

// Errors
var (
	// ErrOpen is returned when the capture device cannot be opened.
	ErrOpen = errors.New("camera: cannot open device")

	// ErrEmptyFrame is returned when the device delivers no image.
	ErrEmptyFrame = errors.New("camera: empty frame")
)

// Config holds all camera configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	// === Device ===
	Device int `json:"device"` // OpenCV capture index

	// === Resolution ===
	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Target FPS
	Quality   int `json:"quality"`   // JPEG quality 1-100 for published frames

	// === Orientation ===
	// Mirror flips frames horizontally before detection so the subject sees
	// a selfie view. Landmarks and masks are taken from the flipped frame.
	Mirror bool `json:"mirror"`

	// === Exposure ===
	// Brightness and Exposure are passed through to the driver. Zero leaves
	// the driver default untouched.
	Brightness float64 `json:"brightness"`
	Exposure   float64 `json:"exposure"`

	// === Digital Zoom ===
	// ZoomLevel crops the frame center by this factor and scales back up
	// (1.0 to 4.0). Useful when the subject stands far from the camera.
	ZoomLevel float64 `json:"zoom_level"`
}

// Capture limits
const (
	MinWidth  = 160
	MaxWidth  = 3840
	MinHeight = 120
	MaxHeight = 2160
	MaxZoom   = 4.0
)

// DefaultConfig returns the standard scanning configuration: 640x480 at
// 30 FPS, mirrored.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     640,
		Height:    480,
		Framerate: 30,
		Quality:   85,

		Mirror: true,

		ZoomLevel: 1.0,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.Device < 0 {
		errs = append(errs, "device must not be negative")
	}

	// Resolution
	if c.Width < MinWidth || c.Width > MaxWidth {
		errs = append(errs, "width must be between 160 and 3840")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errs = append(errs, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errs = append(errs, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, "quality must be between 1 and 100")
	}

	// Zoom
	if c.ZoomLevel < 1.0 || c.ZoomLevel > MaxZoom {
		errs = append(errs, "zoom_level must be between 1.0 and 4.0")
	}

	return errs
}
