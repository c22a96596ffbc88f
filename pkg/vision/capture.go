package vision

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-bodyscan/internal/log"
	"github.com/teslashibe/go-bodyscan/pkg/camera"
)

// Capture reads frames from a local camera and applies camera.Config
// settings: resolution, frame rate, exposure, mirroring and digital zoom.
type Capture struct {
	vc  *gocv.VideoCapture
	cfg camera.Config
	mu  sync.Mutex
}

// OpenCapture opens the configured device.
func OpenCapture(cfg camera.Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("vision: camera config: %v", errs)
	}
	vc, err := gocv.VideoCaptureDevice(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", camera.ErrOpen, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w %d", camera.ErrOpen, cfg.Device)
	}

	c := &Capture{vc: vc}
	c.apply(cfg)
	log.Info("camera opened", "device", cfg.Device, "width", cfg.Width, "height", cfg.Height, "fps", cfg.Framerate)
	return c, nil
}

// Apply changes capture settings on the open device. It matches the
// camera.Manager OnConfigChange signature.
func (c *Capture) Apply(cfg camera.Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("vision: camera config: %v", errs)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.Device != c.cfg.Device {
		return fmt.Errorf("vision: switching device %d -> %d needs a restart", c.cfg.Device, cfg.Device)
	}
	c.apply(cfg)
	return nil
}

func (c *Capture) apply(cfg camera.Config) {
	c.vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	c.vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	c.vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	c.vc.Set(gocv.VideoCaptureBufferSize, 1) // Always read the freshest frame
	if cfg.Brightness != 0 {
		c.vc.Set(gocv.VideoCaptureBrightness, cfg.Brightness)
	}
	if cfg.Exposure != 0 {
		c.vc.Set(gocv.VideoCaptureExposure, cfg.Exposure)
	}
	c.cfg = cfg
}

// Config returns the settings in effect.
func (c *Capture) Config() camera.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Read grabs the next frame into dst, mirrored and zoomed per the config.
func (c *Capture) Read(dst *gocv.Mat) error {
	c.mu.Lock()
	cfg := c.cfg
	ok := c.vc.Read(dst)
	c.mu.Unlock()

	if !ok || dst.Empty() {
		return camera.ErrEmptyFrame
	}

	if cfg.ZoomLevel > 1 {
		rect := ZoomRect(dst.Cols(), dst.Rows(), cfg.ZoomLevel)
		region := dst.Region(rect)
		zoomed := gocv.NewMat()
		gocv.Resize(region, &zoomed, image.Pt(dst.Cols(), dst.Rows()), 0, 0, gocv.InterpolationLinear)
		region.Close()
		zoomed.CopyTo(dst)
		zoomed.Close()
	}

	if cfg.Mirror {
		gocv.Flip(*dst, dst, 1)
	}
	return nil
}

// Close releases the device.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vc.Close()
}

// ZoomRect returns the centered crop for a digital zoom factor.
func ZoomRect(width, height int, zoom float64) image.Rectangle {
	if zoom <= 1 {
		return image.Rect(0, 0, width, height)
	}
	w := int(float64(width) / zoom)
	h := int(float64(height) / zoom)
	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
