package vision

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-bodyscan/pkg/debug"
	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

// SegmenterConfig holds segmentation model configuration
type SegmenterConfig struct {
	ModelPath   string
	InputWidth  int
	InputHeight int
}

// DefaultSegmenterConfig returns defaults for the 256x256 selfie
// segmentation model (landscape variant works too at 256x144).
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		ModelPath:   "models/selfie_segmentation.onnx",
		InputWidth:  256,
		InputHeight: 256,
	}
}

// Segmenter produces a per-pixel person probability mask.
type Segmenter struct {
	net    gocv.Net
	config SegmenterConfig
	mu     sync.Mutex // Protects inference
}

// NewSegmenter loads the ONNX segmentation model.
func NewSegmenter(cfg SegmenterConfig) (*Segmenter, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("vision: failed to load segmentation model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Segmenter{net: net, config: cfg}, nil
}

// Segment returns the foreground mask for a BGR frame, resized to the
// frame's dimensions.
func (s *Segmenter) Segment(img gocv.Mat) (*silhouette.Mask, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	size := image.Pt(s.config.InputWidth, s.config.InputHeight)
	blob := gocv.BlobFromImage(img, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("vision: segmentation output: %w", err)
	}

	m, err := MaskFromFloats(data, s.config.InputWidth, s.config.InputHeight)
	if err != nil {
		return nil, err
	}
	debug.Frame("segmented", "input", size, "frame_w", img.Cols(), "frame_h", img.Rows())
	return m.Resize(img.Cols(), img.Rows()), nil
}

// Close releases the model.
func (s *Segmenter) Close() error {
	return s.net.Close()
}

// MaskFromFloats builds a width x height mask from a row-major probability
// tensor. Single-channel layouts (1x1xHxW, 1xHxWx1) share this order.
func MaskFromFloats(data []float32, width, height int) (*silhouette.Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, silhouette.ErrEmptyMask
	}
	if len(data) < width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", silhouette.ErrShape, len(data), width, height)
	}
	m := silhouette.New(width, height)
	copy(m.Data, data[:width*height])
	return m, nil
}
