package vision

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-bodyscan/pkg/debug"
	"github.com/teslashibe/go-bodyscan/pkg/landmark"
)

// PoseConfig holds pose model configuration
type PoseConfig struct {
	ModelPath string
	InputSize int     // Square model input (192 lightning, 256 thunder)
	MinScore  float64 // Keypoints scoring below this are dropped
}

// DefaultPoseConfig returns defaults for MoveNet single-pose lightning.
func DefaultPoseConfig() PoseConfig {
	return PoseConfig{
		ModelPath: "models/movenet_singlepose_lightning.onnx",
		InputSize: 192,
		MinScore:  0.6,
	}
}

// moveNetValues is the output length: 17 keypoints x (y, x, score).
const moveNetValues = 17 * 3

// PoseDetector finds a single person's body landmarks.
type PoseDetector struct {
	net    gocv.Net
	config PoseConfig
	mu     sync.Mutex // Protects inference
}

// NewPoseDetector loads the ONNX pose model.
func NewPoseDetector(cfg PoseConfig) (*PoseDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("vision: failed to load pose model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &PoseDetector{net: net, config: cfg}, nil
}

// Detect returns the landmarks found in a BGR frame. The set is empty when
// nobody is visible.
func (d *PoseDetector) Detect(img gocv.Mat) (landmark.Set, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	size := image.Pt(d.config.InputSize, d.config.InputSize)
	blob := gocv.BlobFromImage(img, 1.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("vision: pose output: %w", err)
	}

	set, err := ParseMoveNet(data, d.config.MinScore)
	if err != nil {
		return nil, err
	}
	debug.Frame("pose detected", "keypoints", len(set))
	return set, nil
}

// Close releases the model.
func (d *PoseDetector) Close() error {
	return d.net.Close()
}

// ParseMoveNet converts a MoveNet [1,1,17,3] output (y, x, score per
// keypoint, normalized to the input image) to a landmark set. The square
// model input is stretched over the frame, so normalized coordinates map
// directly back to the frame.
func ParseMoveNet(data []float32, minScore float64) (landmark.Set, error) {
	if len(data) < moveNetValues {
		return nil, fmt.Errorf("vision: pose output has %d values, want %d", len(data), moveNetValues)
	}
	points := make([]landmark.Point, len(landmark.MoveNet))
	for i := range points {
		points[i] = landmark.Point{
			Y:          float64(data[i*3]),
			X:          float64(data[i*3+1]),
			Visibility: float64(data[i*3+2]),
		}
	}
	return landmark.FromIndexed(landmark.MoveNet[:], points, minScore), nil
}
