// Package vision adapts OpenCV (gocv) capture and DNN inference to the
// scanner: pose landmarks, person segmentation, frame and silhouette
// encoding.
package vision

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-bodyscan/pkg/pipeline"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

// SourceConfig configures a camera-backed pipeline source.
type SourceConfig struct {
	Annotate bool // Draw the scan overlay on published frames

	// WaistBias positions the drawn waist row; match scan.Config.
	WaistBias float64
}

// Source captures frames, detects pose and silhouette and publishes each as
// a pipeline.Frame.
type Source struct {
	capture   *Capture
	pose      *PoseDetector
	segmenter *Segmenter
	cfg       SourceConfig

	// status supplies the snapshot drawn by the overlay; may be nil.
	status func() scan.Snapshot

	frame gocv.Mat
	seq   uint64
}

// NewSource assembles a source. It takes ownership of all three
// components and closes them in Close.
func NewSource(capture *Capture, pose *PoseDetector, segmenter *Segmenter, cfg SourceConfig) *Source {
	return &Source{
		capture:   capture,
		pose:      pose,
		segmenter: segmenter,
		cfg:       cfg,
		frame:     gocv.NewMat(),
	}
}

// SetStatus registers the snapshot provider used by the overlay.
func (s *Source) SetStatus(fn func() scan.Snapshot) {
	s.status = fn
}

// Next captures and analyzes one frame. A person-free frame is not an
// error: it yields empty landmarks.
func (s *Source) Next(ctx context.Context) (pipeline.Frame, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Frame{}, err
	}
	if err := s.capture.Read(&s.frame); err != nil {
		return pipeline.Frame{}, err
	}
	s.seq++
	f := pipeline.Frame{Seq: s.seq, Captured: time.Now()}

	set, err := s.pose.Detect(s.frame)
	if err != nil {
		return pipeline.Frame{}, fmt.Errorf("vision: pose: %w", err)
	}
	f.Landmarks = set

	mask, err := s.segmenter.Segment(s.frame)
	if err != nil {
		return pipeline.Frame{}, fmt.Errorf("vision: segment: %w", err)
	}
	f.Mask = mask

	if s.cfg.Annotate && s.status != nil {
		anchors, ok := scan.AnchorsFrom(set, s.frame.Rows(), s.cfg.WaistBias)
		Annotate(&s.frame, anchors, ok, s.status())
	}

	jpeg, err := EncodeJPEG(s.frame, s.capture.Config().Quality)
	if err != nil {
		return pipeline.Frame{}, err
	}
	f.JPEG = jpeg
	return f, nil
}

// Close releases the camera and models.
func (s *Source) Close() error {
	s.frame.Close()
	s.pose.Close()
	s.segmenter.Close()
	return s.capture.Close()
}
