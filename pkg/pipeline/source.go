package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/teslashibe/go-bodyscan/pkg/landmark"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

// Errors
var (
	// ErrSourceExhausted ends a run cleanly: a file or recording has no more
	// frames. io.EOF is treated the same way.
	ErrSourceExhausted = errors.New("pipeline: source exhausted")

	// ErrNotRunning is returned by requests that need the producer loop.
	ErrNotRunning = errors.New("pipeline: not running")

	// ErrAlreadyRunning is returned by a second concurrent Run.
	ErrAlreadyRunning = errors.New("pipeline: already running")
)

// Frame is one camera frame after detection.
type Frame struct {
	Seq      uint64
	Captured time.Time

	// JPEG is the encoded frame as shown to clients. May be nil. The runner
	// keeps a reference, so sources must not reuse the buffer.
	JPEG []byte

	// Landmarks is empty when no person was detected.
	Landmarks landmark.Set

	// Mask is the foreground probability mask at frame resolution. Nil when
	// segmentation produced nothing.
	Mask *silhouette.Mask
}

// Source produces detected frames in capture order. Next blocks until a
// frame is ready or ctx is done.
type Source interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// SilhouetteEncoder renders a mask as an image (PNG for the HTTP service).
type SilhouetteEncoder func(m *silhouette.Mask) ([]byte, error)

// Archive persists locked profiles.
type Archive interface {
	SaveProfile(ctx context.Context, p scan.Profile, silhouette []byte) error
}
