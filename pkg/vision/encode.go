package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

// EncodeJPEG encodes a BGR frame at the given quality (1-100).
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("vision: encode jpeg: %w", err)
	}
	defer buf.Close()
	return copyBytes(buf.GetBytes()), nil
}

// SilhouettePNG renders the mask as a white-on-black PNG: 255 where the
// foreground probability exceeds threshold.
func SilhouettePNG(m *silhouette.Mask, threshold float32) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	gray := m.Gray(threshold)

	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, gray.Pix)
	if err != nil {
		return nil, fmt.Errorf("vision: silhouette mat: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("vision: encode png: %w", err)
	}
	defer buf.Close()
	return copyBytes(buf.GetBytes()), nil
}

// SilhouetteEncoder returns a SilhouettePNG closure with a fixed threshold.
func SilhouetteEncoder(threshold float32) func(*silhouette.Mask) ([]byte, error) {
	return func(m *silhouette.Mask) ([]byte, error) {
		return SilhouettePNG(m, threshold)
	}
}

// copyBytes detaches data from native memory that is freed on Close.
func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
