// Package silhouette provides the foreground mask produced by a segmentation
// model and the row-width sampler used to measure the subject's outline.
package silhouette

import (
	"fmt"
	"image"
	"image/color"
)

// DefaultThreshold is the probability above which a mask pixel counts as
// foreground.
const DefaultThreshold float32 = 0.5

// Mask is a per-pixel foreground probability map in row-major order.
// Values are expected in [0,1].
type Mask struct {
	Width  int
	Height int
	Data   []float32
}

// New allocates an all-background mask.
func New(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

// FromRows builds a mask from a slice of equal-length rows.
func FromRows(rows [][]float32) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyMask
	}
	w := len(rows[0])
	m := New(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, y, len(row), w)
		}
		copy(m.Data[y*w:], row)
	}
	return m, nil
}

// Validate checks that the dimensions agree with the backing data.
func (m *Mask) Validate() error {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return ErrEmptyMask
	}
	if len(m.Data) != m.Width*m.Height {
		return fmt.Errorf("%w: %dx%d mask with %d values", ErrShape, m.Width, m.Height, len(m.Data))
	}
	return nil
}

// At returns the probability at (x, y). Out-of-range coordinates read as
// background.
func (m *Mask) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Data[y*m.Width+x]
}

// Set writes the probability at (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Data[y*m.Width+x] = v
}

// Row returns row y without copying. Callers must not modify it.
func (m *Mask) Row(y int) []float32 {
	return m.Data[y*m.Width : (y+1)*m.Width]
}

// FillRow marks columns [from, to] of row y with probability v.
func (m *Mask) FillRow(y, from, to int, v float32) {
	for x := from; x <= to; x++ {
		m.Set(x, y, v)
	}
}

// Gray rasterizes the mask into a binary silhouette: 255 where the
// probability exceeds threshold, 0 elsewhere.
func (m *Mask) Gray(threshold float32) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := m.Row(y)
		for x, v := range row {
			if v > threshold {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// Resize scales the mask to width x height using nearest-neighbour sampling.
// Segmentation models run at a fixed input size; the mask has to be brought
// back to frame size before rows can be compared with landmark rows.
func (m *Mask) Resize(width, height int) *Mask {
	if width == m.Width && height == m.Height {
		out := New(width, height)
		copy(out.Data, m.Data)
		return out
	}
	out := New(width, height)
	for y := 0; y < height; y++ {
		sy := y * m.Height / height
		src := m.Row(sy)
		dst := out.Data[y*width : (y+1)*width]
		for x := range dst {
			dst[x] = src[x*m.Width/width]
		}
	}
	return out
}

// FlipHorizontal mirrors the mask in place.
func (m *Mask) FlipHorizontal() {
	for y := 0; y < m.Height; y++ {
		row := m.Row(y)
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
}
