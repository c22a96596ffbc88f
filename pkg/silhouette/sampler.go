package silhouette

// DefaultMinColumns is the fewest foreground pixels a row needs before its
// width is trusted.
const DefaultMinColumns = 20

// Sampler measures the horizontal extent of the foreground on a mask row.
type Sampler struct {
	Threshold  float32 // Foreground iff probability > Threshold
	MinColumns int     // Rows with fewer foreground pixels yield no reading
}

// DefaultSampler returns the sampler used by the scanner.
func DefaultSampler() Sampler {
	return Sampler{
		Threshold:  DefaultThreshold,
		MinColumns: DefaultMinColumns,
	}
}

// Width returns the distance between the leftmost and rightmost foreground
// columns on row y. The row index is clamped into the mask. ok is false when
// the row holds fewer than MinColumns foreground pixels (occlusion, bad
// segmentation, subject out of frame).
//
// The span between extremes is used rather than a pixel count so holes in
// the segmentation do not shrink the measured width.
func (s Sampler) Width(m *Mask, y int) (width int, ok bool) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return 0, false
	}
	y = clampRow(y, m.Height)

	first, last, count := -1, -1, 0
	for x, v := range m.Row(y) {
		if v <= s.Threshold {
			continue
		}
		if first < 0 {
			first = x
		}
		last = x
		count++
	}
	if count < s.MinColumns {
		return 0, false
	}
	return last - first, true
}

// ForegroundColumns counts foreground pixels on row y (clamped).
func (s Sampler) ForegroundColumns(m *Mask, y int) int {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return 0
	}
	n := 0
	for _, v := range m.Row(clampRow(y, m.Height)) {
		if v > s.Threshold {
			n++
		}
	}
	return n
}

func clampRow(y, height int) int {
	if y < 0 {
		return 0
	}
	if y > height-1 {
		return height - 1
	}
	return y
}
