package scan

import (
	"time"

	"github.com/teslashibe/go-bodyscan/pkg/landmark"
	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

const (
	testFrameW = 640
	testFrameH = 400
)

// body describes a synthetic subject: anchor rows and silhouette widths.
type body struct {
	shoulderRow, hipRow int
	shoulderW, waistW   int
	hipW                int
}

func standingBody() body {
	return body{shoulderRow: 100, hipRow: 300, shoulderW: 200, waistW: 210, hipW: 260}
}

func (b body) shifted(dy int) body {
	b.shoulderRow += dy
	b.hipRow += dy
	return b
}

// rowY places a landmark in the middle of a pixel row so truncation lands
// on that row exactly.
func rowY(row int) float64 {
	return (float64(row) + 0.5) / testFrameH
}

func (b body) landmarks() landmark.Set {
	return landmark.Set{
		landmark.LeftShoulder:  {X: 0.35, Y: rowY(b.shoulderRow), Visibility: 0.99},
		landmark.RightShoulder: {X: 0.65, Y: rowY(b.shoulderRow), Visibility: 0.99},
		landmark.LeftHip:       {X: 0.40, Y: rowY(b.hipRow), Visibility: 0.99},
		landmark.RightHip:      {X: 0.60, Y: rowY(b.hipRow), Visibility: 0.99},
	}
}

// mask paints three horizontal bands so each anchor row, and a few rows
// around it, reads the configured width.
func (b body) mask() *silhouette.Mask {
	m := silhouette.New(testFrameW, testFrameH)
	waistRow := b.hipRow - int(0.15*float64(b.hipRow-b.shoulderRow))
	upper := (b.shoulderRow + waistRow) / 2
	lower := (waistRow + b.hipRow) / 2

	for y := 0; y < testFrameH; y++ {
		w := b.hipW
		switch {
		case y < upper:
			w = b.shoulderW
		case y < lower:
			w = b.waistW
		}
		from := testFrameW/2 - w/2
		m.FillRow(y, from, from+w, 0.95)
	}
	return m
}

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), step: step}
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func newTestSession(cfg Config) (*Session, *fakeClock) {
	clock := newFakeClock(100 * time.Millisecond)
	s, err := NewSession(cfg, WithClock(clock.Now), WithID("test-session"))
	if err != nil {
		panic(err)
	}
	return s, clock
}
