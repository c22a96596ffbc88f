package scan

// WithinTolerance reports whether a move from prev to cur is below threshold.
func WithinTolerance(prev, cur, threshold int) bool {
	d := prev - cur
	if d < 0 {
		d = -d
	}
	return d < threshold
}

// Stability tracks the torso-center row across frames and counts how many
// consecutive frames the subject has held still.
//
// It is a plain hysteresis gate: any frame that moves by the threshold or
// more resets the streak. Buffered history is not touched.
type Stability struct {
	threshold int
	prev      int
	hasPrev   bool
	streak    int
}

// NewStability creates a detector with the given pixel threshold.
func NewStability(threshold int) *Stability {
	return &Stability{threshold: threshold}
}

// Observe records the torso-center row of a frame and reports whether the
// frame is stable. The first observation is always stable. The stored row
// is updated whatever the outcome.
func (s *Stability) Observe(center int) bool {
	stable := !s.hasPrev || WithinTolerance(s.prev, center, s.threshold)
	if stable {
		s.streak++
	} else {
		s.streak = 0
	}
	s.prev = center
	s.hasPrev = true
	return stable
}

// Streak returns the number of consecutive stable frames.
func (s *Stability) Streak() int { return s.streak }

// Previous returns the last observed row, if any.
func (s *Stability) Previous() (int, bool) { return s.prev, s.hasPrev }
