package scan

import "gonum.org/v1/gonum/stat"

// Window is a fixed-capacity FIFO of width samples. Pushing onto a full
// window evicts the oldest sample.
type Window struct {
	buf   []float64
	start int // index of the oldest sample
	n     int
}

// NewWindow creates an empty window holding at most capacity samples.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest one when full.
func (w *Window) Push(v float64) {
	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = v
		w.n++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

// Len returns the number of samples held.
func (w *Window) Len() int { return w.n }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Full reports whether the window is at capacity.
func (w *Window) Full() bool { return w.n == len(w.buf) }

// Values returns the samples oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.n)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty window.
func (w *Window) Mean() float64 {
	if w.n == 0 {
		return 0
	}
	return stat.Mean(w.Values(), nil)
}

// StdDev returns the population standard deviation, or 0 for an empty window.
func (w *Window) StdDev() float64 {
	if w.n == 0 {
		return 0
	}
	return stat.PopStdDev(w.Values(), nil)
}

// Windows groups the three per-anchor series. They are only ever pushed
// together so index i of each series comes from the same frame.
type Windows struct {
	Shoulder *Window
	Waist    *Window
	Hip      *Window
}

// NewWindows allocates three empty windows of the given capacity.
func NewWindows(capacity int) Windows {
	return Windows{
		Shoulder: NewWindow(capacity),
		Waist:    NewWindow(capacity),
		Hip:      NewWindow(capacity),
	}
}

// Push appends one frame's widths to all three series.
func (ws Windows) Push(w Widths) {
	ws.Shoulder.Push(float64(w.Shoulder))
	ws.Waist.Push(float64(w.Waist))
	ws.Hip.Push(float64(w.Hip))
}

// Len returns the shortest series length.
func (ws Windows) Len() int {
	return min(ws.Shoulder.Len(), ws.Waist.Len(), ws.Hip.Len())
}

// Full reports whether all three series are at capacity.
func (ws Windows) Full() bool {
	return ws.Shoulder.Full() && ws.Waist.Full() && ws.Hip.Full()
}

// All returns the series in shoulder, hip, waist order.
func (ws Windows) All() []*Window {
	return []*Window{ws.Shoulder, ws.Hip, ws.Waist}
}
