package scan

import "math"

// Dispersion sums the population standard deviations of the windows holding
// more than minSamples samples. ok is false when no window qualifies.
func Dispersion(minSamples int, windows ...*Window) (d float64, ok bool) {
	for _, w := range windows {
		if w == nil || w.Len() <= minSamples {
			continue
		}
		d += w.StdDev()
		ok = true
	}
	return d, ok
}

// Confidence scores a scan from 0 to 100. Pixel-width jitter across the
// retained windows lowers the score; a perfectly still subject scores 100.
// With no qualifying window the score is 0.
func Confidence(minSamples int, windows ...*Window) int {
	d, ok := Dispersion(minSamples, windows...)
	if !ok {
		return 0
	}
	c := 100 - int(math.Round(d))
	return max(0, min(100, c))
}
