package scan

import "math"

// Ratios are the smoothed, distance-invariant proportions of a scan.
type Ratios struct {
	ShoulderHip float64 `json:"shoulder_hip"`
	WaistHip    float64 `json:"waist_hip"`
}

// ComputeRatios divides the shoulder and waist window means by the hip
// window mean. ok is false when the hip mean is zero, which only happens
// with empty windows.
func ComputeRatios(ws Windows) (r Ratios, ok bool) {
	hip := ws.Hip.Mean()
	if hip == 0 {
		return Ratios{}, false
	}
	return Ratios{
		ShoulderHip: ws.Shoulder.Mean() / hip,
		WaistHip:    ws.Waist.Mean() / hip,
	}, true
}

// Rounded returns the ratios rounded to three decimals for reporting.
func (r Ratios) Rounded() Ratios {
	return Ratios{
		ShoulderHip: roundTo(r.ShoulderHip, 3),
		WaistHip:    roundTo(r.WaistHip, 3),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
