package scan

import "math"

// BodyShape is the discrete shape category derived from the two ratios.
type BodyShape string

// Shape categories.
const (
	InvertedTriangle BodyShape = "Inverted Triangle"
	Pear             BodyShape = "Pear"
	Hourglass        BodyShape = "Hourglass"
	Rectangle        BodyShape = "Rectangle"
	Balanced         BodyShape = "Balanced"
)

// Fit values.
const (
	TopRelaxed       = "relaxed"
	TopRegular       = "regular"
	WaistDefined     = "defined"
	WaistStraight    = "straight"
	BottomFlowy      = "flowy"
	BottomStructured = "structured"
)

// FitProfile is the garment-fit recommendation for a shape.
type FitProfile struct {
	TopFit    string `json:"top_fit"`
	WaistFit  string `json:"waist_fit"`
	BottomFit string `json:"bottom_fit"`
}

// Classify maps shoulder/hip (sr) and waist/hip (wr) ratios to a shape.
// Rules are evaluated in order and the first match wins. Ratio pairs no
// rule covers (for example a narrow-shouldered frame with a moderate waist)
// fall through to Balanced.
func Classify(sr, wr float64) BodyShape {
	switch {
	case sr > 1.25 && wr > 0.9:
		return InvertedTriangle
	case sr < 0.9 && wr > 0.9:
		return Pear
	case math.Abs(sr-1) < 0.12 && wr < 0.85:
		return Hourglass
	case math.Abs(sr-1) < 0.10 && wr > 0.9:
		return Rectangle
	default:
		return Balanced
	}
}

// Fit derives the fit profile. Each field is decided independently.
func Fit(sr, wr float64) FitProfile {
	p := FitProfile{
		TopFit:    TopRegular,
		WaistFit:  WaistStraight,
		BottomFit: BottomStructured,
	}
	if sr > 1.1 {
		p.TopFit = TopRelaxed
	}
	if wr < 0.85 {
		p.WaistFit = WaistDefined
	}
	if wr < 0.9 {
		p.BottomFit = BottomFlowy
	}
	return p
}
