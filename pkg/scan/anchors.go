package scan

import (
	"math"

	"github.com/teslashibe/go-bodyscan/pkg/landmark"
	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

// torsoLandmarks must all be present for a frame to count as a detection.
var torsoLandmarks = []landmark.Name{
	landmark.LeftShoulder, landmark.RightShoulder,
	landmark.LeftHip, landmark.RightHip,
}

// Anchors are the pixel rows sampled on one frame.
type Anchors struct {
	Shoulder int `json:"shoulder"`
	Waist    int `json:"waist"`
	Hip      int `json:"hip"`
	Center   int `json:"center"` // Torso center, used for stability
}

// Widths are the silhouette widths measured at the three anchor rows.
type Widths struct {
	Shoulder int `json:"shoulder"`
	Waist    int `json:"waist"`
	Hip      int `json:"hip"`
}

// AnchorsFrom derives anchor rows from normalized landmarks on a frame of
// the given pixel height. The shoulder and hip rows average the left and
// right landmarks. The waist row sits waistBias of the way from the hip row
// toward the shoulder row. ok is false when a torso landmark is missing.
func AnchorsFrom(set landmark.Set, frameHeight int, waistBias float64) (a Anchors, ok bool) {
	if frameHeight <= 0 || !set.Has(torsoLandmarks...) {
		return Anchors{}, false
	}
	h := float64(frameHeight)

	shoulder := landmark.Midpoint(set[landmark.LeftShoulder], set[landmark.RightShoulder])
	hip := landmark.Midpoint(set[landmark.LeftHip], set[landmark.RightHip])

	a.Shoulder = int(shoulder.Y * h)
	a.Hip = int(hip.Y * h)
	a.Waist = int(float64(a.Hip) - waistBias*float64(a.Hip-a.Shoulder))
	a.Center = int(math.Floor(float64(a.Shoulder+a.Hip) / 2))
	return a, true
}

// MeasureWidths samples the mask at each anchor row. ok is false unless all
// three rows produced a reading.
func MeasureWidths(s silhouette.Sampler, m *silhouette.Mask, a Anchors) (w Widths, ok bool) {
	var okS, okW, okH bool
	w.Shoulder, okS = s.Width(m, a.Shoulder)
	w.Hip, okH = s.Width(m, a.Hip)
	w.Waist, okW = s.Width(m, a.Waist)
	if !okS || !okW || !okH {
		return Widths{}, false
	}
	return w, true
}
