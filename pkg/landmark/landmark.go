// Package landmark holds named 2D body landmarks as returned by a pose model.
//
// Coordinates are normalized to the frame: X and Y run from 0 (left/top) to
// 1 (right/bottom). Points slightly outside [0,1] are legal; models report
// them when a joint sits just past the frame edge.
package landmark

import "math"

// Name identifies a body landmark.
type Name string

// Body landmarks. The names follow the 33-point MediaPipe pose topology;
// MoveNet's 17 points are a subset.
const (
	Nose           Name = "nose"
	LeftEyeInner   Name = "left_eye_inner"
	LeftEye        Name = "left_eye"
	LeftEyeOuter   Name = "left_eye_outer"
	RightEyeInner  Name = "right_eye_inner"
	RightEye       Name = "right_eye"
	RightEyeOuter  Name = "right_eye_outer"
	LeftEar        Name = "left_ear"
	RightEar       Name = "right_ear"
	MouthLeft      Name = "mouth_left"
	MouthRight     Name = "mouth_right"
	LeftShoulder   Name = "left_shoulder"
	RightShoulder  Name = "right_shoulder"
	LeftElbow      Name = "left_elbow"
	RightElbow     Name = "right_elbow"
	LeftWrist      Name = "left_wrist"
	RightWrist     Name = "right_wrist"
	LeftPinky      Name = "left_pinky"
	RightPinky     Name = "right_pinky"
	LeftIndex      Name = "left_index"
	RightIndex     Name = "right_index"
	LeftThumb      Name = "left_thumb"
	RightThumb     Name = "right_thumb"
	LeftHip        Name = "left_hip"
	RightHip       Name = "right_hip"
	LeftKnee       Name = "left_knee"
	RightKnee      Name = "right_knee"
	LeftAnkle      Name = "left_ankle"
	RightAnkle     Name = "right_ankle"
	LeftHeel       Name = "left_heel"
	RightHeel      Name = "right_heel"
	LeftFootIndex  Name = "left_foot_index"
	RightFootIndex Name = "right_foot_index"
)

// MediaPipe lists landmark names by MediaPipe pose index.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
var MediaPipe = [...]Name{
	Nose,
	LeftEyeInner, LeftEye, LeftEyeOuter,
	RightEyeInner, RightEye, RightEyeOuter,
	LeftEar, RightEar,
	MouthLeft, MouthRight,
	LeftShoulder, RightShoulder, // 11, 12
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftPinky, RightPinky,
	LeftIndex, RightIndex,
	LeftThumb, RightThumb,
	LeftHip, RightHip, // 23, 24
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

// MoveNet lists landmark names by MoveNet / COCO keypoint index.
var MoveNet = [...]Name{
	Nose,
	LeftEye, RightEye,
	LeftEar, RightEar,
	LeftShoulder, RightShoulder, // 5, 6
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip, // 11, 12
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// Point is a normalized 2D landmark position.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility,omitempty"` // Model score (0-1), 0 if not reported
}

// Set is the landmark output of one frame. A nil or empty Set means no
// subject was detected.
type Set map[Name]Point

// Get returns the named point.
func (s Set) Get(n Name) (Point, bool) {
	p, ok := s[n]
	return p, ok
}

// Has reports whether every named landmark is present.
func (s Set) Has(names ...Name) bool {
	for _, n := range names {
		if _, ok := s[n]; !ok {
			return false
		}
	}
	return true
}

// Empty reports whether the set carries no landmarks.
func (s Set) Empty() bool {
	return len(s) == 0
}

// FromIndexed builds a Set from points laid out in the order of names.
// Points whose visibility is below minVisibility are dropped; NaN
// coordinates are dropped as well.
func FromIndexed(names []Name, points []Point, minVisibility float64) Set {
	set := make(Set, len(points))
	for i, p := range points {
		if i >= len(names) {
			break
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		if p.Visibility < minVisibility {
			continue
		}
		set[names[i]] = p
	}
	return set
}

// Midpoint returns the point halfway between a and b. Visibility is the
// lower of the two.
func Midpoint(a, b Point) Point {
	return Point{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}

// Mirror flips the set horizontally, swapping X around the frame center.
// Left/right names are kept: they describe the subject, not the image side.
func (s Set) Mirror() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for n, p := range s {
		p.X = 1 - p.X
		out[n] = p
	}
	return out
}
