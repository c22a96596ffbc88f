package landmark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexTables(t *testing.T) {
	assert.Len(t, MediaPipe, 33)
	assert.Len(t, MoveNet, 17)

	// Torso anchors used for anchor-row derivation.
	assert.Equal(t, LeftShoulder, MediaPipe[11])
	assert.Equal(t, RightShoulder, MediaPipe[12])
	assert.Equal(t, LeftHip, MediaPipe[23])
	assert.Equal(t, RightHip, MediaPipe[24])

	assert.Equal(t, LeftShoulder, MoveNet[5])
	assert.Equal(t, RightShoulder, MoveNet[6])
	assert.Equal(t, LeftHip, MoveNet[11])
	assert.Equal(t, RightHip, MoveNet[12])
}

func TestFromIndexed(t *testing.T) {
	points := []Point{
		{X: 0.5, Y: 0.1, Visibility: 0.9},        // nose
		{X: 0.4, Y: 0.08, Visibility: 0.1},       // left eye, low score
		{X: math.NaN(), Y: 0.08, Visibility: 1},  // right eye, NaN
		{X: 0.45, Y: 0.09, Visibility: 0.8},      // left ear
		{X: 0.55, Y: 0.09, Visibility: 0.8},      // right ear
		{X: 0.35, Y: 0.3, Visibility: 0.95},      // left shoulder
		{X: 0.65, Y: 0.3, Visibility: 0.95},      // right shoulder
	}

	set := FromIndexed(MoveNet[:], points, 0.3)

	require.Len(t, set, 5)
	assert.True(t, set.Has(Nose, LeftShoulder, RightShoulder))
	assert.False(t, set.Has(LeftEye))
	assert.False(t, set.Has(RightEye))
	assert.False(t, set.Has(LeftHip))
}

func TestFromIndexed_MorePointsThanNames(t *testing.T) {
	set := FromIndexed([]Name{Nose}, []Point{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}}, 0)
	assert.Len(t, set, 1)
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(Point{X: 0.2, Y: 0.4, Visibility: 0.9}, Point{X: 0.6, Y: 0.8, Visibility: 0.5})
	assert.InDelta(t, 0.4, m.X, 1e-9)
	assert.InDelta(t, 0.6, m.Y, 1e-9)
	assert.Equal(t, 0.5, m.Visibility)
}

func TestSet_EmptyAndMirror(t *testing.T) {
	var none Set
	assert.True(t, none.Empty())
	assert.Nil(t, none.Mirror())

	set := Set{LeftShoulder: {X: 0.3, Y: 0.25}}
	assert.False(t, set.Empty())

	mirrored := set.Mirror()
	p, ok := mirrored.Get(LeftShoulder)
	require.True(t, ok)
	assert.InDelta(t, 0.7, p.X, 1e-9)
	assert.InDelta(t, 0.25, p.Y, 1e-9)

	// Original untouched.
	assert.InDelta(t, 0.3, set[LeftShoulder].X, 1e-9)
}
