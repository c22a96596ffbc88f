package vision

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-bodyscan/pkg/landmark"
	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

func moveNetOutput(score float32) []float32 {
	data := make([]float32, moveNetValues)
	for i := 0; i < 17; i++ {
		data[i*3] = 0.1 + float32(i)*0.05 // y
		data[i*3+1] = 0.5                 // x
		data[i*3+2] = score
	}
	return data
}

func TestParseMoveNet(t *testing.T) {
	data := moveNetOutput(0.9)
	data[11*3+2] = 0.2 // left hip below threshold

	set, err := ParseMoveNet(data, 0.6)
	require.NoError(t, err)
	assert.Len(t, set, 16)

	p, ok := set.Get(landmark.LeftShoulder)
	require.True(t, ok)
	assert.InDelta(t, 0.35, p.Y, 1e-6)
	assert.InDelta(t, 0.5, p.X, 1e-6)
	assert.InDelta(t, 0.9, p.Visibility, 1e-6)

	_, ok = set.Get(landmark.LeftHip)
	assert.False(t, ok)
	assert.True(t, set.Has(landmark.RightHip))
}

func TestParseMoveNet_NoPerson(t *testing.T) {
	set, err := ParseMoveNet(moveNetOutput(0.05), 0.6)
	require.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestParseMoveNet_ShortOutput(t *testing.T) {
	_, err := ParseMoveNet(make([]float32, 10), 0.6)
	assert.Error(t, err)
}

func TestMaskFromFloats(t *testing.T) {
	data := []float32{0, 0.2, 0.9, 1, 0.7, 0.1}
	m, err := MaskFromFloats(data, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.Equal(t, float32(0.9), m.At(2, 0))
	assert.Equal(t, float32(1), m.At(0, 1))

	_, err = MaskFromFloats(data, 4, 2)
	assert.ErrorIs(t, err, silhouette.ErrShape)

	_, err = MaskFromFloats(data, 0, 2)
	assert.ErrorIs(t, err, silhouette.ErrEmptyMask)
}

func TestZoomRect(t *testing.T) {
	tests := []struct {
		name string
		zoom float64
		want image.Rectangle
	}{
		{"no zoom", 1, image.Rect(0, 0, 640, 480)},
		{"below one", 0.5, image.Rect(0, 0, 640, 480)},
		{"2x", 2, image.Rect(160, 120, 480, 360)},
		{"4x", 4, image.Rect(240, 180, 400, 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ZoomRect(640, 480, tt.zoom))
		})
	}
}

func TestSilhouettePNG(t *testing.T) {
	m := silhouette.New(8, 4)
	m.FillRow(1, 2, 6, 0.9)
	m.FillRow(2, 0, 8, 0.3)

	data, err := SilhouettePNG(m, 0.5)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	r, _, _, _ := img.At(3, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r, _, _, _ = img.At(3, 2).RGBA()
	assert.Equal(t, uint32(0), r)
}

func TestSilhouettePNG_InvalidMask(t *testing.T) {
	_, err := SilhouetteEncoder(0.5)(&silhouette.Mask{Width: 2, Height: 2})
	assert.Error(t, err)
}

func TestEncodeJPEG(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	_, err := EncodeJPEG(empty, 85)
	assert.ErrorIs(t, err, ErrEmptyImage)

	img := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer img.Close()
	data, err := EncodeJPEG(img, 85)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data[:2])
}

func TestNewPoseDetector_MissingModel(t *testing.T) {
	cfg := DefaultPoseConfig()
	cfg.ModelPath = "testdata/missing.onnx"
	_, err := NewPoseDetector(cfg)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestNewSegmenter_MissingModel(t *testing.T) {
	cfg := DefaultSegmenterConfig()
	cfg.ModelPath = "testdata/missing.onnx"
	_, err := NewSegmenter(cfg)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestPoseDetector_Model(t *testing.T) {
	cfg := DefaultPoseConfig()
	cfg.ModelPath = "../../" + cfg.ModelPath
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		t.Skip("pose model not present")
	}
	d, err := NewPoseDetector(cfg)
	require.NoError(t, err)
	defer d.Close()

	blank := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blank.Close()
	set, err := d.Detect(blank)
	require.NoError(t, err)
	for _, p := range set {
		assert.GreaterOrEqual(t, p.Visibility, cfg.MinScore)
	}
}
