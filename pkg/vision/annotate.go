package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

// Overlay colors (BGR frames, RGBA values as gocv expects)
var (
	shoulderColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	waistColor    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	hipColor      = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	ratioColor    = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	scanningColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	lockedColor   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Annotate draws the scan overlay onto img: the three anchor rows (when
// ok), the preview ratios and shape while scanning, and the session status.
func Annotate(img *gocv.Mat, anchors scan.Anchors, ok bool, snap scan.Snapshot) {
	w := img.Cols()

	if ok && !snap.Locked() {
		for _, row := range []struct {
			y int
			c color.RGBA
		}{
			{anchors.Shoulder, shoulderColor},
			{anchors.Waist, waistColor},
			{anchors.Hip, hipColor},
		} {
			gocv.Line(img, image.Pt(0, row.y), image.Pt(w, row.y), row.c, 1)
		}
	}

	if p := snap.Preview; p != nil {
		text := fmt.Sprintf("SR:%.2f WR:%.2f", p.Ratios.ShoulderHip, p.Ratios.WaistHip)
		gocv.PutText(img, text, image.Pt(20, 90), gocv.FontHersheySimplex, 0.8, ratioColor, 2)
		gocv.PutText(img, string(p.BodyShape), image.Pt(20, 130), gocv.FontHersheySimplex, 0.9, scanningColor, 2)
	}

	status, c := "STATUS:"+string(snap.Status), scanningColor
	if snap.Locked() {
		c = lockedColor
	}
	gocv.PutText(img, status, image.Pt(20, 40), gocv.FontHersheySimplex, 1, c, 3)
}
