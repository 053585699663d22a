package conversion

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"object-remover/internal/imaging"
	"object-remover/internal/opencv/safe"
)

// MaskFromMat marks every non-zero pixel of an 8-bit Mat as a hole. Colour
// masks are reduced to gray first.
func MaskFromMat(src gocv.Mat) (*imaging.Mask, error) {
	if err := safe.ValidateMat(src, "mask extraction"); err != nil {
		return nil, err
	}

	gray := gocv.NewMat()
	defer gray.Close()

	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary)

	return imaging.NewMaskFromBytes(binary.ToBytes(), binary.Cols(), binary.Rows())
}

// PolygonMask rasterises a closed polygon into a hole mask. Vertices outside
// the image are clipped by the fill.
func PolygonMask(width, height int, points []image.Point) (*imaging.Mask, error) {
	if err := safe.ValidateDimensions(width, height, "polygon mask"); err != nil {
		return nil, err
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 points, got %d", len(points))
	}

	canvas := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC1)
	defer canvas.Close()
	canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{points})
	defer pv.Close()
	gocv.FillPoly(&canvas, pv, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	return imaging.NewMaskFromBytes(canvas.ToBytes(), width, height)
}
