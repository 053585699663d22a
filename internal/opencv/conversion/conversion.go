package conversion

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"object-remover/internal/imaging"
	"object-remover/internal/opencv/safe"
)

// MatProperties describes a Mat for logging.
type MatProperties struct {
	Rows     int
	Cols     int
	Channels int
	Type     gocv.MatType
	DataType string
	Empty    bool
}

func GetMatProperties(mat gocv.Mat) MatProperties {
	if mat.Empty() {
		return MatProperties{Empty: true}
	}

	return MatProperties{
		Rows:     mat.Rows(),
		Cols:     mat.Cols(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
		DataType: dataTypeName(mat.Type()),
	}
}

// Fields renders the properties as structured log fields.
func (p MatProperties) Fields() map[string]interface{} {
	if p.Empty {
		return map[string]interface{}{"empty": true}
	}
	return map[string]interface{}{
		"rows":      p.Rows,
		"cols":      p.Cols,
		"channels":  p.Channels,
		"data_type": p.DataType,
	}
}

// FromBuffer normalises an interleaved 8-bit buffer with 1 (gray), 3 (BGR) or
// 4 (BGRA) channels into a BGR image. The input is never retained.
func FromBuffer(pix []byte, width, height, channels int) (*imaging.Image, error) {
	if err := safe.ValidateBuffer(pix, width, height, channels, "buffer conversion"); err != nil {
		return nil, err
	}
	if channels == imaging.Channels {
		return imaging.NewImageFromBGR(pix, width, height)
	}

	mat, err := gocv.NewMatFromBytes(height, width, matTypeFor(channels), pix)
	if err != nil {
		return nil, fmt.Errorf("Mat creation failed: %w", err)
	}
	defer mat.Close()

	return FromMat(mat)
}

// FromMat copies an 8-bit Mat into a BGR image, converting gray and BGRA input.
func FromMat(src gocv.Mat) (*imaging.Image, error) {
	if err := safe.ValidateMat(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	bgr, err := toBGR(src)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	return imaging.NewImageFromBGR(bgr.ToBytes(), bgr.Cols(), bgr.Rows())
}

// ToMat returns a new CV_8UC3 Mat holding a copy of img. The caller owns it.
func ToMat(img *imaging.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("input image is nil")
	}

	view, err := gocv.NewMatFromBytes(img.Height(), img.Width(), gocv.MatTypeCV8UC3, img.Pix())
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("Mat creation failed: %w", err)
	}
	defer view.Close()

	return view.Clone(), nil
}

// FromImage converts any Go image to BGR, dropping alpha.
func FromImage(src image.Image) (*imaging.Image, error) {
	if src == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := src.Bounds()
	dst, err := imaging.NewImage(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	switch typed := src.(type) {
	case *image.RGBA:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				p := typed.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
				dst.Set(x, y, imaging.BGR{p.B, p.G, p.R})
			}
		}
	case *image.NRGBA:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				p := typed.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
				dst.Set(x, y, imaging.BGR{p.B, p.G, p.R})
			}
		}
	case *image.Gray:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				v := typed.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y
				dst.Set(x, y, imaging.BGR{v, v, v})
			}
		}
	default:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				r, g, b, _ := src.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				dst.Set(x, y, imaging.BGR{uint8(b >> 8), uint8(g >> 8), uint8(r >> 8)})
			}
		}
	}

	return dst, nil
}

// ToImage converts img to an opaque RGBA image for the standard encoders.
func ToImage(img *imaging.Image) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			c := img.At(x, y)
			out.SetRGBA(x, y, color.RGBA{R: c[2], G: c[1], B: c[0], A: 255})
		}
	}
	return out
}

// toBGR returns a 3-channel copy of src. The caller closes it.
func toBGR(src gocv.Mat) (gocv.Mat, error) {
	var code gocv.ColorConversionCode
	switch src.Channels() {
	case 3:
		return src.Clone(), nil
	case 1:
		code = gocv.ColorGrayToBGR
	case 4:
		code = gocv.ColorBGRAToBGR
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	if err := safe.ValidateColorConversion(src, code); err != nil {
		return gocv.NewMat(), err
	}

	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, code)
	if dst.Empty() {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("color conversion %d produced an empty Mat", int(code))
	}
	return dst, nil
}

func matTypeFor(channels int) gocv.MatType {
	switch channels {
	case 1:
		return gocv.MatTypeCV8UC1
	case 4:
		return gocv.MatTypeCV8UC4
	default:
		return gocv.MatTypeCV8UC3
	}
}

func dataTypeName(matType gocv.MatType) string {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return "8-bit unsigned single channel"
	case gocv.MatTypeCV8UC3:
		return "8-bit unsigned 3-channel"
	case gocv.MatTypeCV8UC4:
		return "8-bit unsigned 4-channel"
	case gocv.MatTypeCV16UC1:
		return "16-bit unsigned single channel"
	case gocv.MatTypeCV32FC1:
		return "32-bit float single channel"
	case gocv.MatTypeCV32FC3:
		return "32-bit float 3-channel"
	default:
		return fmt.Sprintf("unknown type %d", int(matType))
	}
}
