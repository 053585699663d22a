package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"object-remover/internal/imaging"
	"object-remover/internal/opencv/conversion"
)

const (
	decoderOpenCV = "opencv"
	decoderStdlib = "stdlib"
)

type imageLoader struct {
	logger        Logger
	timingTracker TimingTracker
}

func NewLoader(log Logger, tracker TimingTracker) ImageLoader {
	return &imageLoader{logger: log, timingTracker: tracker}
}

func (l *imageLoader) LoadFromPath(path string) (*ImageData, error) {
	ctx := l.timingTracker.StartTiming("load_from_path")
	defer l.timingTracker.EndTiming(ctx)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := l.LoadFromReader(file, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}
	data.Path = path
	return data, nil
}

func (l *imageLoader) LoadFromReader(reader io.Reader, format string) (*ImageData, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	l.logger.Debug("ImageLoader", "image data read", map[string]interface{}{
		"size_bytes": len(data),
		"extension":  format,
	})

	return l.LoadFromBytes(data, format)
}

// LoadFromBytes decodes with OpenCV first and falls back to the Go decoders
// for formats the OpenCV build lacks.
func (l *imageLoader) LoadFromBytes(data []byte, format string) (*ImageData, error) {
	ctx := l.timingTracker.StartTiming("load_from_bytes")
	defer l.timingTracker.EndTiming(ctx)

	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	imageData, cvErr := l.decodeOpenCV(data)
	if cvErr != nil {
		l.logger.Debug("ImageLoader", "OpenCV decode failed, trying Go decoders", map[string]interface{}{
			"error": cvErr.Error(),
		})

		var stdErr error
		imageData, stdErr = l.decodeStdlib(data)
		if stdErr != nil {
			return nil, fmt.Errorf("failed to decode image: opencv: %v; stdlib: %w", cvErr, stdErr)
		}
	}

	imageData.Format = determineActualFormat(format, imageData.Format)

	l.logger.Info("ImageLoader", "image loaded successfully", map[string]interface{}{
		"width":    imageData.Width(),
		"height":   imageData.Height(),
		"channels": imageData.Channels,
		"format":   imageData.Format,
		"decoder":  imageData.Decoder,
	})

	return imageData, nil
}

// LoadMask reads a mask image; any non-zero pixel is a hole.
func (l *imageLoader) LoadMask(path string) (*imaging.Mask, error) {
	ctx := l.timingTracker.StartTiming("load_mask")
	defer l.timingTracker.EndTiming(ctx)

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if !mat.Empty() {
		defer mat.Close()
		return conversion.MaskFromMat(mat)
	}
	mat.Close()

	data, err := l.LoadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load mask: %w", err)
	}
	img := data.Image
	mask, err := imaging.NewMask(img.Width(), img.Height())
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.At(x, y) != (imaging.BGR{}) {
				mask.Set(x, y, imaging.Hole)
			}
		}
	}
	return mask, nil
}

func (l *imageLoader) decodeOpenCV(data []byte) (*ImageData, error) {
	cvCtx := l.timingTracker.StartTiming("opencv_decode")
	defer l.timingTracker.EndTiming(cvCtx)

	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("OpenCV returned an empty Mat")
	}
	l.logger.Debug("ImageLoader", "OpenCV decoded image", conversion.GetMatProperties(mat).Fields())

	img, err := conversion.FromMat(mat)
	if err != nil {
		return nil, err
	}
	return &ImageData{Image: img, Channels: mat.Channels(), Decoder: decoderOpenCV}, nil
}

func (l *imageLoader) decodeStdlib(data []byte) (*ImageData, error) {
	stdCtx := l.timingTracker.StartTiming("stdlib_decode")
	defer l.timingTracker.EndTiming(stdCtx)

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	img, err := conversion.FromImage(decoded)
	if err != nil {
		return nil, err
	}

	channels := 3
	switch decoded.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		channels = 4
	}
	return &ImageData{Image: img, Channels: channels, Format: format, Decoder: decoderStdlib}, nil
}

func determineActualFormat(extension, decodedFormat string) string {
	switch extension {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		if decodedFormat != "" {
			return decodedFormat
		}
		return "unknown"
	}
}
