package pipeline

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"object-remover/internal/imaging"
	"object-remover/internal/opencv/conversion"
)

const jpegQuality = 95

type imageSaver struct {
	logger        Logger
	timingTracker TimingTracker
}

func NewSaver(log Logger, tracker TimingTracker) ImageSaver {
	return &imageSaver{logger: log, timingTracker: tracker}
}

// SaveToWriter encodes img as png, jpeg, bmp or tiff. An empty format means png.
func (s *imageSaver) SaveToWriter(writer io.Writer, img *imaging.Image, format string) error {
	if img == nil {
		return fmt.Errorf("no image data to save")
	}

	ctx := s.timingTracker.StartTiming("save_to_writer")
	defer s.timingTracker.EndTiming(ctx)

	saveFormat := strings.ToLower(format)
	if saveFormat == "" {
		saveFormat = "png"
	}

	s.logger.Debug("ImageSaver", "saving image", map[string]interface{}{
		"format": saveFormat,
		"width":  img.Width(),
		"height": img.Height(),
	})

	rgba := conversion.ToImage(img)

	var err error
	switch saveFormat {
	case "jpeg", "jpg":
		err = jpeg.Encode(writer, rgba, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(writer, rgba)
	case "bmp":
		err = bmp.Encode(writer, rgba)
	case "tiff", "tif":
		err = tiff.Encode(writer, rgba, &tiff.Options{Compression: tiff.Deflate})
	default:
		s.logger.Warning("ImageSaver", "format not supported, using PNG", map[string]interface{}{
			"requested_format": strings.ToUpper(saveFormat),
		})
		err = png.Encode(writer, rgba)
	}

	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": saveFormat,
		})
		return err
	}

	s.logger.Info("ImageSaver", "image saved", map[string]interface{}{
		"format": saveFormat,
	})

	return nil
}

// SaveToPath writes img with the OpenCV codec chosen by the file extension,
// falling back to the Go encoders when OpenCV cannot write it.
func (s *imageSaver) SaveToPath(path string, img *imaging.Image) error {
	if img == nil {
		return fmt.Errorf("no image data to save")
	}
	if path == "" {
		return fmt.Errorf("output path is empty")
	}

	ctx := s.timingTracker.StartTiming("save_to_path")
	defer s.timingTracker.EndTiming(ctx)

	mat, err := conversion.ToMat(img)
	if err != nil {
		return fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	if openCVWritable(filepath.Ext(path)) && gocv.IMWrite(path, mat) {
		s.logger.Info("ImageSaver", "image written", map[string]interface{}{
			"path":   path,
			"width":  img.Width(),
			"height": img.Height(),
		})
		return nil
	}

	s.logger.Warning("ImageSaver", "OpenCV could not write image, trying Go encoders", map[string]interface{}{
		"path": path,
	})

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := s.SaveToWriter(file, img, formatFromExtension(filepath.Ext(path))); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}

func openCVWritable(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return true
	default:
		return false
	}
}

func formatFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "png"
	}
}
