package safe

import (
	"fmt"

	"gocv.io/x/gocv"

	"object-remover/internal/algorithms"
)

// MaxDimension bounds either side of an accepted image.
const MaxDimension = 32768

func ValidateMat(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("%w: Mat is empty for operation: %s", algorithms.ErrInvalidInput, operation)
	}

	if err := ValidateDimensions(mat.Cols(), mat.Rows(), operation); err != nil {
		return err
	}

	return ValidateMatType(mat.Type(), operation)
}

// ValidateColorConversion checks that src has the channel count code expects.
func ValidateColorConversion(src gocv.Mat, code gocv.ColorConversionCode) error {
	if err := ValidateMat(src, "CvtColor"); err != nil {
		return err
	}

	channels := src.Channels()

	switch code {
	case gocv.ColorBGRToGray, gocv.ColorBGRToRGB, gocv.ColorRGBToBGR:
		if channels != 3 {
			return fmt.Errorf("%w: conversion %d requires 3 channels, got %d", algorithms.ErrInvalidInput, int(code), channels)
		}
	case gocv.ColorGrayToBGR:
		if channels != 1 {
			return fmt.Errorf("%w: Gray to BGR conversion requires 1 channel, got %d", algorithms.ErrInvalidInput, channels)
		}
	case gocv.ColorBGRAToBGR, gocv.ColorBGRAToGray:
		if channels != 4 {
			return fmt.Errorf("%w: BGRA conversion requires 4 channels, got %d", algorithms.ErrInvalidInput, channels)
		}
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d for operation: %s", algorithms.ErrInvalidInput, width, height, operation)
	}

	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: dimensions %dx%d exceed maximum size for operation: %s", algorithms.ErrInvalidInput, width, height, operation)
	}

	return nil
}

// ValidateMatType accepts 8-bit unsigned Mats with 1, 3 or 4 channels.
func ValidateMatType(matType gocv.MatType, operation string) error {
	switch matType {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return nil
	default:
		return fmt.Errorf("%w: unsupported MatType %d for operation: %s", algorithms.ErrInvalidInput, int(matType), operation)
	}
}

func ValidateChannels(channels int, operation string) error {
	switch channels {
	case 1, 3, 4:
		return nil
	default:
		return fmt.Errorf("%w: %d channels not supported for operation: %s (want 1, 3 or 4)", algorithms.ErrInvalidInput, channels, operation)
	}
}

// ValidateBuffer checks an interleaved 8-bit pixel buffer against its declared shape.
func ValidateBuffer(pix []byte, width, height, channels int, operation string) error {
	if len(pix) == 0 {
		return fmt.Errorf("%w: empty pixel buffer for operation: %s", algorithms.ErrInvalidInput, operation)
	}
	if err := ValidateDimensions(width, height, operation); err != nil {
		return err
	}
	if err := ValidateChannels(channels, operation); err != nil {
		return err
	}
	if want := width * height * channels; len(pix) != want {
		return fmt.Errorf("%w: buffer holds %d bytes, %dx%dx%d needs %d for operation: %s",
			algorithms.ErrInvalidInput, len(pix), width, height, channels, want, operation)
	}
	return nil
}
