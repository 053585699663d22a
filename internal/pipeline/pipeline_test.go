package pipeline

import (
	"bytes"
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-remover/internal/imaging"
	"object-remover/internal/logger"
	"object-remover/internal/timing"
)

func newCodec() (ImageLoader, ImageSaver) {
	log := logger.NewNop()
	tracker := timing.NewTracker()
	return NewLoader(log, tracker), NewSaver(log, tracker)
}

func sampleImage(t *testing.T) *imaging.Image {
	t.Helper()
	img, err := imaging.NewUniform(16, 12, imaging.BGR{10, 200, 30})
	require.NoError(t, err)
	img.Fill(image.Rect(4, 4, 8, 8), imaging.BGR{250, 0, 125})
	return img
}

func TestSaveAndLoadPath(t *testing.T) {
	loader, saver := newCodec()
	img := sampleImage(t)

	for _, name := range []string{"out.png", "out.bmp", "out.tiff", "out.unknownext"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, saver.SaveToPath(path, img))

			data, err := loader.LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, path, data.Path)
			assert.Equal(t, 16, data.Width())
			assert.Equal(t, 12, data.Height())
			assert.True(t, img.Equal(data.Image), "lossless round trip")
		})
	}
}

func TestSaveToWriterFormats(t *testing.T) {
	loader, saver := newCodec()
	img := sampleImage(t)

	for _, format := range []string{"png", "bmp", "tiff", ""} {
		var buf bytes.Buffer
		require.NoError(t, saver.SaveToWriter(&buf, img, format), format)

		data, err := loader.LoadFromBytes(buf.Bytes(), "")
		require.NoError(t, err, format)
		assert.True(t, img.Equal(data.Image), format)
	}

	var buf bytes.Buffer
	require.NoError(t, saver.SaveToWriter(&buf, img, "jpeg"))
	data, err := loader.LoadFromBytes(buf.Bytes(), ".jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", data.Format)
}

func TestSaveRejectsMissingInput(t *testing.T) {
	_, saver := newCodec()

	assert.Error(t, saver.SaveToWriter(&bytes.Buffer{}, nil, "png"))
	assert.Error(t, saver.SaveToPath("", sampleImage(t)))
}

func TestLoadRejectsGarbage(t *testing.T) {
	loader, _ := newCodec()

	_, err := loader.LoadFromBytes([]byte("definitely not an image"), ".png")
	assert.Error(t, err)
	_, err = loader.LoadFromBytes(nil, ".png")
	assert.Error(t, err)
	_, err = loader.LoadFromPath(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadMask(t *testing.T) {
	loader, saver := newCodec()
	img, err := imaging.NewImage(10, 10)
	require.NoError(t, err)
	img.Fill(image.Rect(2, 3, 5, 7), imaging.BGR{255, 255, 255})

	path := filepath.Join(t.TempDir(), "mask.png")
	require.NoError(t, saver.SaveToPath(path, img))

	mask, err := loader.LoadMask(path)
	require.NoError(t, err)
	assert.Equal(t, 12, mask.HoleCount())
	assert.Equal(t, image.Rect(2, 3, 5, 7), mask.HoleBounds())
}

func TestDetermineActualFormat(t *testing.T) {
	assert.Equal(t, "tiff", determineActualFormat(".tif", ""))
	assert.Equal(t, "jpeg", determineActualFormat(".jpeg", "png"))
	assert.Equal(t, "png", determineActualFormat("", "png"))
	assert.Equal(t, "unknown", determineActualFormat(".raw", ""))
}

func TestRegionStats(t *testing.T) {
	img := sampleImage(t)

	stats, err := CalculateRegionStats(img, image.Rect(4, 4, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, 16, stats.Pixels)
	assert.InDelta(t, 250, stats.Mean[0], 1e-9)
	assert.InDelta(t, 0, stats.Mean[1], 1e-9)
	assert.InDelta(t, 0, stats.StdDev[2], 1e-9)

	clipped, err := CalculateRegionStats(img, image.Rect(14, 10, 40, 40))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(14, 10, 16, 12), clipped.Region)

	_, err = CalculateRegionStats(img, image.Rect(50, 50, 60, 60))
	assert.Error(t, err)
}

func TestQualityMetrics(t *testing.T) {
	a := sampleImage(t)
	b := a.Clone()

	same, err := CalculateQualityMetrics(a, b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(same.PSNR, 1))
	assert.Zero(t, same.ChangedPixels)

	b.Set(0, 0, imaging.BGR{20, 200, 30})
	diff, err := CalculateQualityMetrics(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, diff.ChangedPixels)
	assert.InDelta(t, 100.0/float64(16*12*3), diff.MSE, 1e-9)
	assert.Greater(t, diff.PSNR, 40.0)

	small, err := imaging.NewImage(2, 2)
	require.NoError(t, err)
	_, err = CalculateQualityMetrics(a, small)
	assert.Error(t, err)
}
