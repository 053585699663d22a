package pipeline

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"object-remover/internal/imaging"
)

// RegionStats summarises the colour of a rectangle, per BGR channel.
type RegionStats struct {
	Region image.Rectangle
	Pixels int
	Mean   [imaging.Channels]float64
	StdDev [imaging.Channels]float64
}

// CalculateRegionStats clips r to img and computes channel means and
// standard deviations.
func CalculateRegionStats(img *imaging.Image, r image.Rectangle) (*RegionStats, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region does not overlap the %dx%d image", img.Width(), img.Height())
	}

	n := r.Dx() * r.Dy()
	channels := make([][]float64, imaging.Channels)
	for ch := range channels {
		channels[ch] = make([]float64, 0, n)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.At(x, y)
			for ch := range channels {
				channels[ch] = append(channels[ch], float64(c[ch]))
			}
		}
	}

	stats := &RegionStats{Region: r, Pixels: n}
	for ch, values := range channels {
		mean, std := stat.MeanStdDev(values, nil)
		stats.Mean[ch] = mean
		if !math.IsNaN(std) {
			stats.StdDev[ch] = std
		}
	}
	return stats, nil
}

// QualityMetrics compares a result against a reference image.
type QualityMetrics struct {
	MSE           float64
	PSNR          float64
	ChangedPixels int
}

// CalculateQualityMetrics computes MSE over all channels, PSNR in dB
// (+Inf for identical images) and the number of differing pixels.
func CalculateQualityMetrics(reference, processed *imaging.Image) (*QualityMetrics, error) {
	if reference == nil || processed == nil {
		return nil, fmt.Errorf("reference and processed images cannot be nil")
	}
	if reference.Width() != processed.Width() || reference.Height() != processed.Height() {
		return nil, fmt.Errorf("image dimensions must match: reference %dx%d, processed %dx%d",
			reference.Width(), reference.Height(), processed.Width(), processed.Height())
	}

	a, b := reference.Pix(), processed.Pix()
	sq := make([]float64, len(a))
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sq[i] = d * d
	}

	metrics := &QualityMetrics{MSE: stat.Mean(sq, nil)}
	for i := 0; i < len(a); i += imaging.Channels {
		if a[i] != b[i] || a[i+1] != b[i+1] || a[i+2] != b[i+2] {
			metrics.ChangedPixels++
		}
	}

	if metrics.MSE == 0 {
		metrics.PSNR = math.Inf(1)
	} else {
		metrics.PSNR = 10 * math.Log10(255*255/metrics.MSE)
	}
	return metrics, nil
}
