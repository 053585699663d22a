// Package app runs object-removal jobs described by config.Job.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"object-remover/internal/algorithms"
	"object-remover/internal/config"
	"object-remover/internal/imaging"
	"object-remover/internal/inpainter"
	"object-remover/internal/logger"
	"object-remover/internal/pipeline"
)

const (
	AppName    = "object-remover"
	AppVersion = "1.0.0"
)

// ErrExportFailed reports that the fill ran but the output could not be written.
var ErrExportFailed = errors.New("export failed")

type Application struct {
	job       *config.Job
	engine    *inpainter.Engine
	logger    logger.Logger
	lifecycle *Lifecycle
}

// Report summarises one job run.
type Report struct {
	Input      string
	Output     string
	HoleBounds image.Rectangle
	HolePixels int
	Fill       *algorithms.Result
	Region     *pipeline.RegionStats
	Quality    *pipeline.QualityMetrics
	Elapsed    time.Duration
}

func NewApplication(job *config.Job, log logger.Logger) (*Application, error) {
	if job == nil {
		return nil, fmt.Errorf("%w: job is nil", algorithms.ErrInvalidInput)
	}
	if log == nil {
		log = logger.NewNop()
	}

	handlers := NewHandlers(log)
	engine, err := inpainter.New(
		inpainter.WithLogger(log),
		inpainter.WithConfig(job.EngineConfig()),
		inpainter.WithProgress(handlers.HandleProgress),
	)
	if err != nil {
		return nil, err
	}

	log.Info("Application", "job prepared", map[string]interface{}{
		"version":    AppVersion,
		"input":      job.Input,
		"output":     job.Output,
		"holes":      len(job.Holes),
		"polygons":   len(job.Polygons),
		"mask":       job.Mask,
		"patch_size": job.PatchSize,
		"stride":     job.SearchStride.String(),
	})

	return &Application{
		job:       job,
		engine:    engine,
		logger:    log,
		lifecycle: NewLifecycle(engine, log),
	}, nil
}

func (a *Application) Lifecycle() *Lifecycle {
	return a.lifecycle
}

// Run loads the input, marks the hole, fills it and writes the output. A
// partial fill (ErrNonConvergence) is still exported before the error is
// returned.
func (a *Application) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{Input: a.job.Input, Output: a.job.Output}

	if err := a.engine.LoadFile(a.job.Input); err != nil {
		return report, fmt.Errorf("load %s: %w", a.job.Input, err)
	}
	original := a.engine.Result()

	if err := a.markHoles(); err != nil {
		return report, err
	}
	mask := a.engine.HoleMask()
	report.HoleBounds = mask.HoleBounds()
	report.HolePixels = mask.HoleCount()
	if mask.Empty() {
		a.logger.Warning("Application", "job marks no hole pixels, output equals input", map[string]interface{}{
			"input": a.job.Input,
		})
	}

	fill, fillErr := a.engine.Process(ctx)
	report.Fill = fill
	if fillErr != nil && !errors.Is(fillErr, algorithms.ErrNonConvergence) {
		report.Elapsed = time.Since(start)
		return report, fmt.Errorf("fill: %w", fillErr)
	}

	if err := os.MkdirAll(filepath.Dir(a.job.Output), 0o755); err != nil {
		return report, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if !a.engine.ExportToFile(a.job.Output) {
		return report, fmt.Errorf("%w: %s", ErrExportFailed, a.job.Output)
	}

	a.measure(report, original)
	report.Elapsed = time.Since(start)

	fields := map[string]interface{}{
		"output":      a.job.Output,
		"hole_pixels": report.HolePixels,
		"elapsed":     report.Elapsed.String(),
	}
	if fill != nil {
		fields["iterations"] = fill.Iterations
		fields["components"] = fill.Components
	}
	if report.Quality != nil {
		fields["changed_pixels"] = report.Quality.ChangedPixels
		fields["psnr_db"] = report.Quality.PSNR
	}
	a.logger.Info("Application", "job finished", fields)

	if fillErr != nil {
		return report, fmt.Errorf("fill: %w", fillErr)
	}
	return report, nil
}

func (a *Application) markHoles() error {
	if a.job.Mask != "" {
		if err := a.engine.LoadHoleMask(a.job.Mask); err != nil {
			return fmt.Errorf("mask %s: %w", a.job.Mask, err)
		}
	}
	for i, h := range a.job.Holes {
		if _, err := a.engine.AddHoleRectangle(h.X, h.Y, h.Width, h.Height); err != nil {
			return fmt.Errorf("holes[%d]: %w", i, err)
		}
	}
	for i, p := range a.job.Polygons {
		if err := a.engine.AddHolePolygon(p.Points()); err != nil {
			return fmt.Errorf("polygons[%d]: %w", i, err)
		}
	}
	return nil
}

// measure records colour statistics of the filled region and how far the
// result moved from the input. Failures only cost the metrics.
func (a *Application) measure(report *Report, original *imaging.Image) {
	result := a.engine.Result()

	if !report.HoleBounds.Empty() {
		region, err := pipeline.CalculateRegionStats(result, report.HoleBounds)
		if err != nil {
			a.logger.Warning("Application", "region statistics unavailable", map[string]interface{}{"error": err})
		}
		report.Region = region
	}

	quality, err := pipeline.CalculateQualityMetrics(original, result)
	if err != nil {
		a.logger.Warning("Application", "quality metrics unavailable", map[string]interface{}{"error": err})
	}
	report.Quality = quality
}
