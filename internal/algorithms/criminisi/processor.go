// Package criminisi implements exemplar-based inpainting with priority-driven
// fill order (Criminisi, Pérez and Toyama). The hole is filled from its
// boundary inward, one patch per iteration, always completing the boundary
// patch with the highest confidence times isophote strength first.
package criminisi

import (
	"context"
	"fmt"
	"time"

	"object-remover/internal/algorithms"
	"object-remover/internal/imaging"
	"object-remover/internal/logger"
	"object-remover/internal/memory"
	"object-remover/internal/timing"
)

const (
	stageFront    = "front"
	stagePriority = "priority"
	stageSearch   = "search"
	stageUpdate   = "update"
)

var _ algorithms.Inpainter = (*Processor)(nil)

type Processor struct {
	name   string
	config Config
	logger logger.Logger
	memory *memory.Manager
}

type Option func(*Processor)

func WithLogger(log logger.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.logger = log
		}
	}
}

// WithMemory shares a buffer pool for the per-run maps.
func WithMemory(mem *memory.Manager) Option {
	return func(p *Processor) {
		if mem != nil {
			p.memory = mem
		}
	}
}

func NewProcessor(cfg Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Processor{
		name:   "Criminisi",
		config: cfg,
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.memory == nil {
		p.memory = memory.NewManager(p.logger)
	}
	return p, nil
}

func (p *Processor) Name() string {
	return p.name
}

func (p *Processor) Config() Config {
	return p.config
}

// Inpaint fills mask's holes in img. Both are mutated in place. A Result is
// returned even on failure; img then holds the partial fill.
func (p *Processor) Inpaint(ctx context.Context, img *imaging.Image, mask *imaging.Mask, progress algorithms.ProgressFunc) (*algorithms.Result, error) {
	if img == nil || mask == nil {
		return nil, fmt.Errorf("%w: image and mask are required", algorithms.ErrInvalidInput)
	}
	w, h := img.Width(), img.Height()
	if mask.Width() != w || mask.Height() != h {
		return nil, fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			algorithms.ErrInvalidInput, mask.Width(), mask.Height(), w, h)
	}

	bank, err := NewMapBank(p.memory, w, h)
	if err != nil {
		return nil, fmt.Errorf("map bank allocation failed: %w", err)
	}
	defer bank.Release()
	bank.Reset(mask)

	r := p.config.Radius()
	workers := p.config.workerCount()
	budget := p.config.iterationBudget(w, h)
	search := exemplarSearch{
		radius:  r,
		stride:  p.config.SearchStride.Resolve(w, h),
		workers: workers,
	}

	tracker := timing.NewTracker()
	total := mask.HoleCount()
	result := &algorithms.Result{Status: algorithms.StatusFailed}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		result.Remaining = mask.HoleCount()
		result.Stages = tracker.Snapshot()
	}()

	p.logger.Info(p.name, "fill started", map[string]interface{}{
		"width":       w,
		"height":      h,
		"hole_pixels": total,
		"patch_size":  p.config.PatchSize,
		"stride":      search.stride,
		"workers":     workers,
		"budget":      budget,
	})

	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("fill interrupted after %d iterations: %w", result.Iterations, err)
		}

		stage := tracker.StartTiming(stageFront)
		front, err := DetectFront(mask)
		tracker.EndTiming(stage)
		if err != nil {
			return result, fmt.Errorf("fill front detection failed: %w", err)
		}
		if result.Iterations == 0 {
			result.Components = len(front.Components)
		}

		if front.Empty() {
			if !mask.Empty() {
				return result, fmt.Errorf("%w: %d hole pixels have no valid neighbour", algorithms.ErrNoExemplarFound, mask.HoleCount())
			}
			result.Status = algorithms.StatusCompleted
			p.logger.Info(p.name, "fill completed", map[string]interface{}{
				"iterations": result.Iterations,
				"filled":     result.Filled,
				"duration":   time.Since(start).String(),
			})
			return result, nil
		}

		if result.Iterations >= budget {
			p.logger.Warning(p.name, "iteration budget exhausted", map[string]interface{}{
				"budget":    budget,
				"remaining": mask.HoleCount(),
			})
			return result, fmt.Errorf("%w: %d of %d hole pixels left after %d iterations",
				algorithms.ErrNonConvergence, mask.HoleCount(), total, result.Iterations)
		}

		stage = tracker.StartTiming(stagePriority)
		scores, err := scoreFront(ctx, img, bank, front.Points(), r, workers)
		if err != nil {
			tracker.EndTiming(stage)
			return result, fmt.Errorf("priority evaluation failed: %w", err)
		}
		anchor := scores[selectAnchor(scores)]
		bank.record(scores)
		tracker.EndTiming(stage)

		stage = tracker.StartTiming(stageSearch)
		win := windowAt(anchor.point, r, w, h)
		target := extractTarget(img, mask, anchor.point, win)
		source, ssd, err := search.find(ctx, img, newHoleTable(mask), target)
		tracker.EndTiming(stage)
		if err != nil {
			p.logger.Error(p.name, err, map[string]interface{}{
				"iteration": result.Iterations,
				"anchor":    anchor.point.String(),
			})
			return result, err
		}

		stage = tracker.StartTiming(stageUpdate)
		filled := applyPatch(img, mask, bank, anchor.point, source, win, anchor.confidence)
		tracker.EndTiming(stage)

		result.Iterations++
		result.Filled += filled

		p.logger.Debug(p.name, "patch filled", map[string]interface{}{
			"iteration": result.Iterations,
			"anchor":    anchor.point.String(),
			"source":    source.String(),
			"priority":  anchor.priority,
			"ssd":       ssd,
			"filled":    filled,
			"clipped":   !win.full(r),
			"remaining": mask.HoleCount(),
		})

		if progress != nil {
			progress(algorithms.Progress{
				Iteration: result.Iterations,
				Filled:    result.Filled,
				Remaining: mask.HoleCount(),
				Total:     total,
			})
		}
	}
}
