// Package inpainter is the public object-removal API: load an image, mark the
// hole, configure and run the fill, then read or export the result.
package inpainter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"object-remover/internal/algorithms"
	"object-remover/internal/algorithms/criminisi"
	"object-remover/internal/imaging"
	"object-remover/internal/logger"
	"object-remover/internal/memory"
	"object-remover/internal/opencv/conversion"
	"object-remover/internal/pipeline"
	"object-remover/internal/timing"
)

const component = "Engine"

type State int32

const (
	StateUninitialized State = iota
	StateLoaded
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Engine owns one image and its hole mask. Operations are serialised, Process
// included; State can be read at any time.
type Engine struct {
	mu       sync.Mutex
	state    atomic.Int32
	working  *imaging.Image
	mask     *imaging.Mask
	config   criminisi.Config
	filler   algorithms.Inpainter
	progress algorithms.ProgressFunc
	last     *algorithms.Result

	logger logger.Logger
	memory *memory.Manager
	timing *timing.Tracker
	loader pipeline.ImageLoader
	saver  pipeline.ImageSaver
}

type Option func(*Engine)

func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// WithConfig replaces the default fill configuration. It is validated by New.
func WithConfig(cfg criminisi.Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithProgress registers a callback invoked after every filled patch. It runs
// while Process holds the engine, so it may only call State.
func WithProgress(fn algorithms.ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config: criminisi.DefaultConfig(),
		logger: logger.NewNop(),
		timing: timing.NewTracker(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.memory = memory.NewManager(e.logger)
	e.loader = pipeline.NewLoader(e.logger, e.timing)
	e.saver = pipeline.NewSaver(e.logger, e.timing)
	if err := e.applyConfig(e.config); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// LoadImage stores a normalised copy of an interleaved 1, 3 or 4 channel
// buffer and clears the hole.
func (e *Engine) LoadImage(pixels []byte, width, height, channels int) error {
	img, err := conversion.FromBuffer(pixels, width, height, channels)
	if err != nil {
		return e.fail("load image", err)
	}
	return e.install(img, "buffer")
}

func (e *Engine) LoadMat(m gocv.Mat) error {
	e.logger.Debug(component, "Mat received", conversion.GetMatProperties(m).Fields())
	img, err := conversion.FromMat(m)
	if err != nil {
		return e.fail("load Mat", err)
	}
	return e.install(img, "mat")
}

func (e *Engine) LoadFile(path string) error {
	data, err := e.loader.LoadFromPath(path)
	if err != nil {
		return e.fail("load file", fmt.Errorf("%w: %v", algorithms.ErrInvalidInput, err))
	}
	return e.install(data.Image, path)
}

func (e *Engine) install(img *imaging.Image, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	mask, err := imaging.NewMask(img.Width(), img.Height())
	if err != nil {
		return err
	}
	e.working = img
	e.mask = mask
	e.last = nil
	e.setState(StateLoaded)

	e.logger.Info(component, "image loaded", map[string]interface{}{
		"source": source,
		"width":  img.Width(),
		"height": img.Height(),
	})
	return nil
}

// SetHoleRectangle replaces the hole with one rectangle, clipped to the image.
// It returns the rectangle actually marked, which is empty for a zero-area request.
func (e *Engine) SetHoleRectangle(x, y, width, height int) (image.Rectangle, error) {
	return e.markRectangle(x, y, width, height, true)
}

// AddHoleRectangle adds a clipped rectangle to the existing hole.
func (e *Engine) AddHoleRectangle(x, y, width, height int) (image.Rectangle, error) {
	return e.markRectangle(x, y, width, height, false)
}

func (e *Engine) markRectangle(x, y, width, height int, replace bool) (image.Rectangle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditable("set hole"); err != nil {
		return image.Rectangle{}, err
	}

	// Built by hand: image.Rect would canonicalise a negative size.
	requested := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+width, y+height)}
	clamped, clipped := imaging.ClampRect(requested, e.working.Bounds())
	if clipped {
		e.logger.Warning(component, "hole rectangle clipped to image", map[string]interface{}{
			"requested": requested.String(),
			"clipped":   clamped.String(),
			"error":     algorithms.ErrOutOfBounds,
		})
	}

	if replace {
		e.mask.Clear()
	}
	marked := e.mask.SetRect(clamped, imaging.Hole)

	e.logger.Debug(component, "hole rectangle set", map[string]interface{}{
		"rect":        marked.String(),
		"hole_pixels": e.mask.HoleCount(),
	})
	return marked, nil
}

// SetHoleMask replaces the hole with a byte mask the size of the image;
// non-zero bytes are holes.
func (e *Engine) SetHoleMask(mask []byte, width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditable("set hole mask"); err != nil {
		return err
	}
	if width != e.working.Width() || height != e.working.Height() {
		return fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			algorithms.ErrInvalidInput, width, height, e.working.Width(), e.working.Height())
	}

	m, err := imaging.NewMaskFromBytes(mask, width, height)
	if err != nil {
		return fmt.Errorf("%w: %v", algorithms.ErrInvalidInput, err)
	}
	e.mask = m

	e.logger.Debug(component, "hole mask set", map[string]interface{}{
		"hole_pixels": m.HoleCount(),
	})
	return nil
}

// SetHolePolygon replaces the hole with a filled polygon.
func (e *Engine) SetHolePolygon(points []image.Point) error {
	return e.markPolygon(points, true)
}

// AddHolePolygon adds a filled polygon to the existing hole.
func (e *Engine) AddHolePolygon(points []image.Point) error {
	return e.markPolygon(points, false)
}

func (e *Engine) markPolygon(points []image.Point, replace bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditable("set hole polygon"); err != nil {
		return err
	}

	m, err := conversion.PolygonMask(e.working.Width(), e.working.Height(), points)
	if err != nil {
		return fmt.Errorf("%w: %v", algorithms.ErrInvalidInput, err)
	}
	if replace {
		e.mask = m
	} else {
		merge(e.mask, m)
	}

	e.logger.Debug(component, "hole polygon set", map[string]interface{}{
		"vertices":    len(points),
		"hole_pixels": e.mask.HoleCount(),
	})
	return nil
}

// LoadHoleMask adds the non-zero pixels of a mask image to the existing hole.
func (e *Engine) LoadHoleMask(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditable("load hole mask"); err != nil {
		return err
	}

	m, err := e.loader.LoadMask(path)
	if err != nil {
		return fmt.Errorf("%w: %v", algorithms.ErrInvalidInput, err)
	}
	if m.Width() != e.working.Width() || m.Height() != e.working.Height() {
		return fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			algorithms.ErrInvalidInput, m.Width(), m.Height(), e.working.Width(), e.working.Height())
	}
	merge(e.mask, m)

	e.logger.Info(component, "hole mask loaded", map[string]interface{}{
		"path":        path,
		"mask_pixels": m.HoleCount(),
		"hole_pixels": e.mask.HoleCount(),
	})
	return nil
}

func merge(dst, src *imaging.Mask) {
	bounds := src.HoleBounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if src.IsHole(x, y) {
				dst.Set(x, y, imaging.Hole)
			}
		}
	}
}

// Configure sets the patch size (odd, >= 1) and exemplar search stride.
func (e *Engine) Configure(patchSize int, stride criminisi.Stride) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.config
	cfg.PatchSize = patchSize
	cfg.SearchStride = stride
	return e.applyConfig(cfg)
}

// SetConfig replaces the whole fill configuration.
func (e *Engine) SetConfig(cfg criminisi.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.applyConfig(cfg)
}

func (e *Engine) applyConfig(cfg criminisi.Config) error {
	filler, err := criminisi.NewProcessor(cfg,
		criminisi.WithLogger(e.logger),
		criminisi.WithMemory(e.memory),
	)
	if err != nil {
		return err
	}
	e.config = cfg
	e.filler = filler
	return nil
}

func (e *Engine) Config() criminisi.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Process fills the current hole in the working image. The hole is consumed:
// a later call only fills what was marked since. On ErrNonConvergence the
// partial result is kept and still readable.
func (e *Engine) Process(ctx context.Context) (*algorithms.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.working == nil {
		return nil, fmt.Errorf("%w: process requires a loaded image", algorithms.ErrInvalidState)
	}

	e.setState(StateRunning)
	stage := e.timing.StartTiming("process")
	result, err := e.filler.Inpaint(ctx, e.working, e.mask, e.progress)
	e.timing.EndTiming(stage)
	e.last = result

	if err != nil {
		e.setState(StateFailed)
		fields := map[string]interface{}{
			"state":     StateFailed.String(),
			"algorithm": e.filler.Name(),
		}
		if result != nil {
			fields["iterations"] = result.Iterations
			fields["remaining"] = result.Remaining
		}
		e.logger.Error(component, err, fields)
		return result, err
	}

	e.setState(StateCompleted)
	return result, nil
}

// Result returns a copy of the working image: the loaded image before any
// Process call, the (possibly partial) fill afterwards. Nil before loading.
func (e *Engine) Result() *imaging.Image {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.working == nil {
		return nil
	}
	return e.working.Clone()
}

// ResultMat returns the working image as a new BGR Mat the caller must close.
func (e *Engine) ResultMat() (gocv.Mat, error) {
	img := e.Result()
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("%w: no image loaded", algorithms.ErrInvalidState)
	}
	return conversion.ToMat(img)
}

// HoleMask returns a copy of the pixels still marked as hole.
func (e *Engine) HoleMask() *imaging.Mask {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mask == nil {
		return nil
	}
	return e.mask.Clone()
}

// LastResult reports the outcome of the most recent Process call.
func (e *Engine) LastResult() *algorithms.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// ExportToFile encodes the working image to path. Failures are logged and
// reported as false.
func (e *Engine) ExportToFile(path string) bool {
	img := e.Result()
	if img == nil {
		e.logger.Error(component, fmt.Errorf("%w: nothing to export", algorithms.ErrInvalidState), map[string]interface{}{
			"path": path,
		})
		return false
	}

	if err := e.saver.SaveToPath(path, img); err != nil {
		e.logger.Error(component, err, map[string]interface{}{"path": path})
		return false
	}
	return true
}

// Timings returns the accumulated load, process and save durations.
func (e *Engine) Timings() map[string]timing.Stat {
	return e.timing.Snapshot()
}

// Shutdown drops pooled buffers. The engine stays usable.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.memory.GetStats()
	e.memory.Cleanup()
	e.logger.Debug(component, "engine buffers released", map[string]interface{}{
		"pool_hits":   stats.PoolHits,
		"pool_misses": stats.PoolMisses,
		"released":    stats.PooledBuffers,
	})
}

func (e *Engine) requireEditable(operation string) error {
	if e.working == nil {
		return fmt.Errorf("%w: %s requires a loaded image", algorithms.ErrInvalidState, operation)
	}
	return nil
}

func (e *Engine) fail(operation string, err error) error {
	if !errors.Is(err, algorithms.ErrInvalidInput) {
		err = fmt.Errorf("%w: %v", algorithms.ErrInvalidInput, err)
	}
	e.logger.Error(component, err, map[string]interface{}{"operation": operation})
	return err
}
