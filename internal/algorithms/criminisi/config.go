package criminisi

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"object-remover/internal/algorithms"
)

const (
	// DefaultPatchSize is the side of the square patch; 9x9 is the usual sweet spot.
	DefaultPatchSize = 9
	// Epsilon keeps the data term, and so the priority, above zero in flat regions.
	Epsilon = 0.001
	// AutoStride derives the search stride from the image size.
	AutoStride Stride = 0
)

// Stride is the step between exemplar candidate centres. AutoStride means
// max(2, min(width, height)/100).
type Stride int

func (s Stride) IsAuto() bool {
	return s == AutoStride
}

// Resolve returns the effective stride for an image.
func (s Stride) Resolve(width, height int) int {
	if s > 0 {
		return int(s)
	}
	return max(2, min(width, height)/100)
}

func (s Stride) String() string {
	if s.IsAuto() {
		return "auto"
	}
	return strconv.Itoa(int(s))
}

// ParseStride accepts "auto" or a positive integer.
func ParseStride(value string) (Stride, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "auto") {
		return AutoStride, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return AutoStride, fmt.Errorf("%w: search stride must be \"auto\" or a positive integer, got: %q", algorithms.ErrInvalidInput, value)
	}
	if n <= 0 {
		return AutoStride, fmt.Errorf("%w: search stride must be positive, got: %d", algorithms.ErrInvalidInput, n)
	}
	return Stride(n), nil
}

type Config struct {
	PatchSize    int
	SearchStride Stride
	// MaxIterations caps the fill loop; zero or anything above width*height
	// means width*height.
	MaxIterations int
	// Workers bounds the goroutines of the parallel phases; zero means NumCPU.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		PatchSize:    DefaultPatchSize,
		SearchStride: AutoStride,
	}
}

func (c Config) Validate() error {
	if c.PatchSize < 1 || c.PatchSize%2 == 0 {
		return fmt.Errorf("%w: patch_size must be an odd positive integer, got: %d", algorithms.ErrInvalidInput, c.PatchSize)
	}
	if c.SearchStride < 0 {
		return fmt.Errorf("%w: search_stride must be auto or positive, got: %d", algorithms.ErrInvalidInput, c.SearchStride)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations must not be negative, got: %d", algorithms.ErrInvalidInput, c.MaxIterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got: %d", algorithms.ErrInvalidInput, c.Workers)
	}
	return nil
}

// Radius is r for a patch of side 2r+1.
func (c Config) Radius() int {
	return c.PatchSize / 2
}

func (c Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c Config) iterationBudget(width, height int) int {
	ceiling := width * height
	if c.MaxIterations > 0 && c.MaxIterations < ceiling {
		return c.MaxIterations
	}
	return ceiling
}
