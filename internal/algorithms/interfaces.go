package algorithms

import (
	"context"
	"time"

	"object-remover/internal/imaging"
	"object-remover/internal/timing"
)

// Inpainter fills every Hole pixel of mask in img, mutating both in place.
type Inpainter interface {
	Name() string
	Inpaint(ctx context.Context, img *imaging.Image, mask *imaging.Mask, progress ProgressFunc) (*Result, error)
}

// Status is the terminal state of one fill run.
type Status int

const (
	StatusCompleted Status = iota
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress is reported after every patch update.
type Progress struct {
	Iteration int
	Filled    int
	Remaining int
	Total     int
}

// Fraction is the share of the initial hole already filled.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Filled) / float64(p.Total)
}

type ProgressFunc func(Progress)

// Result describes a finished run. It is returned alongside fatal run errors
// so callers can inspect how far the fill got.
type Result struct {
	Status     Status
	Iterations int
	Filled     int
	Remaining  int
	Components int
	Duration   time.Duration
	Stages     map[string]timing.Stat
}
