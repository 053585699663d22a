package algorithms

import "errors"

var (
	// ErrInvalidInput rejects an empty or malformed image buffer.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState reports an operation whose prerequisite step was skipped.
	ErrInvalidState = errors.New("invalid state")
	// ErrOutOfBounds marks a hole rectangle that was clipped to the image. Never returned as a failure.
	ErrOutOfBounds = errors.New("hole rectangle exceeds image bounds")
	// ErrNoExemplarFound aborts a run when no fully valid source patch exists.
	ErrNoExemplarFound = errors.New("no exemplar found")
	// ErrNonConvergence reports an exhausted iteration budget with hole pixels left.
	ErrNonConvergence = errors.New("iteration budget exhausted before the hole was filled")
)
