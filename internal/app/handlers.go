package app

import (
	"object-remover/internal/algorithms"
	"object-remover/internal/logger"
)

type Handlers struct {
	logger logger.Logger
	// logged is the last decile of the hole reported at info level.
	logged int
}

func NewHandlers(log logger.Logger) *Handlers {
	return &Handlers{logger: log}
}

// HandleProgress logs each patch at debug level and every filled tenth of
// the hole at info level.
func (h *Handlers) HandleProgress(p algorithms.Progress) {
	h.logger.Debug("Progress", "patch applied", map[string]interface{}{
		"iteration": p.Iteration,
		"remaining": p.Remaining,
	})

	decile := 10
	if p.Total > 0 {
		decile = p.Filled * 10 / p.Total
	}
	if decile <= h.logged {
		return
	}
	h.logged = decile

	h.logger.Info("Progress", "fill progress", map[string]interface{}{
		"percent":   int(p.Fraction()*100 + 0.5),
		"iteration": p.Iteration,
		"filled":    p.Filled,
		"remaining": p.Remaining,
	})
}
