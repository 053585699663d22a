package app

import (
	"maps"
	"slices"
	"sync"

	"object-remover/internal/inpainter"
	"object-remover/internal/logger"
)

// Lifecycle releases the engine's resources once, whichever of the normal
// exit path or the shutdown manager gets there first.
type Lifecycle struct {
	engine *inpainter.Engine
	logger logger.Logger
	once   sync.Once
}

func NewLifecycle(engine *inpainter.Engine, log logger.Logger) *Lifecycle {
	return &Lifecycle{engine: engine, logger: log}
}

func (l *Lifecycle) Shutdown() {
	l.once.Do(func() {
		l.logger.Info("Lifecycle", "shutdown sequence initiated", nil)

		timings := l.engine.Timings()
		for _, op := range slices.Sorted(maps.Keys(timings)) {
			stat := timings[op]
			l.logger.Debug("Lifecycle", "operation timing", map[string]interface{}{
				"operation": op,
				"count":     stat.Count,
				"total":     stat.Total.String(),
				"average":   stat.Average().String(),
				"max":       stat.Max.String(),
			})
		}
		l.engine.Shutdown()

		l.logger.Info("Lifecycle", "shutdown sequence completed", nil)
	})
}
