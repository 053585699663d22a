// Package timing accumulates wall-clock durations per named operation.
package timing

import (
	"context"
	"sync"
	"time"
)

type timingKey struct{}

type timingInfo struct {
	operation string
	start     time.Time
}

// Stat aggregates every completed timing of one operation.
type Stat struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

func (s Stat) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

type Tracker struct {
	timings map[string]Stat
	mu      sync.RWMutex
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string]Stat),
	}
}

func (tt *Tracker) StartTiming(operation string) context.Context {
	if tt == nil {
		return context.Background()
	}

	return context.WithValue(context.Background(), timingKey{}, timingInfo{
		operation: operation,
		start:     time.Now(),
	})
}

func (tt *Tracker) EndTiming(ctx context.Context) {
	if tt == nil {
		return
	}

	info, ok := ctx.Value(timingKey{}).(timingInfo)
	if !ok {
		return
	}
	tt.record(info.operation, time.Since(info.start))
}

func (tt *Tracker) record(operation string, duration time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	stat := tt.timings[operation]
	stat.Count++
	stat.Total += duration
	if duration > stat.Max {
		stat.Max = duration
	}
	tt.timings[operation] = stat
}

// Snapshot copies every recorded stat.
func (tt *Tracker) Snapshot() map[string]Stat {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	result := make(map[string]Stat, len(tt.timings))
	for operation, stat := range tt.timings {
		result[operation] = stat
	}
	return result
}
