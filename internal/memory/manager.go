// Package memory pools the float buffers backing per-run scalar maps so that
// repeated runs on same-sized images do not reallocate them.
package memory

import (
	"fmt"
	"sync"

	"object-remover/internal/logger"
)

const (
	bytesPerFloat  = 8
	buffersPerPool = 6
)

type Manager struct {
	pools  map[int]*Pool
	active map[*float64]int64
	mu     sync.Mutex
	stats  Stats
	logger logger.Logger
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveBuffers  int64
	PoolHits       int64
	PoolMisses     int64
	PooledBuffers  int64
	MaxAllowed     int64
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		pools:  make(map[int]*Pool),
		active: make(map[*float64]int64),
		stats: Stats{
			MaxAllowed: 2 * 1024 * 1024 * 1024, // 2GB limit
		},
		logger: log,
	}
}

// GetFloats returns a zeroed buffer of length n.
func (m *Manager) GetFloats(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid buffer length: %d", n)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	size := int64(n) * bytesPerFloat
	if m.stats.TotalAllocated-m.stats.TotalReleased+size > m.stats.MaxAllowed {
		return nil, fmt.Errorf("memory limit exceeded: %d bytes in use, %d requested",
			m.stats.TotalAllocated-m.stats.TotalReleased, size)
	}

	var buf []float64
	if pool, exists := m.pools[n]; exists {
		buf = pool.Get()
	}
	if buf != nil {
		clear(buf)
		m.stats.PoolHits++
	} else {
		buf = make([]float64, n)
		m.stats.PoolMisses++
		m.logger.Debug("MemoryManager", "allocated buffer", map[string]interface{}{
			"length": n,
		})
	}

	m.active[&buf[0]] = size
	m.stats.TotalAllocated += size
	m.stats.ActiveBuffers++
	return buf, nil
}

// ReleaseFloats hands a buffer obtained from GetFloats back to its pool.
func (m *Manager) ReleaseFloats(buf []float64) {
	if len(buf) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	size, exists := m.active[&buf[0]]
	if !exists {
		m.logger.Warning("MemoryManager", "attempting to release untracked buffer", map[string]interface{}{
			"length": len(buf),
		})
		return
	}
	delete(m.active, &buf[0])
	m.stats.TotalReleased += size
	m.stats.ActiveBuffers--

	pool, exists := m.pools[len(buf)]
	if !exists {
		pool = NewPool(buffersPerPool)
		m.pools[len(buf)] = pool
	}
	pool.Put(buf)
}

// GetStats reports allocation counters and how many buffers sit idle in the pools.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats
	for _, pool := range m.pools {
		stats.PooledBuffers += int64(pool.Size())
	}
	return stats
}

// Cleanup drops every pooled buffer. Buffers still checked out stay valid.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key, pool := range m.pools {
		count += pool.Cleanup()
		delete(m.pools, key)
	}

	m.logger.Debug("MemoryManager", "pools cleaned up", map[string]interface{}{
		"buffers": count,
	})
}
