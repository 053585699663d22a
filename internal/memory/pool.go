package memory

import (
	"sync"
)

// Pool keeps a bounded stack of same-length float buffers.
type Pool struct {
	buffers [][]float64
	maxSize int
	mu      sync.Mutex
}

func NewPool(maxSize int) *Pool {
	return &Pool{
		buffers: make([][]float64, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get pops a buffer or returns nil when the pool is empty. Contents are stale.
func (p *Pool) Get() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.buffers) == 0 {
		return nil
	}

	buf := p.buffers[len(p.buffers)-1]
	p.buffers[len(p.buffers)-1] = nil
	p.buffers = p.buffers[:len(p.buffers)-1]
	return buf
}

func (p *Pool) Put(buf []float64) bool {
	if len(buf) == 0 {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.buffers) >= p.maxSize {
		return false
	}

	p.buffers = append(p.buffers, buf)
	return true
}

func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buffers)
}

func (p *Pool) Cleanup() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := len(p.buffers)
	clear(p.buffers)
	p.buffers = p.buffers[:0]
	return count
}
