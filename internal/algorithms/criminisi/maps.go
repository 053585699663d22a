package criminisi

import (
	"fmt"
	"image"

	"object-remover/internal/imaging"
	"object-remover/internal/memory"
)

// MapBank holds the confidence, data-term and priority maps of one run.
type MapBank struct {
	width      int
	height     int
	Confidence []float64
	DataTerm   []float64
	Priority   []float64
	mem        *memory.Manager
}

// NewMapBank checks three image-sized buffers out of mem.
func NewMapBank(mem *memory.Manager, width, height int) (*MapBank, error) {
	if mem == nil {
		mem = memory.NewManager(nil)
	}
	n := width * height
	bank := &MapBank{width: width, height: height, mem: mem}

	var err error
	if bank.Confidence, err = mem.GetFloats(n); err != nil {
		return nil, fmt.Errorf("confidence map: %w", err)
	}
	if bank.DataTerm, err = mem.GetFloats(n); err != nil {
		bank.Release()
		return nil, fmt.Errorf("data term map: %w", err)
	}
	if bank.Priority, err = mem.GetFloats(n); err != nil {
		bank.Release()
		return nil, fmt.Errorf("priority map: %w", err)
	}
	return bank, nil
}

// Reset zeroes every map and sets confidence to 1 on valid pixels.
func (b *MapBank) Reset(mask *imaging.Mask) {
	clear(b.DataTerm)
	clear(b.Priority)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := 0.0
			if mask.IsValid(x, y) {
				c = 1.0
			}
			b.Confidence[y*b.width+x] = c
		}
	}
}

// Release returns the buffers to the memory manager. The bank is unusable afterwards.
func (b *MapBank) Release() {
	for _, buf := range []*[]float64{&b.Confidence, &b.DataTerm, &b.Priority} {
		if *buf != nil {
			b.mem.ReleaseFloats(*buf)
			*buf = nil
		}
	}
}

func (b *MapBank) index(p image.Point) int {
	return p.Y*b.width + p.X
}

func (b *MapBank) SetConfidence(p image.Point, c float64) {
	b.Confidence[b.index(p)] = c
}

// record stores the evaluated terms of the current front.
func (b *MapBank) record(front []frontScore) {
	for _, s := range front {
		i := b.index(s.point)
		b.DataTerm[i] = s.data
		b.Priority[i] = s.priority
	}
}
