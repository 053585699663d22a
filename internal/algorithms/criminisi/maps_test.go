package criminisi

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-remover/internal/memory"
)

func TestMapBankResetBetweenRuns(t *testing.T) {
	mem := memory.NewManager(nil)

	first, err := NewMapBank(mem, 6, 6)
	require.NoError(t, err)
	first.Reset(maskWithHoles(t, 6, 6, image.Rect(0, 0, 3, 3)))
	first.record([]frontScore{{point: image.Pt(2, 2), data: 3, priority: 1.5}})
	first.SetConfidence(image.Pt(1, 1), 0.25)
	first.Release()

	second, err := NewMapBank(mem, 6, 6)
	require.NoError(t, err)
	defer second.Release()
	second.Reset(maskWithHoles(t, 6, 6, image.Rect(4, 4, 6, 6)))

	assert.Positive(t, mem.GetStats().PoolHits, "buffers should come back from the pool")
	assert.InDelta(t, 1.0, second.confidenceAt(image.Pt(1, 1)), 1e-12)
	assert.Zero(t, second.confidenceAt(image.Pt(5, 5)))
	assert.Zero(t, second.dataTermAt(image.Pt(2, 2)))
	assert.Zero(t, second.priorityAt(image.Pt(2, 2)))
}

func TestMapBankReleaseIsIdempotent(t *testing.T) {
	mem := memory.NewManager(nil)
	bank, err := NewMapBank(mem, 4, 4)
	require.NoError(t, err)

	bank.Release()
	bank.Release()

	assert.Nil(t, bank.Confidence)
	assert.Zero(t, mem.GetStats().ActiveBuffers)
}

func (b *MapBank) confidenceAt(p image.Point) float64 {
	return b.Confidence[b.index(p)]
}

func (b *MapBank) dataTermAt(p image.Point) float64 {
	return b.DataTerm[b.index(p)]
}

func (b *MapBank) priorityAt(p image.Point) float64 {
	return b.Priority[b.index(p)]
}
