package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

func pushed(entity string, delta float64) domain.DerivedRecord {
	return domain.DerivedRecord{Entity: entity, RawDelta: domain.Float(delta), Lag: domain.Float(100)}
}

func TestWindowBuffer_HoldsAtMostTwoPerEntity(t *testing.T) {
	w := NewWindowBuffer(TailDegrade)

	assert.Empty(t, w.Push(pushed("A", 3)))
	assert.Empty(t, w.Push(pushed("A", 6)))
	assert.Equal(t, 2, w.Len())

	resolved := w.Push(pushed("A", 9))
	require.Len(t, resolved, 1)
	assert.Equal(t, domain.Float(6), resolved[0].SmoothedDelta)
	assert.Equal(t, 2, w.Len())

	resolved = w.Push(pushed("A", 0))
	require.Len(t, resolved, 1)
	assert.Equal(t, domain.Float(5), resolved[0].SmoothedDelta)
}

func TestWindowBuffer_EntitiesIndependent(t *testing.T) {
	w := NewWindowBuffer(TailDegrade)
	w.Push(pushed("A", 1))
	w.Push(pushed("B", 10))
	w.Push(pushed("A", 2))
	w.Push(pushed("B", 20))

	resolved := w.Push(pushed("A", 3))
	require.Len(t, resolved, 1)
	assert.Equal(t, "A", resolved[0].Entity)
	assert.Equal(t, domain.Float(2), resolved[0].SmoothedDelta)
	assert.Equal(t, 4, w.Len())
}

func TestWindowBuffer_FlushOrder(t *testing.T) {
	w := NewWindowBuffer(TailDegrade)
	w.Push(pushed("B", 4))
	w.Push(pushed("A", 1))
	w.Push(pushed("B", 8))

	flushed := w.Flush()
	require.Len(t, flushed, 3)
	assert.Equal(t, []string{"B", "B", "A"}, []string{flushed[0].Entity, flushed[1].Entity, flushed[2].Entity})
	assert.Equal(t, domain.Float(6), flushed[0].SmoothedDelta)
	assert.Equal(t, domain.Float(8), flushed[1].SmoothedDelta)
	assert.Equal(t, domain.Float(1), flushed[2].SmoothedDelta)
	assert.Zero(t, w.Len())
	assert.Empty(t, w.Flush())
}

func TestWindowBuffer_RetireUnknownEntity(t *testing.T) {
	w := NewWindowBuffer("")
	assert.Equal(t, TailDegrade, w.Policy())
	assert.Nil(t, w.Retire("missing"))
}

func TestWindowBuffer_RetireThenReadmit(t *testing.T) {
	w := NewWindowBuffer(TailStrict)
	w.Push(pushed("A", 1))
	w.Push(pushed("A", 2))

	retired := w.Retire("A")
	require.Len(t, retired, 2)
	assert.False(t, retired[0].SmoothedDelta.Valid)
	assert.False(t, retired[1].SmoothedDelta.Valid)

	w.Push(pushed("A", 5))
	flushed := w.Flush()
	require.Len(t, flushed, 1)
	assert.Equal(t, 1, flushed[0].WindowTerms)
}
