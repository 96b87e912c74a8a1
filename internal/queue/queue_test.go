package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueue_Min(t *testing.T) {
	pq := NewMin(4)
	for i, p := range []float64{5, 1, 4, 1, 3} {
		pq.Push(Item{ID: uint32(i), Priority: p})
	}
	require.Equal(t, 5, pq.Len())

	top, ok := pq.Top()
	require.True(t, ok)
	assert.Equal(t, uint32(1), top.ID)

	var got []uint32
	for pq.Len() > 0 {
		it, _ := pq.Pop()
		got = append(got, it.ID)
	}
	// Equal priorities pop in ID order.
	assert.Equal(t, []uint32{1, 3, 4, 2, 0}, got)

	_, ok = pq.Pop()
	assert.False(t, ok)
}

func TestPriorityQueue_Max(t *testing.T) {
	pq := NewMax(0)
	for i, p := range []float64{0.5, 2, 1} {
		pq.Push(Item{ID: uint32(i), Stamp: 7, Priority: p})
	}

	it, ok := pq.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(1), it.ID)
	assert.Equal(t, uint32(7), it.Stamp)
	assert.Len(t, pq.Items(), 2)

	pq.Reset()
	assert.Equal(t, 0, pq.Len())
	_, ok = pq.Top()
	assert.False(t, ok)
}
