package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachIndexed_PreservesOrder(t *testing.T) {
	out := make([]int, 50)
	forEachIndexed(50, 8, func(i int) {
		out[i] = i * 2
	})

	for i, v := range out {
		require.Equal(t, i*2, v, "slot %d", i)
	}
}

func TestForEachIndexed_VisitsEachIndexOnce(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]int)

	forEachIndexed(20, 4, func(i int) {
		mu.Lock()
		seen[i]++
		mu.Unlock()
	})

	require.Len(t, seen, 20)
	for i, count := range seen {
		assert.Equal(t, 1, count, "índice %d", i)
	}
}

func TestForEachIndexed_ZeroItems(t *testing.T) {
	called := false
	forEachIndexed(0, 4, func(int) { called = true })
	assert.False(t, called)
}

func TestForEachIndexed_DefaultWorkers(t *testing.T) {
	out := make([]int, 5)
	forEachIndexed(5, 0, func(i int) { out[i] = 1 })

	for i, v := range out {
		assert.Equal(t, 1, v, "slot %d", i)
	}
}

func TestForEachIndexed_MoreWorkersThanItems(t *testing.T) {
	out := make([]int, 2)
	forEachIndexed(2, 16, func(i int) { out[i] = i + 1 })

	assert.Equal(t, []int{1, 2}, out)
}
