package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunksCoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1001} {
		seen := make([]int32, items)
		Chunks(items, func(_, start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, n := range seen {
			assert.Equal(t, int32(1), n, "items=%d index=%d", items, i)
		}
	}
}

func TestChunksIndexWithinNumChunks(t *testing.T) {
	items := 513
	var calls int32
	Chunks(items, func(chunk, _, _ int) {
		atomic.AddInt32(&calls, 1)
		assert.GreaterOrEqual(t, chunk, 0)
		assert.Less(t, chunk, NumChunks(items))
	})
	assert.LessOrEqual(t, int(calls), NumChunks(items))
}

func TestChunksWithThreshold(t *testing.T) {
	var got [][3]int
	ChunksWithThreshold(10, 100, func(chunk, start, end int) {
		got = append(got, [3]int{chunk, start, end})
	})
	assert.Equal(t, [][3]int{{0, 0, 10}}, got)

	called := false
	ChunksWithThreshold(0, 100, func(int, int, int) { called = true })
	assert.False(t, called)
}

func TestNumChunks(t *testing.T) {
	assert.Equal(t, 0, NumChunks(0))
	assert.Equal(t, 1, NumChunks(1))
	assert.LessOrEqual(t, NumChunks(1<<20), 1<<20)
}
