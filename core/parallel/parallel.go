// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// Chunks splits [0, items) into at most runtime.NumCPU() contiguous ranges
// and calls fn once per range, concurrently. It returns when every call has
// finished. Ranges are passed in order of their chunk index, so fn can store
// per-chunk results in a slice of length NumChunks(items).
func Chunks(items int, fn func(chunk, start, end int)) {
	if items <= 0 {
		return
	}
	workers := NumChunks(items)
	size := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * size
		end := start + size
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(c, s, e int) {
			defer wg.Done()
			fn(c, s, e)
		}(i, start, end)
	}
	wg.Wait()
}

// NumChunks returns the number of ranges Chunks uses for items.
func NumChunks(items int) int {
	if items <= 0 {
		return 0
	}
	n := runtime.NumCPU()
	if n > items {
		n = items
	}
	return n
}

// ChunksWithThreshold runs fn(0, 0, items) on the calling goroutine when
// items <= threshold, and behaves like Chunks otherwise.
func ChunksWithThreshold(items, threshold int, fn func(chunk, start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, 0, items)
		}
		return
	}
	Chunks(items, fn)
}
