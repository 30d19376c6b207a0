// Package work provides the goroutine fan-out used by the pipeline stages.
//
// Stages launch independent units (predictor tiles, histogram shards,
// Huffman chunks) across a bounded set of workers and join before the next
// stage observes their results. Units own disjoint index ranges, so no
// locking is needed; the join is the only synchronization point.
package work

import (
	"runtime"
	"sync"
)

// Workers returns the worker count for n independent units: GOMAXPROCS
// capped by n, never below 1.
func Workers(n int) int {
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}

	return w
}

// ParallelUnits runs fn(i) for every i in [0, n) across Workers(n)
// goroutines and waits for all of them. Units are handed out in
// contiguous stripes so neighboring tiles stay on the same worker.
func ParallelUnits(n int, fn func(i int)) {
	workers := Workers(n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}

		return
	}

	per := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * per
		hi := lo + per
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// ParallelShards runs fn(shard, lo, hi) over [0, n) split into Workers(n)
// contiguous shards. Used where each worker keeps private accumulation
// state (histogram counters, min/max scans) that the caller reduces after
// the join.
func ParallelShards(n int, fn func(shard, lo, hi int)) int {
	workers := Workers(n)
	per := (n + workers - 1) / workers

	var wg sync.WaitGroup
	shards := 0
	for w := 0; w < workers; w++ {
		lo := w * per
		hi := lo + per
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		shards++

		wg.Add(1)
		go func(shard, lo, hi int) {
			defer wg.Done()
			fn(shard, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	return shards
}
