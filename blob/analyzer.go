package blob

import (
	"github.com/lorza/lorza/format"
	"github.com/lorza/lorza/internal/work"
)

// Range returns max-min over the samples, the scale applied to the error
// bound in r2r mode. Workers scan disjoint shards and their extrema are
// reduced after the join.
func Range[T format.Float](data []T) float64 {
	if len(data) == 0 {
		return 0
	}

	workers := work.Workers(len(data))
	mins := make([]T, workers)
	maxs := make([]T, workers)

	shards := work.ParallelShards(len(data), func(shard, lo, hi int) {
		lowest, highest := data[lo], data[lo]
		for _, v := range data[lo+1 : hi] {
			if v < lowest {
				lowest = v
			}
			if v > highest {
				highest = v
			}
		}
		mins[shard], maxs[shard] = lowest, highest
	})

	lowest, highest := mins[0], maxs[0]
	for s := 1; s < shards; s++ {
		if mins[s] < lowest {
			lowest = mins[s]
		}
		if maxs[s] > highest {
			highest = maxs[s]
		}
	}

	return float64(highest) - float64(lowest)
}
