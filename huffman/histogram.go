// Package huffman implements the coarse-grained canonical Huffman codec
// for quant-code streams.
//
// The stream is histogrammed with sharded counters, a canonical book is
// built over the [0, booklen) alphabet at one of two code word widths
// (uint32 or uint64), and encoding is parallelized over equal-length
// chunks that pack at byte-aligned boundaries with per-chunk bit-length
// and byte-offset metadata. The persisted decode table is width-agnostic:
// per-length symbol counts plus the symbols in canonical order fully
// determine the codes.
package huffman

import (
	"github.com/lorza/lorza/internal/work"
)

// Histogram counts symbol occurrences over the [0, booklen) alphabet.
//
// Workers accumulate into private counters over disjoint shards of the
// stream and the shards are reduced after the join. Counts are uint32;
// streams long enough to overflow them are outside the supported range.
func Histogram(codes []uint16, booklen int) []uint32 {
	hist := make([]uint32, booklen)
	if len(codes) == 0 {
		return hist
	}

	workers := work.Workers(len(codes))
	if workers == 1 {
		for _, c := range codes {
			hist[c]++
		}

		return hist
	}

	local := make([][]uint32, workers)
	work.ParallelShards(len(codes), func(shard, lo, hi int) {
		counts := make([]uint32, booklen)
		for _, c := range codes[lo:hi] {
			counts[c]++
		}
		local[shard] = counts
	})

	for _, counts := range local {
		if counts == nil {
			continue
		}
		for sym, c := range counts {
			hist[sym] += c
		}
	}

	return hist
}
