// Package sparse compacts the dense outlier plane into a CSR triple and
// scatters it back during decompression.
//
// The length-n plane is viewed as an m x m square with m = ceil(sqrt(n)),
// zero-padded past n. Nonzeros are bounded by n/densityFactor; a denser
// plane aborts the gather with ErrOutlierCapacity.
package sparse

import (
	"fmt"
	"math"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
	"github.com/lorza/lorza/internal/work"
)

// Triple is the CSR compaction of an outlier plane.
type Triple[T format.Float] struct {
	N      int     // dense plane length
	M      int     // square edge, ceil(sqrt(N))
	RowPtr []int32 // M+1 cumulative row offsets
	ColIdx []int32 // column index per nonzero
	Values []T     // outlier carrier per nonzero
}

// SquareEdge returns the CSR square edge for a plane of n samples.
func SquareEdge(n int) int {
	if n <= 0 {
		return 0
	}

	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Gather compacts dense into a CSR triple.
//
// Returns:
//   - *Triple[T]: the compaction; scattering it reproduces dense exactly
//   - error: ErrOutlierCapacity if the nonzero count exceeds
//     len(dense)/densityFactor
func Gather[T format.Float](dense []T, densityFactor int) (*Triple[T], error) {
	n := len(dense)
	m := SquareEdge(n)
	capacity := n / densityFactor

	t := &Triple[T]{
		N:      n,
		M:      m,
		RowPtr: make([]int32, m+1),
	}
	if n == 0 {
		return t, nil
	}

	// Pass 1: count nonzeros per row. Rows own disjoint spans of dense,
	// so counting fans out without coordination.
	counts := make([]int32, m)
	work.ParallelUnits(m, func(row int) {
		lo := row * m
		hi := min(lo+m, n)
		var c int32
		for i := lo; i < hi; i++ {
			if dense[i] != 0 {
				c++
			}
		}
		counts[row] = c
	})

	var nnz int32
	for row, c := range counts {
		t.RowPtr[row] = nnz
		nnz += c
	}
	t.RowPtr[m] = nnz

	if int(nnz) > capacity {
		return nil, fmt.Errorf("%w: %d nonzeros, capacity %d (density factor %d)",
			errs.ErrOutlierCapacity, nnz, capacity, densityFactor)
	}

	// Pass 2: fill columns and values, each row into its own span.
	t.ColIdx = make([]int32, nnz)
	t.Values = make([]T, nnz)
	work.ParallelUnits(m, func(row int) {
		lo := row * m
		hi := min(lo+m, n)
		at := t.RowPtr[row]
		for i := lo; i < hi; i++ {
			if dense[i] != 0 {
				t.ColIdx[at] = int32(i - lo)
				t.Values[at] = dense[i]
				at++
			}
		}
	})

	return t, nil
}

// Nnz returns the nonzero count.
func (t *Triple[T]) Nnz() int {
	if len(t.RowPtr) == 0 {
		return 0
	}

	return int(t.RowPtr[len(t.RowPtr)-1])
}

// Scatter writes the triple's nonzeros back into dense, which must hold
// t.N elements. Slots without a nonzero are zeroed, making dense an exact
// reproduction of the gathered plane.
func (t *Triple[T]) Scatter(dense []T) {
	clear(dense)
	if t.M == 0 {
		return
	}

	work.ParallelUnits(t.M, func(row int) {
		base := row * t.M
		for k := t.RowPtr[row]; k < t.RowPtr[row+1]; k++ {
			// The padded tail of the square carries no real samples; a
			// parsed blob could still address it, so clamp to the plane.
			if idx := base + int(t.ColIdx[k]); idx < len(dense) {
				dense[idx] = t.Values[k]
			}
		}
	})
}

// EncodedLen returns the serialized byte footprint of the triple.
func (t *Triple[T]) EncodedLen() int {
	var zero T
	valSize := 4
	if _, ok := any(zero).(float64); ok {
		valSize = 8
	}

	return 8 + 4*(t.M+1) + 4*t.Nnz() + valSize*t.Nnz()
}

// AppendTo serializes the triple as (nnz, m, rowptr, colidx, values) and
// appends it to buf.
func (t *Triple[T]) AppendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, uint32(t.Nnz()))
	buf = engine.AppendUint32(buf, uint32(t.M))
	for _, p := range t.RowPtr {
		buf = engine.AppendUint32(buf, uint32(p))
	}
	for _, c := range t.ColIdx {
		buf = engine.AppendUint32(buf, uint32(c))
	}
	for _, v := range t.Values {
		switch val := any(v).(type) {
		case float32:
			buf = engine.AppendUint32(buf, math.Float32bits(val))
		case float64:
			buf = engine.AppendUint64(buf, math.Float64bits(val))
		}
	}

	return buf
}

// Parse deserializes a triple for a plane of n samples.
//
// Returns:
//   - *Triple[T]: parsed triple
//   - error: ErrCorruptedPayload on any length or bound mismatch
func Parse[T format.Float](payload []byte, n int, engine endian.EndianEngine) (*Triple[T], error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("%w: sparse blob shorter than its preamble", errs.ErrCorruptedPayload)
	}

	nnz := int(engine.Uint32(payload[0:4]))
	m := int(engine.Uint32(payload[4:8]))
	if m != SquareEdge(n) {
		return nil, fmt.Errorf("%w: sparse edge %d for %d samples", errs.ErrCorruptedPayload, m, n)
	}

	var zero T
	valSize := 4
	if _, ok := any(zero).(float64); ok {
		valSize = 8
	}
	want := 8 + 4*(m+1) + (4+valSize)*nnz
	if len(payload) != want {
		return nil, fmt.Errorf("%w: sparse blob %d bytes, want %d", errs.ErrCorruptedPayload, len(payload), want)
	}

	t := &Triple[T]{
		N:      n,
		M:      m,
		RowPtr: make([]int32, m+1),
		ColIdx: make([]int32, nnz),
		Values: make([]T, nnz),
	}

	at := 8
	for i := range t.RowPtr {
		t.RowPtr[i] = int32(engine.Uint32(payload[at:]))
		at += 4
	}
	if int(t.RowPtr[m]) != nnz {
		return nil, fmt.Errorf("%w: rowptr tail %d, nnz %d", errs.ErrCorruptedPayload, t.RowPtr[m], nnz)
	}
	prev := int32(0)
	for _, p := range t.RowPtr {
		if p < prev {
			return nil, fmt.Errorf("%w: rowptr not monotone", errs.ErrCorruptedPayload)
		}
		prev = p
	}

	for i := range t.ColIdx {
		c := engine.Uint32(payload[at:])
		if int(c) >= m {
			return nil, fmt.Errorf("%w: column %d out of range", errs.ErrCorruptedPayload, c)
		}
		t.ColIdx[i] = int32(c)
		at += 4
	}
	for i := range t.Values {
		switch any(zero).(type) {
		case float32:
			t.Values[i] = T(math.Float32frombits(engine.Uint32(payload[at:])))
		case float64:
			t.Values[i] = T(math.Float64frombits(engine.Uint64(payload[at:])))
		}
		at += valSize
	}

	return t, nil
}
