// Package predict implements the dual-output Lorenzo predictor-quantizer
// and its inverse.
//
// Quantize prequantizes every sample to round(s / (2*eb)), predicts it as
// the inclusion-exclusion sum over its already-written lower-index
// neighbors, and classifies the residual: residuals inside (-radius,
// +radius) become nonzero quant codes, everything else becomes a zero code
// plus an entry in the dense outlier plane. Reconstruct inverts the
// transform with per-tile N-D prefix sums.
//
// The array is tiled (256 / 16x16 / 32x8x8 for ranks 1/2/3) and a tile
// never predicts across its own boundary; boundary samples predict from an
// implicit zero. That costs a little compression ratio but makes every
// tile independent, so tiles fan out across workers with no coordination.
package predict

import (
	"math"

	"github.com/lorza/lorza/format"
	"github.com/lorza/lorza/internal/pool"
	"github.com/lorza/lorza/internal/work"
)

// Tile extents per rank.
const (
	TileLen1D = 256 // rank-1 tile width
	TileLen2D = 16  // rank-2 tile edge (16x16)
	TileX3D   = 32  // rank-3 tile extent along x
	TileY3D   = 8   // rank-3 tile extent along y
	TileZ3D   = 8   // rank-3 tile extent along z
)

// Shape describes the grid of a dense array, x fastest-varying.
// Unused ranks hold 1.
type Shape struct {
	X, Y, Z int
}

// Len returns the total sample count.
func (s Shape) Len() int {
	return s.X * s.Y * s.Z
}

// Rank returns 1, 2 or 3 according to the trailing dimensions.
func (s Shape) Rank() int {
	switch {
	case s.Z > 1:
		return 3
	case s.Y > 1:
		return 2
	default:
		return 1
	}
}

// Quantize runs the forward dual-output Lorenzo transform.
//
// q and outliers must both have shape.Len() elements. After the call,
// at most one of q[i] and outliers[i] is nonzero for every sample: q[i]
// holds delta+radius for quantizable residuals, outliers[i] holds
// delta+radius cast to T for the rest (with q[i] == 0 marking them). A
// residual of exactly -radius leaves both zero.
//
// The transform cannot fail. Residuals beyond the int32 range produce
// undefined reconstruction; callers size radius against the expected
// residual magnitude.
func Quantize[T format.Float](input []T, shape Shape, eb float64, radius int, q []uint16, outliers []T) {
	quantScale := 1.0 / (2.0 * eb)
	r := int32(radius)

	switch shape.Rank() {
	case 3:
		quantize3D(input, shape, quantScale, r, q, outliers)
	case 2:
		quantize2D(input, shape, quantScale, r, q, outliers)
	default:
		quantize1D(input, quantScale, r, q, outliers)
	}
}

// Reconstruct inverts Quantize, writing reconstructed samples into dst.
//
// It restores delta = (q==0 ? outliers : q) - radius per sample, runs an
// inclusive prefix sum along each axis inside every tile, and scales by
// 2*eb. dst must have shape.Len() elements.
func Reconstruct[T format.Float](q []uint16, outliers []T, shape Shape, eb float64, radius int, dst []T) {
	ebx2 := 2.0 * eb
	r := int32(radius)

	switch shape.Rank() {
	case 3:
		reconstruct3D(q, outliers, shape, ebx2, r, dst)
	case 2:
		reconstruct2D(q, outliers, shape, ebx2, r, dst)
	default:
		reconstruct1D(q, outliers, ebx2, r, dst)
	}
}

// prequant rounds half away from zero, matching round(s / (2*eb)).
func prequant[T format.Float](v T, quantScale float64) int32 {
	return int32(math.Round(float64(v) * quantScale))
}

// classify writes the dual output for one residual.
func classify[T format.Float](delta, r int32, i int, q []uint16, outliers []T) {
	if delta > -r && delta < r {
		q[i] = uint16(delta + r)
		outliers[i] = 0
	} else {
		q[i] = 0
		outliers[i] = T(delta + r)
	}
}

// restore recovers the residual for one sample from the dual output.
// Outlier carriers hold exact small integers, so the T->int32 conversion
// is lossless.
func restore[T format.Float](q []uint16, outliers []T, r int32, i int) int32 {
	if q[i] == 0 {
		return int32(outliers[i]) - r
	}

	return int32(q[i]) - r
}

func quantize1D[T format.Float](input []T, quantScale float64, r int32, q []uint16, outliers []T) {
	n := len(input)
	tiles := (n + TileLen1D - 1) / TileLen1D

	work.ParallelUnits(tiles, func(t int) {
		lo := t * TileLen1D
		hi := min(lo+TileLen1D, n)

		var prev int32
		for i := lo; i < hi; i++ {
			cur := prequant(input[i], quantScale)
			classify(cur-prev, r, i, q, outliers)
			prev = cur
		}
	})
}

func reconstruct1D[T format.Float](q []uint16, outliers []T, ebx2 float64, r int32, dst []T) {
	n := len(dst)
	tiles := (n + TileLen1D - 1) / TileLen1D

	work.ParallelUnits(tiles, func(t int) {
		lo := t * TileLen1D
		hi := min(lo+TileLen1D, n)

		var acc int32
		for i := lo; i < hi; i++ {
			acc += restore(q, outliers, r, i)
			dst[i] = T(float64(acc) * ebx2)
		}
	})
}

func quantize2D[T format.Float](input []T, shape Shape, quantScale float64, r int32, q []uint16, outliers []T) {
	nx, ny := shape.X, shape.Y
	tx := (nx + TileLen2D - 1) / TileLen2D
	ty := (ny + TileLen2D - 1) / TileLen2D

	work.ParallelUnits(tx*ty, func(t int) {
		x0 := (t % tx) * TileLen2D
		y0 := (t / tx) * TileLen2D
		x1 := min(x0+TileLen2D, nx)
		y1 := min(y0+TileLen2D, ny)

		// Two rows of prequantized values: the row being written and the
		// one above it. Out-of-tile neighbors read as zero.
		rows, done := pool.GetInt32Slice(2 * TileLen2D)
		defer done()
		prevRow := rows[:TileLen2D]
		curRow := rows[TileLen2D:]
		for j := range prevRow {
			prevRow[j] = 0
		}

		for y := y0; y < y1; y++ {
			first := y == y0
			base := y * nx
			for x := x0; x < x1; x++ {
				j := x - x0
				cur := prequant(input[base+x], quantScale)

				var west, north, northwest int32
				if j > 0 {
					west = curRow[j-1]
				}
				if !first {
					north = prevRow[j]
					if j > 0 {
						northwest = prevRow[j-1]
					}
				}

				classify(cur-(west+north-northwest), r, base+x, q, outliers)
				curRow[j] = cur
			}
			prevRow, curRow = curRow, prevRow
		}
	})
}

func reconstruct2D[T format.Float](q []uint16, outliers []T, shape Shape, ebx2 float64, r int32, dst []T) {
	nx, ny := shape.X, shape.Y
	tx := (nx + TileLen2D - 1) / TileLen2D
	ty := (ny + TileLen2D - 1) / TileLen2D

	work.ParallelUnits(tx*ty, func(t int) {
		x0 := (t % tx) * TileLen2D
		y0 := (t / tx) * TileLen2D
		x1 := min(x0+TileLen2D, nx)
		y1 := min(y0+TileLen2D, ny)

		// colAcc[j] carries the y-axis running sum of x-prefixed rows, so
		// after processing row y it holds the 2D inclusive prefix at
		// (x0+j, y).
		colAcc, done := pool.GetInt32Slice(TileLen2D)
		defer done()
		for j := range colAcc {
			colAcc[j] = 0
		}

		for y := y0; y < y1; y++ {
			base := y * nx
			var rowAcc int32
			for x := x0; x < x1; x++ {
				j := x - x0
				rowAcc += restore(q, outliers, r, base+x)
				colAcc[j] += rowAcc
				dst[base+x] = T(float64(colAcc[j]) * ebx2)
			}
		}
	})
}

func quantize3D[T format.Float](input []T, shape Shape, quantScale float64, r int32, q []uint16, outliers []T) {
	nx, ny, nz := shape.X, shape.Y, shape.Z
	tx := (nx + TileX3D - 1) / TileX3D
	ty := (ny + TileY3D - 1) / TileY3D
	tz := (nz + TileZ3D - 1) / TileZ3D

	const planeLen = TileX3D * TileY3D

	work.ParallelUnits(tx*ty*tz, func(t int) {
		x0 := (t % tx) * TileX3D
		y0 := ((t / tx) % ty) * TileY3D
		z0 := (t / (tx * ty)) * TileZ3D
		x1 := min(x0+TileX3D, nx)
		y1 := min(y0+TileY3D, ny)
		z1 := min(z0+TileZ3D, nz)

		// Two z-planes of prequantized values, (y, x) row-major in-tile.
		planes, done := pool.GetInt32Slice(2 * planeLen)
		defer done()
		prevPlane := planes[:planeLen]
		curPlane := planes[planeLen:]
		for i := range prevPlane {
			prevPlane[i] = 0
		}

		for z := z0; z < z1; z++ {
			firstZ := z == z0
			for y := y0; y < y1; y++ {
				j := y - y0
				firstY := y == y0
				base := (z*ny + y) * nx
				for x := x0; x < x1; x++ {
					i := x - x0
					cur := prequant(input[base+x], quantScale)

					// Seven lower-index neighbors: three faces minus
					// three edges plus the corner.
					var fx, fy, fz, exy, exz, eyz, cxyz int32
					if i > 0 {
						fx = curPlane[j*TileX3D+i-1]
					}
					if !firstY {
						fy = curPlane[(j-1)*TileX3D+i]
						if i > 0 {
							exy = curPlane[(j-1)*TileX3D+i-1]
						}
					}
					if !firstZ {
						fz = prevPlane[j*TileX3D+i]
						if i > 0 {
							exz = prevPlane[j*TileX3D+i-1]
						}
						if !firstY {
							eyz = prevPlane[(j-1)*TileX3D+i]
							if i > 0 {
								cxyz = prevPlane[(j-1)*TileX3D+i-1]
							}
						}
					}

					pred := fx + fy + fz - exy - exz - eyz + cxyz
					classify(cur-pred, r, base+x, q, outliers)
					curPlane[j*TileX3D+i] = cur
				}
			}
			prevPlane, curPlane = curPlane, prevPlane
		}
	})
}

func reconstruct3D[T format.Float](q []uint16, outliers []T, shape Shape, ebx2 float64, r int32, dst []T) {
	nx, ny, nz := shape.X, shape.Y, shape.Z
	tx := (nx + TileX3D - 1) / TileX3D
	ty := (ny + TileY3D - 1) / TileY3D
	tz := (nz + TileZ3D - 1) / TileZ3D

	const planeLen = TileX3D * TileY3D

	work.ParallelUnits(tx*ty*tz, func(t int) {
		x0 := (t % tx) * TileX3D
		y0 := ((t / tx) % ty) * TileY3D
		z0 := (t / (tx * ty)) * TileZ3D
		x1 := min(x0+TileX3D, nx)
		y1 := min(y0+TileY3D, ny)
		z1 := min(z0+TileZ3D, nz)

		// planeSum accumulates fully (x, y)-prefixed planes along z;
		// colAcc turns x-prefixed rows into the 2D prefix of the current
		// plane, reset at each plane boundary.
		bufs, done := pool.GetInt32Slice(planeLen + TileX3D)
		defer done()
		planeSum := bufs[:planeLen]
		colAcc := bufs[planeLen:]
		for i := range planeSum {
			planeSum[i] = 0
		}

		for z := z0; z < z1; z++ {
			for i := range colAcc {
				colAcc[i] = 0
			}
			for y := y0; y < y1; y++ {
				j := y - y0
				base := (z*ny + y) * nx
				var rowAcc int32
				for x := x0; x < x1; x++ {
					i := x - x0
					rowAcc += restore(q, outliers, r, base+x)
					colAcc[i] += rowAcc
					planeSum[j*TileX3D+i] += colAcc[i]
					dst[base+x] = T(float64(planeSum[j*TileX3D+i]) * ebx2)
				}
			}
		}
	})
}
