// Package lorza provides an error-bounded lossy compressor for dense
// 1/2/3-dimensional floating-point arrays.
//
// Given an array and an absolute or range-relative error bound, Compress
// produces a compact archive such that every sample reconstructed by
// Decompress lies within the bound of its original. The pipeline is a
// dual-output Lorenzo predictor-quantizer, a CSR compaction of the sparse
// outliers, and a coarse-grained canonical Huffman codec over the quant
// codes; the stages fan out across goroutines over independent tiles and
// chunks.
//
// # Basic Usage
//
// Compressing a 3-D float32 field under an absolute bound:
//
//	import "github.com/lorza/lorza"
//
//	shape := lorza.Shape{X: 64, Y: 64, Z: 64}
//	archive, err := lorza.Compress(field, shape, lorza.WithErrorBound(1e-3))
//	if err != nil {
//	    return err
//	}
//
// Decompressing:
//
//	header, _ := lorza.InspectHeader(archive)
//	out := make([]float32, header.NumSamples())
//	err = lorza.Decompress(archive, out)
//
// # Package Structure
//
// This package wraps the blob package's compressor for the common one-call
// case, re-exporting its options (including the radius and the r2r mode).
// For reusable compressors, use the blob package directly; compress seals
// finished archives for storage.
package lorza

import (
	"github.com/lorza/lorza/blob"
	"github.com/lorza/lorza/format"
	"github.com/lorza/lorza/predict"
	"github.com/lorza/lorza/section"
)

// Shape is the grid of a dense array, x fastest-varying. Unused ranks
// hold 1.
type Shape = predict.Shape

// Option configures the pipeline; see the With* constructors in blob.
type Option = blob.Option

// Re-exported blob options for the one-call API.
var (
	WithMode          = blob.WithMode
	WithErrorBound    = blob.WithErrorBound
	WithRadius        = blob.WithRadius
	WithPardeg        = blob.WithPardeg
	WithDensityFactor = blob.WithDensityFactor
	WithHuffBytes     = blob.WithHuffBytes
)

// Re-exported mode selectors.
const (
	ModeAbs = format.ModeAbs
	ModeR2R = format.ModeR2R
)

// Compress runs the full pipeline over input and returns the archive.
//
// Returns:
//   - []byte: archive blob
//   - error: configuration or pipeline errors from the errs package
func Compress[T format.Float](input []T, shape Shape, opts ...Option) ([]byte, error) {
	compressor, err := blob.NewCompressor[T](shape, opts...)
	if err != nil {
		return nil, err
	}

	return compressor.Compress(input)
}

// Decompress reconstructs the archived array into dst, which must hold
// exactly the archived sample count (see InspectHeader).
//
// Returns:
//   - error: archive validation or payload errors from the errs package
func Decompress[T format.Float](archive []byte, dst []T) error {
	return blob.Decompress(archive, dst)
}

// InspectHeader parses and validates an archive header so callers can
// size the output buffer.
//
// Returns:
//   - section.Header: validated header
//   - error: header or entry table validation errors
func InspectHeader(archive []byte) (section.Header, error) {
	return blob.InspectHeader(archive)
}
