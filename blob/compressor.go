// Package blob orchestrates the compression pipeline and the archive
// layout: predictor, outlier gatherer and Huffman codec run against shared
// workspaces, then the header entry table is filled and the subfiles are
// concatenated into a single byte stream.
package blob

import (
	"errors"
	"fmt"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
	"github.com/lorza/lorza/huffman"
	"github.com/lorza/lorza/internal/pool"
	"github.com/lorza/lorza/predict"
	"github.com/lorza/lorza/section"
	"github.com/lorza/lorza/sparse"
)

// Compressor drives the full compress flow for one array shape.
//
// Each Compress call allocates its own stage workspaces; the only branch in
// its state machine is the Huffman width fallback, taken at most once per
// call. A Compressor is not safe for concurrent use, but is reusable
// across calls with the same shape.
type Compressor[T format.Float] struct {
	cfg   *Config
	shape predict.Shape
}

// NewCompressor creates a compressor for the given shape.
//
// Returns:
//   - *Compressor[T]: ready-to-use compressor
//   - error: ErrInvalidDims for empty or negative dimensions, or config
//     validation errors
func NewCompressor[T format.Float](shape predict.Shape, opts ...Option) (*Compressor[T], error) {
	if shape.X <= 0 || shape.Y <= 0 || shape.Z <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", errs.ErrInvalidDims, shape.X, shape.Y, shape.Z)
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Compressor[T]{cfg: cfg, shape: shape}, nil
}

// Compress runs the pipeline over input and returns the archive blob.
//
// The input is borrowed for the duration of the call and never modified.
// The archive is refused if it would exceed half the input's byte size;
// an inflated result is a usage error, not a storable outcome.
//
// Returns:
//   - []byte: archive (header, anchor, vle, spfmt subfiles)
//   - error: ErrInvalidDims on a length mismatch, ErrInvalidErrorBound if
//     the effective bound degenerates (r2r over constant data),
//     ErrOutlierCapacity, ErrChunkOverflow or ErrOutputInflation
func (c *Compressor[T]) Compress(input []T) ([]byte, error) {
	n := c.shape.Len()
	if len(input) != n {
		return nil, fmt.Errorf("%w: %d samples for shape %dx%dx%d",
			errs.ErrInvalidDims, len(input), c.shape.X, c.shape.Y, c.shape.Z)
	}

	eb := c.cfg.Eb
	if c.cfg.Mode == format.ModeR2R {
		eb *= Range(input)
		if !(eb > 0) {
			return nil, fmt.Errorf("%w: r2r bound degenerates to %v", errs.ErrInvalidErrorBound, eb)
		}
	}

	sizeCap := n * int(format.DTypeOf[T]()) / 2

	// Predict: dual output into the quant plane and the outlier plane.
	quant, releaseQuant := pool.GetUint16Slice(n)
	defer releaseQuant()
	outliers := make([]T, n)

	predict.Quantize(input, c.shape, eb, c.cfg.Radius, quant, outliers)

	// Gather: compact the outlier plane.
	triple, err := sparse.Gather(outliers, c.cfg.DensityFactor)
	if err != nil {
		return nil, err
	}

	// Encode: histogram, book, chunked bitstream; the one recoverable
	// branch re-runs the codec at the 8-byte width.
	pardeg := c.cfg.Pardeg
	if pardeg == 0 {
		pardeg = huffman.DefaultPardeg(n)
	}
	hist := huffman.Histogram(quant, 2*c.cfg.Radius)

	var (
		enc     *huffman.Encoded
		byteVLE int32
	)
	if c.cfg.HuffBytes == 8 {
		enc, err = encodeWide(quant, hist, pardeg)
		byteVLE = 8
	} else {
		enc, byteVLE, err = encodeWithFallback(quant, hist, pardeg)
	}
	if err != nil {
		return nil, err
	}

	// Header fill: offsets become known only now, after every stage size
	// is observed.
	header := section.NewHeader(
		uint32(c.shape.X), uint32(c.shape.Y), uint32(c.shape.Z),
		eb, c.cfg.Radius, pardeg, c.cfg.DensityFactor, format.DTypeOf[T](),
	)
	header.ByteVLE = byteVLE
	header.FillEntries(0, enc.EncodedLen(), triple.EncodedLen())

	total := int(header.Entry[section.SubfileEnd])
	if total > sizeCap {
		return nil, fmt.Errorf("%w: %d bytes over cap %d", errs.ErrOutputInflation, total, sizeCap)
	}

	// Concat subfiles in entry order.
	engine := endian.GetLittleEndianEngine()
	archive := make([]byte, 0, total)
	archive = append(archive, header.Bytes()...)
	archive = enc.AppendTo(archive, engine)
	archive = triple.AppendTo(archive, engine)

	return archive, nil
}

// encodeWithFallback attempts the 4-byte code word width and falls back to
// the 8-byte width exactly once when the canonical book does not fit.
func encodeWithFallback(codes []uint16, hist []uint32, pardeg int) (*huffman.Encoded, int32, error) {
	book4, err := huffman.BuildBook[uint32](hist)
	if err == nil {
		enc, encErr := huffman.Encode(codes, book4, pardeg)
		if encErr != nil {
			return nil, 0, encErr
		}

		return enc, 4, nil
	}
	if !errors.Is(err, errs.ErrCodeTooLong) {
		return nil, 0, err
	}

	// The wide book is built lazily, only on this path.
	enc, err := encodeWide(codes, hist, pardeg)
	if err != nil {
		return nil, 0, err
	}

	return enc, 8, nil
}

// encodeWide runs the codec at the 8-byte code word width.
func encodeWide(codes []uint16, hist []uint32, pardeg int) (*huffman.Encoded, error) {
	book8, err := huffman.BuildBook[uint64](hist)
	if err != nil {
		return nil, err
	}

	return huffman.Encode(codes, book8, pardeg)
}
