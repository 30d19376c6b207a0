// Package errs defines the sentinel errors shared across lorza packages.
//
// Call sites wrap these with fmt.Errorf("%w: ...") to attach context while
// keeping errors.Is dispatch working for callers.
package errs

import "errors"

// Configuration errors. Returned before any pipeline stage runs.
var (
	// ErrInvalidDims indicates a zero or negative dimension, or a sample
	// count that does not match the shape.
	ErrInvalidDims = errors.New("invalid dimensions")

	// ErrInvalidErrorBound indicates a non-positive error bound.
	ErrInvalidErrorBound = errors.New("invalid error bound")

	// ErrInvalidRadius indicates a non-positive quantizer radius, or a
	// radius whose code alphabet exceeds the uint16 quant-code width.
	ErrInvalidRadius = errors.New("invalid radius")

	// ErrInvalidPardeg indicates a negative Huffman parallelism degree.
	ErrInvalidPardeg = errors.New("invalid pardeg")

	// ErrInvalidDensityFactor indicates a non-positive outlier density factor.
	ErrInvalidDensityFactor = errors.New("invalid density factor")

	// ErrInvalidHuffWidth indicates a Huffman code word width other than
	// 4 or 8 bytes.
	ErrInvalidHuffWidth = errors.New("invalid huffman code word width")

	// ErrPredictorUnsupported indicates a predictor that is declared but
	// has no implementation (spline-3).
	ErrPredictorUnsupported = errors.New("predictor not supported")
)

// Capacity errors raised by pipeline stages.
var (
	// ErrOutlierCapacity indicates the outlier count exceeded
	// n/densityFactor. Fatal; the caller must raise the factor and retry.
	ErrOutlierCapacity = errors.New("outlier capacity exceeded")

	// ErrCodeTooLong indicates a canonical Huffman code does not fit the
	// requested code word width. Recoverable once by re-encoding at the
	// 8-byte width.
	ErrCodeTooLong = errors.New("huffman code too long for code word width")

	// ErrChunkOverflow indicates an encoded chunk's bit length exceeded
	// the uint32 metadata field. Fatal.
	ErrChunkOverflow = errors.New("huffman chunk bit length overflow")

	// ErrOutputInflation indicates the archive would exceed half the
	// input's byte size. Producing inflated output is a usage error.
	ErrOutputInflation = errors.New("compressed output would exceed size cap")
)

// Archive and header errors raised on decompression.
var (
	// ErrInvalidHeaderSize indicates a header buffer that is not exactly
	// section.HeaderSize bytes.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrHeaderInvalid indicates a bad magic number, an unknown version,
	// a non-monotonic entry table, or inconsistent header fields.
	ErrHeaderInvalid = errors.New("invalid header")

	// ErrArchiveTruncated indicates the blob is shorter than the header's
	// entry table claims.
	ErrArchiveTruncated = errors.New("archive truncated")

	// ErrCorruptedPayload indicates a subfile that cannot be parsed back
	// into its stage representation.
	ErrCorruptedPayload = errors.New("corrupted subfile payload")
)

// Container errors raised by the at-rest seal/open layer.
var (
	// ErrUnknownCodec indicates a compression selector the container does
	// not recognize.
	ErrUnknownCodec = errors.New("unknown compression codec")

	// ErrContainerInvalid indicates a container frame with a bad magic or
	// a truncated layout.
	ErrContainerInvalid = errors.New("invalid container frame")

	// ErrChecksumMismatch indicates the unsealed archive does not match
	// the digest recorded in the container frame.
	ErrChecksumMismatch = errors.New("container checksum mismatch")
)
