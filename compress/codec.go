// Package compress provides the lossless codecs used to seal a finished
// archive for at-rest storage.
//
// Sealing is strictly outside the archive boundary: the core pipeline
// emits an uncompressed, checksum-free archive, and the CLI (or any other
// caller) may wrap that byte stream in a container frame whose payload is
// run through one of these codecs. The archive format itself never changes.
package compress

import (
	"fmt"

	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
)

// Compressor compresses a whole archive payload.
//
// Memory management: the returned slice is newly allocated and owned by
// the caller (except for the no-op codec, which passes the input
// through); the input is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor inverts Compressor for the same codec.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// GetCodec returns the built-in Codec for a compression selector.
//
// Returns:
//   - Codec: codec instance
//   - error: ErrUnknownCodec for selectors outside the format enum
func GetCodec(ct format.CompressionType) (Codec, error) {
	switch ct {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownCodec, uint8(ct))
	}
}
