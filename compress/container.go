package compress

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
)

// ContainerMagic identifies a sealed container frame, "LRZC" read as a
// little-endian uint32 at byte offset 0. The archive's own magic differs,
// so the two layouts are distinguishable from their first four bytes.
const ContainerMagic uint32 = 0x435A524C

// containerHeaderSize is the fixed frame preamble: magic, codec selector,
// xxhash64 digest of the raw archive, and its uncompressed length.
const containerHeaderSize = 4 + 1 + 8 + 8

// Seal wraps a finished archive in a container frame, compressing the
// payload with the selected codec and recording an xxhash64 digest of the
// raw archive for validation on Open.
//
// Returns:
//   - []byte: container frame
//   - error: ErrUnknownCodec, or codec failures
func Seal(archive []byte, ct format.CompressionType) ([]byte, error) {
	codec, err := GetCodec(ct)
	if err != nil {
		return nil, err
	}

	payload, err := codec.Compress(archive)
	if err != nil {
		return nil, fmt.Errorf("sealing with %s failed: %w", ct, err)
	}

	engine := endian.GetLittleEndianEngine()
	frame := make([]byte, 0, containerHeaderSize+len(payload))
	frame = engine.AppendUint32(frame, ContainerMagic)
	frame = append(frame, byte(ct))
	frame = engine.AppendUint64(frame, xxhash.Sum64(archive))
	frame = engine.AppendUint64(frame, uint64(len(archive)))

	return append(frame, payload...), nil
}

// Open unwraps a container frame back into the raw archive, validating
// the recorded digest.
//
// Returns:
//   - []byte: raw archive bytes
//   - error: ErrContainerInvalid on a bad magic or length,
//     ErrUnknownCodec, codec failures, or ErrChecksumMismatch when the
//     unsealed bytes do not match the recorded digest
func Open(frame []byte) ([]byte, error) {
	engine := endian.GetLittleEndianEngine()

	if len(frame) < containerHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrContainerInvalid, len(frame))
	}
	if m := engine.Uint32(frame[0:4]); m != ContainerMagic {
		return nil, fmt.Errorf("%w: bad magic 0x%08x", errs.ErrContainerInvalid, m)
	}

	ct := format.CompressionType(frame[4])
	digest := engine.Uint64(frame[5:13])
	rawLen := engine.Uint64(frame[13:21])

	codec, err := GetCodec(ct)
	if err != nil {
		return nil, err
	}

	archive, err := codec.Decompress(frame[containerHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("opening %s container failed: %w", ct, err)
	}

	if uint64(len(archive)) != rawLen {
		return nil, fmt.Errorf("%w: %d bytes unsealed, frame records %d",
			errs.ErrContainerInvalid, len(archive), rawLen)
	}
	if xxhash.Sum64(archive) != digest {
		return nil, errs.ErrChecksumMismatch
	}

	return archive, nil
}

// IsContainer reports whether the byte stream starts with the container
// magic, letting tools accept sealed and raw archives interchangeably.
func IsContainer(data []byte) bool {
	return len(data) >= 4 && endian.GetLittleEndianEngine().Uint32(data) == ContainerMagic
}
