// Package endian provides byte order utilities for the archive layout.
//
// The lorza archive is little-endian on disk. This package combines the
// standard library's ByteOrder and AppendByteOrder interfaces into a single
// EndianEngine so header and subfile serializers can both write into fixed
// offsets and append to growing buffers through one handle.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it, so an engine is
// a zero-cost value handle that serializers copy freely.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
// All persisted lorza structures use this engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
// Provided for tooling that inspects foreign byte streams; the archive
// format itself never uses it.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
