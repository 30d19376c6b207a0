package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
)

func newTestHeader() *Header {
	h := NewHeader(64, 32, 1, 1e-3, 512, 4, 4, format.DTypeF4)
	h.FillEntries(0, 4096, 256)

	return h
}

func TestNewHeader(t *testing.T) {
	h := NewHeader(64, 32, 1, 1e-3, 512, 4, 4, format.DTypeF4)

	require.Equal(t, int32(4), h.ByteVLE)
	require.Equal(t, 64*32, h.NumSamples())
	require.Equal(t, 2, h.Rank())
	require.Equal(t, uint32(CodecHuffmanBit|CodecSparseBit), h.CodecsInUse)
}

func TestHeader_FillEntries(t *testing.T) {
	h := newTestHeader()

	require.Equal(t, uint32(0), h.Entry[SubfileHeader])
	require.Equal(t, uint32(HeaderSize), h.Entry[SubfileAnchor])
	require.Equal(t, uint32(HeaderSize), h.Entry[SubfileVLE])
	require.Equal(t, uint32(HeaderSize+4096), h.Entry[SubfileSPFMT])
	require.Equal(t, uint32(HeaderSize+4096+256), h.Entry[SubfileEnd])
	require.Equal(t, 4096, h.SubfileLen(SubfileVLE))

	for k := 0; k < SubfileEnd; k++ {
		require.LessOrEqual(t, h.Entry[k], h.Entry[k+1])
	}
}

func TestHeader_RoundTrip(t *testing.T) {
	original := newTestHeader()
	original.ByteVLE = 8

	data := original.Bytes()
	require.Len(t, data, HeaderSize)

	parsed := &Header{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, *original, *parsed)
}

func TestHeader_SerializationIdempotent(t *testing.T) {
	// Parsing and rewriting a header yields the same bytes.
	data := newTestHeader().Bytes()

	parsed := &Header{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, data, parsed.Bytes())
}

func TestHeader_Parse(t *testing.T) {
	t.Run("invalid size", func(t *testing.T) {
		h := &Header{}
		require.ErrorIs(t, h.Parse([]byte{1, 2, 3}), errs.ErrInvalidHeaderSize)
	})

	t.Run("bad magic", func(t *testing.T) {
		data := newTestHeader().Bytes()
		data[0] ^= 0xFF

		h := &Header{}
		require.ErrorIs(t, h.Parse(data), errs.ErrHeaderInvalid)
	})

	t.Run("unsupported version", func(t *testing.T) {
		hdr := newTestHeader()
		data := hdr.Bytes()
		data[offVersion] = 0xEE

		h := &Header{}
		require.ErrorIs(t, h.Parse(data), errs.ErrHeaderInvalid)
	})

	t.Run("zero dimension", func(t *testing.T) {
		hdr := newTestHeader()
		hdr.Y = 0
		h := &Header{}
		require.ErrorIs(t, h.Parse(hdr.Bytes()), errs.ErrHeaderInvalid)
	})

	t.Run("bad byte_vle", func(t *testing.T) {
		hdr := newTestHeader()
		hdr.ByteVLE = 6
		h := &Header{}
		require.ErrorIs(t, h.Parse(hdr.Bytes()), errs.ErrHeaderInvalid)
	})

	t.Run("bad dtype", func(t *testing.T) {
		hdr := newTestHeader()
		hdr.DType = format.DType(3)
		h := &Header{}
		require.ErrorIs(t, h.Parse(hdr.Bytes()), errs.ErrHeaderInvalid)
	})

	t.Run("non-monotonic entries", func(t *testing.T) {
		hdr := newTestHeader()
		hdr.Entry[SubfileSPFMT] = hdr.Entry[SubfileEnd] + 100

		h := &Header{}
		require.ErrorIs(t, h.Parse(hdr.Bytes()), errs.ErrHeaderInvalid)
	})
}

func TestParseHeader(t *testing.T) {
	blob := append(newTestHeader().Bytes(), make([]byte, 64)...)

	h, err := ParseHeader(blob)
	require.NoError(t, err)
	require.Equal(t, uint32(64), h.X)

	_, err = ParseHeader(blob[:HeaderSize-1])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}
