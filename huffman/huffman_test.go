package huffman

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
)

// fibHistogram returns weights 1, 1, 2, 3, 5, ... over count symbols.
// Fibonacci weights force the canonical tree into its worst-case depth of
// count-1 bits, which is how the width limit is exercised without a
// multi-million-sample stream.
func fibHistogram(count int) []uint32 {
	hist := make([]uint32, count)
	a, b := uint32(1), uint32(1)
	for i := range hist {
		hist[i] = a
		a, b = b, a+b
	}

	return hist
}

func TestHistogram(t *testing.T) {
	codes := []uint16{1, 1, 3, 0, 1, 3}

	hist := Histogram(codes, 4)
	require.Equal(t, []uint32{1, 3, 0, 2}, hist)
}

func TestHistogram_Large(t *testing.T) {
	codes := make([]uint16, 100000)
	for i := range codes {
		codes[i] = uint16(i % 7)
	}

	hist := Histogram(codes, 8)
	var total uint32
	for _, c := range hist {
		total += c
	}
	require.Equal(t, uint32(len(codes)), total)
	require.Zero(t, hist[7])
}

func TestBuildBook_Canonical(t *testing.T) {
	// Weights chosen so lengths are unambiguous: symbol 2 dominates.
	hist := []uint32{10, 1, 40, 1}

	book, err := BuildBook[uint32](hist)
	require.NoError(t, err)

	// Shorter codes for heavier symbols.
	require.Less(t, book.Lens[2], book.Lens[1])
	require.Less(t, book.Lens[2], book.Lens[3])

	// Canonical order: ascending length, then ascending symbol id.
	require.Equal(t, []uint16{2, 0, 1, 3}, book.SymbolsByLen)

	// Codes within one length are consecutive and ascending by symbol.
	require.Equal(t, book.Lens[1], book.Lens[3])
	require.Equal(t, book.Codes[1]+1, book.Codes[3])
}

func TestBuildBook_SingleSymbol(t *testing.T) {
	hist := make([]uint32, 16)
	hist[5] = 1000

	book, err := BuildBook[uint32](hist)
	require.NoError(t, err)
	require.Equal(t, 1, book.MaxLen)
	require.Equal(t, uint8(1), book.Lens[5])
	require.Equal(t, []uint16{5}, book.SymbolsByLen)
}

func TestBuildBook_TieBreakDeterminism(t *testing.T) {
	// All weights equal: two builds must agree bit for bit.
	hist := []uint32{7, 7, 7, 7, 7, 7}

	a, err := BuildBook[uint32](hist)
	require.NoError(t, err)
	b, err := BuildBook[uint32](hist)
	require.NoError(t, err)

	require.Equal(t, a.Codes, b.Codes)
	require.Equal(t, a.Lens, b.Lens)
	require.Equal(t, a.SymbolsByLen, b.SymbolsByLen)
}

func TestBuildBook_WidthOverflow(t *testing.T) {
	hist := fibHistogram(34) // depth 33 > the 31-bit uint32 limit

	_, err := BuildBook[uint32](hist)
	require.ErrorIs(t, err, errs.ErrCodeTooLong)

	book, err := BuildBook[uint64](hist)
	require.NoError(t, err)
	require.Greater(t, book.MaxLen, 31)
	require.LessOrEqual(t, book.MaxLen, 63)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	rng := rand.New(rand.NewSource(7))
	codes := make([]uint16, 200000)
	for i := range codes {
		// Skewed distribution over a 1024-symbol alphabet.
		codes[i] = uint16(rng.ExpFloat64() * 40)
		if codes[i] >= 1024 {
			codes[i] = 1023
		}
	}

	hist := Histogram(codes, 1024)
	book, err := BuildBook[uint32](hist)
	require.NoError(t, err)

	pardeg := DefaultPardeg(len(codes))
	require.Greater(t, pardeg, 1)

	enc, err := Encode(codes, book, pardeg)
	require.NoError(t, err)
	require.Equal(t, pardeg, len(enc.ChunkBits))

	// Chunk offsets are byte-aligned prefix sums of the chunk footprints.
	for c := 1; c < pardeg; c++ {
		expect := enc.ChunkOffsets[c-1] + (uint64(enc.ChunkBits[c-1])+7)/8
		require.Equal(t, expect, enc.ChunkOffsets[c])
	}

	payload := enc.AppendTo(nil, engine)
	require.Len(t, payload, enc.EncodedLen())

	out := make([]uint16, len(codes))
	require.NoError(t, Decode(payload, engine, out))
	require.Equal(t, codes, out)
}

func TestEncodeDecode_SingleChunkSingleSymbol(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	codes := make([]uint16, 100) // all zeros: one-symbol book
	hist := Histogram(codes, 8)
	book, err := BuildBook[uint32](hist)
	require.NoError(t, err)

	enc, err := Encode(codes, book, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(100), enc.ChunkBits[0]) // one bit per symbol

	out := make([]uint16, 100)
	require.NoError(t, Decode(enc.AppendTo(nil, engine), engine, out))
	require.Equal(t, codes, out)
}

func TestEncodeDecode_WideCodes(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	// A 40-symbol Fibonacci book pushes codes past 32 bits; the stream
	// touches every symbol so the longest codes are really exercised.
	hist := fibHistogram(40)
	book, err := BuildBook[uint64](hist)
	require.NoError(t, err)

	codes := make([]uint16, 40)
	for i := range codes {
		codes[i] = uint16(i)
	}

	enc, err := Encode(codes, book, 2)
	require.NoError(t, err)

	out := make([]uint16, len(codes))
	require.NoError(t, Decode(enc.AppendTo(nil, engine), engine, out))
	require.Equal(t, codes, out)
}

func TestDecode_Corrupted(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	codes := []uint16{1, 2, 3, 1, 2, 3, 1, 1}
	hist := Histogram(codes, 4)
	book, err := BuildBook[uint32](hist)
	require.NoError(t, err)
	enc, err := Encode(codes, book, 2)
	require.NoError(t, err)
	payload := enc.AppendTo(nil, engine)

	t.Run("short preamble", func(t *testing.T) {
		out := make([]uint16, len(codes))
		require.ErrorIs(t, Decode(payload[:10], engine, out), errs.ErrCorruptedPayload)
	})

	t.Run("wrong symbol count", func(t *testing.T) {
		out := make([]uint16, len(codes)+1)
		require.ErrorIs(t, Decode(payload, engine, out), errs.ErrCorruptedPayload)
	})

	t.Run("truncated bitstream", func(t *testing.T) {
		out := make([]uint16, len(codes))
		require.ErrorIs(t, Decode(payload[:len(payload)-1], engine, out), errs.ErrCorruptedPayload)
	})
}

func TestMaxCodeLen(t *testing.T) {
	require.Equal(t, 31, MaxCodeLen[uint32]())
	require.Equal(t, 63, MaxCodeLen[uint64]())
}
