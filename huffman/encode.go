package huffman

import (
	"fmt"
	"math"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/internal/pool"
	"github.com/lorza/lorza/internal/work"
)

// Encoded is a chunked Huffman bitstream plus everything the decoder
// needs: the width-agnostic canonical table and per-chunk metadata.
type Encoded struct {
	Booklen    int
	Pardeg     int
	Sublen     int
	NumSymbols int
	MaxLen     int

	// Canonical decode table: symbol count per code length (1..MaxLen)
	// and the active symbols in canonical order.
	CountPerLen  []uint32
	SymbolsByLen []uint16

	// Per-chunk exact bit length and starting byte offset into Bitstream.
	// Chunks pack at byte-aligned boundaries.
	ChunkBits    []uint32
	ChunkOffsets []uint64

	Bitstream []byte
}

// DefaultPardeg returns the chunk count for n symbols: one chunk per 32k
// symbols, at least one.
func DefaultPardeg(n int) int {
	const symbolsPerChunk = 32 * 1024

	pardeg := (n + symbolsPerChunk - 1) / symbolsPerChunk
	if pardeg < 1 {
		pardeg = 1
	}

	return pardeg
}

// bitWriter packs MSB-first code words into a byte buffer.
// Grounded on the accumulate-and-drain bit buffer used by XOR float
// encoders: bits collect in acc and full bytes drain greedily, so acc
// never holds more than 39 live bits.
type bitWriter struct {
	buf  *pool.ByteBuffer
	acc  uint64
	nbit int // live bits in acc, < 8 between writes
	bits uint64
}

func (w *bitWriter) writeBits(code uint64, length int) {
	w.bits += uint64(length)
	for length > 32 {
		half := length - 32
		w.write32(code>>32, half)
		code &= (1 << 32) - 1
		length = 32
	}
	w.write32(code, length)
}

func (w *bitWriter) write32(code uint64, length int) {
	if length == 0 {
		return
	}
	w.acc = w.acc<<length | code
	w.nbit += length
	for w.nbit >= 8 {
		w.nbit -= 8
		w.buf.AppendByte(byte(w.acc >> w.nbit))
	}
}

// flush pads the trailing partial byte with zeros.
func (w *bitWriter) flush() {
	if w.nbit > 0 {
		w.buf.AppendByte(byte(w.acc << (8 - w.nbit)))
		w.nbit = 0
	}
}

// Encode packs the symbol stream into pardeg byte-aligned chunks using
// the book's canonical codes.
//
// Returns:
//   - *Encoded: stream, table and chunk metadata ready to serialize
//   - error: ErrChunkOverflow if a chunk's bit length exceeds uint32
func Encode[W CodeWord](codes []uint16, book *Book[W], pardeg int) (*Encoded, error) {
	n := len(codes)
	sublen := (n + pardeg - 1) / pardeg

	enc := &Encoded{
		Booklen:      len(book.Lens),
		Pardeg:       pardeg,
		Sublen:       sublen,
		NumSymbols:   n,
		MaxLen:       book.MaxLen,
		CountPerLen:  book.CountPerLen,
		SymbolsByLen: book.SymbolsByLen,
		ChunkBits:    make([]uint32, pardeg),
		ChunkOffsets: make([]uint64, pardeg),
	}

	chunks := make([][]byte, pardeg)
	chunkErrs := make([]error, pardeg)

	work.ParallelUnits(pardeg, func(c int) {
		lo := c * sublen
		hi := min(lo+sublen, n)
		if lo >= hi {
			chunks[c] = nil
			return
		}

		buf := pool.GetByteBuffer()
		defer pool.PutByteBuffer(buf)

		w := bitWriter{buf: buf}
		for _, sym := range codes[lo:hi] {
			w.writeBits(uint64(book.Codes[sym]), int(book.Lens[sym]))
		}
		w.flush()

		if w.bits > math.MaxUint32 {
			chunkErrs[c] = fmt.Errorf("%w: chunk %d holds %d bits", errs.ErrChunkOverflow, c, w.bits)
			return
		}
		enc.ChunkBits[c] = uint32(w.bits)

		// Copy out: the pooled buffer is reused by the next worker.
		out := make([]byte, buf.Len())
		copy(out, buf.Bytes())
		chunks[c] = out
	})

	for _, err := range chunkErrs {
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for c, chunk := range chunks {
		enc.ChunkOffsets[c] = uint64(total)
		total += len(chunk)
	}
	enc.Bitstream = make([]byte, 0, total)
	for _, chunk := range chunks {
		enc.Bitstream = append(enc.Bitstream, chunk...)
	}

	return enc, nil
}

// EncodedLen returns the serialized byte footprint of the stream.
func (e *Encoded) EncodedLen() int {
	return 24 + 4*e.MaxLen + 2*len(e.SymbolsByLen) + 12*e.Pardeg + len(e.Bitstream)
}

// AppendTo serializes the stream and appends it to buf.
func (e *Encoded) AppendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, uint32(e.Booklen))
	buf = engine.AppendUint32(buf, uint32(e.Pardeg))
	buf = engine.AppendUint32(buf, uint32(e.Sublen))
	buf = engine.AppendUint32(buf, uint32(e.MaxLen))
	buf = engine.AppendUint64(buf, uint64(e.NumSymbols))
	for l := 1; l <= e.MaxLen; l++ {
		buf = engine.AppendUint32(buf, e.CountPerLen[l])
	}
	for _, sym := range e.SymbolsByLen {
		buf = engine.AppendUint16(buf, sym)
	}
	for _, bits := range e.ChunkBits {
		buf = engine.AppendUint32(buf, bits)
	}
	for _, off := range e.ChunkOffsets {
		buf = engine.AppendUint64(buf, off)
	}

	return append(buf, e.Bitstream...)
}
