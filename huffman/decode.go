package huffman

import (
	"fmt"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/internal/work"
)

// decodeTable is the canonical decoding view rebuilt from the serialized
// per-length counts: the first code and symbol base per length. It is
// width-agnostic; codes are tracked in a uint64 regardless of the width
// that produced the stream.
type decodeTable struct {
	maxLen  int
	first   []uint64 // first canonical code of each length
	limit   []uint64 // one past the last canonical code of each length
	symBase []int    // index into symbols of each length's first symbol
	symbols []uint16
}

func newDecodeTable(countPerLen []uint32, symbols []uint16) decodeTable {
	maxLen := len(countPerLen) - 1
	t := decodeTable{
		maxLen:  maxLen,
		first:   make([]uint64, maxLen+1),
		limit:   make([]uint64, maxLen+1),
		symBase: make([]int, maxLen+1),
		symbols: symbols,
	}

	var code uint64
	base := 0
	for l := 1; l <= maxLen; l++ {
		t.first[l] = code
		t.limit[l] = code + uint64(countPerLen[l])
		t.symBase[l] = base
		base += int(countPerLen[l])
		code = (code + uint64(countPerLen[l])) << 1
	}

	return t
}

// bitReader walks a chunk's bits MSB-first.
type bitReader struct {
	data   []byte
	bitPos uint64
}

func (r *bitReader) next() uint64 {
	b := r.data[r.bitPos>>3]
	bit := uint64(b>>(7-r.bitPos&7)) & 1
	r.bitPos++

	return bit
}

// Decode deserializes a stream produced by Encode and decodes all symbols
// into out, which must hold the original symbol count.
//
// Returns:
//   - error: ErrCorruptedPayload on any structural mismatch or an
//     undecodable code word
func Decode(payload []byte, engine endian.EndianEngine, out []uint16) error {
	if len(payload) < 24 {
		return fmt.Errorf("%w: vle blob shorter than its preamble", errs.ErrCorruptedPayload)
	}

	booklen := int(engine.Uint32(payload[0:4]))
	pardeg := int(engine.Uint32(payload[4:8]))
	sublen := int(engine.Uint32(payload[8:12]))
	maxLen := int(engine.Uint32(payload[12:16]))
	numSymbols := int(engine.Uint64(payload[16:24]))

	if pardeg <= 0 || sublen <= 0 || maxLen <= 0 || maxLen > 63 {
		return fmt.Errorf("%w: vle preamble pardeg=%d sublen=%d maxlen=%d",
			errs.ErrCorruptedPayload, pardeg, sublen, maxLen)
	}
	if numSymbols != len(out) {
		return fmt.Errorf("%w: vle symbol count %d, want %d", errs.ErrCorruptedPayload, numSymbols, len(out))
	}

	at := 24
	if len(payload) < at+4*maxLen {
		return fmt.Errorf("%w: vle table truncated", errs.ErrCorruptedPayload)
	}
	countPerLen := make([]uint32, maxLen+1)
	active := 0
	for l := 1; l <= maxLen; l++ {
		countPerLen[l] = engine.Uint32(payload[at:])
		active += int(countPerLen[l])
		at += 4
	}

	if active == 0 || len(payload) < at+2*active+12*pardeg {
		return fmt.Errorf("%w: vle table truncated", errs.ErrCorruptedPayload)
	}
	symbols := make([]uint16, active)
	for i := range symbols {
		sym := engine.Uint16(payload[at:])
		if int(sym) >= booklen {
			return fmt.Errorf("%w: vle symbol %d outside book of %d", errs.ErrCorruptedPayload, sym, booklen)
		}
		symbols[i] = sym
		at += 2
	}

	chunkBits := make([]uint32, pardeg)
	for c := range chunkBits {
		chunkBits[c] = engine.Uint32(payload[at:])
		at += 4
	}
	chunkOffsets := make([]uint64, pardeg)
	for c := range chunkOffsets {
		chunkOffsets[c] = engine.Uint64(payload[at:])
		at += 8
	}

	bitstream := payload[at:]
	for c := 0; c < pardeg; c++ {
		end := chunkOffsets[c] + (uint64(chunkBits[c])+7)/8
		if end > uint64(len(bitstream)) {
			return fmt.Errorf("%w: chunk %d spans past the bitstream", errs.ErrCorruptedPayload, c)
		}
	}

	table := newDecodeTable(countPerLen, symbols)
	chunkErrs := make([]error, pardeg)

	work.ParallelUnits(pardeg, func(c int) {
		lo := c * sublen
		hi := min(lo+sublen, numSymbols)
		if lo >= hi {
			return
		}

		r := bitReader{data: bitstream[chunkOffsets[c]:]}
		budget := uint64(chunkBits[c])

		for i := lo; i < hi; i++ {
			var code uint64
			length := 0
			for {
				if r.bitPos >= budget {
					chunkErrs[c] = fmt.Errorf("%w: chunk %d exhausted mid-symbol", errs.ErrCorruptedPayload, c)
					return
				}
				code = code<<1 | r.next()
				length++
				if length > table.maxLen {
					chunkErrs[c] = fmt.Errorf("%w: code longer than %d bits", errs.ErrCorruptedPayload, table.maxLen)
					return
				}
				if code >= table.first[length] && code < table.limit[length] {
					out[i] = table.symbols[table.symBase[length]+int(code-table.first[length])]
					break
				}
			}
		}
	})

	for _, err := range chunkErrs {
		if err != nil {
			return err
		}
	}

	return nil
}
