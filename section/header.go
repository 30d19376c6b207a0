// Package section defines the fixed archive header and the entry table
// that addresses the archive's subfiles.
package section

import (
	"fmt"
	"math"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
)

// Header is the fixed-size descriptor at the start of every archive.
//
// All fields persist little-endian. Entry is cumulative: subfile k spans
// bytes [Entry[k], Entry[k+1]) and Entry[SubfileEnd] equals the archive
// size. The offsets are filled by the compressor after every stage size
// is known; a freshly constructed header carries only configuration.
type Header struct {
	X, Y, Z         uint32  // grid dimensions; unused ranks hold 1
	Radius          int32   // quantizer radius, alphabet is [0, 2*Radius)
	VLEPardeg       int32   // Huffman chunk count
	Eb              float64 // effective absolute error bound
	ByteVLE         int32   // Huffman code word width actually used, 4 or 8
	CodecsInUse     uint32  // codec bit set, see Codec*Bit
	NzDensityFactor int32   // inverse expected outlier density
	DType           format.DType
	Entry           [EntryCount]uint32
}

// NewHeader creates a header carrying the run configuration.
// Entry offsets are zero until the compressor fills them.
func NewHeader(x, y, z uint32, eb float64, radius, pardeg, densityFactor int, dtype format.DType) *Header {
	return &Header{
		X:               x,
		Y:               y,
		Z:               z,
		Radius:          int32(radius),
		VLEPardeg:       int32(pardeg),
		Eb:              eb,
		ByteVLE:         4,
		CodecsInUse:     CodecHuffmanBit | CodecSparseBit,
		NzDensityFactor: int32(densityFactor),
		DType:           dtype,
	}
}

// NumSamples returns the total sample count X*Y*Z.
func (h *Header) NumSamples() int {
	return int(h.X) * int(h.Y) * int(h.Z)
}

// Rank returns the array rank implied by the dimensions (1, 2 or 3).
func (h *Header) Rank() int {
	switch {
	case h.Z > 1:
		return 3
	case h.Y > 1:
		return 2
	default:
		return 1
	}
}

// SubfileLen returns the byte length of subfile k.
func (h *Header) SubfileLen(k int) int {
	return int(h.Entry[k+1]) - int(h.Entry[k])
}

// FillEntries computes the cumulative entry table from per-subfile byte
// counts. The header subfile is always HeaderSize bytes.
func (h *Header) FillEntries(anchorLen, vleLen, spfmtLen int) {
	sizes := [SubfileEnd]int{HeaderSize, anchorLen, vleLen, spfmtLen}

	h.Entry[0] = 0
	for k, n := range sizes {
		h.Entry[k+1] = h.Entry[k] + uint32(n)
	}
}

// Bytes serializes the header into a fresh HeaderSize byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.GetLittleEndianEngine()

	engine.PutUint32(b[offMagic:], Magic)
	engine.PutUint32(b[offVersion:], Version)
	engine.PutUint32(b[offDimX:], h.X)
	engine.PutUint32(b[offDimY:], h.Y)
	engine.PutUint32(b[offDimZ:], h.Z)
	engine.PutUint32(b[offRadius:], uint32(h.Radius))
	engine.PutUint32(b[offPardeg:], uint32(h.VLEPardeg))
	engine.PutUint64(b[offEb:], math.Float64bits(h.Eb))
	engine.PutUint32(b[offByteVLE:], uint32(h.ByteVLE))
	engine.PutUint32(b[offCodecs:], h.CodecsInUse)
	engine.PutUint32(b[offDensity:], uint32(h.NzDensityFactor))
	engine.PutUint32(b[offDType:], uint32(h.DType))
	engine.PutUint32(b[offHeaderNbyte:], HeaderSize)
	for k, e := range h.Entry {
		engine.PutUint32(b[offEntry+4*k:], e)
	}

	return b
}

// Parse deserializes and validates a header from exactly HeaderSize bytes.
//
// Returns:
//   - error: ErrInvalidHeaderSize on a short or long buffer, or
//     ErrHeaderInvalid describing the first offending field
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()

	if m := engine.Uint32(data[offMagic:]); m != Magic {
		return fmt.Errorf("%w: bad magic 0x%08x", errs.ErrHeaderInvalid, m)
	}
	if v := engine.Uint32(data[offVersion:]); v != Version {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrHeaderInvalid, v)
	}
	if n := engine.Uint32(data[offHeaderNbyte:]); n != HeaderSize {
		return fmt.Errorf("%w: header nbyte %d", errs.ErrHeaderInvalid, n)
	}

	h.X = engine.Uint32(data[offDimX:])
	h.Y = engine.Uint32(data[offDimY:])
	h.Z = engine.Uint32(data[offDimZ:])
	h.Radius = int32(engine.Uint32(data[offRadius:]))
	h.VLEPardeg = int32(engine.Uint32(data[offPardeg:]))
	h.Eb = math.Float64frombits(engine.Uint64(data[offEb:]))
	h.ByteVLE = int32(engine.Uint32(data[offByteVLE:]))
	h.CodecsInUse = engine.Uint32(data[offCodecs:])
	h.NzDensityFactor = int32(engine.Uint32(data[offDensity:]))
	h.DType = format.DType(engine.Uint32(data[offDType:]))
	for k := range h.Entry {
		h.Entry[k] = engine.Uint32(data[offEntry+4*k:])
	}

	return h.validate()
}

func (h *Header) validate() error {
	if h.X == 0 || h.Y == 0 || h.Z == 0 {
		return fmt.Errorf("%w: zero dimension %dx%dx%d", errs.ErrHeaderInvalid, h.X, h.Y, h.Z)
	}
	if h.Radius <= 0 {
		return fmt.Errorf("%w: radius %d", errs.ErrHeaderInvalid, h.Radius)
	}
	if h.VLEPardeg <= 0 {
		return fmt.Errorf("%w: pardeg %d", errs.ErrHeaderInvalid, h.VLEPardeg)
	}
	if !(h.Eb > 0) {
		return fmt.Errorf("%w: error bound %v", errs.ErrHeaderInvalid, h.Eb)
	}
	if h.ByteVLE != 4 && h.ByteVLE != 8 {
		return fmt.Errorf("%w: byte_vle %d", errs.ErrHeaderInvalid, h.ByteVLE)
	}
	if h.NzDensityFactor <= 0 {
		return fmt.Errorf("%w: density factor %d", errs.ErrHeaderInvalid, h.NzDensityFactor)
	}
	if h.DType != format.DTypeF4 && h.DType != format.DTypeF8 {
		return fmt.Errorf("%w: dtype %d", errs.ErrHeaderInvalid, h.DType)
	}
	if h.Entry[0] != 0 || h.Entry[SubfileAnchor] != HeaderSize {
		return fmt.Errorf("%w: entry table does not start at the header", errs.ErrHeaderInvalid)
	}
	for k := 0; k < SubfileEnd; k++ {
		if h.Entry[k] > h.Entry[k+1] {
			return fmt.Errorf("%w: entry[%d]=%d > entry[%d]=%d",
				errs.ErrHeaderInvalid, k, h.Entry[k], k+1, h.Entry[k+1])
		}
	}

	return nil
}

// ParseHeader parses a Header from the first HeaderSize bytes of a blob.
//
// Returns:
//   - Header: parsed header value
//   - error: ErrInvalidHeaderSize if the blob is shorter than a header,
//     or validation errors from Parse
func ParseHeader(blob []byte) (Header, error) {
	if len(blob) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	var h Header
	if err := h.Parse(blob[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
