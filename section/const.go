package section

const (
	// Magic is the archive magic number, "LRZA" read as a little-endian
	// uint32 at byte offset 0.
	Magic uint32 = 0x415A524C

	// Version is the current archive format version.
	Version uint32 = 1

	// HeaderSize is the fixed header size in bytes. Fields occupy the
	// first 76 bytes; the remainder is zero padding reserved for future
	// fields.
	HeaderSize = 128
)

// Subfile slots of the archive entry table. Subfile k spans bytes
// [entry[k], entry[k+1]) of the blob; entry[SubfileEnd] is the total
// archive size.
const (
	SubfileHeader = 0 // fixed 128-byte header
	SubfileAnchor = 1 // anchor plane, empty in the default path
	SubfileVLE    = 2 // Huffman table, chunk metadata and bitstream
	SubfileSPFMT  = 3 // sparse outlier blob
	SubfileEnd    = 4 // one-past-last slot, holds the archive size

	// EntryCount is the number of entry table slots (SubfileEnd + 1).
	EntryCount = SubfileEnd + 1
)

// Field byte offsets within the header.
const (
	offMagic       = 0
	offVersion     = 4
	offDimX        = 8
	offDimY        = 12
	offDimZ        = 16
	offRadius      = 20
	offPardeg      = 24
	offEb          = 28
	offByteVLE     = 36
	offCodecs      = 40
	offDensity     = 44
	offDType       = 48
	offHeaderNbyte = 52
	offEntry       = 56
)

// Codec bits recorded in the CodecsInUse field.
const (
	CodecHuffmanBit = 1 << 0 // coarse-grained Huffman over quant codes
	CodecSparseBit  = 1 << 1 // CSR sparse outlier subfile present
)
