package compress

// ZstdCompressor seals archives with Zstandard, the strongest of the
// built-in codecs. Two backends share this front type: a cgo binding
// selected by the cgozstd build tag and a pure-Go default.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
