// Package format defines the enumerated selectors shared by the archive
// header, the pipeline configuration, and the container layer.
package format

type (
	Mode            uint8
	PredictorType   uint8
	CompressionType uint8
	DType           uint8
)

const (
	ModeAbs Mode = 0x1 // ModeAbs treats the error bound as an absolute value.
	ModeR2R Mode = 0x2 // ModeR2R scales the error bound by the input value range.

	PredictorLorenzo PredictorType = 0x1 // PredictorLorenzo is the dual-output Lorenzo transform.
	PredictorSpline3 PredictorType = 0x2 // PredictorSpline3 is declared but has no implementation.

	CompressionNone CompressionType = 0x1 // CompressionNone stores the archive as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd seals the archive with Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 seals the archive with S2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 seals the archive with LZ4.

	DTypeF4 DType = 4 // DTypeF4 marks float32 samples.
	DTypeF8 DType = 8 // DTypeF8 marks float64 samples.
)

func (m Mode) String() string {
	switch m {
	case ModeAbs:
		return "abs"
	case ModeR2R:
		return "r2r"
	default:
		return "unknown"
	}
}

func (p PredictorType) String() string {
	switch p {
	case PredictorLorenzo:
		return "lorenzo"
	case PredictorSpline3:
		return "spline3"
	default:
		return "unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

func (d DType) String() string {
	switch d {
	case DTypeF4:
		return "f4"
	case DTypeF8:
		return "f8"
	default:
		return "unknown"
	}
}

// ParseMode maps a CLI mode selector to its Mode value.
// Returns ModeAbs, false for unknown selectors.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "abs":
		return ModeAbs, true
	case "r2r":
		return ModeR2R, true
	default:
		return ModeAbs, false
	}
}

// ParseCompression maps a CLI codec selector to its CompressionType value.
// Returns CompressionNone, false for unknown selectors.
func ParseCompression(s string) (CompressionType, bool) {
	switch s {
	case "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return CompressionNone, false
	}
}
