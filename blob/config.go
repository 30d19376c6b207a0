package blob

import (
	"fmt"

	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
)

const (
	// DefaultRadius is the default quantizer radius; the code alphabet is
	// [0, 2*DefaultRadius).
	DefaultRadius = 512

	// DefaultDensityFactor bounds the outlier count to 1/4 of the samples.
	DefaultDensityFactor = 4

	// maxRadius keeps the code alphabet inside the uint16 quant-code
	// width: the largest code 2*radius-1 must fit 16 bits.
	maxRadius = 32768
)

// Config carries the pipeline parameters for one compressor.
type Config struct {
	Mode          format.Mode
	Eb            float64
	Radius        int
	Pardeg        int // 0 selects one Huffman chunk per 32k symbols
	Predictor     format.PredictorType
	DensityFactor int
	HuffBytes     int // starting Huffman code word width, 4 or 8
}

// Option configures a Config.
type Option func(*Config) error

// NewConfig builds a validated Config from the defaults and options.
//
// Returns:
//   - *Config: validated configuration
//   - error: the first option error, or a validation sentinel from errs
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		Mode:          format.ModeAbs,
		Radius:        DefaultRadius,
		Predictor:     format.PredictorLorenzo,
		DensityFactor: DefaultDensityFactor,
		HuffBytes:     4,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !(c.Eb > 0) {
		return fmt.Errorf("%w: %v", errs.ErrInvalidErrorBound, c.Eb)
	}
	if c.Radius <= 0 || c.Radius > maxRadius {
		return fmt.Errorf("%w: %d (max %d)", errs.ErrInvalidRadius, c.Radius, maxRadius)
	}
	if c.Pardeg < 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidPardeg, c.Pardeg)
	}
	if c.DensityFactor <= 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidDensityFactor, c.DensityFactor)
	}
	if c.HuffBytes != 4 && c.HuffBytes != 8 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidHuffWidth, c.HuffBytes)
	}

	switch c.Predictor {
	case format.PredictorLorenzo:
	case format.PredictorSpline3:
		// Declared in the selector space but not implemented.
		return fmt.Errorf("%w: %s", errs.ErrPredictorUnsupported, c.Predictor)
	default:
		return fmt.Errorf("%w: predictor %d", errs.ErrPredictorUnsupported, uint8(c.Predictor))
	}

	return nil
}

// WithMode selects the error bound interpretation (abs or r2r).
func WithMode(mode format.Mode) Option {
	return func(c *Config) error {
		c.Mode = mode
		return nil
	}
}

// WithErrorBound sets the error bound. In r2r mode the bound is scaled by
// the input value range at compression time.
func WithErrorBound(eb float64) Option {
	return func(c *Config) error {
		c.Eb = eb
		return nil
	}
}

// WithRadius sets the quantizer radius.
func WithRadius(radius int) Option {
	return func(c *Config) error {
		c.Radius = radius
		return nil
	}
}

// WithPardeg pins the Huffman chunk count instead of deriving it from the
// sample count.
func WithPardeg(pardeg int) Option {
	return func(c *Config) error {
		c.Pardeg = pardeg
		return nil
	}
}

// WithPredictor selects the predictor.
func WithPredictor(p format.PredictorType) Option {
	return func(c *Config) error {
		c.Predictor = p
		return nil
	}
}

// WithDensityFactor sets the inverse expected outlier density.
func WithDensityFactor(factor int) Option {
	return func(c *Config) error {
		c.DensityFactor = factor
		return nil
	}
}

// WithHuffBytes sets the starting Huffman code word width. The 4-byte
// default falls back to 8 at runtime when a code does not fit; selecting
// 8 here skips the narrow attempt entirely.
func WithHuffBytes(nbyte int) Option {
	return func(c *Config) error {
		c.HuffBytes = nbyte
		return nil
	}
}
