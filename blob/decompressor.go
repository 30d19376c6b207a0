package blob

import (
	"fmt"

	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
	"github.com/lorza/lorza/huffman"
	"github.com/lorza/lorza/internal/pool"
	"github.com/lorza/lorza/predict"
	"github.com/lorza/lorza/section"
	"github.com/lorza/lorza/sparse"
)

// InspectHeader parses and validates the archive header so callers can
// size their output buffer before decompressing.
//
// Returns:
//   - section.Header: validated header
//   - error: header validation errors, or ErrArchiveTruncated /
//     ErrHeaderInvalid when the entry table disagrees with the blob length
func InspectHeader(archive []byte) (section.Header, error) {
	header, err := section.ParseHeader(archive)
	if err != nil {
		return section.Header{}, err
	}

	total := int(header.Entry[section.SubfileEnd])
	if len(archive) < total {
		return section.Header{}, fmt.Errorf("%w: %d bytes, entry table claims %d",
			errs.ErrArchiveTruncated, len(archive), total)
	}
	if len(archive) > total {
		return section.Header{}, fmt.Errorf("%w: %d trailing bytes past entry[END]",
			errs.ErrHeaderInvalid, len(archive)-total)
	}

	return header, nil
}

// Decompress inverts the pipeline, writing reconstructed samples into dst.
//
// The sparse scatter and the Huffman decode carry no data dependency on
// each other; the predictor reconstruction consumes both and runs last.
//
// Returns:
//   - error: header/archive validation errors, ErrHeaderInvalid on a
//     sample-type mismatch, ErrInvalidDims if dst does not match the
//     archived shape, or ErrCorruptedPayload from either subfile
func Decompress[T format.Float](archive []byte, dst []T) error {
	header, err := InspectHeader(archive)
	if err != nil {
		return err
	}

	if header.DType != format.DTypeOf[T]() {
		return fmt.Errorf("%w: archive dtype %s does not match output sample type",
			errs.ErrHeaderInvalid, header.DType)
	}

	n := header.NumSamples()
	if len(dst) != n {
		return fmt.Errorf("%w: %d output samples for shape %dx%dx%d",
			errs.ErrInvalidDims, len(dst), header.X, header.Y, header.Z)
	}

	engine := endian.GetLittleEndianEngine()
	vle := archive[header.Entry[section.SubfileVLE]:header.Entry[section.SubfileSPFMT]]
	spfmt := archive[header.Entry[section.SubfileSPFMT]:header.Entry[section.SubfileEnd]]

	// Scatter the sparse blob back into the dense outlier plane.
	triple, err := sparse.Parse[T](spfmt, n, engine)
	if err != nil {
		return err
	}
	outliers := make([]T, n)
	triple.Scatter(outliers)

	// Decode the quant codes.
	quant, releaseQuant := pool.GetUint16Slice(n)
	defer releaseQuant()
	if err := huffman.Decode(vle, engine, quant); err != nil {
		return err
	}

	// Reconstruct runs last; it consumes both planes.
	shape := predict.Shape{X: int(header.X), Y: int(header.Y), Z: int(header.Z)}
	predict.Reconstruct(quant, outliers, shape, header.Eb, int(header.Radius), dst)

	return nil
}
