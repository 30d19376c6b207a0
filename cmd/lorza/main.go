// Command lorza compresses and decompresses raw floating-point array
// files against an absolute or range-relative error bound.
//
// Compression reads a raw little-endian sample file and writes
// <input>.cusza; decompression reads an archive and writes
// <archive>.xout. Fatal errors print a single line tagged "!!" and exit
// non-zero.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lorza/lorza"
	"github.com/lorza/lorza/blob"
	"github.com/lorza/lorza/compress"
	"github.com/lorza/lorza/endian"
	"github.com/lorza/lorza/format"
)

func main() {
	var (
		doCompress   = flag.Bool("z", false, "compress the input file")
		doExtract    = flag.Bool("x", false, "decompress the input archive")
		modeArg      = flag.String("mode", "abs", "error bound mode: abs or r2r")
		eb           = flag.Float64("eb", 0, "error bound (required for -z)")
		radius       = flag.Int("radius", blob.DefaultRadius, "quantizer radius")
		pardeg       = flag.Int("pardeg", 0, "Huffman chunk count, 0 = auto")
		predictorArg = flag.String("predictor", "lorenzo", "predictor: lorenzo")
		dtypeArg     = flag.String("dtype", "f4", "sample type: f4 or f8")
		huffBytes    = flag.Int("huffbytes", 4, "starting Huffman code word width: 4 or 8")
		dimsArg      = flag.String("dims", "", "dimensions x[,y[,z]] (required for -z)")
		losslessArg  = flag.String("l", "none", "seal codec: none, zstd, s2 or lz4")
	)
	flag.Parse()

	if flag.NArg() != 1 || *doCompress == *doExtract {
		fmt.Fprintln(os.Stderr, "usage: lorza -z|-x [options] <path>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	var err error
	if *doCompress {
		err = runCompress(path, compressParams{
			mode:      *modeArg,
			eb:        *eb,
			radius:    *radius,
			pardeg:    *pardeg,
			huffBytes: *huffBytes,
			predictor: *predictorArg,
			dtype:     *dtypeArg,
			dims:      *dimsArg,
			lossless:  *losslessArg,
		})
	} else {
		err = runExtract(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "!! %v\n", err)
		os.Exit(1)
	}
}

type compressParams struct {
	mode      string
	eb        float64
	radius    int
	pardeg    int
	huffBytes int
	predictor string
	dtype     string
	dims      string
	lossless  string
}

func runCompress(path string, p compressParams) error {
	mode, ok := format.ParseMode(p.mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", p.mode)
	}
	seal, ok := format.ParseCompression(p.lossless)
	if !ok {
		return fmt.Errorf("unknown seal codec %q", p.lossless)
	}
	if p.predictor != "lorenzo" {
		return fmt.Errorf("unknown predictor %q", p.predictor)
	}

	shape, err := parseDims(p.dims)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	opts := []lorza.Option{
		lorza.WithMode(mode),
		lorza.WithErrorBound(p.eb),
		lorza.WithRadius(p.radius),
		lorza.WithPardeg(p.pardeg),
		blob.WithHuffBytes(p.huffBytes),
	}

	var archive []byte
	switch p.dtype {
	case "f4":
		archive, err = lorza.Compress(bytesToFloats[float32](raw), shape, opts...)
	case "f8":
		archive, err = lorza.Compress(bytesToFloats[float64](raw), shape, opts...)
	default:
		return fmt.Errorf("unknown dtype %q", p.dtype)
	}
	if err != nil {
		return err
	}

	out := archive
	if seal != format.CompressionNone {
		if out, err = compress.Seal(archive, seal); err != nil {
			return err
		}
	}

	return os.WriteFile(path+".cusza", out, 0o644)
}

func runExtract(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if compress.IsContainer(data) {
		if data, err = compress.Open(data); err != nil {
			return err
		}
	}

	header, err := lorza.InspectHeader(data)
	if err != nil {
		return err
	}

	var raw []byte
	switch header.DType {
	case format.DTypeF4:
		out := make([]float32, header.NumSamples())
		if err := lorza.Decompress(data, out); err != nil {
			return err
		}
		raw = floatsToBytes(out)
	case format.DTypeF8:
		out := make([]float64, header.NumSamples())
		if err := lorza.Decompress(data, out); err != nil {
			return err
		}
		raw = floatsToBytes(out)
	}

	return os.WriteFile(path+".xout", raw, 0o644)
}

func parseDims(arg string) (lorza.Shape, error) {
	if arg == "" {
		return lorza.Shape{}, fmt.Errorf("missing -dims")
	}

	parts := strings.Split(arg, ",")
	if len(parts) > 3 {
		return lorza.Shape{}, fmt.Errorf("at most 3 dimensions, got %q", arg)
	}

	dims := [3]int{1, 1, 1}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v <= 0 {
			return lorza.Shape{}, fmt.Errorf("bad dimension %q", p)
		}
		dims[i] = v
	}

	return lorza.Shape{X: dims[0], Y: dims[1], Z: dims[2]}, nil
}

func bytesToFloats[T format.Float](raw []byte) []T {
	engine := endian.GetLittleEndianEngine()

	var zero T
	if _, ok := any(zero).(float32); ok {
		out := make([]T, len(raw)/4)
		for i := range out {
			out[i] = T(math.Float32frombits(engine.Uint32(raw[4*i:])))
		}

		return out
	}

	out := make([]T, len(raw)/8)
	for i := range out {
		out[i] = T(math.Float64frombits(engine.Uint64(raw[8*i:])))
	}

	return out
}

func floatsToBytes[T format.Float](samples []T) []byte {
	engine := endian.GetLittleEndianEngine()

	var zero T
	if _, ok := any(zero).(float32); ok {
		out := make([]byte, 0, 4*len(samples))
		for _, v := range samples {
			out = engine.AppendUint32(out, math.Float32bits(float32(v)))
		}

		return out
	}

	out := make([]byte, 0, 8*len(samples))
	for _, v := range samples {
		out = engine.AppendUint64(out, math.Float64bits(float64(v)))
	}

	return out
}
