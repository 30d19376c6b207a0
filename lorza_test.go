package lorza

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressDecompress(t *testing.T) {
	shape := Shape{X: 48, Y: 48, Z: 1}
	input := make([]float32, shape.X*shape.Y)
	for y := 0; y < shape.Y; y++ {
		for x := 0; x < shape.X; x++ {
			input[y*shape.X+x] = float32(math.Sin(float64(x)/7) * math.Cos(float64(y)/9))
		}
	}

	archive, err := Compress(input, shape, WithErrorBound(1e-3))
	require.NoError(t, err)

	header, err := InspectHeader(archive)
	require.NoError(t, err)
	require.Equal(t, shape.X*shape.Y, header.NumSamples())

	out := make([]float32, header.NumSamples())
	require.NoError(t, Decompress(archive, out))
	for i := range out {
		require.LessOrEqual(t, math.Abs(float64(out[i])-float64(input[i])), 1e-3*(1+1e-5))
	}
}

func TestCompress_R2R(t *testing.T) {
	input := make([]float64, 8192)
	for i := range input {
		input[i] = 300 + 50*math.Sin(float64(i)/100)
	}

	archive, err := Compress(input, Shape{X: len(input), Y: 1, Z: 1},
		WithMode(ModeR2R), WithErrorBound(1e-4))
	require.NoError(t, err)

	header, err := InspectHeader(archive)
	require.NoError(t, err)

	out := make([]float64, len(input))
	require.NoError(t, Decompress(archive, out))
	for i := range out {
		require.LessOrEqual(t, math.Abs(out[i]-input[i]), header.Eb*(1+1e-5))
	}
}
