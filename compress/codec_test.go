package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorza/lorza/errs"
	"github.com/lorza/lorza/format"
)

func testPayload() []byte {
	// Repetitive enough that every codec actually shrinks it.
	return bytes.Repeat([]byte("lorza archive subfile payload "), 200)
}

func TestCodecs_RoundTrip(t *testing.T) {
	payload := testPayload()

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			if ct != format.CompressionNone {
				require.Less(t, len(compressed), len(payload))
			}

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, payload, restored)
		})
	}
}

func TestGetCodec_Unknown(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0xEE))
	require.ErrorIs(t, err, errs.ErrUnknownCodec)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	archive := testPayload()

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			frame, err := Seal(archive, ct)
			require.NoError(t, err)
			require.True(t, IsContainer(frame))
			require.False(t, IsContainer(archive))

			restored, err := Open(frame)
			require.NoError(t, err)
			require.Equal(t, archive, restored)
		})
	}
}

func TestOpen_Invalid(t *testing.T) {
	archive := testPayload()
	frame, err := Seal(archive, format.CompressionS2)
	require.NoError(t, err)

	t.Run("too short", func(t *testing.T) {
		_, err := Open(frame[:8])
		require.ErrorIs(t, err, errs.ErrContainerInvalid)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte{}, frame...)
		bad[0] ^= 0xFF
		_, err := Open(bad)
		require.ErrorIs(t, err, errs.ErrContainerInvalid)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		// Flip a digest bit so the unsealed archive no longer matches.
		bad := append([]byte{}, frame...)
		bad[5] ^= 0x01
		_, err := Open(bad)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("unknown codec", func(t *testing.T) {
		bad := append([]byte{}, frame...)
		bad[4] = 0xEE
		_, err := Open(bad)
		require.ErrorIs(t, err, errs.ErrUnknownCodec)
	})
}
