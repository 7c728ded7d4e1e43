package compress

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/arloliu/grmeta/errs"
	"github.com/arloliu/grmeta/format"
	"github.com/stretchr/testify/require"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// iqPayload returns n complex float samples of a slow tone, a stand-in for a capture.
func iqPayload(n int) []byte {
	buf := make([]byte, 0, n*8)
	for i := range n {
		phase := float64(i) * 0.01
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(math.Cos(phase))))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(math.Sin(phase))))
	}

	return buf
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)
			require.NotNil(t, codec)
		})
	}

	_, err := GetCodec(format.CompressionType(0x7f))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, decompressed)

			compressed, err := codec.Compress([]byte{})
			require.NoError(t, err)

			decompressed, err = codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"single_byte", []byte{0x42}},
		{"binary", []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{"tone_small", iqPayload(100)},
		{"tone_large", iqPayload(200_000)},
		{"zeros", make([]byte, 1<<20)},
	}

	for name, codec := range getAllCodecs() {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				compressed, err := codec.Compress(tc.data)
				require.NoError(t, err)

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, tc.data, decompressed)
			})
		}
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	garbage := []byte("definitely not an archive of any kind")

	for name, codec := range getAllCodecs() {
		if name == "NoOp" {
			continue
		}

		t.Run(name, func(t *testing.T) {
			_, err := codec.Decompress(garbage)
			require.Error(t, err)
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	data := iqPayload(4096)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			var wg sync.WaitGroup
			results := make([][]byte, 8)
			errors := make([]error, 8)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errors[i] = codec.Decompress(compressed)
				}(i)
			}
			wg.Wait()

			for i := range results {
				require.NoError(t, errors[i])
				require.True(t, bytes.Equal(data, results[i]))
			}
		})
	}
}
