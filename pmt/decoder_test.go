package pmt

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/arloliu/grmeta/errs"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tag  Tag
	}{
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"symbol", Symbol("rx_rate")},
		{"empty symbol", Symbol("")},
		{"unicode symbol", Symbol("grün ✓")},
		{"int32 negative", Int32(-123456)},
		{"int32 max", Int32(math.MaxInt32)},
		{"double", Double(32000.5)},
		{"double inf", Double(math.Inf(-1))},
		{"null", Null{}},
		{"uint64 max", UInt64(math.MaxUint64)},
		{"pair", Pair{First: Symbol("a"), Second: Int32(7)}},
		{"nested pair", Pair{First: Pair{First: Null{}, Second: Bool(true)}, Second: Tuple{UInt64(1)}}},
		{"empty tuple", Tuple{}},
		{"tuple", Tuple{UInt64(1758373503), Double(0.25)}},
		{"single entry dict", Dict{"cplx": Bool(true)}},
		{"header dict", Dict{
			"version": Int32(0),
			"rx_rate": Double(1e6),
			"rx_time": Tuple{UInt64(10), Double(0.5)},
			"size":    Int32(4),
			"type":    Int32(3),
			"cplx":    Bool(false),
			"strt":    UInt64(171),
			"bytes":   UInt64(4096),
		}},
		{"nested dict", Dict{"outer": Dict{"inner": Symbol("x")}, "list": Tuple{Dict{"k": Null{}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.tag)
			require.NoError(t, err)

			dec := NewDecoder(bytes.NewReader(data))
			got, err := dec.Decode()
			require.NoError(t, err)
			require.Equal(t, tt.tag, got)
			require.Equal(t, int64(len(data)), dec.BytesRead())
		})
	}
}

func TestDecode_WireBytes(t *testing.T) {
	t.Run("dict chain", func(t *testing.T) {
		data := []byte{
			0x09, 0x07,
			0x02, 0x00, 0x01, 'a', 0x03, 0x00, 0x00, 0x00, 0x05,
			0x09, 0x07,
			0x02, 0x00, 0x01, 'b', 0x00,
			0x06,
		}
		tag, err := Parse(bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, Dict{"a": Int32(5), "b": Bool(true)}, tag)
	})

	t.Run("big endian uint64", func(t *testing.T) {
		data := []byte{0x0b, 0, 0, 0, 0, 0, 0, 0x01, 0x02}
		tag, err := Parse(bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, UInt64(0x0102), tag)
	})

	t.Run("stops at record end", func(t *testing.T) {
		r := bytes.NewReader([]byte{0x03, 0, 0, 0, 1, 0x06})
		dec := NewDecoder(r)
		tag, err := dec.Decode()
		require.NoError(t, err)
		require.Equal(t, Int32(1), tag)
		require.Equal(t, 1, r.Len())

		tag, err = dec.Decode()
		require.NoError(t, err)
		require.Equal(t, Null{}, tag)
	})
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty stream", nil, errs.ErrUnexpectedEOF},
		{"truncated int32", []byte{0x03, 0x00, 0x01}, errs.ErrUnexpectedEOF},
		{"truncated symbol text", []byte{0x02, 0x00, 0x05, 'a', 'b'}, errs.ErrUnexpectedEOF},
		{"truncated tuple", []byte{0x0c, 0x00, 0x00, 0x00, 0x02, 0x06}, errs.ErrUnexpectedEOF},
		{"truncated pair", []byte{0x07, 0x06}, errs.ErrUnexpectedEOF},
		{"unknown type", []byte{0x05}, errs.ErrUnknownTag},
		{"unknown nested type", []byte{0x0c, 0, 0, 0, 1, 0xff}, errs.ErrUnknownTag},
		{"invalid utf8", []byte{0x02, 0x00, 0x02, 0xff, 0xfe}, errs.ErrInvalidSymbol},
		{"dict without pair", []byte{0x09, 0x06}, errs.ErrMalformedDict},
		{"dict key not symbol", []byte{0x09, 0x07, 0x03, 0, 0, 0, 1, 0x06, 0x06}, errs.ErrMalformedDict},
		{"dict bad continuation", []byte{0x09, 0x07, 0x02, 0, 1, 'a', 0x06, 0x07}, errs.ErrMalformedDict},
		{"dict duplicate key", []byte{
			0x09, 0x07, 0x02, 0, 1, 'a', 0x06,
			0x09, 0x07, 0x02, 0, 1, 'a', 0x06, 0x06,
		}, errs.ErrMalformedDict},
		{"dict truncated after entry", []byte{0x09, 0x07, 0x02, 0, 1, 'a', 0x06}, errs.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(bytes.NewReader(tt.data))
			require.Error(t, err)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDecodeOptional(t *testing.T) {
	t.Run("empty stream yields none", func(t *testing.T) {
		tag, ok, err := ParseOptional(bytes.NewReader(nil))
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, tag)
	})

	t.Run("truncated after first byte is an error", func(t *testing.T) {
		_, ok, err := ParseOptional(bytes.NewReader([]byte{0x04, 0x40}))
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
		require.False(t, ok)
	})

	t.Run("complete record", func(t *testing.T) {
		tag, ok, err := ParseOptional(bytes.NewReader([]byte{0x01}))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, Bool(false), tag)
	})

	t.Run("sequence ends cleanly", func(t *testing.T) {
		dec := NewDecoder(bytes.NewReader([]byte{0x06, 0x00}))
		for range 2 {
			_, ok, err := dec.DecodeOptional()
			require.NoError(t, err)
			require.True(t, ok)
		}
		_, ok, err := dec.DecodeOptional()
		require.NoError(t, err)
		require.False(t, ok)
	})
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestDecode_PropagatesReaderError(t *testing.T) {
	ioErr := errors.New("disk on fire")

	_, err := Parse(failingReader{err: ioErr})
	require.ErrorIs(t, err, ioErr)
	require.NotErrorIs(t, err, errs.ErrUnexpectedEOF)

	_, _, err = ParseOptional(failingReader{err: ioErr})
	require.ErrorIs(t, err, ioErr)

	_, err = Parse(io.MultiReader(bytes.NewReader([]byte{0x0b, 0x00}), failingReader{err: ioErr}))
	require.ErrorIs(t, err, ioErr)
}

func TestMarshal_Unsupported(t *testing.T) {
	_, err := Marshal(Dict{})
	require.ErrorIs(t, err, errs.ErrUnsupportedTag)

	_, err = Marshal(nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedTag)

	_, err = Marshal(Tuple{Pair{First: Int32(1), Second: nil}})
	require.ErrorIs(t, err, errs.ErrUnsupportedTag)
}

func TestTagString(t *testing.T) {
	d := Dict{"b": Int32(2), "a": Tuple{Bool(true), Null{}}}
	require.Equal(t, `{"a": [true, null], "b": 2}`, d.String())
	require.Equal(t, `("x" . 1.5)`, Pair{First: Symbol("x"), Second: Double(1.5)}.String())
	require.Equal(t, "Tuple", Tuple{}.Kind().String())
}
