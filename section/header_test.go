package section

import (
	"math"
	"testing"

	"github.com/arloliu/grmeta/errs"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/internal/fixture"
	"github.com/arloliu/grmeta/pmt"
	"github.com/arloliu/grmeta/rxtime"
	"github.com/stretchr/testify/require"
)

func newHeader(t *testing.T, seg fixture.Segment, dataStart uint64) *Header {
	t.Helper()

	h, err := FromTags(seg.Dict(0), seg.Extra, 0, dataStart)
	require.NoError(t, err)

	return h
}

func byteSegment(rate float64, sec uint64, n int) fixture.Segment {
	return fixture.Segment{Rate: rate, RxSec: sec, Type: format.TypeByte, Data: make([]byte, n)}
}

func TestFromTags(t *testing.T) {
	seg := fixture.Segment{
		Rate:    48000,
		RxSec:   1700000000,
		RxFrac:  0.5,
		Type:    format.TypeFloat,
		Complex: true,
		Data:    make([]byte, 64),
		Extra:   pmt.Dict{"freq": pmt.Double(433.92e6)},
	}

	h, err := FromTags(seg.Dict(123), seg.Extra, 10, 133)
	require.NoError(t, err)

	require.Equal(t, 48000.0, h.SampleRate())
	require.InDelta(t, 1.0/48000, h.SampleDuration(), 1e-15)
	require.Equal(t, rxtime.New(1700000000, 1<<63), h.RxTime())
	require.Equal(t, format.TypeFloat, h.DataType())
	require.True(t, h.IsComplex())
	require.Equal(t, 4, h.ElementSize())
	require.Equal(t, 8, h.SampleSize())
	require.Equal(t, uint64(123), h.Strt())
	require.Equal(t, uint64(64), h.Bytes())
	require.Equal(t, int64(8), h.NumSamples())
	require.Equal(t, uint64(10), h.HeaderStart())
	require.Equal(t, uint64(133), h.DataStart())
	require.Equal(t, uint64(197), h.DataEnd())
	require.Equal(t, seg.Extra, h.Extra())
}

func TestFromTags_ItemSize(t *testing.T) {
	seg := fixture.Segment{Rate: 1, Type: format.TypeShort, Complex: true, Size: 4, Data: make([]byte, 8)}
	h, err := FromTags(seg.Dict(0), nil, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2, h.ElementSize())
	require.Equal(t, int64(2), h.NumSamples())
	require.Equal(t, pmt.Null{}, h.Extra())

	seg.Complex = false
	_, err = FromTags(seg.Dict(0), nil, 0, 0)
	require.ErrorIs(t, err, errs.ErrInvalidElementSize)
}

func TestFromTags_Errors(t *testing.T) {
	valid := fixture.Segment{Rate: 1, Type: format.TypeShort, Data: make([]byte, 4)}

	mutate := func(fn func(d pmt.Dict)) pmt.Tag {
		d := valid.Dict(0)
		fn(d)

		return d
	}

	tests := []struct {
		name string
		hdr  pmt.Tag
		want error
	}{
		{"not a dict", pmt.Int32(1), errs.ErrHeaderNotDict},
		{"nil", nil, errs.ErrHeaderNotDict},
		{"missing rx_rate", mutate(func(d pmt.Dict) { delete(d, KeyRxRate) }), errs.ErrMissingField},
		{"missing bytes", mutate(func(d pmt.Dict) { delete(d, KeyBytes) }), errs.ErrMissingField},
		{"rx_rate as int", mutate(func(d pmt.Dict) { d[KeyRxRate] = pmt.Int32(1) }), errs.ErrWrongFieldType},
		{"zero rate", mutate(func(d pmt.Dict) { d[KeyRxRate] = pmt.Double(0) }), errs.ErrInvalidSampleRate},
		{"rx_time not tuple", mutate(func(d pmt.Dict) { d[KeyRxTime] = pmt.Double(1) }), errs.ErrWrongFieldType},
		{"rx_time short", mutate(func(d pmt.Dict) { d[KeyRxTime] = pmt.Tuple{pmt.UInt64(1)} }), errs.ErrWrongFieldType},
		{"rx_time seconds double", mutate(func(d pmt.Dict) { d[KeyRxTime] = pmt.Tuple{pmt.Double(1), pmt.Double(0)} }), errs.ErrWrongFieldType},
		{"rx_time fraction NaN", mutate(func(d pmt.Dict) { d[KeyRxTime] = pmt.Tuple{pmt.UInt64(5), pmt.Double(math.NaN())} }), errs.ErrInvalidRxTime},
		{"rx_time fraction infinite", mutate(func(d pmt.Dict) { d[KeyRxTime] = pmt.Tuple{pmt.UInt64(5), pmt.Double(math.Inf(1))} }), errs.ErrInvalidRxTime},
		{"unknown type", mutate(func(d pmt.Dict) { d[KeyType] = pmt.Int32(7) }), errs.ErrUnknownDataType},
		{"cplx as int", mutate(func(d pmt.Dict) { d[KeyCplx] = pmt.Int32(0) }), errs.ErrWrongFieldType},
		{"strt as int", mutate(func(d pmt.Dict) { d[KeyStrt] = pmt.Int32(0) }), errs.ErrWrongFieldType},
		{"bad size", mutate(func(d pmt.Dict) { d[KeySize] = pmt.Int32(3) }), errs.ErrInvalidElementSize},
		{"odd length", mutate(func(d pmt.Dict) { d[KeyBytes] = pmt.UInt64(5) }), errs.ErrNonDividingLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTags(tt.hdr, pmt.Null{}, 0, 0)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHeader_SampleTime(t *testing.T) {
	h := newHeader(t, fixture.Segment{Rate: 4, RxSec: 100, Type: format.TypeByte, Data: make([]byte, 8)}, 0)

	require.Equal(t, rxtime.New(100, 0), h.SampleTime(0))
	require.Equal(t, rxtime.New(101, 1<<62), h.SampleTime(5))
	require.Equal(t, rxtime.New(99, 3<<62), h.SampleTime(-1))
	require.Equal(t, rxtime.New(101, 3<<62), h.LastSampleTime())

	empty := newHeader(t, byteSegment(4, 7, 0), 0)
	require.Equal(t, rxtime.New(7, 0), empty.LastSampleTime())
}

func TestHeader_SamplePosOfByte(t *testing.T) {
	h := newHeader(t, fixture.Segment{Rate: 1, Type: format.TypeShort, Complex: true, Data: make([]byte, 40)}, 100)

	require.Equal(t, int64(0), h.SamplePosOfByte(100))
	require.Equal(t, int64(0), h.SamplePosOfByte(103))
	require.Equal(t, int64(1), h.SamplePosOfByte(104))
	require.Equal(t, int64(9), h.SamplePosOfByte(139))
	require.Equal(t, int64(-1), h.SamplePosOfByte(99))
	require.Equal(t, uint64(108), h.ByteOfSample(2))
}

func TestHeader_IsCompatibleWith(t *testing.T) {
	base := newHeader(t, fixture.Segment{Rate: 1000, Type: format.TypeFloat, Data: make([]byte, 4)}, 0)
	otherRate := newHeader(t, fixture.Segment{Rate: 2000, Type: format.TypeFloat, Data: make([]byte, 4)}, 0)
	promotes := newHeader(t, fixture.Segment{Rate: 1000, Type: format.TypeShort, Data: make([]byte, 4)}, 0)
	narrows := newHeader(t, fixture.Segment{Rate: 1000, Type: format.TypeDouble, Data: make([]byte, 8)}, 0)
	wider := newHeader(t, fixture.Segment{Rate: 1000, Type: format.TypeInt, Data: make([]byte, 4)}, 0)
	cplx := newHeader(t, fixture.Segment{Rate: 1000, Type: format.TypeFloat, Complex: true, Data: make([]byte, 8)}, 0)

	shortBase := newHeader(t, fixture.Segment{Rate: 1000, Type: format.TypeShort, Data: make([]byte, 4)}, 0)

	tests := []struct {
		name     string
		cur      *Header
		other    *Header
		preserve SeekPreserve
		want     bool
	}{
		{"none accepts anything", base, cplx, PreserveNone, true},
		{"all same", base, base, PreserveAll, true},
		{"all rejects rate", base, otherRate, PreserveAll, false},
		{"format ignores rate", base, otherRate, PreserveFormat, true},
		{"format rejects other type", base, promotes, PreserveFormat, false},
		{"format rejects complex", base, cplx, PreserveFormat, false},
		{"convertability accepts promotion", base, promotes, PreserveConvertability, true},
		{"convertability accepts double narrowing", base, narrows, PreserveConvertability, true},
		{"convertability accepts int to float", base, wider, PreserveConvertability, true},
		{"convertability is one directional", shortBase, wider, PreserveConvertability, false},
		{"convertability rejects complex mismatch", base, cplx, PreserveConvertability, false},
		{"samplerate ignores format", base, promotes, PreserveSampleRate, true},
		{"samplerate rejects rate", base, otherRate, PreserveSampleRate, false},
		{"rate and convertability", base, promotes, PreserveSampleRateAndConvertability, true},
		{"rate and convertability rejects rate", base, otherRate, PreserveSampleRateAndConvertability, false},
		{"segment behaves as all", base, promotes, PreserveSegment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.cur.IsCompatibleWith(tt.other, tt.preserve))
		})
	}
}

func TestHeader_IsContinuationOf(t *testing.T) {
	// 10 samples at 1 Hz from t=100: the last sample is at t=109.
	first := newHeader(t, byteSegment(1, 100, 10), 0)

	exact := newHeader(t, byteSegment(1, 109, 4), 10)
	require.True(t, exact.IsContinuationOf(first))

	jitter := newHeader(t, fixture.Segment{Rate: 1, RxSec: 109, RxFrac: 0.05, Type: format.TypeByte, Data: make([]byte, 4)}, 10)
	require.True(t, jitter.IsContinuationOf(first))

	early := newHeader(t, fixture.Segment{Rate: 1, RxSec: 108, RxFrac: 0.85, Type: format.TypeByte, Data: make([]byte, 4)}, 10)
	require.False(t, early.IsContinuationOf(first))

	gap := newHeader(t, byteSegment(1, 120, 4), 10)
	require.False(t, gap.IsContinuationOf(first))

	empty := newHeader(t, byteSegment(1, 50, 0), 0)
	require.True(t, newHeader(t, byteSegment(1, 50, 1), 0).IsContinuationOf(empty))
}

func TestHeader_String(t *testing.T) {
	h := newHeader(t, fixture.Segment{Rate: 2, RxSec: 1, Type: format.TypeInt, Complex: true, Data: make([]byte, 16)}, 4)
	require.Equal(t, "Int complex @ 2 Hz, rx_time 1.000000000, 2 samples at byte 4", h.String())
}
