package section

import (
	"fmt"
	"math"

	"github.com/arloliu/grmeta/errs"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/pmt"
	"github.com/arloliu/grmeta/rxtime"
)

// Header dictionary keys.
const (
	KeyRxRate = "rx_rate"
	KeyRxTime = "rx_time"
	KeySize   = "size"
	KeyType   = "type"
	KeyCplx   = "cplx"
	KeyStrt   = "strt"
	KeyBytes  = "bytes"
)

// continuityTolerance is the fraction of a sample duration by which a segment
// start may deviate from the extrapolated time and still be a continuation.
const continuityTolerance = 0.1

// Header describes one segment: its sample format, sample rate, reception time
// and where its bytes live. Headers are immutable once built.
type Header struct {
	sampleRate     float64
	sampleDuration float64
	rxTime         rxtime.Timestamp
	elementSize    int
	dataType       format.DataType
	complex        bool
	strt           uint64
	bytes          uint64
	extra          pmt.Tag

	// headerStart is the absolute position of the header record in the stream
	// holding it, dataStart the absolute position of the first sample byte.
	headerStart uint64
	dataStart   uint64
}

// FromTags validates a decoded header dictionary and its extra record.
//
// Parameters:
//   - hdr: the header record, must be a Dict carrying every required key
//   - extra: the producer defined record following the header, stored as is
//   - headerStart: absolute position of the header record
//   - dataStart: absolute position of the segment's first sample byte
//
// Returns:
//   - *Header: the validated header
//   - error: one of the header validation errors of package errs
func FromTags(hdr, extra pmt.Tag, headerStart, dataStart uint64) (*Header, error) {
	dict, ok := hdr.(pmt.Dict)
	if !ok {
		kind := "nil"
		if hdr != nil {
			kind = hdr.Kind().String()
		}

		return nil, fmt.Errorf("%w: got %s", errs.ErrHeaderNotDict, kind)
	}

	rate, err := field[pmt.Double](dict, KeyRxRate)
	if err != nil {
		return nil, err
	}
	if rate <= 0 || math.IsInf(float64(rate), 0) || math.IsNaN(float64(rate)) {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidSampleRate, float64(rate))
	}

	rxTime, err := parseRxTime(dict)
	if err != nil {
		return nil, err
	}

	size, err := field[pmt.Int32](dict, KeySize)
	if err != nil {
		return nil, err
	}

	code, err := field[pmt.Int32](dict, KeyType)
	if err != nil {
		return nil, err
	}
	dtype, err := format.DataTypeFromCode(int32(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnknownDataType, err)
	}

	cplx, err := field[pmt.Bool](dict, KeyCplx)
	if err != nil {
		return nil, err
	}

	strt, err := field[pmt.UInt64](dict, KeyStrt)
	if err != nil {
		return nil, err
	}

	length, err := field[pmt.UInt64](dict, KeyBytes)
	if err != nil {
		return nil, err
	}

	// Producers write either the component width or the whole item width.
	width := dtype.Width()
	switch {
	case int(size) == width:
	case bool(cplx) && int(size) == 2*width:
	default:
		return nil, fmt.Errorf("%w: size %d for %s (complex=%v)", errs.ErrInvalidElementSize, size, dtype, bool(cplx))
	}

	sampleSize := uint64(format.SampleSize(dtype, bool(cplx))) //nolint:gosec
	if uint64(length)%sampleSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes of %d byte samples", errs.ErrNonDividingLength, uint64(length), sampleSize)
	}

	if extra == nil {
		extra = pmt.Null{}
	}

	return &Header{
		sampleRate:     float64(rate),
		sampleDuration: 1.0 / float64(rate),
		rxTime:         rxTime,
		elementSize:    width,
		dataType:       dtype,
		complex:        bool(cplx),
		strt:           uint64(strt),
		bytes:          uint64(length),
		extra:          extra,
		headerStart:    headerStart,
		dataStart:      dataStart,
	}, nil
}

func field[T pmt.Tag](dict pmt.Dict, key string) (T, error) {
	var zero T

	v, ok := dict.Lookup(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", errs.ErrMissingField, key)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %s, want %s", errs.ErrWrongFieldType, key, v.Kind(), zero.Kind())
	}

	return typed, nil
}

func parseRxTime(dict pmt.Dict) (rxtime.Timestamp, error) {
	tuple, err := field[pmt.Tuple](dict, KeyRxTime)
	if err != nil {
		return rxtime.Timestamp{}, err
	}
	if len(tuple) != 2 {
		return rxtime.Timestamp{}, fmt.Errorf("%w: %s has %d elements, want 2", errs.ErrWrongFieldType, KeyRxTime, len(tuple))
	}

	secs, ok := tuple[0].(pmt.UInt64)
	if !ok {
		return rxtime.Timestamp{}, fmt.Errorf("%w: %s seconds is %s", errs.ErrWrongFieldType, KeyRxTime, tuple[0].Kind())
	}

	frac, ok := tuple[1].(pmt.Double)
	if !ok {
		return rxtime.Timestamp{}, fmt.Errorf("%w: %s fraction is %s", errs.ErrWrongFieldType, KeyRxTime, tuple[1].Kind())
	}
	if math.IsNaN(float64(frac)) || math.IsInf(float64(frac), 0) {
		return rxtime.Timestamp{}, fmt.Errorf("%w: %v", errs.ErrInvalidRxTime, float64(frac))
	}

	return rxtime.FromParts(uint64(secs), float64(frac)), nil
}

// SampleRate returns the sample rate in Hz.
func (h *Header) SampleRate() float64 { return h.sampleRate }

// SampleDuration returns the duration of one sample in seconds.
func (h *Header) SampleDuration() float64 { return h.sampleDuration }

// RxTime returns the reception time of the first sample.
func (h *Header) RxTime() rxtime.Timestamp { return h.rxTime }

// ElementSize returns the size in bytes of one real element.
func (h *Header) ElementSize() int { return h.elementSize }

// SampleSize returns the size in bytes of one sample, two elements for complex data.
func (h *Header) SampleSize() int { return format.SampleSize(h.dataType, h.complex) }

// DataType returns the element encoding of the samples.
func (h *Header) DataType() format.DataType { return h.dataType }

// IsComplex reports whether samples are interleaved real/imaginary pairs.
func (h *Header) IsComplex() bool { return h.complex }

// Strt returns the producer's "strt" field.
func (h *Header) Strt() uint64 { return h.strt }

// Bytes returns the length of the segment's sample data.
func (h *Header) Bytes() uint64 { return h.bytes }

// Extra returns the record that followed the header, pmt.Null when empty.
func (h *Header) Extra() pmt.Tag { return h.extra }

// HeaderStart returns the position of the header record in its stream: the
// capture for attached headers, the header stream for detached ones.
func (h *Header) HeaderStart() uint64 { return h.headerStart }

// DataStart returns the absolute position of the first sample byte.
func (h *Header) DataStart() uint64 { return h.dataStart }

// DataEnd returns the absolute position one past the last sample byte.
func (h *Header) DataEnd() uint64 { return h.dataStart + h.bytes }

// NumSamples returns the number of samples in the segment.
func (h *Header) NumSamples() int64 {
	return int64(h.bytes / uint64(h.SampleSize())) //nolint:gosec
}

// SampleTime returns the expected reception time of sample k, assuming the
// sample rate holds. k may be negative or beyond the segment.
func (h *Header) SampleTime(k int64) rxtime.Timestamp {
	return h.rxTime.Add(rxtime.FromProduct(k, h.sampleDuration))
}

// LastSampleTime returns the reception time of the last sample, or RxTime for
// an empty segment. A following segment continues this one when it starts at
// this time.
func (h *Header) LastSampleTime() rxtime.Timestamp {
	n := h.NumSamples()
	if n == 0 {
		return h.rxTime
	}

	return h.SampleTime(n - 1)
}

// SamplePosOfByte returns the index within the segment of the sample holding the
// absolute data byte b. Bytes before DataStart give negative positions.
func (h *Header) SamplePosOfByte(b uint64) int64 {
	size := int64(h.SampleSize())
	off := int64(b) - int64(h.dataStart) //nolint:gosec
	if off < 0 {
		return -((-off + size - 1) / size)
	}

	return off / size
}

// ByteOfSample returns the absolute position of sample k of the segment.
func (h *Header) ByteOfSample(k int64) uint64 {
	return h.dataStart + uint64(k)*uint64(h.SampleSize()) //nolint:gosec
}

// IsCompatibleWith reports whether other satisfies the guarantees of preserve
// relative to h: same sample rate, same element type, or an element type that
// converts to h's.
func (h *Header) IsCompatibleWith(other *Header, preserve SeekPreserve) bool {
	if preserve.PreservesSampleRate() && other.sampleRate != h.sampleRate {
		return false
	}
	if preserve.PreservesFormat() && (other.dataType != h.dataType || other.complex != h.complex) {
		return false
	}
	if preserve.PreservesConvertability() &&
		(other.complex != h.complex || !other.dataType.ConvertsToDType(h.dataType)) {
		return false
	}

	return true
}

// IsContinuationOf reports whether h starts where other's samples left off, within
// a tenth of other's sample duration.
func (h *Header) IsContinuationOf(other *Header) bool {
	diff := h.rxTime.AbsDiffSeconds(other.LastSampleTime())
	return diff <= continuityTolerance*other.sampleDuration
}

func (h *Header) String() string {
	cplx := ""
	if h.complex {
		cplx = " complex"
	}

	return fmt.Sprintf("%s%s @ %g Hz, rx_time %s, %d samples at byte %d",
		h.dataType, cplx, h.sampleRate, h.rxTime, h.NumSamples(), h.dataStart)
}
