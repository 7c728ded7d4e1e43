// Package fixture builds in-memory captures for tests.
package fixture

import (
	"encoding/binary"

	"github.com/arloliu/grmeta/endian"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/pmt"
)

// Segment describes one segment to write.
type Segment struct {
	Rate    float64
	RxSec   uint64
	RxFrac  float64
	Type    format.DataType
	Complex bool
	// Size overrides the "size" field; zero writes the element width.
	Size int32
	// Strt overrides the "strt" field. For attached captures a value larger than
	// the encoded header pads the gap with zero bytes.
	Strt uint64
	// Extra is written after the header; nil writes Null.
	Extra pmt.Tag
	Data  []byte
	// Header replaces the generated header dictionary entirely.
	Header pmt.Tag
}

// Dict returns the header dictionary of s with the given strt.
func (s Segment) Dict(strt uint64) pmt.Dict {
	size := s.Size
	if size == 0 {
		size = int32(s.Type.Width()) //nolint:gosec
	}

	return pmt.Dict{
		"rx_rate": pmt.Double(s.Rate),
		"rx_time": pmt.Tuple{pmt.UInt64(s.RxSec), pmt.Double(s.RxFrac)},
		"size":    pmt.Int32(size),
		"type":    pmt.Int32(s.Type),
		"cplx":    pmt.Bool(s.Complex),
		"strt":    pmt.UInt64(strt),
		"bytes":   pmt.UInt64(uint64(len(s.Data))),
	}
}

// Record encodes the header and extra records of s. When s.Strt is zero the
// "strt" field is set to the encoded length of both records.
func (s Segment) Record() ([]byte, error) {
	extra := s.Extra
	if extra == nil {
		extra = pmt.Null{}
	}

	hdr := s.Header
	if hdr == nil {
		// "strt" is a fixed-width UInt64, so the length does not depend on its value.
		sized, err := s.record(s.Dict(0), extra)
		if err != nil {
			return nil, err
		}

		strt := s.Strt
		if strt == 0 {
			strt = uint64(len(sized))
		}
		hdr = s.Dict(strt)
	}

	return s.record(hdr, extra)
}

func (s Segment) record(hdr, extra pmt.Tag) ([]byte, error) {
	buf, err := pmt.Append(nil, hdr)
	if err != nil {
		return nil, err
	}

	return pmt.Append(buf, extra)
}

// Attached returns a capture with every header interleaved before its samples.
func Attached(segs ...Segment) ([]byte, error) {
	var out []byte
	for _, s := range segs {
		rec, err := s.Record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec...)

		if s.Strt > uint64(len(rec)) {
			out = append(out, make([]byte, s.Strt-uint64(len(rec)))...)
		}
		out = append(out, s.Data...)
	}

	return out, nil
}

// Detached returns the sample stream and the separate header stream of a capture.
func Detached(segs ...Segment) (data []byte, hdr []byte, err error) {
	for _, s := range segs {
		rec, err := s.Record()
		if err != nil {
			return nil, nil, err
		}
		hdr = append(hdr, rec...)
		data = append(data, s.Data...)
	}

	return data, hdr, nil
}

// Samples encodes vals in the given byte order.
func Samples[T format.Sample](engine endian.EndianEngine, vals ...T) []byte {
	buf, err := binary.Append(nil, engine, vals)
	if err != nil {
		panic(err)
	}

	return buf
}

// Ramp returns n Byte samples valued 0, 1, ..., n-1 (wrapping at 256).
func Ramp(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}

	return out
}
