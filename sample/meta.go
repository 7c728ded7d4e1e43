package sample

import (
	"math"

	"github.com/arloliu/grmeta/internal/hash"
	"github.com/arloliu/grmeta/pmt"
	"github.com/arloliu/grmeta/rxtime"
	"github.com/arloliu/grmeta/section"
)

// Stream tag keys emitted at the start of every segment.
const (
	TagRxRate = "rx_rate"
	TagRxTime = "rx_time"
)

// SampleMeta describes the run delivered by the most recent read.
type SampleMeta struct {
	// SampleRate is the sample rate of the run in Hz.
	SampleRate float64
	// RxTime is the reception time of the run's first sample.
	RxTime rxtime.Timestamp
	// Position is the absolute index of the run's first sample.
	Position int64
	// Count is the number of samples in the run.
	Count int64
}

// StreamTag is an annotation attached to one sample of the stream.
type StreamTag struct {
	Key string
	// KeyID is the xxHash64 of Key.
	KeyID uint64
	Value pmt.Tag
	// Offset is the absolute index of the sample the tag belongs to.
	Offset int64
}

// LastReadHeader returns the header governing the first sample of the most recent
// read, or nil if that read delivered nothing.
func (r *Reader) LastReadHeader() *section.Header {
	if r.run.count == 0 {
		return nil
	}

	return r.run.first.Header
}

// LastReadMeta returns the sample rate and timing of the most recent read.
func (r *Reader) LastReadMeta() (SampleMeta, bool) {
	if r.run.count == 0 {
		return SampleMeta{}, false
	}

	h := r.run.first.Header

	return SampleMeta{
		SampleRate: h.SampleRate(),
		RxTime:     h.SampleTime(r.run.start - r.run.first.FirstSample),
		Position:   r.run.start,
		Count:      r.run.count,
	}, true
}

// LastReadRxTime returns the reception time of the first sample of the most recent read.
func (r *Reader) LastReadRxTime() (rxtime.Timestamp, bool) {
	m, ok := r.LastReadMeta()
	return m.RxTime, ok
}

// LastReadTags derives the stream tags of the samples delivered by the most recent
// read. Every segment starting inside the run contributes an rx_rate and an
// rx_time tag followed by the entries of its extra dictionary, in key order.
func (r *Reader) LastReadTags() ([]StreamTag, error) {
	if r.run.count == 0 {
		return nil, nil
	}

	end := r.run.start + r.run.count

	var tags []StreamTag
	for i := r.run.first.Ordinal; i <= r.run.last.Ordinal; i++ {
		e, ok, err := r.headers.Segment(i)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if e.FirstSample < r.run.start || e.FirstSample >= end {
			continue
		}

		tags = appendSegmentTags(tags, e)
	}

	return tags, nil
}

func appendSegmentTags(tags []StreamTag, e section.Entry) []StreamTag {
	h := e.Header
	ts := h.RxTime()

	tags = append(tags,
		newStreamTag(TagRxRate, pmt.Double(h.SampleRate()), e.FirstSample),
		newStreamTag(TagRxTime, pmt.Tuple{
			pmt.UInt64(uint64(ts.Sec)), //nolint:gosec
			pmt.Double(math.Ldexp(float64(ts.Frac), -64)),
		}, e.FirstSample),
	)

	if extra, ok := h.Extra().(pmt.Dict); ok {
		for _, key := range extra.Keys() {
			tags = append(tags, newStreamTag(key, extra[key], e.FirstSample))
		}
	}

	return tags
}

func newStreamTag(key string, value pmt.Tag, offset int64) StreamTag {
	return StreamTag{Key: key, KeyID: hash.KeyID(key), Value: value, Offset: offset}
}
