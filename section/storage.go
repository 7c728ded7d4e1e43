package section

import (
	"fmt"
	"sort"

	"github.com/arloliu/grmeta/errs"
)

// Entry is one indexed segment.
type Entry struct {
	// Key is the first byte covered by the segment: the header position for
	// attached headers, the data start for detached ones.
	Key uint64
	// Header describes the segment.
	Header *Header
	// FirstSample is the absolute sample index of the segment's first sample.
	FirstSample int64
	// Ordinal is the position of the segment in the stream, starting at 0.
	Ordinal int
}

// Covers reports whether byte b belongs to the segment.
func (e Entry) Covers(b uint64) bool {
	return b >= e.Key && b < e.Header.DataEnd()
}

// EndSample returns the absolute sample index one past the segment's last sample.
func (e Entry) EndSample() int64 {
	return e.FirstSample + e.Header.NumSamples()
}

// Storage is the append-only index of discovered segments, ordered by key.
//
// Segments are only ever appended past the high-water mark, so the slice stays
// sorted and lookups are binary searches. Storage is not safe for concurrent use.
type Storage struct {
	entries []Entry
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return &Storage{}
}

// Insert appends a segment keyed at key.
//
// Returns:
//   - Entry: the indexed segment with its ordinal and first sample filled in
//   - error: ErrHeaderOverlap if key lies before the end of the last segment
func (s *Storage) Insert(key uint64, h *Header) (Entry, error) {
	e := Entry{Key: key, Header: h, Ordinal: len(s.entries)}

	if last, ok := s.Last(); ok {
		if key < last.Header.DataEnd() || key <= last.Key {
			return Entry{}, fmt.Errorf("%w: key %d, previous segment spans [%d, %d)",
				errs.ErrHeaderOverlap, key, last.Key, last.Header.DataEnd())
		}
		e.FirstSample = last.EndSample()
	}

	if h.DataEnd() < key {
		return Entry{}, fmt.Errorf("%w: segment data ends at %d before its key %d", errs.ErrHeaderOverlap, h.DataEnd(), key)
	}

	s.entries = append(s.entries, e)

	return e, nil
}

// Find returns the segment covering byte b.
func (s *Storage) Find(b uint64) (Entry, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Key > b }) - 1
	if i < 0 || !s.entries[i].Covers(b) {
		return Entry{}, false
	}

	return s.entries[i], true
}

// FindSample returns the segment holding absolute sample pos.
func (s *Storage) FindSample(pos int64) (Entry, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].FirstSample > pos }) - 1
	if i < 0 || pos >= s.entries[i].EndSample() {
		return Entry{}, false
	}

	return s.entries[i], true
}

// At returns the segment with the given ordinal.
func (s *Storage) At(ordinal int) (Entry, bool) {
	if ordinal < 0 || ordinal >= len(s.entries) {
		return Entry{}, false
	}

	return s.entries[ordinal], true
}

// Last returns the most recently indexed segment.
func (s *Storage) Last() (Entry, bool) {
	return s.At(len(s.entries) - 1)
}

// Len returns the number of indexed segments.
func (s *Storage) Len() int {
	return len(s.entries)
}

// End returns the high-water mark: the first byte after the last indexed segment.
func (s *Storage) End() uint64 {
	last, ok := s.Last()
	if !ok {
		return 0
	}

	return last.Header.DataEnd()
}

// TotalSamples returns the number of samples in all indexed segments.
func (s *Storage) TotalSamples() int64 {
	last, ok := s.Last()
	if !ok {
		return 0
	}

	return last.EndSample()
}
