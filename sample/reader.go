package sample

import (
	"io"
	"iter"
	"log/slog"

	"github.com/arloliu/grmeta/endian"
	"github.com/arloliu/grmeta/index"
	"github.com/arloliu/grmeta/internal/options"
	"github.com/arloliu/grmeta/section"
)

// Reader reads typed samples from a capture and seeks within it.
//
// The position of the sample source is the only cursor. Headers are discovered
// through the HeaderReader as the cursor moves past the indexed segments.
//
// Reader is not safe for concurrent use.
type Reader struct {
	src     io.ReadSeeker
	headers index.HeaderReader
	engine  endian.EndianEngine
	native  bool
	logger  *slog.Logger

	cursor uint64
	run    run
}

// run describes the samples delivered by the most recent read.
type run struct {
	first section.Entry // segment of the first sample
	last  section.Entry // segment of the last sample
	start int64         // absolute index of the first sample
	count int64
}

// NewReader creates a Reader over the sample source src. The cursor starts at the
// current position of src.
//
// Parameters:
//   - src: the sample stream (for attached headers, the same stream headers are read from)
//   - headers: the header strategy locating segments in src
//   - opts: Reader options
//
// Returns:
//   - *Reader: the reader
//   - error: an option error, or the error of querying the position of src
func NewReader(src io.ReadSeeker, headers index.HeaderReader, opts ...Option) (*Reader, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	return &Reader{
		src:     src,
		headers: headers,
		engine:  cfg.engine,
		native:  endian.CompareNativeEndian(cfg.engine),
		logger:  cfg.logger,
		cursor:  uint64(pos), //nolint:gosec
	}, nil
}

// Headers returns the header strategy of the reader.
func (r *Reader) Headers() index.HeaderReader {
	return r.headers
}

// Offset returns the absolute byte position of the cursor in the sample source.
func (r *Reader) Offset() uint64 {
	return r.cursor
}

// Position returns the absolute index of the sample under the cursor. At the end
// of the stream it is the number of samples in the stream.
func (r *Reader) Position() (int64, error) {
	e, ok, err := r.headers.HeaderForByte(r.cursor)
	if err != nil {
		return 0, err
	}
	if !ok {
		return r.headers.TotalSamples(), nil
	}

	return e.FirstSample + max(0, e.Header.SamplePosOfByte(r.cursor)), nil
}

// Segments iterates over every segment of the capture, discovering them as needed.
// Iteration stops at the first error, which is yielded with a zero Entry.
func (r *Reader) Segments() iter.Seq2[section.Entry, error] {
	return func(yield func(section.Entry, error) bool) {
		for i := 0; ; i++ {
			e, ok, err := r.headers.Segment(i)
			if err != nil {
				yield(section.Entry{}, err)
				return
			}
			if !ok || !yield(e, nil) {
				return
			}
		}
	}
}

// current returns the segment governing the cursor, or the last segment when the
// cursor is at the end of the stream.
func (r *Reader) current() (section.Entry, bool, error) {
	e, ok, err := r.headers.HeaderForByte(r.cursor)
	if err != nil || ok {
		return e, ok, err
	}

	if n := r.headers.Len(); n > 0 {
		return r.headers.Segment(n - 1)
	}

	return section.Entry{}, false, nil
}

// moveTo positions the source and the cursor at byte pos.
func (r *Reader) moveTo(pos uint64) error {
	if _, err := r.src.Seek(int64(pos), io.SeekStart); err != nil { //nolint:gosec
		return err
	}
	r.cursor = pos

	return nil
}
