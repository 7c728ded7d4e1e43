package index

import (
	"log/slog"

	"github.com/arloliu/grmeta/section"
)

// Loader discovers segments one at a time, strictly left to right.
type Loader interface {
	// LoadNextHeader parses the segment whose first covered byte is startByte.
	// It returns false only on a clean end of stream at a record boundary.
	LoadNextHeader(startByte uint64) (*section.Header, bool, error)
}

// HeaderReader resolves positions to the segments governing them, discovering
// segments lazily as positions past the indexed ones are requested.
type HeaderReader interface {
	// HeaderForByte returns the segment covering absolute byte b.
	HeaderForByte(b uint64) (section.Entry, bool, error)
	// HeaderForSample returns the segment holding absolute sample pos.
	HeaderForSample(pos int64) (section.Entry, bool, error)
	// Segment returns the segment with the given ordinal.
	Segment(ordinal int) (section.Entry, bool, error)
	// LoadAll discovers every remaining segment.
	LoadAll() error
	// Len returns the number of segments discovered so far.
	Len() int
	// TotalSamples returns the number of samples in the segments discovered so far.
	TotalSamples() int64
}

// Index is the strategy-agnostic lazy index over a Loader.
//
// Index is not safe for concurrent use.
type Index struct {
	loader  Loader
	storage *section.Storage
	logger  *slog.Logger
	eof     bool
}

var _ HeaderReader = (*Index)(nil)

// New creates an Index discovering segments through loader.
func New(loader Loader, logger *slog.Logger) *Index {
	if logger == nil {
		logger = NewConfig().logger
	}

	return &Index{
		loader:  loader,
		storage: section.NewStorage(),
		logger:  logger,
	}
}

// HeaderForByte returns the indexed segment covering b, loading segments after the
// last indexed one until one covers b or the stream ends.
func (ix *Index) HeaderForByte(b uint64) (section.Entry, bool, error) {
	if e, ok := ix.storage.Find(b); ok {
		return e, true, nil
	}
	if b < ix.storage.End() {
		return section.Entry{}, false, nil
	}

	return ix.loadUntil(func(e section.Entry) bool { return e.Covers(b) })
}

// HeaderForSample returns the segment holding absolute sample pos.
func (ix *Index) HeaderForSample(pos int64) (section.Entry, bool, error) {
	if pos < 0 {
		return section.Entry{}, false, nil
	}
	if e, ok := ix.storage.FindSample(pos); ok {
		return e, true, nil
	}

	return ix.loadUntil(func(e section.Entry) bool { return pos < e.EndSample() })
}

// Segment returns the segment with the given ordinal.
func (ix *Index) Segment(ordinal int) (section.Entry, bool, error) {
	if ordinal < 0 {
		return section.Entry{}, false, nil
	}
	if e, ok := ix.storage.At(ordinal); ok {
		return e, true, nil
	}

	return ix.loadUntil(func(e section.Entry) bool { return e.Ordinal == ordinal })
}

// LoadAll discovers every remaining segment.
func (ix *Index) LoadAll() error {
	_, _, err := ix.loadUntil(func(section.Entry) bool { return false })
	return err
}

// Len returns the number of segments discovered so far.
func (ix *Index) Len() int {
	return ix.storage.Len()
}

// TotalSamples returns the number of samples in the segments discovered so far.
func (ix *Index) TotalSamples() int64 {
	return ix.storage.TotalSamples()
}

// Storage exposes the underlying index of discovered segments.
func (ix *Index) Storage() *section.Storage {
	return ix.storage
}

// loadUntil appends segments until done accepts one or the stream ends.
func (ix *Index) loadUntil(done func(section.Entry) bool) (section.Entry, bool, error) {
	for !ix.eof {
		start := ix.storage.End()

		h, ok, err := ix.loader.LoadNextHeader(start)
		if err != nil {
			return section.Entry{}, false, err
		}
		if !ok {
			ix.eof = true
			ix.logger.Debug("End of header stream",
				slog.Int("segments", ix.storage.Len()),
				slog.Uint64("end", start))

			break
		}

		e, err := ix.storage.Insert(start, h)
		if err != nil {
			return section.Entry{}, false, err
		}

		ix.logger.Debug("Indexed segment",
			slog.Int("ordinal", e.Ordinal),
			slog.Uint64("key", e.Key),
			slog.Uint64("dataStart", h.DataStart()),
			slog.Int64("samples", h.NumSamples()),
			slog.String("type", h.DataType().String()),
			slog.Bool("complex", h.IsComplex()),
			slog.Float64("rate", h.SampleRate()))

		if done(e) {
			return e, true, nil
		}
	}

	return section.Entry{}, false, nil
}
