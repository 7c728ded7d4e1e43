package index

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/arloliu/grmeta/internal/options"
	"github.com/arloliu/grmeta/pmt"
	"github.com/arloliu/grmeta/section"
)

// DetachedReader loads headers from a stream separate from the samples.
//
// The header stream is read sequentially. Segments are laid out back to back in
// the sample stream, so each segment's data starts where the previous one ended.
// Segments without samples cover no byte and are skipped.
type DetachedReader struct {
	dec    *pmt.Decoder
	logger *slog.Logger
}

var _ Loader = (*DetachedReader)(nil)

// NewDetachedReader creates the detached strategy over the header stream hdr.
func NewDetachedReader(hdr io.Reader, opts ...Option) (*DetachedReader, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return newDetachedReader(hdr, cfg), nil
}

func newDetachedReader(hdr io.Reader, cfg *Config) *DetachedReader {
	return &DetachedReader{
		dec:    pmt.NewDecoder(bufio.NewReaderSize(hdr, cfg.bufferSize)),
		logger: cfg.logger,
	}
}

// NewDetached creates an Index over a capture whose headers live in hdr.
func NewDetached(hdr io.Reader, opts ...Option) (*Index, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return New(newDetachedReader(hdr, cfg), cfg.logger), nil
}

// LoadNextHeader parses the next header record of the header stream. startByte
// is the data start of the segment it describes.
func (r *DetachedReader) LoadNextHeader(startByte uint64) (*section.Header, bool, error) {
	for {
		headerStart := uint64(r.dec.BytesRead()) //nolint:gosec

		hdr, ok, err := r.dec.DecodeOptional()
		if err != nil || !ok {
			return nil, false, wrapAt(err, headerStart)
		}

		extra, err := r.dec.Decode()
		if err != nil {
			return nil, false, wrapAt(err, headerStart)
		}

		h, err := section.FromTags(hdr, extra, headerStart, startByte)
		if err != nil {
			return nil, false, wrapAt(err, headerStart)
		}

		if h.Bytes() == 0 {
			r.logger.Debug("Skipping empty detached segment",
				slog.Uint64("headerStart", headerStart),
				slog.Uint64("dataStart", startByte))

			continue
		}

		return h, true, nil
	}
}
