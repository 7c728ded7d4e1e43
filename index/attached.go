package index

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/grmeta/errs"
	"github.com/arloliu/grmeta/internal/options"
	"github.com/arloliu/grmeta/pmt"
	"github.com/arloliu/grmeta/section"
)

// AttachedReader loads headers interleaved with the samples they describe.
//
// A header record at byte H is followed by its extra record; together they take
// C bytes. The "strt" field S gives the distance from H to the first sample byte,
// so the samples occupy [H+S, H+S+bytes) and the next header starts right after.
// S must be at least C; bytes between H+C and H+S are padding.
//
// The source is shared with the sample reader: its position is restored after
// each header is parsed.
type AttachedReader struct {
	rs     io.ReadSeeker
	br     *bufio.Reader
	strict bool
	logger *slog.Logger
}

var _ Loader = (*AttachedReader)(nil)

// NewAttachedReader creates the attached strategy over rs.
func NewAttachedReader(rs io.ReadSeeker, opts ...Option) (*AttachedReader, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return newAttachedReader(rs, cfg), nil
}

func newAttachedReader(rs io.ReadSeeker, cfg *Config) *AttachedReader {
	return &AttachedReader{
		rs:     rs,
		br:     bufio.NewReaderSize(rs, cfg.bufferSize),
		strict: cfg.strictLength,
		logger: cfg.logger,
	}
}

// NewAttached creates an Index over a capture with attached headers.
func NewAttached(rs io.ReadSeeker, opts ...Option) (*Index, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return New(newAttachedReader(rs, cfg), cfg.logger), nil
}

// LoadNextHeader parses the header record starting at startByte.
func (r *AttachedReader) LoadNextHeader(startByte uint64) (h *section.Header, ok bool, err error) {
	restore, err := r.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if _, serr := r.rs.Seek(restore, io.SeekStart); serr != nil && err == nil {
			err = serr
		}
	}()

	if _, err = r.rs.Seek(int64(startByte), io.SeekStart); err != nil { //nolint:gosec
		return nil, false, err
	}
	r.br.Reset(r.rs)

	return r.parse(startByte)
}

func (r *AttachedReader) parse(startByte uint64) (*section.Header, bool, error) {
	dec := pmt.NewDecoder(r.br)

	hdr, ok, err := dec.DecodeOptional()
	if err != nil || !ok {
		return nil, false, wrapAt(err, startByte)
	}

	extra, err := dec.Decode()
	if err != nil {
		return nil, false, wrapAt(err, startByte)
	}

	encoded := uint64(dec.BytesRead()) //nolint:gosec

	dict, isDict := hdr.(pmt.Dict)
	if !isDict {
		return nil, false, wrapAt(fmt.Errorf("%w: got %s", errs.ErrHeaderNotDict, hdr.Kind()), startByte)
	}

	strt, ok := dict[section.KeyStrt].(pmt.UInt64)
	if !ok {
		// Let FromTags report the missing or mistyped field.
		_, err = section.FromTags(hdr, extra, startByte, startByte)
		return nil, false, wrapAt(err, startByte)
	}

	switch {
	case uint64(strt) < encoded:
		return nil, false, wrapAt(fmt.Errorf("%w: strt %d shorter than the %d encoded bytes",
			errs.ErrInvalidHeaderLength, uint64(strt), encoded), startByte)
	case r.strict && uint64(strt) != encoded:
		return nil, false, wrapAt(fmt.Errorf("%w: strt %d, encoded %d bytes",
			errs.ErrInvalidHeaderLength, uint64(strt), encoded), startByte)
	}

	h, err := section.FromTags(hdr, extra, startByte, startByte+uint64(strt))
	if err != nil {
		return nil, false, wrapAt(err, startByte)
	}

	if pad := uint64(strt) - encoded; pad > 0 {
		r.logger.Debug("Attached header padding",
			slog.Uint64("headerStart", startByte),
			slog.Uint64("padding", pad))
	}

	return h, true, nil
}

// wrapAt adds the header position to parse and validation errors. Errors of the
// underlying source are returned as they are.
func wrapAt(err error, pos uint64) error {
	if err == nil || !isFormatError(err) {
		return err
	}

	return fmt.Errorf("header at byte %d: %w", pos, err)
}
