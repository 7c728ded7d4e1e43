package sample

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/grmeta/errs"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/section"
)

// Seek moves the cursor to an absolute sample position, following io.Seeker
// conventions for whence. The position equal to the number of samples in the
// stream, the end, is allowed.
//
// The segment holding the destination must satisfy preserve relative to the
// segment governing the cursor; PreserveSegment further requires both to be the
// same segment. When it does not, or the destination is out of range, the cursor
// is left unchanged.
//
// Convertibility is checked from the destination to the current segment: with
// PreserveConvertability the destination's samples must convert to the format
// being read now, so a buffer typed for the current segment keeps working.
//
// Returns:
//   - int64: the new absolute sample position
//   - error: ErrInvalidWhence, ErrSeekOutOfRange, ErrNoSegment, ErrIncompatibleSegment,
//     a header error or an I/O error of the source
func (r *Reader) Seek(offset int64, whence int, preserve section.SeekPreserve) (int64, error) {
	cur, hasCur, err := r.current()
	if err != nil {
		return 0, err
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		pos, err := r.Position()
		if err != nil {
			return 0, err
		}
		target = pos + offset
	case io.SeekEnd:
		if err := r.headers.LoadAll(); err != nil {
			return 0, err
		}
		target = r.headers.TotalSamples() + offset
	default:
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidWhence, whence)
	}

	if target < 0 {
		return 0, fmt.Errorf("%w: sample %d", errs.ErrSeekOutOfRange, target)
	}

	dest, ok, err := r.headers.HeaderForSample(target)
	if err != nil {
		return 0, err
	}
	if !ok {
		// Only the end of the stream lies past every segment.
		last, hasLast, err := r.lastSegment()
		if err != nil {
			return 0, err
		}
		if !hasLast || target != last.EndSample() {
			return 0, fmt.Errorf("%w: sample %d of %d", errs.ErrSeekOutOfRange, target, r.headers.TotalSamples())
		}
		dest = last
	}

	if preserve.PreservesSegment() && hasCur && dest.Ordinal != cur.Ordinal {
		// The end of the current segment is still inside it.
		if target != cur.EndSample() {
			return 0, fmt.Errorf("%w: sample %d is outside segment %d", errs.ErrIncompatibleSegment, target, cur.Ordinal)
		}
		dest = cur
	}

	if err := r.checkPreserve(cur, hasCur, dest, preserve); err != nil {
		return 0, err
	}

	pos := dest.Header.ByteOfSample(target - dest.FirstSample)
	if err := r.moveTo(pos); err != nil {
		return 0, err
	}

	r.logger.Debug("Seek",
		slog.Int64("sample", target),
		slog.Int("segment", dest.Ordinal),
		slog.String("preserve", preserve.String()))

	return target, nil
}

// SeekSegment moves the cursor to the first sample of a segment addressed by
// ordinal, with io.Seeker conventions for whence: io.SeekEnd with offset -1 is
// the last segment. The preserve contract is the one of Seek.
//
// Returns:
//   - int64: the absolute sample position of the segment's first sample
//   - error: same as Seek
func (r *Reader) SeekSegment(offset int, whence int, preserve section.SeekPreserve) (int64, error) {
	cur, hasCur, err := r.current()
	if err != nil {
		return 0, err
	}

	var target int
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		if !hasCur {
			return 0, errs.ErrNoSegment
		}
		target = cur.Ordinal + offset
	case io.SeekEnd:
		if err := r.headers.LoadAll(); err != nil {
			return 0, err
		}
		target = r.headers.Len() + offset
	default:
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidWhence, whence)
	}

	dest, ok, err := r.headers.Segment(target)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: segment %d of %d", errs.ErrSeekOutOfRange, target, r.headers.Len())
	}

	if preserve.PreservesSegment() && hasCur && dest.Ordinal != cur.Ordinal {
		return 0, fmt.Errorf("%w: segment %d is not the current segment %d", errs.ErrIncompatibleSegment, dest.Ordinal, cur.Ordinal)
	}

	if err := r.checkPreserve(cur, hasCur, dest, preserve); err != nil {
		return 0, err
	}

	if err := r.moveTo(dest.Header.DataStart()); err != nil {
		return 0, err
	}

	r.logger.Debug("Seek segment",
		slog.Int("segment", dest.Ordinal),
		slog.String("preserve", preserve.String()))

	return dest.FirstSample, nil
}

// SeekValidSegment advances segment by segment, starting after the current one,
// to the first segment holding samples that convert to T, and moves the cursor to
// its first sample.
//
// Returns:
//   - int: the number of segments skipped over
//   - error: ErrNoValidSegment if the stream ends first, leaving the cursor unchanged
func SeekValidSegment[T format.Sample](r *Reader) (int, error) {
	cur, hasCur, err := r.current()
	if err != nil {
		return 0, err
	}

	from := 0
	if hasCur {
		from = cur.Ordinal + 1
	}

	for i := from; ; i++ {
		e, ok, err := r.headers.Segment(i)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("%w: searched segments %d to %d", errs.ErrNoValidSegment, from, i-1)
		}

		h := e.Header
		if h.NumSamples() == 0 || !format.ConvertsTo[T](h.DataType(), h.IsComplex()) {
			continue
		}

		if err := r.moveTo(h.DataStart()); err != nil {
			return 0, err
		}

		r.logger.Debug("Seek valid segment",
			slog.Int("segment", e.Ordinal),
			slog.Int("skipped", i-from))

		return i - from, nil
	}
}

func (r *Reader) checkPreserve(cur section.Entry, hasCur bool, dest section.Entry, preserve section.SeekPreserve) error {
	if !hasCur {
		if preserve == section.PreserveNone {
			return nil
		}

		return fmt.Errorf("%w: nothing to preserve %s from", errs.ErrNoSegment, preserve)
	}

	if !cur.Header.IsCompatibleWith(dest.Header, preserve) {
		return fmt.Errorf("%w: preserve %s from segment %d to %d",
			errs.ErrIncompatibleSegment, preserve, cur.Ordinal, dest.Ordinal)
	}

	return nil
}

func (r *Reader) lastSegment() (section.Entry, bool, error) {
	n := r.headers.Len()
	if n == 0 {
		return section.Entry{}, false, nil
	}

	return r.headers.Segment(n - 1)
}
