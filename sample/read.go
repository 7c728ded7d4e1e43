package sample

import (
	"io"
	"log/slog"

	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/internal/pool"
	"github.com/arloliu/grmeta/section"
)

// Read copies samples into buf without conversion. The segments read must hold
// exactly T's representation; see format.ReadsDirectlyTo.
//
// A call delivers one run: it continues into the following segment only while
// that segment has the same sample rate and format and continues the previous
// one in time. It stops early, without error, at such a boundary, at a segment
// whose format does not read directly to T, or at the end of the stream. The
// cursor is left on the first sample not delivered, so a later call, Seek or
// SeekValidSegment resumes from there.
//
// Returns:
//   - int: the number of samples copied, possibly zero
//   - error: a header parse or validation error, or an I/O error of the source;
//     a prefix of buf may have been filled
func Read[T format.Sample](r *Reader, buf []T) (int, error) {
	return read(r, buf, format.ReadsDirectlyTo[T])
}

// ReadConv is Read with conversion: any segment whose format converts to T
// (see format.ConvertsTo) is read, each element being promoted to T.
func ReadConv[T format.Sample](r *Reader, buf []T) (int, error) {
	return read(r, buf, format.ConvertsTo[T])
}

func read[T format.Sample](r *Reader, buf []T, accepts func(format.DataType, bool) bool) (int, error) {
	r.run = run{}

	var prev *section.Header
	total := 0

	for total < len(buf) {
		e, ok, err := r.headers.HeaderForByte(r.cursor)
		if err != nil {
			return total, err
		}
		if !ok {
			r.logger.Debug("Read reached end of stream", slog.Uint64("offset", r.cursor))
			break
		}

		h := e.Header
		if prev != nil && h != prev {
			if !h.IsCompatibleWith(prev, section.PreserveAll) {
				r.logger.Debug("Read stopped at format change",
					slog.Int("segment", e.Ordinal),
					slog.Float64("rate", h.SampleRate()),
					slog.String("type", h.DataType().String()))

				break
			}
			if !h.IsContinuationOf(prev) {
				r.logger.Debug("Read stopped at time discontinuity",
					slog.Int("segment", e.Ordinal),
					slog.String("rxTime", h.RxTime().String()),
					slog.String("expected", prev.LastSampleTime().String()))

				break
			}
		}

		if !accepts(h.DataType(), h.IsComplex()) {
			r.logger.Debug("Read stopped at unreadable segment",
				slog.Int("segment", e.Ordinal),
				slog.String("type", h.DataType().String()),
				slog.Bool("complex", h.IsComplex()))

			break
		}

		if r.cursor < h.DataStart() {
			if err := r.moveTo(h.DataStart()); err != nil {
				return total, err
			}
		}

		k := h.SamplePosOfByte(r.cursor)
		n := int(min(h.NumSamples()-k, int64(len(buf)-total)))

		if r.run.count == 0 {
			r.run.first = e
			r.run.start = e.FirstSample + k
		}
		r.run.last = e

		if n > 0 {
			got, err := fill(r, h, buf[total:total+n])
			total += got
			r.run.count += int64(got)
			if err != nil {
				return total, err
			}
		} else if h.NumSamples() == 0 {
			// Empty attached segments only hold a header.
			if err := r.moveTo(h.DataEnd()); err != nil {
				return total, err
			}
		}

		prev = h
	}

	return total, nil
}

// fill reads len(dst) samples of h at the cursor. It returns the number of whole
// samples stored; the cursor advances by the bytes consumed.
func fill[T format.Sample](r *Reader, h *section.Header, dst []T) (int, error) {
	size := h.SampleSize()

	if format.ReadsDirectlyTo[T](h.DataType(), h.IsComplex()) && (r.native || h.ElementSize() == 1) {
		n, err := io.ReadFull(r.src, format.AsBytes(dst))
		r.cursor += uint64(n) //nolint:gosec
		if err != nil {
			return n / size, err
		}

		return len(dst), nil
	}

	bb := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(bb)

	chunk := max(1, pool.ScratchBufferDefaultSize/size)
	done := 0
	for done < len(dst) {
		count := min(chunk, len(dst)-done)
		raw := bb.Resize(count * size)

		n, err := io.ReadFull(r.src, raw)
		r.cursor += uint64(n) //nolint:gosec
		whole := n / size
		format.Convert(h.DataType(), r.engine, raw[:whole*size], dst[done:done+whole])
		done += whole
		if err != nil {
			return done, err
		}
	}

	return done, nil
}
