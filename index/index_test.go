package index

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/arloliu/grmeta/errs"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/internal/fixture"
	"github.com/arloliu/grmeta/pmt"
	"github.com/arloliu/grmeta/section"
	"github.com/stretchr/testify/require"
)

func segments() []fixture.Segment {
	return []fixture.Segment{
		{Rate: 1000, RxSec: 10, Type: format.TypeShort, Data: make([]byte, 20)},
		{Rate: 1000, RxSec: 11, Type: format.TypeFloat, Complex: true, Data: make([]byte, 16),
			Extra: pmt.Dict{"rx_freq": pmt.Double(100e6)}},
		{Rate: 2000, RxSec: 12, Type: format.TypeByte, Data: make([]byte, 7)},
	}
}

func recordLen(t *testing.T, seg fixture.Segment) uint64 {
	t.Helper()

	rec, err := seg.Record()
	require.NoError(t, err)

	return uint64(len(rec))
}

func TestAttached_Layout(t *testing.T) {
	segs := segments()
	data, err := fixture.Attached(segs...)
	require.NoError(t, err)

	idx, err := NewAttached(bytes.NewReader(data))
	require.NoError(t, err)

	var pos uint64
	for i, seg := range segs {
		c := recordLen(t, seg)

		e, ok, err := idx.HeaderForByte(pos)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, i, e.Ordinal)
		require.Equal(t, pos, e.Key)
		require.Equal(t, pos, e.Header.HeaderStart())
		require.Equal(t, pos+c, e.Header.DataStart())
		require.Equal(t, c, e.Header.Strt())

		// the last data byte belongs to the same segment
		last := e.Header.DataEnd() - 1
		e2, ok, err := idx.HeaderForByte(last)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, i, e2.Ordinal)

		pos = e.Header.DataEnd()
	}
	require.Equal(t, uint64(len(data)), pos)

	_, ok, err := idx.HeaderForByte(pos)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 3, idx.Len())

	first, ok, err := idx.Segment(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pmt.Dict{"rx_freq": pmt.Double(100e6)}, first.Header.Extra())
}

func TestAttached_LazyDiscovery(t *testing.T) {
	data, err := fixture.Attached(segments()...)
	require.NoError(t, err)

	idx, err := NewAttached(bytes.NewReader(data))
	require.NoError(t, err)

	_, ok, err := idx.HeaderForByte(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, idx.Len())

	e, ok, err := idx.HeaderForSample(10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, e.Ordinal)
	require.Equal(t, int64(10), e.FirstSample)
	require.Equal(t, 2, idx.Len())

	require.NoError(t, idx.LoadAll())
	require.Equal(t, 3, idx.Len())
	require.Equal(t, int64(19), idx.Storage().TotalSamples())

	_, ok, err = idx.Segment(3)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = idx.HeaderForSample(19)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAttached_RestoresPosition(t *testing.T) {
	data, err := fixture.Attached(segments()...)
	require.NoError(t, err)

	src := bytes.NewReader(data)
	_, err = src.Seek(5, io.SeekStart)
	require.NoError(t, err)

	idx, err := NewAttached(src)
	require.NoError(t, err)
	require.NoError(t, idx.LoadAll())

	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(5), pos)
}

func TestAttached_Padding(t *testing.T) {
	seg := segments()[0]
	c := recordLen(t, seg)
	seg.Strt = c + 13

	data, err := fixture.Attached(seg, segments()[2])
	require.NoError(t, err)

	t.Run("lenient", func(t *testing.T) {
		idx, err := NewAttached(bytes.NewReader(data))
		require.NoError(t, err)

		e, ok, err := idx.HeaderForByte(c + 5)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, c+13, e.Header.DataStart())

		next, ok, err := idx.Segment(1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, e.Header.DataEnd(), next.Key)
	})

	t.Run("strict", func(t *testing.T) {
		idx, err := NewAttached(bytes.NewReader(data), WithStrictHeaderLength())
		require.NoError(t, err)

		_, _, err = idx.HeaderForByte(0)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderLength)
	})
}

func TestAttached_StrtTooShort(t *testing.T) {
	seg := segments()[0]
	seg.Header = seg.Dict(4)

	data, err := fixture.Attached(seg)
	require.NoError(t, err)

	idx, err := NewAttached(bytes.NewReader(data))
	require.NoError(t, err)

	_, _, err = idx.HeaderForByte(0)
	require.ErrorIs(t, err, errs.ErrInvalidHeaderLength)
}

func TestAttached_ErrorKeepsIndexedSegments(t *testing.T) {
	data, err := fixture.Attached(segments()[0])
	require.NoError(t, err)
	data = append(data, 0x09, 0x07) // truncated dict

	idx, err := NewAttached(bytes.NewReader(data))
	require.NoError(t, err)

	end := uint64(len(data) - 2)
	_, _, err = idx.HeaderForByte(end)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	require.Contains(t, err.Error(), "header at byte")

	e, ok, err := idx.HeaderForByte(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, e.Ordinal)
	require.Equal(t, 1, idx.Len())
}

func TestAttached_HeaderValidation(t *testing.T) {
	seg := segments()[0]
	d := seg.Dict(0)
	delete(d, section.KeyStrt)
	seg.Header = d

	data, err := fixture.Attached(seg)
	require.NoError(t, err)

	idx, err := NewAttached(bytes.NewReader(data))
	require.NoError(t, err)

	_, _, err = idx.HeaderForByte(0)
	require.ErrorIs(t, err, errs.ErrMissingField)

	notDict, err := pmt.Marshal(pmt.Tuple{pmt.Int32(1)})
	require.NoError(t, err)
	notDict = append(notDict, 0x06)

	idx, err = NewAttached(bytes.NewReader(notDict))
	require.NoError(t, err)
	_, _, err = idx.HeaderForByte(0)
	require.ErrorIs(t, err, errs.ErrHeaderNotDict)
}

func TestDetached_Layout(t *testing.T) {
	segs := segments()
	empty := fixture.Segment{Rate: 1000, RxSec: 11, Type: format.TypeShort}
	withEmpty := []fixture.Segment{segs[0], empty, segs[1], segs[2]}

	data, hdr, err := fixture.Detached(withEmpty...)
	require.NoError(t, err)

	idx, err := NewDetached(bytes.NewReader(hdr))
	require.NoError(t, err)
	require.NoError(t, idx.LoadAll())
	require.Equal(t, 3, idx.Len())

	var dataPos, hdrPos uint64
	for i, seg := range withEmpty {
		if len(seg.Data) == 0 {
			hdrPos += recordLen(t, seg)
			continue
		}

		e, ok, err := idx.HeaderForByte(dataPos)
		require.NoError(t, err)
		require.True(t, ok, "segment %d", i)
		require.Equal(t, dataPos, e.Key)
		require.Equal(t, dataPos, e.Header.DataStart())
		require.Equal(t, hdrPos, e.Header.HeaderStart())

		dataPos += uint64(len(seg.Data))
		hdrPos += recordLen(t, seg)
	}
	require.Equal(t, uint64(len(data)), dataPos)
}

func TestDetached_EmptyStream(t *testing.T) {
	idx, err := NewDetached(bytes.NewReader(nil))
	require.NoError(t, err)

	_, ok, err := idx.HeaderForByte(0)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, idx.Len())
}

func TestDetached_MissingExtra(t *testing.T) {
	seg := segments()[0]
	hdr, err := pmt.Marshal(seg.Dict(0))
	require.NoError(t, err)

	idx, err := NewDetached(bytes.NewReader(hdr))
	require.NoError(t, err)

	_, _, err = idx.HeaderForByte(0)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestDetached_PropagatesIOError(t *testing.T) {
	boom := errors.New("boom")
	idx, err := NewDetached(errReader{boom})
	require.NoError(t, err)

	_, _, err = idx.HeaderForByte(0)
	require.ErrorIs(t, err, boom)
	require.NotContains(t, err.Error(), "header at byte")
}

// recordingLoader records the start bytes it is asked for.
type recordingLoader struct {
	inner  Loader
	starts []uint64
}

func (r *recordingLoader) LoadNextHeader(startByte uint64) (*section.Header, bool, error) {
	r.starts = append(r.starts, startByte)
	return r.inner.LoadNextHeader(startByte)
}

func TestIndex_NeverIndexesLowerByte(t *testing.T) {
	segs := make([]fixture.Segment, 0, 20)
	for i := range 20 {
		segs = append(segs, fixture.Segment{
			Rate: 1, RxSec: uint64(i), Type: format.TypeByte, Data: make([]byte, 1+i%5),
		})
	}

	for _, attached := range []bool{true, false} {
		var loader Loader
		var total uint64
		if attached {
			data, err := fixture.Attached(segs...)
			require.NoError(t, err)
			loader, err = NewAttachedReader(bytes.NewReader(data))
			require.NoError(t, err)
			total = uint64(len(data))
		} else {
			data, hdr, err := fixture.Detached(segs...)
			require.NoError(t, err)
			loader, err = NewDetachedReader(bytes.NewReader(hdr))
			require.NoError(t, err)
			total = uint64(len(data))
		}

		rec := &recordingLoader{inner: loader}
		idx := New(rec, slog.New(slog.DiscardHandler))

		var maxKey uint64
		for b := uint64(0); b <= total+3; b += 3 {
			_, _, err := idx.HeaderForByte(b)
			require.NoError(t, err)

			for i := range idx.Len() {
				e, _ := idx.Storage().At(i)
				if i > 0 {
					prev, _ := idx.Storage().At(i - 1)
					require.Greater(t, e.Key, prev.Key)
				}
				if e.Key > maxKey {
					maxKey = e.Key
				}
			}
			// revisiting lower bytes never loads
			before := len(rec.starts)
			_, _, err = idx.HeaderForByte(b / 2)
			require.NoError(t, err)
			require.Len(t, rec.starts, before)
		}

		for i := 1; i < len(rec.starts); i++ {
			require.Greater(t, rec.starts[i], rec.starts[i-1], "attached=%v", attached)
		}
		require.Equal(t, len(segs), idx.Len())
		require.Less(t, maxKey, total)
	}
}

func TestOptions(t *testing.T) {
	_, err := NewAttached(bytes.NewReader(nil), WithHeaderBufferSize(1))
	require.Error(t, err)

	_, err = NewDetached(bytes.NewReader(nil), WithIndexLogger(nil))
	require.Error(t, err)

	cfg := NewConfig()
	require.Equal(t, DefaultHeaderBufferSize, cfg.bufferSize)
	require.NotNil(t, cfg.Logger())
}
