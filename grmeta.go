// Package grmeta reads GNU Radio metadata captures: sample files whose segments
// are each described by a header of rate, receive time and sample format.
//
// Headers are either interleaved with the samples (attached) or stored in a
// separate header file (detached, conventionally "<data file>.hdr"). Both
// layouts are read lazily: a header is only parsed once a read or a seek needs
// it.
//
// # Basic Usage
//
// Opening a capture from disk and reading complex float samples:
//
//	f, err := grmeta.Open("capture.dat")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	buf := make([]format.Complex[float32], 4096)
//	for {
//	    n, err := sample.Read(f.Reader, buf)
//	    if err != nil {
//	        return err
//	    }
//	    if n == 0 {
//	        // end of stream, or a change of rate, format or timing; see below
//	        break
//	    }
//	    meta, _ := f.LastReadMeta()
//	    process(buf[:n], meta.SampleRate, meta.RxTime)
//	}
//
// A read never crosses a discontinuity: it stops where the rate, the format or the
// timing of the stream changes, and the next read starts a new run there. A read
// returning 0 at a segment of another data type means the caller has to pick a
// different sample type or skip ahead with sample.SeekValidSegment.
//
// # Package Structure
//
// This package opens files and streams and wires the layers together:
//
//   - pmt: the tag codec headers are written in
//   - section: segment headers, seek guarantees and the segment index storage
//   - index: attached and detached header discovery
//   - sample: the read and seek engine
//   - compress: archived (zstd, s2, lz4) captures
//
// Use those packages directly for finer control.
package grmeta

import (
	"io"

	"github.com/arloliu/grmeta/compress"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/index"
	"github.com/arloliu/grmeta/sample"
)

// OpenAttached reads a capture whose headers are interleaved with the samples in src.
//
// Reading starts at the current position of src, which should be the start of a
// header record.
//
// Example:
//
//	r, err := grmeta.OpenAttached(bytes.NewReader(capture))
func OpenAttached(src io.ReadSeeker, opts ...Option) (*sample.Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return openAttached(src, cfg)
}

// OpenDetached reads a capture whose samples are in data and whose headers are
// read sequentially from hdr.
func OpenDetached(data io.ReadSeeker, hdr io.Reader, opts ...Option) (*sample.Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	idx, err := index.NewDetached(hdr, cfg.indexOpts...)
	if err != nil {
		return nil, err
	}

	return sample.NewReader(data, idx, cfg.sampleOpts...)
}

// OpenCompressed restores an archived attached capture from r and reads it
// from memory.
//
// Parameters:
//   - r: the archive stream, read to the end
//   - ct: the archive format
//   - opts: facade options
//
// Returns:
//   - *sample.Reader: reader over the restored capture
//   - error: ErrUnsupportedCompression, a decompression error or a header error
func OpenCompressed(r io.Reader, ct format.CompressionType, opts ...Option) (*sample.Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	src, err := compress.ReadSource(r, ct)
	if err != nil {
		return nil, err
	}

	return openAttached(src, cfg)
}

func openAttached(src io.ReadSeeker, cfg *Config) (*sample.Reader, error) {
	idx, err := index.NewAttached(src, cfg.indexOpts...)
	if err != nil {
		return nil, err
	}

	return sample.NewReader(src, idx, cfg.sampleOpts...)
}
