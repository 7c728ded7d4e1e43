package grmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/arloliu/grmeta/compress"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/index"
	"github.com/arloliu/grmeta/sample"
	"golang.org/x/sync/errgroup"
)

// HeaderSuffix is appended to a data file name to find its detached header file.
const HeaderSuffix = ".hdr"

// File is a capture opened from disk.
//
// The embedded Reader serves reads and seeks. File is not safe for concurrent use.
type File struct {
	*sample.Reader

	// Path is the data file.
	Path string
	// HeaderPath is the detached header file, empty for attached captures.
	HeaderPath string
	// Compression is the archive format of the data file.
	Compression format.CompressionType

	closers []io.Closer
}

// Open opens the capture at path.
//
// The layout is detected from the files present:
//   - with WithHeaderFile, headers are read from that file
//   - otherwise "<path>.hdr" next to the data file selects the detached layout
//   - otherwise headers are attached
//
// Data and header files ending in .zst, .zstd, .s2 or .lz4 are decompressed into
// memory first; "rec.dat.zst" looks for "rec.dat.hdr" and "rec.dat.hdr.zst".
//
// Example:
//
//	f, err := grmeta.Open("capture.dat", grmeta.WithSampleOptions(sample.WithBigEndianSamples()))
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
func Open(path string, opts ...Option) (*File, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ct, base := compress.TypeOf(path)
	if cfg.compression != 0 {
		ct = cfg.compression
	}

	f := &File{Path: path, Compression: ct}
	if err := f.open(base, cfg); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

func (f *File) open(base string, cfg *Config) error {
	data, err := f.openSource(f.Path, f.Compression)
	if err != nil {
		return err
	}

	f.HeaderPath = cfg.headerPath
	if f.HeaderPath == "" {
		f.HeaderPath = findHeaderFile(base, f.Path)
	}

	var idx *index.Index
	if f.HeaderPath == "" {
		idx, err = index.NewAttached(data, cfg.indexOpts...)
	} else {
		hct, _ := compress.TypeOf(f.HeaderPath)

		var hdr io.ReadSeeker
		hdr, err = f.openSource(f.HeaderPath, hct)
		if err != nil {
			return err
		}
		idx, err = index.NewDetached(hdr, cfg.indexOpts...)
	}
	if err != nil {
		return err
	}

	f.Reader, err = sample.NewReader(data, idx, cfg.sampleOpts...)

	return err
}

// openSource opens a plain file for direct reads, or restores an archive into memory.
func (f *File) openSource(path string, ct format.CompressionType) (io.ReadSeeker, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if ct == format.CompressionNone {
		f.closers = append(f.closers, fh)
		return fh, nil
	}
	defer fh.Close()

	src, err := compress.ReadSource(fh, ct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return src, nil
}

func findHeaderFile(base, path string) string {
	candidates := []string{base + HeaderSuffix}
	if base != path {
		candidates = append(candidates, base+HeaderSuffix+filepath.Ext(path))
	}

	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && st.Mode().IsRegular() {
			return c
		}
	}

	return ""
}

// Close releases the files backing f. It is safe to call more than once.
func (f *File) Close() error {
	var err error
	for _, c := range f.closers {
		err = errors.Join(err, c.Close())
	}
	f.closers = nil

	return err
}

// OpenMany opens and fully indexes several captures concurrently.
//
// If any capture fails, or ctx is canceled, all files opened so far are closed
// and the first error is returned, prefixed with the offending path.
//
// Example:
//
//	files, err := grmeta.OpenMany(ctx, []string{"a.dat", "b.dat.zst"})
//	if err != nil {
//	    return err
//	}
//	defer func() {
//	    for _, f := range files {
//	        f.Close()
//	    }
//	}()
func OpenMany(ctx context.Context, paths []string, opts ...Option) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	results := make([]*File, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			f, err := Open(path, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = f

			if err := f.Headers().LoadAll(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, f := range results {
			if f != nil {
				_ = f.Close()
			}
		}

		return nil, err
	}

	return results, nil
}
