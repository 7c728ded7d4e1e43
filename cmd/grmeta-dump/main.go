// Command grmeta-dump prints the segment table of GNU Radio metadata captures.
//
// Usage:
//
//	grmeta-dump [flags] capture.dat [capture2.dat.zst ...]
//
// Detached header files ("<file>.hdr") and zst, s2 or lz4 archives are detected
// from the file names. With -pack the captures are archived instead of listed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/arloliu/grmeta"
	"github.com/arloliu/grmeta/compress"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/internal/hash"
	"github.com/arloliu/grmeta/sample"
	"github.com/arloliu/grmeta/section"
)

const VERSION = "0.1.0"

type options struct {
	bigEndian bool
	checksum  bool
	samples   int
	debug     bool
	pack      string
	version   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options

	fs := flag.NewFlagSet("grmeta-dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.bigEndian, "be", false, "Samples are stored big-endian")
	fs.BoolVar(&opts.checksum, "sum", false, "Print an xxHash64 checksum of each segment's decoded samples")
	fs.IntVar(&opts.samples, "n", 0, "Print the first `N` samples of each capture")
	fs.BoolVar(&opts.debug, "d", false, "Debug logging to stderr")
	fs.StringVar(&opts.pack, "pack", "", "Archive each capture with `ALGO` (zst, s2 or lz4) instead of listing it")
	fs.BoolVar(&opts.version, "version", false, "Display version information")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.version {
		fmt.Fprintf(stdout, "grmeta-dump version %s\n", VERSION)
		return nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no capture given")
	}

	if opts.pack != "" {
		for _, path := range fs.Args() {
			out, err := pack(path, opts.pack)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s -> %s\n", path, out)
		}

		return nil
	}

	logger := slog.New(slog.DiscardHandler)
	if opts.debug {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	gopts := []grmeta.Option{grmeta.WithLogger(logger)}
	if opts.bigEndian {
		gopts = append(gopts, grmeta.WithSampleOptions(sample.WithBigEndianSamples()))
	}

	files, err := grmeta.OpenMany(context.Background(), fs.Args(), gopts...)
	if err != nil {
		return err
	}
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	for _, f := range files {
		if err := dump(stdout, f, opts); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}

	return nil
}

func dump(w io.Writer, f *grmeta.File, opts options) error {
	layout := "attached headers"
	if f.HeaderPath != "" {
		layout = "headers in " + f.HeaderPath
	}
	if f.Compression != format.CompressionNone {
		layout += ", " + f.Compression.String() + " archive"
	}
	fmt.Fprintf(w, "%s (%s)\n", f.Path, layout)

	var entries []section.Entry
	for e, err := range f.Segments() {
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := "#\tfirst\tsamples\ttype\trate\trx_time\tdata"
	if opts.checksum {
		header += "\txxh64"
	}
	fmt.Fprintln(tw, header)

	for _, e := range entries {
		h := e.Header
		kind := h.DataType().String()
		if h.IsComplex() {
			kind += " complex"
		}
		line := fmt.Sprintf("%d\t%d\t%d\t%s\t%g\t%s\t%d", e.Ordinal, e.FirstSample, h.NumSamples(),
			kind, h.SampleRate(), h.RxTime(), h.DataStart())

		if opts.checksum {
			sum, err := checksum(f.Reader, e)
			if err != nil {
				return err
			}
			line += fmt.Sprintf("\t%016x", sum)
		}
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d segments, %d samples\n", len(entries), f.Headers().TotalSamples())

	if opts.samples > 0 && len(entries) > 0 {
		return printSamples(w, f.Reader, entries[0].Header.IsComplex(), opts.samples)
	}

	return nil
}

// checksum hashes the decoded samples of segment e in host byte order.
func checksum(r *sample.Reader, e section.Entry) (uint64, error) {
	if _, err := r.SeekSegment(e.Ordinal, io.SeekStart, section.PreserveNone); err != nil {
		return 0, err
	}

	h := e.Header
	n := h.NumSamples()

	switch h.DataType() {
	case format.TypeByte:
		if h.IsComplex() {
			return segmentSum[format.Complex[int8]](r, n)
		}
		return segmentSum[int8](r, n)
	case format.TypeShort:
		if h.IsComplex() {
			return segmentSum[format.Complex[int16]](r, n)
		}
		return segmentSum[int16](r, n)
	case format.TypeInt:
		if h.IsComplex() {
			return segmentSum[format.Complex[int32]](r, n)
		}
		return segmentSum[int32](r, n)
	case format.TypeFloat:
		if h.IsComplex() {
			return segmentSum[complex64](r, n)
		}
		return segmentSum[float32](r, n)
	default:
		if h.IsComplex() {
			return segmentSum[complex128](r, n)
		}
		return segmentSum[float64](r, n)
	}
}

func segmentSum[T format.Sample](r *sample.Reader, n int64) (uint64, error) {
	d := hash.NewDigest()
	buf := make([]T, 4096)

	for n > 0 {
		want := int64(len(buf))
		if n < want {
			want = n
		}

		got, err := sample.Read(r, buf[:want])
		if err != nil {
			return 0, err
		}
		if got == 0 {
			return 0, io.ErrUnexpectedEOF
		}

		_, _ = d.Write(format.AsBytes(buf[:got]))
		n -= int64(got)
	}

	return d.Sum64(), nil
}

func printSamples(w io.Writer, r *sample.Reader, isComplex bool, n int) error {
	if _, err := r.Seek(0, io.SeekStart, section.PreserveNone); err != nil {
		return err
	}

	if isComplex {
		buf := make([]complex128, n)
		got, err := sample.ReadConv(r, buf)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, buf[:got])

		return nil
	}

	buf := make([]float64, n)
	got, err := sample.ReadConv(r, buf)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, buf[:got])

	return nil
}

var packExtensions = map[string]format.CompressionType{
	"zst": format.CompressionZstd,
	"s2":  format.CompressionS2,
	"lz4": format.CompressionLZ4,
}

// pack writes "<path>.<algo>" next to path.
func pack(path, algo string) (string, error) {
	ct, ok := packExtensions[algo]
	if !ok {
		return "", fmt.Errorf("unknown archive algorithm %q", algo)
	}

	codec, err := compress.GetCodec(ct)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	out, err := codec.Compress(data)
	if err != nil {
		return "", err
	}

	dst := path + "." + algo
	if err := os.WriteFile(dst, out, 0o644); err != nil { //nolint:gosec
		return "", err
	}

	return dst, nil
}
