// Package compress restores archived capture files.
//
// Long recordings are routinely archived with a general-purpose compressor. A
// capture must be seekable to be read, so an archive is decompressed as a whole
// into memory and served through a bytes.Reader.
//
// # Supported Algorithms
//
//	Type             | Extension     | Format                         | Library
//	-----------------|---------------|--------------------------------|---------------------------
//	CompressionNone  |               | raw capture                    |
//	CompressionZstd  | .zst, .zstd   | Zstandard frames               | klauspost/compress/zstd
//	CompressionS2    | .s2           | S2 stream (Snappy framed too)  | klauspost/compress/s2
//	CompressionLZ4   | .lz4          | LZ4 frame                      | pierrec/lz4/v4
//
// Building with cgo and the gozstd tag decodes Zstandard through libzstd
// (valyala/gozstd) instead of the pure Go decoder.
//
// # Usage
//
//	ct, base := compress.TypeOf("rec.dat.zst") // CompressionZstd, "rec.dat"
//	f, err := os.Open("rec.dat.zst")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	src, err := compress.ReadSource(f, ct)
//	if err != nil {
//	    return err
//	}
//	idx, err := index.NewAttached(src)
//
// # Thread Safety
//
// All codecs are stateless values backed by pooled encoders and decoders and may
// be shared across goroutines.
package compress
