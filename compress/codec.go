package compress

import (
	"fmt"

	"github.com/arloliu/grmeta/errs"
	"github.com/arloliu/grmeta/format"
)

// Compressor produces an archive from a whole capture file.
//
// Archives use the standard stream formats of each algorithm, so files produced
// by the zstd, s2c and lz4 command line tools are read back unchanged.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// The returned slice is newly allocated and owned by the caller. The input
	// slice is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a whole capture file from its archive.
//
// Implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original capture.
	//
	// An error is returned if the data is corrupted or was produced by another
	// algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
//
// Returns:
//   - Codec: shared codec instance for the type
//   - error: ErrUnsupportedCompression for an unknown type
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}
