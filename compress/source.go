package compress

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/internal/pool"
)

var extensions = map[string]format.CompressionType{
	".zst":  format.CompressionZstd,
	".zstd": format.CompressionZstd,
	".s2":   format.CompressionS2,
	".lz4":  format.CompressionLZ4,
}

// TypeOf returns the compression of the file at path, judged by its extension,
// and the path with the archive extension removed.
//
// Files without a known archive extension are CompressionNone and keep their name.
func TypeOf(path string) (format.CompressionType, string) {
	ext := filepath.Ext(path)
	if ct, ok := extensions[strings.ToLower(ext)]; ok {
		return ct, strings.TrimSuffix(path, ext)
	}

	return format.CompressionNone, path
}

// NewSource decompresses an archive held in memory and returns a seekable
// source over the restored capture.
//
// For CompressionNone the source reads data directly.
func NewSource(data []byte, compressionType format.CompressionType) (*bytes.Reader, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	out, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("restore %s capture: %w", compressionType, err)
	}

	return bytes.NewReader(out), nil
}

// ReadSource reads a whole archive from r and decompresses it.
//
// The compressed bytes are staged in a pooled buffer; the returned source owns
// its own memory.
func ReadSource(r io.Reader, compressionType format.CompressionType) (*bytes.Reader, error) {
	if _, err := GetCodec(compressionType); err != nil {
		return nil, err
	}

	if compressionType == format.CompressionNone {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		return bytes.NewReader(data), nil
	}

	buf := pool.GetArchiveBuffer()
	defer pool.PutArchiveBuffer(buf)

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	return NewSource(buf.Bytes(), compressionType)
}
