// Package hash provides the xxHash64 identifiers used for stream tag keys and
// segment checksums.
package hash

import "github.com/cespare/xxhash/v2"

// KeyID computes the xxHash64 of a stream tag key.
func KeyID(key string) uint64 {
	return xxhash.Sum64String(key)
}

// NewDigest returns a streaming xxHash64 digest, for checksumming segments
// without holding their samples in memory.
func NewDigest() *xxhash.Digest {
	return xxhash.New()
}
