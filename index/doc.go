// Package index discovers the segments of a capture and maps positions to the
// headers governing them.
//
// Two strategies locate header records:
//
//   - AttachedReader: headers are interleaved with the sample bytes. Each header
//     sits right before its samples in the same stream.
//   - DetachedReader: headers live in a separate stream, read sequentially, while
//     the samples of consecutive segments are packed back to back.
//
// Both implement Loader. Index wraps a Loader with the strategy-agnostic lookup:
// a position past the indexed segments triggers loading the following segments,
// left to right, until one covers it or the header stream ends. Segments are
// therefore never discovered out of order, and a byte below the high-water mark
// is always answered from the index.
//
// Example:
//
//	idx, err := index.NewDetached(hdrFile, index.WithIndexLogger(logger))
//	if err != nil {
//	    return err
//	}
//	entry, ok, err := idx.HeaderForByte(0)
package index
