// Package sample reads typed samples out of a capture and seeks within it.
//
// A Reader couples the sample stream with a header strategy from package index.
// Reads are generic over the buffer element type:
//
//	buf := make([]complex64, 4096)
//	n, err := sample.ReadConv(r, buf)
//
// Read copies samples verbatim and only accepts segments whose encoding is exactly
// the buffer's type; when the sample byte order matches the host, bytes go straight
// into buf. ReadConv accepts every segment whose encoding converts to the buffer's
// type and promotes element by element through a pooled scratch buffer.
//
// A read delivers one run: consecutive segments with the same sample rate and
// format that continue each other in time. Format changes, rate changes and time
// gaps end the run early with a short count and no error; LastReadMeta and
// LastReadTags describe what was delivered.
//
// Seeks take a section.SeekPreserve level stating which qualities of the current
// segment the destination must keep. A seek that cannot honor it fails with
// errs.ErrIncompatibleSegment and leaves the cursor untouched.
package sample
