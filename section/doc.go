// Package section models the segments of a capture: the Header describing one run
// of samples, the guarantees a seek may be asked to keep, and the Storage indexing
// discovered segments.
//
// # Header
//
// A Header is built from the header dictionary and the extra record following it:
//
//	Key      | Tag        | Meaning
//	---------|------------|-----------------------------------------------
//	rx_rate  | Double     | sample rate in Hz
//	rx_time  | Tuple      | (UInt64 whole seconds, Double fraction)
//	size     | Int32      | element width, or item width for complex data
//	type     | Int32      | 0 Byte, 1 Short, 2 Int, 3 Float, 4 Double
//	cplx     | Bool       | interleaved real/imaginary samples
//	strt     | UInt64     | offset from header start to data start
//	bytes    | UInt64     | length of the sample data
//
// Besides its own fields a Header carries where its record and its samples live
// (HeaderStart, DataStart), so positions can be resolved without the reader.
//
// # Compatibility and continuity
//
// IsCompatibleWith gates three independent checks on a SeekPreserve level:
//
//	Level                        | Same rate | Same format | Convertible format
//	-----------------------------|-----------|-------------|-------------------
//	None                         |           |             |
//	Format                       |           | x           | x
//	Convertability               |           |             | x
//	SampleRate                   | x         |             |
//	SampleRateAndConvertability  | x         |             | x
//	All                          | x         | x           | x
//	Segment                      | x         | x           | x
//
// IsContinuationOf tells whether a segment picks up where the previous one left
// off, which is what lets a read run across a segment boundary.
//
// # Storage
//
// Storage is a sorted, append-only slice of Entry values keyed by the first byte
// each segment covers. Segments are discovered strictly left to right, so keys
// only increase and every lookup is a binary search.
package section
