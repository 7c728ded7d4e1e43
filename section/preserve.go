package section

// SeekPreserve selects which qualities of the current segment a seek must keep.
// When in doubt use PreserveAll: most captures hold a single format and rate.
type SeekPreserve uint8

const (
	// PreserveNone allows landing in any segment.
	PreserveNone SeekPreserve = iota
	// PreserveFormat requires the same element type and complexness.
	PreserveFormat
	// PreserveConvertability requires an element type convertible to the current one.
	PreserveConvertability
	// PreserveSampleRate requires the same sample rate.
	PreserveSampleRate
	// PreserveSampleRateAndConvertability combines PreserveSampleRate and PreserveConvertability.
	PreserveSampleRateAndConvertability
	// PreserveAll requires the same sample rate and format.
	PreserveAll
	// PreserveSegment keeps the guarantees of PreserveAll and only allows seeking
	// within the current segment.
	PreserveSegment
)

// PreservesFormat reports whether the element type must stay identical.
func (p SeekPreserve) PreservesFormat() bool {
	return p == PreserveFormat || p == PreserveAll || p == PreserveSegment
}

// PreservesConvertability reports whether the destination element type must
// convert to the current one. Exact format levels satisfy it trivially.
func (p SeekPreserve) PreservesConvertability() bool {
	return p != PreserveNone && p != PreserveSampleRate
}

// PreservesSampleRate reports whether the sample rate must stay identical.
func (p SeekPreserve) PreservesSampleRate() bool {
	return p != PreserveNone && p != PreserveFormat && p != PreserveConvertability
}

// PreservesSegment reports whether the destination must be the current segment.
func (p SeekPreserve) PreservesSegment() bool {
	return p == PreserveSegment
}

func (p SeekPreserve) String() string {
	switch p {
	case PreserveNone:
		return "None"
	case PreserveFormat:
		return "Format"
	case PreserveConvertability:
		return "Convertability"
	case PreserveSampleRate:
		return "SampleRate"
	case PreserveSampleRateAndConvertability:
		return "SampleRateAndConvertability"
	case PreserveAll:
		return "All"
	case PreserveSegment:
		return "Segment"
	default:
		return "Unknown"
	}
}
