// Package errs defines the sentinel errors returned by grmeta packages.
//
// Errors are wrapped with additional context using fmt.Errorf and the %w verb,
// so callers should compare with errors.Is:
//
//	if errors.Is(err, errs.ErrMissingField) {
//	    // the header dictionary lacks a required key
//	}
//
// I/O errors coming from the underlying sources are never wrapped into one of
// these sentinels; they are returned as produced by the source.
package errs

import "errors"

// Tag parsing errors.
var (
	// ErrUnexpectedEOF is returned when a record ends in the middle of its encoding.
	ErrUnexpectedEOF = errors.New("unexpected end of stream while parsing tag")
	// ErrMalformedDict is returned when a dictionary does not follow the dict(pair(symbol, value), ...) chain.
	ErrMalformedDict = errors.New("malformed dictionary tag")
	// ErrInvalidSymbol is returned when a symbol is not valid UTF-8.
	ErrInvalidSymbol = errors.New("symbol is not valid UTF-8")
	// ErrUnknownTag is returned for an unrecognized leading type byte.
	ErrUnknownTag = errors.New("unrecognized tag type")
	// ErrUnsupportedTag is returned when encoding a value that has no wire representation.
	ErrUnsupportedTag = errors.New("unsupported tag value")
)

// Header validation errors.
var (
	ErrHeaderNotDict       = errors.New("header is not a dictionary")
	ErrMissingField        = errors.New("missing header field")
	ErrWrongFieldType      = errors.New("header field has unexpected type")
	ErrUnknownDataType     = errors.New("unknown data type code")
	ErrInvalidElementSize  = errors.New("element size does not match data type")
	ErrNonDividingLength   = errors.New("segment length is not a whole number of samples")
	ErrInvalidSampleRate   = errors.New("sample rate must be positive and finite")
	ErrInvalidRxTime       = errors.New("rx_time fraction must be finite")
	ErrInvalidHeaderLength = errors.New("header length field is inconsistent with the encoded header")
	ErrHeaderOverlap       = errors.New("segment overlaps a previously indexed segment")
)

// Seek and positioning outcomes. These never indicate corrupted state: the
// cursor is left where it was before the call.
var (
	ErrIncompatibleSegment = errors.New("destination segment violates the requested preservation")
	ErrSeekOutOfRange      = errors.New("seek position is out of range")
	ErrNoSegment           = errors.New("no segment governs the current position")
	ErrNoValidSegment      = errors.New("no following segment converts to the requested type")
	ErrInvalidWhence       = errors.New("invalid seek whence")
)

// Archive errors.
var (
	ErrUnsupportedCompression = errors.New("unsupported compression type")
)
