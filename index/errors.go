package index

import (
	"errors"

	"github.com/arloliu/grmeta/errs"
)

var formatErrors = []error{
	errs.ErrUnexpectedEOF,
	errs.ErrMalformedDict,
	errs.ErrInvalidSymbol,
	errs.ErrUnknownTag,
	errs.ErrHeaderNotDict,
	errs.ErrMissingField,
	errs.ErrWrongFieldType,
	errs.ErrUnknownDataType,
	errs.ErrInvalidElementSize,
	errs.ErrNonDividingLength,
	errs.ErrInvalidSampleRate,
	errs.ErrInvalidHeaderLength,
}

func isFormatError(err error) bool {
	for _, target := range formatErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
