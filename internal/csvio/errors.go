package csvio

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound indicates the input file could not be opened.
	ErrSourceNotFound = errors.New("file_not_found")

	// ErrSeparatorDetection indicates the first line is missing or unreadable.
	ErrSeparatorDetection = errors.New("separator_error")

	// ErrHeaderDecode indicates the header row could not be read.
	ErrHeaderDecode = errors.New("header_error")

	// ErrEmptyHeader indicates a header cell is the empty string.
	ErrEmptyHeader = errors.New("empty_header")

	// ErrDuplicateHeader indicates a header name appears more than once.
	ErrDuplicateHeader = errors.New("duplicate_headers")

	// ErrRowDecode indicates a data row is malformed.
	ErrRowDecode = errors.New("row_format")

	// ErrSerialization indicates the output could not be written.
	ErrSerialization = errors.New("write_error")

	// ErrUnsupportedEncoding indicates an unknown input text encoding.
	ErrUnsupportedEncoding = errors.New("unsupported_encoding")
)

var codes = []error{
	ErrSourceNotFound,
	ErrSeparatorDetection,
	ErrHeaderDecode,
	ErrEmptyHeader,
	ErrDuplicateHeader,
	ErrRowDecode,
	ErrSerialization,
	ErrUnsupportedEncoding,
}

// RowError is a decode failure on one data row. Line is the 1-based line
// of the input where the record starts.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func (e *RowError) Is(target error) bool { return target == ErrRowDecode }

// Code returns the stable short code of a structural error, or "" when err
// does not belong to this package.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c) {
			return c.Error()
		}
	}
	return ""
}
