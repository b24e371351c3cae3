package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"
)

// Write serializes rows (header first) with the output delimiter.
func Write(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = Output

	for _, rec := range rows {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("%w: %v", ErrSerialization, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}

// ToText serializes rows into a string.
func ToText(rows [][]string) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		return "", err
	}
	if !utf8.Valid(buf.Bytes()) {
		return "", fmt.Errorf("%w: invalid UTF-8 output", ErrSerialization)
	}
	return buf.String(), nil
}
