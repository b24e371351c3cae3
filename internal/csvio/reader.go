package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mavmaso/ficherors/internal/model"
)

const bom = "\ufeff"

// parseResult is the table read so far plus every structural problem found,
// in input order. A fatal problem (no separator, unreadable header) leaves
// table nil.
type parseResult struct {
	table    *model.Table
	problems []error
}

// parse reads content as a delimited list. When collect is false it stops at
// the first problem.
func parse(content string, collect bool) parseResult {
	var res parseResult
	add := func(err error) bool {
		res.problems = append(res.problems, err)
		return collect
	}

	content = strings.TrimPrefix(content, bom)
	line := firstLine(content)
	if content == "" || !utf8.ValidString(line) {
		add(ErrSeparatorDetection)
		return res
	}

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = Sniff(line)

	headers, err := r.Read()
	if err != nil {
		add(fmt.Errorf("%w: %v", ErrHeaderDecode, err))
		return res
	}
	for _, h := range headers {
		if !utf8.ValidString(h) {
			add(fmt.Errorf("%w: invalid UTF-8", ErrHeaderDecode))
			return res
		}
	}

	res.table = &model.Table{Headers: headers, Rows: [][]string{}}

	for _, herr := range checkHeader(headers) {
		if !add(herr) {
			return res
		}
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				add(&RowError{Err: err})
				break
			}
			if !add(&RowError{Line: pe.StartLine, Err: pe.Err}) {
				return res
			}
			continue
		}
		if bad := invalidField(rec); bad >= 0 {
			l, _ := r.FieldPos(bad)
			if !add(&RowError{Line: l, Err: errors.New("invalid UTF-8")}) {
				return res
			}
			continue
		}
		res.table.Rows = append(res.table.Rows, rec)
	}

	return res
}

func invalidField(rec []string) int {
	for i, f := range rec {
		if !utf8.ValidString(f) {
			return i
		}
	}
	return -1
}

// checkHeader returns every empty cell, then every repeated name.
func checkHeader(headers []string) []error {
	var errs []error
	for i, h := range headers {
		if h == "" {
			errs = append(errs, fmt.Errorf("%w: column %d", ErrEmptyHeader, i+1))
		}
	}

	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateHeader, h))
			continue
		}
		seen[h] = struct{}{}
	}
	return errs
}

// ParseString reads an in-memory list, failing on the first structural problem.
func ParseString(content string) (*model.Table, error) {
	res := parse(content, false)
	if len(res.problems) > 0 {
		return nil, res.problems[0]
	}
	return res.table, nil
}

// Parse reads a whole list from r, failing on the first structural problem.
func Parse(r io.Reader) (*model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeparatorDetection, err)
	}
	return ParseString(string(b))
}

// ParseFile opens path and parses it with an optional input encoding.
func ParseFile(path, encoding string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	defer f.Close()

	src, err := Decode(f, encoding)
	if err != nil {
		return nil, err
	}
	return Parse(src)
}
