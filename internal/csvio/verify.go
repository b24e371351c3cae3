package csvio

import (
	"errors"
	"fmt"
	"regexp"
)

var phoneCell = regexp.MustCompile(`^\s*\d+\s*$`)

// Report is the outcome of a permissive content check.
type Report struct {
	Valid   bool              `json:"valid"`
	Errors  []string          `json:"errors"`
	Headers []string          `json:"headers,omitempty"`
	Rows    int               `json:"rows"`
	Sample  map[string]string `json:"sample,omitempty"`
}

// Verify checks content without stopping at the first problem: every header
// and row decode error is reported, as well as every row whose first column
// is not a plain number. It never fails.
func Verify(content string) Report {
	res := parse(content, true)
	rep := Report{Errors: []string{}}

	for _, p := range res.problems {
		rep.Errors = append(rep.Errors, diagnostic(p))
	}

	if res.table == nil {
		return rep
	}
	rep.Headers = res.table.Headers
	rep.Rows = len(res.table.Rows)

	if len(res.table.Rows) == 0 {
		rep.Errors = append(rep.Errors, "No rows found")
	} else {
		rep.Sample = sample(res.table.Headers, res.table.Rows[0])
	}

	for i, row := range res.table.Rows {
		cell := ""
		if len(row) > 0 {
			cell = row[0]
		}
		if !phoneCell.MatchString(cell) {
			rep.Errors = append(rep.Errors, fmt.Sprintf("Error on line %d: %s invalid telephone", i+2, cell))
		}
	}

	rep.Valid = len(rep.Errors) == 0
	return rep
}

func diagnostic(err error) string {
	var re *RowError
	if errors.As(err, &re) {
		return fmt.Sprintf("Error on line %d: %v", re.Line, re.Err)
	}
	return err.Error()
}

func sample(headers, row []string) map[string]string {
	out := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(row) {
			out[h] = row[i]
		}
	}
	return out
}
