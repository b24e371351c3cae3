package model

// Table is a parsed delimited list: a header row plus data rows of equal width.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Width returns the number of columns declared by the header.
func (t Table) Width() int { return len(t.Headers) }
