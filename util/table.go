package util

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes tab aligned rows. The first write error is kept and returned
// by Flush; later rows are dropped.
type Table struct {
	tw  *tabwriter.Writer
	err error
}

// NewTable returns a Table writing to w with cells padded by two spaces.
func NewTable(w io.Writer) *Table {
	return &Table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
}

// Row writes one row, formatting every cell with %v.
func (t *Table) Row(cells ...interface{}) {
	if t.err != nil {
		return
	}

	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}

	_, t.err = io.WriteString(t.tw, strings.Join(parts, "\t")+"\n")
}

// Flush writes the aligned rows out.
func (t *Table) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.tw.Flush()
}

// Marker returns "*" when set and an empty cell otherwise.
func Marker(set bool) string {
	if set {
		return "*"
	}
	return ""
}
