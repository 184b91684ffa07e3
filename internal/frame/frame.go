// Package frame loads tabular files into an in-memory, string-typed table.
//
// A Frame keeps every cell as text. Type inference happens later, in the
// analysis package and in pandas once the frame is handed to Python.
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Frame is a rectangular table: every row has len(Columns) cells.
type Frame struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New builds a Frame, padding or trimming rows to the header width and naming
// blank headers the way pandas does ("Unnamed: <i>").
func New(name string, header []string, rows [][]string) *Frame {
	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		cols[i] = h
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if len(r) == len(cols) {
			out = append(out, r)
			continue
		}
		fixed := make([]string, len(cols))
		copy(fixed, r)
		out = append(out, fixed)
	}
	return &Frame{Name: name, Columns: cols, Rows: out}
}

// Shape returns (rows, columns).
func (f *Frame) Shape() (int, int) {
	if f == nil {
		return 0, 0
	}
	return len(f.Rows), len(f.Columns)
}

// Head returns a frame holding at most the first n rows. Rows are shared.
func (f *Frame) Head(n int) *Frame {
	if n < 0 || n > len(f.Rows) {
		n = len(f.Rows)
	}
	return &Frame{Name: f.Name, Columns: f.Columns, Rows: f.Rows[:n]}
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]string, bool) {
	for i, c := range f.Columns {
		if c == name {
			vals := make([]string, len(f.Rows))
			for j, r := range f.Rows {
				vals[j] = r[i]
			}
			return vals, true
		}
	}
	return nil, false
}

// WriteCSV writes the header and rows as RFC 4180 CSV.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(f.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// CSVString renders the frame as CSV text.
func (f *Frame) CSVString() string {
	var b strings.Builder
	_ = f.WriteCSV(&b)
	return b.String()
}
