package export

import "fmt"

// Column describes one exported column. Width is relative to the other columns.
type Column struct {
	Title string
	Width float64
}

// Table is a rectangular export payload.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

func (t Table) check() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// Renderer turns a table into a file body.
type Renderer interface {
	Render(table Table) ([]byte, error)
	ContentType() string
	Extension() string
}
