package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders tables as comma separated values with a header row.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType implements Renderer.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Extension implements Renderer.
func (e *CSVExporter) Extension() string { return "csv" }

// Render produces CSV encoded bytes for the table. The title is not written.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	if err := table.check(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Title
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
