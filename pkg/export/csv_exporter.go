package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/url"
	"strings"
)

// Dataset defines tabular export content. Columns fix the order and header
// labels; rows are keyed by column key.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

// Column maps a row key to a printable header.
type Column struct {
	Key   string
	Label string
}

func (d Dataset) headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Label
		if headers[i] == "" {
			headers[i] = col.Key
		}
	}
	return headers
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.headers()); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Columns))
		for i, col := range data.Columns {
			record[i] = row[col.Key]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI renders the dataset as a `data:text/csv` URI that browsers can
// download directly.
func (e *CSVExporter) DataURI(data Dataset) (string, error) {
	raw, err := e.Render(data)
	if err != nil {
		return "", err
	}
	encoded := strings.ReplaceAll(url.QueryEscape(string(raw)), "+", "%20")
	return "data:text/csv;charset=utf-8," + encoded, nil
}
