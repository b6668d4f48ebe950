package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// CSVWriter re-serializes records as a delimited file, keeping the
// original columns and appending the derived ones.
type CSVWriter struct {
	w      *csv.Writer
	header []string
}

// NewCSVWriter creates a delimited writer using comma as field separator.
// header holds the original column names; nil writes the core columns.
func NewCSVWriter(w io.Writer, header []string, comma rune) *CSVWriter {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	return &CSVWriter{w: cw, header: header}
}

// WriteHeader writes the header record.
func (cw *CSVWriter) WriteHeader() error {
	base := cw.header
	if base == nil {
		base = coreColumns
	}
	return cw.w.Write(append(append([]string{}, base...), derivedColumnNames()...))
}

// Write writes a single record.
func (cw *CSVWriter) Write(r *mutation.Record) error {
	values := rowValues(r, cw.header)
	values = append(values, strconv.Itoa(r.RiskScore), r.PredictedVariant)
	return cw.w.Write(values)
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
