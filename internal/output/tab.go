// Package output provides output formatters for classified sequences
// and their aggregates.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// coreColumns are used when the original header is unknown.
var coreColumns = []string{"seqName", "clade", "Nextclade_pango", "aaSubstitutions"}

// TabWriter writes classified records in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	header  []string
	columns []string
}

// NewTabWriter creates a new tab-delimited writer. header holds the
// original column names; nil writes the core Nextclade columns instead.
func NewTabWriter(w io.Writer, header []string) *TabWriter {
	tw := &TabWriter{
		w:      bufio.NewWriter(w),
		header: header,
	}
	base := header
	if base == nil {
		base = coreColumns
	}
	tw.columns = append(append([]string{}, base...), derivedColumnNames()...)
	return tw
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record.
func (tw *TabWriter) Write(r *mutation.Record) error {
	values := rowValues(r, tw.header)

	for i, v := range values {
		if v == "" {
			values[i] = "-"
		}
	}
	values = append(values, strconv.Itoa(r.RiskScore), r.PredictedVariant)

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// rowValues returns the original values of r padded to the header width.
// Without a header the core fields are used.
func rowValues(r *mutation.Record, header []string) []string {
	if header == nil {
		return []string{r.SeqName, r.Clade, r.PangoLineage, r.RawSubstitutions}
	}
	values := make([]string, len(header))
	copy(values, r.Row)
	return values
}

func derivedColumnNames() []string {
	names := make([]string, len(mutation.DerivedColumns))
	for i, c := range mutation.DerivedColumns {
		names[i] = c.Name
	}
	return names
}
