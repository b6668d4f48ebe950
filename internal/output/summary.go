package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// RecordWriter is implemented by the per-record writers.
type RecordWriter interface {
	WriteHeader() error
	Write(r *mutation.Record) error
	Flush() error
}

// WriteRecords writes a header followed by every record, then flushes.
func WriteRecords(w RecordWriter, records []*mutation.Record) error {
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("write record %q: %w", r.SeqName, err)
		}
	}
	return w.Flush()
}

// SummaryWriter writes aligned aggregate tables.
type SummaryWriter struct {
	w *tabwriter.Writer
}

// NewSummaryWriter creates a new aggregate table writer.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{
		w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
	}
}

// WriteVariantCounts writes the predicted variant counts, largest first,
// with their share of all records.
func (s *SummaryWriter) WriteVariantCounts(counts mutation.Counts) error {
	total := counts.Total()
	if _, err := fmt.Fprintln(s.w, "Variant\tCount\tPercent"); err != nil {
		return err
	}
	for _, c := range counts.Sorted() {
		if _, err := fmt.Fprintf(s.w, "%s\t%d\t%.1f%%\n", c.Key, c.Count, percent(c.Count, total)); err != nil {
			return err
		}
	}
	return nil
}

// WriteMutationFrequency writes the top n substitution codes by count.
// n <= 0 writes every code.
func (s *SummaryWriter) WriteMutationFrequency(freq mutation.Counts, n int) error {
	if _, err := fmt.Fprintln(s.w, "Mutation\tCount"); err != nil {
		return err
	}
	for _, c := range freq.Top(n) {
		if _, err := fmt.Fprintf(s.w, "%s\t%d\n", c.Key, c.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteHotspots writes the position histogram in ascending position order.
func (s *SummaryWriter) WriteHotspots(region string, hist mutation.Histogram) error {
	if _, err := fmt.Fprintf(s.w, "%sPosition\tCount\n", region); err != nil {
		return err
	}
	for _, pos := range hist.Positions() {
		if _, err := fmt.Fprintf(s.w, "%d\t%d\n", pos, hist[pos]); err != nil {
			return err
		}
	}
	return nil
}

// WriteBlank writes an empty separator line.
func (s *SummaryWriter) WriteBlank() error {
	_, err := fmt.Fprintln(s.w)
	return err
}

// Flush flushes the writer.
func (s *SummaryWriter) Flush() error {
	return s.w.Flush()
}

// WriteOverview writes record and signature statistics of an analysis.
func WriteOverview(w io.Writer, a *mutation.Analysis) {
	withMutations := 0
	for _, r := range a.Records {
		if len(r.Mutations) > 0 {
			withMutations++
		}
	}
	classified := len(a.Records) - a.Variants[mutation.Unclassified]

	fmt.Fprintf(w, "\nClassification Summary:\n")
	fmt.Fprintf(w, "  Total sequences:     %d\n", len(a.Records))
	fmt.Fprintf(w, "  With substitutions:  %d\n", withMutations)
	fmt.Fprintf(w, "  Classified as VOC:   %d (%.1f%%)\n", classified, percent(classified, len(a.Records)))
	fmt.Fprintf(w, "  Distinct mutations:  %d\n", len(a.Frequency))
	fmt.Fprintf(w, "  %s hotspot positions: %d\n", a.Region, len(a.Hotspots))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
