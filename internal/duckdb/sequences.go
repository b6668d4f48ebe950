package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// Hit is a session table row matched by a query.
type Hit struct {
	Index            int
	SeqName          string
	RiskScore        int
	PredictedVariant string
}

// WriteRecords replaces the session table with the given classified
// records using the Appender API. Row indices follow slice order.
func (s *Store) WriteRecords(records []*mutation.Record) error {
	if err := s.Clear(); err != nil {
		return fmt.Errorf("clear sequences: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "sequences")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, r := range records {
		if err := appender.AppendRow(
			int64(i), r.SeqName, r.Clade, r.PangoLineage,
			strings.Join(r.Mutations, mutation.Delimiter), int64(len(r.Mutations)),
			int64(r.RiskScore), r.PredictedVariant,
		); err != nil {
			return fmt.Errorf("append sequence %q: %w", r.SeqName, err)
		}
	}

	return appender.Flush()
}

// Clear removes all rows from the session table.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM sequences")
	return err
}

// Count returns the number of rows in the session table.
func (s *Store) Count() (int, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sequences").Scan(&count); err != nil {
		return 0, fmt.Errorf("count sequences: %w", err)
	}
	return int(count), nil
}

// FilterByMutation returns the rows carrying the given substitution code,
// in row order.
func (s *Store) FilterByMutation(code string) ([]Hit, error) {
	rows, err := s.db.Query(`SELECT row_index, seq_name, risk_score, predicted_variant
		FROM sequences
		WHERE substitutions <> '' AND list_contains(string_split(substitutions, ','), ?)
		ORDER BY row_index`, code)
	if err != nil {
		return nil, fmt.Errorf("query by mutation: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// FilterByVariant returns the rows with the given predicted variant.
func (s *Store) FilterByVariant(label string) ([]Hit, error) {
	rows, err := s.db.Query(`SELECT row_index, seq_name, risk_score, predicted_variant
		FROM sequences
		WHERE predicted_variant = ?
		ORDER BY row_index`, label)
	if err != nil {
		return nil, fmt.Errorf("query by variant: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// FilterByMinRisk returns the rows scoring at least minScore, highest
// score first.
func (s *Store) FilterByMinRisk(minScore int) ([]Hit, error) {
	rows, err := s.db.Query(`SELECT row_index, seq_name, risk_score, predicted_variant
		FROM sequences
		WHERE risk_score >= ?
		ORDER BY risk_score DESC, row_index`, int64(minScore))
	if err != nil {
		return nil, fmt.Errorf("query by risk: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// VariantCounts counts rows per predicted variant.
func (s *Store) VariantCounts() (mutation.Counts, error) {
	rows, err := s.db.Query(`SELECT predicted_variant, COUNT(*)
		FROM sequences
		GROUP BY predicted_variant`)
	if err != nil {
		return nil, fmt.Errorf("query variant counts: %w", err)
	}
	defer rows.Close()

	counts := make(mutation.Counts)
	for rows.Next() {
		var label string
		var n int64
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scan variant count: %w", err)
		}
		counts[label] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant counts: %w", err)
	}
	return counts, nil
}

// scanHits scans rows into Hit slices.
func scanHits(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Hit, error) {
	hits := []Hit{}
	for rows.Next() {
		var idx, score int64
		var h Hit
		if err := rows.Scan(&idx, &h.SeqName, &score, &h.PredictedVariant); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		h.Index = int(idx)
		h.RiskScore = int(score)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sequences: %w", err)
	}
	return hits, nil
}

// Select returns the records at the given hit indices.
func Select(records []*mutation.Record, hits []Hit) []*mutation.Record {
	out := make([]*mutation.Record, 0, len(hits))
	for _, h := range hits {
		if h.Index >= 0 && h.Index < len(records) {
			out = append(out, records[h.Index])
		}
	}
	return out
}
