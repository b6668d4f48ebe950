// Package mutation classifies viral sequences against variant-of-concern
// mutation signatures and aggregates substitution statistics.
package mutation

import "strings"

// Delimiter separates substitution codes in a raw substitution field.
const Delimiter = ","

// Unclassified is the label for records matching no configured signature.
const Unclassified = "Other/Unclassified"

// Record is one sequence from a Nextclade-style results table.
type Record struct {
	SeqName          string
	Clade            string
	PangoLineage     string
	RawSubstitutions string

	// Mutations is derived from RawSubstitutions by ParseMutations.
	// It is never nil.
	Mutations []string

	RiskScore        int
	PredictedVariant string

	// Row holds the original column values in input order.
	Row []string
}

// NewRecord creates a record and derives its mutation list from raw.
func NewRecord(seqName, raw string) *Record {
	return &Record{
		SeqName:          seqName,
		RawSubstitutions: raw,
		Mutations:        ParseMutations(raw),
	}
}

// ParseMutations splits a raw substitution field into codes.
// A blank field yields an empty, non-nil slice. No whitespace is trimmed
// and duplicates are kept in order.
func ParseMutations(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, Delimiter)
}

// ContainsMutation reports whether the record carries the given code.
func ContainsMutation(r *Record, code string) bool {
	for _, m := range r.Mutations {
		if m == code {
			return true
		}
	}
	return false
}

// FilterByMutation returns the records carrying code, preserving order.
func FilterByMutation(records []*Record, code string) []*Record {
	out := make([]*Record, 0)
	for _, r := range records {
		if ContainsMutation(r, code) {
			out = append(out, r)
		}
	}
	return out
}
