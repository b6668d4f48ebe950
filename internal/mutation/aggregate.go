package mutation

import (
	"sort"
	"strconv"
	"strings"
)

// SpikeRegion is the gene prefix of spike protein substitutions.
const SpikeRegion = "S:"

// Counts maps a key (substitution code or variant label) to a count.
type Counts map[string]int

// Count is a single key/count pair.
type Count struct {
	Key   string
	Count int
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Sorted returns all entries by descending count, ties broken by key.
func (c Counts) Sorted() []Count {
	out := make([]Count, 0, len(c))
	for k, v := range c {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Top returns at most n entries of Sorted. n <= 0 returns all entries.
func (c Counts) Top(n int) []Count {
	s := c.Sorted()
	if n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}

// Histogram maps a genomic position to a mutation count.
type Histogram map[int]int

// Positions returns the positions in ascending order.
func (h Histogram) Positions() []int {
	out := make([]int, 0, len(h))
	for p := range h {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// MutationFrequency counts every substitution code across all records.
// Codes are compared verbatim.
func MutationFrequency(records []*Record) Counts {
	freq := make(Counts)
	for _, r := range records {
		for _, m := range r.Mutations {
			freq[m]++
		}
	}
	return freq
}

// VariantCounts counts predicted variant labels across all records.
func VariantCounts(records []*Record) Counts {
	counts := make(Counts)
	for _, r := range records {
		counts[r.PredictedVariant]++
	}
	return counts
}

const asciiDigits = "0123456789"

// ParsePosition extracts the position from a substitution code once the
// region prefix has been removed, e.g. "N501Y" -> 501. Leading letters are
// skipped and the following run of digits is the position.
func ParsePosition(code string) (int, bool) {
	start := strings.IndexAny(code, asciiDigits)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(code) && strings.IndexByte(asciiDigits, code[end]) >= 0 {
		end++
	}
	pos, err := strconv.Atoi(code[start:end])
	if err != nil {
		return 0, false
	}
	return pos, true
}

// RegionHotspots counts substitutions per position for codes starting with
// prefix. Codes without a position are left out.
func RegionHotspots(records []*Record, prefix string) Histogram {
	hist := make(Histogram)
	for _, r := range records {
		for _, m := range r.Mutations {
			rest, ok := strings.CutPrefix(m, prefix)
			if !ok {
				continue
			}
			if pos, ok := ParsePosition(rest); ok {
				hist[pos]++
			}
		}
	}
	return hist
}

// TopByRisk returns up to n records ordered by descending risk score.
// Records with equal scores keep their input order. n <= 0 returns all.
func TopByRisk(records []*Record, n int) []*Record {
	out := make([]*Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RiskScore > out[j].RiskScore
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Analysis is the classified table together with its aggregates.
type Analysis struct {
	Records   []*Record
	Frequency Counts
	Variants  Counts
	Region    string
	Hotspots  Histogram
}

// Analyze classifies all records and computes every aggregate from scratch.
func Analyze(records []*Record, c *Classifier, region string) *Analysis {
	c.AnnotateAll(records)
	return &Analysis{
		Records:   records,
		Frequency: MutationFrequency(records),
		Variants:  VariantCounts(records),
		Region:    region,
		Hotspots:  RegionHotspots(records, region),
	}
}

// Subset returns a new analysis restricted to records carrying code.
func (a *Analysis) Subset(code string) *Analysis {
	records := FilterByMutation(a.Records, code)
	return &Analysis{
		Records:   records,
		Frequency: MutationFrequency(records),
		Variants:  VariantCounts(records),
		Region:    a.Region,
		Hotspots:  RegionHotspots(records, a.Region),
	}
}
