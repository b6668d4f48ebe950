package mutation

import (
	"go.uber.org/zap"
)

// ColumnDef describes a column derived by the classifier.
type ColumnDef struct {
	Name        string
	Description string
}

// DerivedColumns are the columns appended to every classified record.
var DerivedColumns = []ColumnDef{
	{Name: "risk_score", Description: "Number of high-risk substitutions carried"},
	{Name: "predicted_variant", Description: "First matching VOC signature in priority order"},
}

// ScoreRisk counts the codes in mutations that belong to highRisk.
// Repeated codes are counted once per occurrence.
func ScoreRisk(mutations []string, highRisk Set) int {
	score := 0
	for _, m := range mutations {
		if highRisk.Has(m) {
			score++
		}
	}
	return score
}

// ClassifyVariant returns the name of the first signature contained in
// mutations, or Unclassified if none is.
func ClassifyVariant(mutations []string, signatures SignatureSet) string {
	set := NewSet(mutations...)
	for _, s := range signatures {
		if s.Matches(set) {
			return s.Name
		}
	}
	return Unclassified
}

// Classifier derives risk scores and variant labels for records.
// Its lookup tables are fixed at construction.
type Classifier struct {
	highRisk   Set
	signatures SignatureSet
	logger     *zap.Logger
}

// NewClassifier creates a classifier for the given high-risk codes and
// signatures. The signature order is the tie-break order.
func NewClassifier(highRisk []string, signatures SignatureSet) *Classifier {
	sigs := make(SignatureSet, len(signatures))
	copy(sigs, signatures)
	return &Classifier{
		highRisk:   NewSet(highRisk...),
		signatures: sigs,
		logger:     zap.NewNop(),
	}
}

// NewClassifierFromProfile creates a classifier from a signature profile.
func NewClassifierFromProfile(p *Profile) *Classifier {
	return NewClassifier(p.HighRisk, p.Signatures)
}

// SetLogger sets the logger for debug and info messages.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Signatures returns the configured signatures in priority order.
func (c *Classifier) Signatures() SignatureSet {
	out := make(SignatureSet, len(c.signatures))
	copy(out, c.signatures)
	return out
}

// HighRisk returns the configured high-risk set.
func (c *Classifier) HighRisk() Set {
	out := make(Set, len(c.highRisk))
	for k := range c.highRisk {
		out[k] = struct{}{}
	}
	return out
}

// Score returns the risk score of a mutation list.
func (c *Classifier) Score(mutations []string) int {
	return ScoreRisk(mutations, c.highRisk)
}

// Classify returns the predicted variant of a mutation list.
func (c *Classifier) Classify(mutations []string) string {
	return ClassifyVariant(mutations, c.signatures)
}

// Annotate fills in the derived fields of a single record.
func (c *Classifier) Annotate(r *Record) {
	if r.Mutations == nil {
		r.Mutations = ParseMutations(r.RawSubstitutions)
	}
	r.RiskScore = c.Score(r.Mutations)
	r.PredictedVariant = c.Classify(r.Mutations)
}

// AnnotateAll fills in the derived fields of every record.
func (c *Classifier) AnnotateAll(records []*Record) {
	for _, r := range records {
		c.Annotate(r)
	}
	if len(records) == 0 {
		c.logger.Info("0 records classified")
		return
	}
	c.logger.Debug("classified records",
		zap.Int("records", len(records)),
		zap.Int("signatures", len(c.signatures)))
}
