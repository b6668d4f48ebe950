package mutation

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Set is an unordered collection of substitution codes.
type Set map[string]struct{}

// NewSet creates a set from the given codes.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether code is in the set.
func (s Set) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// IsSubsetOf reports whether every code of s is in other.
func (s Set) IsSubsetOf(other Set) bool {
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Sorted returns the codes in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Signature is the set of substitutions that defines a named variant.
type Signature struct {
	Name      string
	Mutations Set
}

// NewSignature creates a signature from a variant name and its codes.
func NewSignature(name string, codes ...string) Signature {
	return Signature{Name: name, Mutations: NewSet(codes...)}
}

// Matches reports whether the mutation set contains the whole signature.
func (s Signature) Matches(mutations Set) bool {
	return s.Mutations.IsSubsetOf(mutations)
}

// SignatureSet holds signatures in priority order. The first match wins.
type SignatureSet []Signature

// Names returns the variant names in priority order.
func (ss SignatureSet) Names() []string {
	names := make([]string, len(ss))
	for i, s := range ss {
		names[i] = s.Name
	}
	return names
}

// Profile bundles the static lookup tables used for classification.
type Profile struct {
	Signatures SignatureSet
	HighRisk   []string
	// Colors maps variant names to hex colors for chart legends.
	Colors map[string]string
}

// DefaultSignatures returns the built-in VOC signatures in priority order.
func DefaultSignatures() SignatureSet {
	return SignatureSet{
		NewSignature("Alpha", "S:N501Y"),
		NewSignature("Beta", "S:N501Y", "S:E484K", "S:K417N"),
		NewSignature("Gamma", "S:N501Y", "S:E484K", "S:K417T"),
		NewSignature("Delta", "S:L452R", "S:T478K"),
		NewSignature("Omicron", "S:N501Y", "S:E484A", "S:K417N", "S:T478K"),
	}
}

// DefaultHighRisk returns the built-in high-risk substitution codes.
func DefaultHighRisk() []string {
	return []string{"S:N501Y", "S:E484K", "S:L452R", "S:T478K", "S:D614G"}
}

// DefaultColors returns the built-in legend colors per variant.
func DefaultColors() map[string]string {
	return map[string]string{
		"Alpha":      "#e41a1c",
		"Beta":       "#377eb8",
		"Gamma":      "#4daf4a",
		"Delta":      "#984ea3",
		"Omicron":    "#ff7f00",
		Unclassified: "#999999",
	}
}

// DefaultProfile returns the built-in signatures, high-risk set and colors.
func DefaultProfile() *Profile {
	return &Profile{
		Signatures: DefaultSignatures(),
		HighRisk:   DefaultHighRisk(),
		Colors:     DefaultColors(),
	}
}

// profileFile is the YAML layout of a signature profile. Signatures are a
// list so that file order is the priority order.
type profileFile struct {
	Signatures []struct {
		Name      string   `yaml:"name"`
		Mutations []string `yaml:"mutations"`
		Color     string   `yaml:"color"`
	} `yaml:"signatures"`
	HighRisk []string `yaml:"high_risk"`
}

// ParseProfile decodes a YAML signature profile. Sections left out of the
// document fall back to the built-in defaults.
func ParseProfile(data []byte) (*Profile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode signature profile: %w", err)
	}

	p := DefaultProfile()
	if len(pf.Signatures) > 0 {
		seen := make(map[string]bool, len(pf.Signatures))
		p.Signatures = make(SignatureSet, 0, len(pf.Signatures))
		for i, s := range pf.Signatures {
			if s.Name == "" {
				return nil, fmt.Errorf("signature %d: missing name", i+1)
			}
			if seen[s.Name] {
				return nil, fmt.Errorf("signature %q: declared twice", s.Name)
			}
			if s.Name == Unclassified {
				return nil, fmt.Errorf("signature %q: reserved name", s.Name)
			}
			if len(s.Mutations) == 0 {
				return nil, fmt.Errorf("signature %q: no mutations", s.Name)
			}
			seen[s.Name] = true
			p.Signatures = append(p.Signatures, NewSignature(s.Name, s.Mutations...))
			if s.Color != "" {
				p.Colors[s.Name] = s.Color
			}
		}
	}
	if len(pf.HighRisk) > 0 {
		p.HighRisk = pf.HighRisk
	}
	return p, nil
}

// LoadProfile reads a YAML signature profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signature profile: %w", err)
	}
	return ParseProfile(data)
}
