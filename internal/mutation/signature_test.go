package mutation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSignatures_Order(t *testing.T) {
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Delta", "Omicron"}, DefaultSignatures().Names())
}

func TestSet_IsSubsetOf(t *testing.T) {
	big := NewSet("S:N501Y", "S:E484K", "S:K417N")

	assert.True(t, NewSet("S:N501Y").IsSubsetOf(big))
	assert.True(t, NewSet().IsSubsetOf(big))
	assert.False(t, NewSet("S:N501Y", "S:L452R").IsSubsetOf(big))
	assert.Equal(t, []string{"S:E484K", "S:K417N", "S:N501Y"}, big.Sorted())
}

func TestParseProfile(t *testing.T) {
	data := []byte(`
signatures:
  - name: Omicron
    mutations: [S:N501Y, S:E484A, S:K417N]
    color: "#000000"
  - name: Alpha
    mutations: [S:N501Y]
high_risk: [S:N501Y, S:E484A]
`)
	p, err := ParseProfile(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Omicron", "Alpha"}, p.Signatures.Names())
	assert.Equal(t, []string{"S:N501Y", "S:E484A"}, p.HighRisk)
	assert.Equal(t, "#000000", p.Colors["Omicron"])
	assert.Equal(t, DefaultColors()["Alpha"], p.Colors["Alpha"])

	c := NewClassifierFromProfile(p)
	assert.Equal(t, "Omicron", c.Classify([]string{"S:K417N", "S:E484A", "S:N501Y"}))
	assert.Equal(t, 2, c.Score([]string{"S:K417N", "S:E484A", "S:N501Y"}))
}

func TestParseProfile_Defaults(t *testing.T) {
	p, err := ParseProfile([]byte("high_risk: [S:D614G]\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSignatures().Names(), p.Signatures.Names())
	assert.Equal(t, []string{"S:D614G"}, p.HighRisk)
}

func TestParseProfile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "signatures:\n  - mutations: [S:N501Y]\n"},
		{"no mutations", "signatures:\n  - name: Alpha\n"},
		{"duplicate", "signatures:\n  - name: Alpha\n    mutations: [S:N501Y]\n  - name: Alpha\n    mutations: [S:D614G]\n"},
		{"reserved", "signatures:\n  - name: Other/Unclassified\n    mutations: [S:N501Y]\n"},
		{"bad yaml", "signatures: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProfile([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("signatures:\n  - name: Delta\n    mutations: [S:L452R, S:T478K]\n"), 0644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Delta"}, p.Signatures.Names())

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
