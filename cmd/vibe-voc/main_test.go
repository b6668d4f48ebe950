package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-voc/internal/mutation"
)

var sampleFile = filepath.Join("..", "..", "internal", "nextclade", "testdata", "sample.csv")

// execute runs the root command with an isolated config and home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithHome(t, t.TempDir(), args...)
}

// executeWithHome runs the root command with home as the user's home
// directory, so a config file written by one run is read by the next.
func executeWithHome(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", home)

	c := &cli{logger: zap.NewNop()}
	root := c.newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func readDelimited(t *testing.T, path string, comma rune) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestClassify_Tab(t *testing.T) {
	out, err := execute(t, "classify", sampleFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[0], "\trisk_score\tpredicted_variant"))
	assert.True(t, strings.HasSuffix(lines[1], "\t2\tAlpha"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "\t3\tDelta"), lines[2])
	// Gamma's signature also holds, but Alpha is tried first.
	assert.True(t, strings.HasSuffix(lines[3], "\t3\tAlpha"), lines[3])
	assert.True(t, strings.HasSuffix(lines[4], "\t0\t"+mutation.Unclassified), lines[4])
}

func TestClassify_TopCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.csv")
	_, err := execute(t, "classify", "--top", "2", "--format", "csv", "-o", path, sampleFile)
	require.NoError(t, err)

	rows := readDelimited(t, path, ';')
	require.Len(t, rows, 3)
	assert.Equal(t, "hCoV-19/India/DELTA-1/2021", rows[1][1])
	assert.Equal(t, "hCoV-19/Brazil/GAMMA-1/2021", rows[2][1])
	assert.Equal(t, "3", rows[1][6])
}

func TestClassify_CustomSignatures(t *testing.T) {
	sigFile := filepath.Join(t.TempDir(), "voc.yaml")
	require.NoError(t, os.WriteFile(sigFile, []byte(`signatures:
  - name: Gamma
    mutations: [S:K417T, S:E484K, S:N501Y]
  - name: Beta
    mutations: [S:K417N, S:E484K, S:N501Y]
  - name: Alpha
    mutations: [S:N501Y]
`), 0644))

	out, err := execute(t, "classify", "--signatures", sigFile, sampleFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[3], "\tGamma"), lines[3])
	assert.True(t, strings.HasSuffix(lines[5], "\tBeta"), lines[5])
	assert.True(t, strings.HasSuffix(lines[2], "\t"+mutation.Unclassified), lines[2])
}

func TestClassify_BadFormat(t *testing.T) {
	_, err := execute(t, "classify", "--format", "xml", sampleFile)
	var ue *usageError
	assert.ErrorAs(t, err, &ue)
}

func TestSummary(t *testing.T) {
	out, err := execute(t, "summary", "--top", "3", sampleFile)
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^Alpha\s+3\s+60\.0%$`, out)
	assert.Regexp(t, `(?m)^Delta\s+1\s+20\.0%$`, out)
	assert.Regexp(t, `(?m)^S:D614G\s+3$`, out)
	assert.Regexp(t, `(?m)^S:N501Y\s+3$`, out)
	assert.Contains(t, out, "Total sequences:     5")
}

func TestHotspots(t *testing.T) {
	out, err := execute(t, "hotspots", sampleFile)
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^614\s+3$`, out)
	assert.Regexp(t, `(?m)^484\s+2$`, out)
	assert.NotContains(t, out, "1655")

	out, err = execute(t, "hotspots", "--region", "ORF1a:", sampleFile)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^1655\s+1$`, out)
}

func TestFilter_ByMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "e484k.csv")
	_, err := execute(t, "filter", "--mutation", "S:E484K", "-o", path, sampleFile)
	require.NoError(t, err)

	rows := readDelimited(t, path, ';')
	require.Len(t, rows, 3)
	assert.Equal(t, "hCoV-19/Brazil/GAMMA-1/2021", rows[1][1])
	assert.Equal(t, "hCoV-19/South Africa/BETA-1/2020", rows[2][1])
	for _, row := range rows[1:] {
		assert.Contains(t, mutation.ParseMutations(row[5]), "S:E484K")
	}
}

func TestFilter_ByMinRiskGzipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "high_risk.csv.gz")
	_, err := execute(t, "filter", "--min-risk", "3", "-o", path, sampleFile)
	require.NoError(t, err)

	// The written file is itself valid input.
	out, err := execute(t, "summary", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total sequences:     2")
}

func TestFilter_ByVariantTab(t *testing.T) {
	out, err := execute(t, "filter", "--variant", "Delta", "--format", "tab", sampleFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "DELTA-1")
}

func TestFilter_SelectorRequired(t *testing.T) {
	_, err := execute(t, "filter", sampleFile)
	var ue *usageError
	require.ErrorAs(t, err, &ue)

	_, err = execute(t, "filter", "--mutation", "S:E484K", "--variant", "Beta", sampleFile)
	require.ErrorAs(t, err, &ue)
}

func TestChart(t *testing.T) {
	dir := t.TempDir()

	svg := filepath.Join(dir, "hotspots.svg")
	_, err := execute(t, "chart", "--kind", "hotspots", "-o", svg, sampleFile)
	require.NoError(t, err)
	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	png := filepath.Join(dir, "variants.png")
	_, err = execute(t, "chart", "-o", png, sampleFile)
	require.NoError(t, err)
	data, err = os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}))

	_, err = execute(t, "chart", "-o", filepath.Join(dir, "x.gif"), sampleFile)
	var ue *usageError
	assert.ErrorAs(t, err, &ue)
}

func TestSignatures(t *testing.T) {
	out, err := execute(t, "signatures")
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^1\s+Alpha\s+#e41a1c\s+S:N501Y$`, out)
	assert.Regexp(t, `(?m)^4\s+Delta\s+#984ea3\s+S:L452R,S:T478K$`, out)
	assert.Contains(t, out, "High-risk mutations: S:N501Y,S:E484K,S:L452R,S:T478K,S:D614G")
}

func TestSignatures_HighRiskOverride(t *testing.T) {
	out, err := execute(t, "signatures", "--high-risk", "S:D614G,S:P681H")
	require.NoError(t, err)
	assert.Contains(t, out, "High-risk mutations: S:D614G,S:P681H")
}

func TestConfigSetGet(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	t.Setenv("HOME", home)

	run := func(args ...string) string {
		viper.Reset()
		c := &cli{logger: zap.NewNop()}
		root := c.newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		return out.String()
	}

	out := run("config", "set", "region", "ORF1a:")
	assert.Contains(t, out, filepath.Join(home, ".vibe-voc.yaml"))

	assert.Equal(t, "ORF1a:\n", run("config", "get", "region"))
	shown := run("config")
	assert.Contains(t, shown, "region:")
	assert.Contains(t, shown, "ORF1a:")
}

func TestHighRisk_FromEnv(t *testing.T) {
	t.Setenv("VIBE_VOC_HIGH_RISK", "S:N501Y,S:D614G")

	out, err := execute(t, "classify", sampleFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[1], "\t2\tAlpha"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "\t1\tDelta"), lines[2])

	out, err = execute(t, "signatures")
	require.NoError(t, err)
	assert.Contains(t, out, "High-risk mutations: S:N501Y,S:D614G\n")
}

func TestHighRisk_FromConfigFile(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"comma string", "high_risk: S:N501Y,S:D614G\n"},
		{"spaced string", "high_risk: S:N501Y, S:D614G\n"},
		{"list", "high_risk: [S:N501Y, S:D614G]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := filepath.Join(t.TempDir(), "vibe-voc.yaml")
			require.NoError(t, os.WriteFile(cfg, []byte(tt.yaml), 0644))

			out, err := execute(t, "--config", cfg, "classify", sampleFile)
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, 6)
			assert.True(t, strings.HasSuffix(lines[1], "\t2\tAlpha"), lines[1])
			assert.True(t, strings.HasSuffix(lines[3], "\t2\tAlpha"), lines[3])
			assert.True(t, strings.HasSuffix(lines[5], "\t1\tAlpha"), lines[5])
		})
	}
}

func TestConfigSet_HighRiskChangesClassify(t *testing.T) {
	home := t.TempDir()
	_, err := executeWithHome(t, home, "config", "set", "high_risk", "S:D614G, S:P681H")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".vibe-voc.yaml"))
	require.NoError(t, err)
	var stored map[string]any
	require.NoError(t, yaml.Unmarshal(data, &stored))
	assert.Equal(t, []any{"S:D614G", "S:P681H"}, stored["high_risk"])

	out, err := executeWithHome(t, home, "classify", sampleFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[1], "\t2\tAlpha"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "\t1\tDelta"), lines[2])
	assert.True(t, strings.HasSuffix(lines[5], "\t0\tAlpha"), lines[5])

	out, err = executeWithHome(t, home, "config", "get", "high_risk")
	require.NoError(t, err)
	assert.Equal(t, "S:D614G,S:P681H\n", out)
}

func TestConfigSet_KeepsOtherKeys(t *testing.T) {
	home := t.TempDir()
	_, err := executeWithHome(t, home, "config", "set", "region", "ORF1a:")
	require.NoError(t, err)
	_, err = executeWithHome(t, home, "config", "set", "verbose", "on")
	require.NoError(t, err)

	out, err := executeWithHome(t, home, "config", "get", "region")
	require.NoError(t, err)
	assert.Equal(t, "ORF1a:\n", out)
	out, err = executeWithHome(t, home, "config", "get", "verbose")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestConfigSet_SignaturesFile(t *testing.T) {
	home := t.TempDir()
	cfg := filepath.Join(home, ".vibe-voc.yaml")

	_, err := executeWithHome(t, home, "config", "set", "signatures_file", filepath.Join(home, "missing.yaml"))
	require.Error(t, err)
	assert.NoFileExists(t, cfg)

	bad := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("signatures:\n  - name: Gamma\n"), 0644))
	_, err = executeWithHome(t, home, "config", "set", "signatures_file", bad)
	require.Error(t, err)
	assert.NoFileExists(t, cfg)

	good := filepath.Join(home, "voc.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`signatures:
  - name: Gamma
    mutations: [S:K417T, S:E484K, S:N501Y]
  - name: Alpha
    mutations: [S:N501Y]
`), 0644))
	_, err = executeWithHome(t, home, "config", "set", "signatures_file", good)
	require.NoError(t, err)

	out, err := executeWithHome(t, home, "classify", sampleFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[3], "\tGamma"), lines[3])
}

func TestConfigSet_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		usage bool
	}{
		{"unknown key", "top", "20", true},
		{"empty high-risk list", "high_risk", " , ", false},
		{"bad delimiter", "delimiter", ";;", false},
		{"bad boolean", "verbose", "maybe", false},
		{"empty region", "region", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			_, err := executeWithHome(t, home, "config", "set", tt.key, tt.value)
			require.Error(t, err)
			var ue *usageError
			assert.Equal(t, tt.usage, errors.As(err, &ue))
			assert.NoFileExists(t, filepath.Join(home, ".vibe-voc.yaml"))
		})
	}

	_, err := execute(t, "config", "get", "top")
	var ue *usageError
	assert.ErrorAs(t, err, &ue)
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"auto", 0},
		{"", 0},
		{"tab", '\t'},
		{";", ';'},
		{",", ','},
	}
	for _, tt := range tests {
		got, err := parseDelimiter(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseDelimiter(";;")
	assert.Error(t, err)
}

func TestRun_ExitCodes(t *testing.T) {
	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, ExitUsage, run([]string{"filter", sampleFile}))
	viper.Reset()
	assert.Equal(t, ExitError, run([]string{"classify", "/nonexistent/nextclade.csv"}))
	viper.Reset()
	assert.Equal(t, ExitSuccess, run([]string{"signatures"}))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "2.0 MB", formatSize(2*1024*1024))
}
