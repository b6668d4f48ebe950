package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-voc/internal/mutation"
	"github.com/inodb/vibe-voc/internal/nextclade"
)

// session is one loaded and classified input table.
type session struct {
	Header    []string
	Delimiter rune
	Profile   *mutation.Profile
	Analysis  *mutation.Analysis
}

// parseDelimiter maps the delimiter setting to a rune. 0 means detect.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", "auto":
		return 0, nil
	case "tab", "\\t", "\t":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, newUsageError("invalid delimiter %q", s)
	}
	return r[0], nil
}

// loadProfile returns the configured signature profile.
func loadProfile() (*mutation.Profile, error) {
	p := mutation.DefaultProfile()
	if path := viper.GetString("signatures_file"); path != "" {
		var err error
		p, err = mutation.LoadProfile(path)
		if err != nil {
			return nil, err
		}
	}
	if hr := highRiskCodes(); len(hr) > 0 {
		p.HighRisk = hr
	}
	return p, nil
}

// load reads the input table and runs the classifier over it.
func (c *cli) load(path string) (*session, error) {
	delim, err := parseDelimiter(viper.GetString("delimiter"))
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}

	parser, err := nextclade.NewParser(path, nextclade.Options{
		Delimiter: delim,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	if !parser.HasSubstitutions() {
		c.logger.Warn("no substitution column found; all sequences treated as having no mutations",
			zap.String("column", nextclade.ColAASubstitutions),
			zap.String("file", path))
	}

	records, err := parser.ReadAll()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("loaded sequences",
		zap.String("file", path),
		zap.Int("records", len(records)),
		zap.String("delimiter", string(parser.Delimiter())))

	classifier := mutation.NewClassifierFromProfile(profile)
	classifier.SetLogger(c.logger)
	region := viper.GetString("region")

	return &session{
		Header:    parser.Header(),
		Delimiter: parser.Delimiter(),
		Profile:   profile,
		Analysis:  mutation.Analyze(records, classifier, region),
	}, nil
}

// createOutput opens the output destination. An empty path or "-" writes
// to the command's stdout; a ".gz" suffix compresses the output.
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, f.Close, nil
	}

	zw := pgzip.NewWriter(f)
	closeFn := func() error {
		if err := zw.Close(); err != nil {
			f.Close()
			return fmt.Errorf("close gzip writer: %w", err)
		}
		return f.Close()
	}
	return zw, closeFn, nil
}

// formatSize formats a byte count for display.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
