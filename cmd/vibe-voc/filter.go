package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-voc/internal/duckdb"
	"github.com/inodb/vibe-voc/internal/mutation"
	"github.com/inodb/vibe-voc/internal/output"
)

func (c *cli) newFilterCmd() *cobra.Command {
	var (
		code       string
		variant    string
		minRisk    int
		dbPath     string
		outputFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "filter <input-file>",
		Short: "Select sequences by mutation, variant or risk score",
		Long: `Load the classified table into a session DuckDB table, select the
sequences matching one criterion, and write them as a delimited file with
the original columns plus the derived ones.`,
		Example: `  vibe-voc filter --mutation S:E484K -o e484k.csv nextclade.csv
  vibe-voc filter --variant Delta nextclade.csv
  vibe-voc filter --min-risk 3 -o high_risk.csv.gz nextclade.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors := 0
			for _, set := range []bool{code != "", variant != "", cmd.Flags().Changed("min-risk")} {
				if set {
					selectors++
				}
			}
			if selectors != 1 {
				return newUsageError("exactly one of --mutation, --variant or --min-risk is required")
			}
			if format != "csv" && format != "tab" {
				return newUsageError("unknown output format %q", format)
			}

			s, err := c.load(args[0])
			if err != nil {
				return err
			}

			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.WriteRecords(s.Analysis.Records); err != nil {
				return fmt.Errorf("load session table: %w", err)
			}
			if !store.InMemory() {
				c.logger.Info("session table kept on disk", zap.String("db", dbPath))
			}

			var hits []duckdb.Hit
			switch {
			case code != "":
				hits, err = store.FilterByMutation(code)
			case variant != "":
				hits, err = store.FilterByVariant(variant)
			default:
				hits, err = store.FilterByMinRisk(minRisk)
			}
			if err != nil {
				return err
			}
			subset := duckdb.Select(s.Analysis.Records, hits)

			c.logger.Info("selected sequences",
				zap.Int("matched", len(subset)),
				zap.Int("total", len(s.Analysis.Records)))
			if code != "" {
				freq := mutation.MutationFrequency(subset)
				c.logger.Debug("subset mutation frequency",
					zap.String("mutation", code),
					zap.Int("count", freq[code]))
			}

			out, closeOut, err := createOutput(cmd, outputFile)
			if err != nil {
				return err
			}
			var w output.RecordWriter
			if format == "tab" {
				w = output.NewTabWriter(out, s.Header)
			} else {
				w = output.NewCSVWriter(out, s.Header, s.Delimiter)
			}
			if err := output.WriteRecords(w, subset); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	cmd.Flags().StringVarP(&code, "mutation", "m", "", "Select sequences carrying this substitution (e.g. S:E484K)")
	cmd.Flags().StringVar(&variant, "variant", "", "Select sequences with this predicted variant")
	cmd.Flags().IntVar(&minRisk, "min-risk", 0, "Select sequences with at least this risk score")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB file for the session table (default: in-memory)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout, .gz compresses)")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv (input delimiter), tab")

	return cmd
}
