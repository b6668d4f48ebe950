package main

import (
	"github.com/spf13/cobra"

	"github.com/inodb/vibe-voc/internal/mutation"
	"github.com/inodb/vibe-voc/internal/output"
)

func (c *cli) newClassifyCmd() *cobra.Command {
	var (
		outputFile string
		format     string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "classify <input-file>",
		Short: "Classify sequences and score their risk",
		Long: `Classify every sequence of a Nextclade results table against the configured
VOC signatures and append risk_score and predicted_variant columns.`,
		Example: `  vibe-voc classify nextclade.csv
  vibe-voc classify --top 200 -o top_200_high_risk.csv --format csv nextclade.csv
  cat nextclade.tsv | vibe-voc classify -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "tab" && format != "csv" {
				return newUsageError("unknown output format %q", format)
			}

			s, err := c.load(args[0])
			if err != nil {
				return err
			}

			records := s.Analysis.Records
			if top > 0 {
				records = mutation.TopByRisk(records, top)
			}

			out, closeOut, err := createOutput(cmd, outputFile)
			if err != nil {
				return err
			}

			var w output.RecordWriter
			if format == "csv" {
				w = output.NewCSVWriter(out, s.Header, s.Delimiter)
			} else {
				w = output.NewTabWriter(out, s.Header)
			}
			if err := output.WriteRecords(w, records); err != nil {
				closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}

			output.WriteOverview(cmd.ErrOrStderr(), s.Analysis)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout, .gz compresses)")
	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, csv (input delimiter)")
	cmd.Flags().IntVar(&top, "top", 0, "Only write the N highest-risk sequences (0: all, input order)")

	return cmd
}
