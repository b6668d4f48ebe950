package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-voc/internal/output"
)

func (c *cli) newSummaryCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "summary <input-file>",
		Short: "Summarize variant counts and mutation frequencies",
		Example: `  vibe-voc summary nextclade.csv
  vibe-voc summary --top 50 nextclade.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load(args[0])
			if err != nil {
				return err
			}
			a := s.Analysis

			sw := output.NewSummaryWriter(cmd.OutOrStdout())
			if err := sw.WriteVariantCounts(a.Variants); err != nil {
				return fmt.Errorf("write variant counts: %w", err)
			}
			if err := sw.WriteBlank(); err != nil {
				return err
			}
			if err := sw.WriteMutationFrequency(a.Frequency, top); err != nil {
				return fmt.Errorf("write mutation frequency: %w", err)
			}
			if err := sw.Flush(); err != nil {
				return err
			}

			output.WriteOverview(cmd.OutOrStdout(), a)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 20, "Number of most frequent mutations to list (0: all)")

	return cmd
}

func (c *cli) newHotspotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotspots <input-file>",
		Short: "Count mutations per position in one gene region",
		Long: `Count substitutions per amino-acid position for codes in the configured
region (default "S:", the spike protein). Codes without a position are left
out of the histogram but still appear in the summary frequencies.`,
		Example: `  vibe-voc hotspots nextclade.csv
  vibe-voc hotspots --region ORF1a: nextclade.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load(args[0])
			if err != nil {
				return err
			}

			sw := output.NewSummaryWriter(cmd.OutOrStdout())
			if err := sw.WriteHotspots(s.Analysis.Region, s.Analysis.Hotspots); err != nil {
				return fmt.Errorf("write hotspots: %w", err)
			}
			return sw.Flush()
		},
	}

	return cmd
}
