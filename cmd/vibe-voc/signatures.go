package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-voc/internal/mutation"
)

func (c *cli) newSignaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signatures",
		Short: "List VOC signatures in priority order",
		Long: `List the configured VOC signatures in the order they are tried. A sequence
matching several signatures is assigned to the first one listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Priority\tVariant\tColor\tMutations")
			for i, s := range p.Signatures {
				color := p.Colors[s.Name]
				if color == "" {
					color = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, s.Name, color, strings.Join(s.Mutations.Sorted(), ","))
			}
			fmt.Fprintf(tw, "-\t%s\t%s\t-\n", mutation.Unclassified, p.Colors[mutation.Unclassified])
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nHigh-risk mutations: %s\n", strings.Join(p.HighRisk, ","))
			return nil
		},
	}
}
