package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-voc/internal/output"
)

func (c *cli) newChartCmd() *cobra.Command {
	var (
		kind       string
		format     string
		outputFile string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "chart <input-file>",
		Short: "Render a bar chart of variants, mutations or hotspots",
		Example: `  vibe-voc chart --kind variants -o variants.png nextclade.csv
  vibe-voc chart --kind mutations --top 30 -o mutations.svg nextclade.csv
  vibe-voc chart --kind hotspots -o spike.png nextclade.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFile == "" {
				return newUsageError("--output is required")
			}
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(outputFile)), ".")
			}
			if format != output.FormatPNG && format != output.FormatSVG {
				return newUsageError("unknown chart format %q (use png or svg)", format)
			}
			switch kind {
			case "variants", "mutations", "hotspots":
			default:
				return newUsageError("unknown chart kind %q", kind)
			}

			s, err := c.load(args[0])
			if err != nil {
				return err
			}
			a := s.Analysis

			out, closeOut, err := createOutput(cmd, outputFile)
			if err != nil {
				return err
			}

			switch kind {
			case "variants":
				err = output.RenderVariantChart(out, a.Variants, s.Profile.Colors, format)
			case "mutations":
				err = output.RenderFrequencyChart(out, a.Frequency, top, format)
			case "hotspots":
				err = output.RenderHotspotChart(out, a.Region, a.Hotspots, format)
			}
			if err != nil {
				closeOut()
				os.Remove(outputFile)
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}

			size := "unknown"
			if stat, err := os.Stat(outputFile); err == nil {
				size = formatSize(stat.Size())
			}
			c.logger.Info("wrote chart",
				zap.String("kind", kind),
				zap.String("file", outputFile),
				zap.String("size", size))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "variants", "Chart kind: variants, mutations, hotspots")
	cmd.Flags().StringVar(&format, "format", "", "Image format: png, svg (default: from output extension)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output image file")
	cmd.Flags().IntVar(&top, "top", 20, "Number of mutations for the mutations chart")

	return cmd
}
