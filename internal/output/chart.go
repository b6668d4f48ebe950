package output

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// ErrNoData is returned when a chart would have no bars.
var ErrNoData = errors.New("no data to chart")

// Chart image formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

const (
	barWidth   = 24
	barSpacing = 10
	minWidth   = 640
)

var defaultBarColor = drawing.ColorFromHex("4682b4")

// RenderVariantChart draws predicted variant counts as a bar chart using
// the given legend colors (variant name to "#rrggbb").
func RenderVariantChart(w io.Writer, counts mutation.Counts, colors map[string]string, format string) error {
	sorted := counts.Sorted()
	bars := make([]chart.Value, 0, len(sorted))
	for _, c := range sorted {
		col := defaultBarColor
		if hex, ok := colors[c.Key]; ok {
			col = parseHexColor(hex)
		}
		bars = append(bars, bar(c.Key, c.Count, col))
	}
	return renderBars(w, "Predicted variants", bars, format)
}

// RenderFrequencyChart draws the top n substitution codes by count.
func RenderFrequencyChart(w io.Writer, freq mutation.Counts, n int, format string) error {
	top := freq.Top(n)
	bars := make([]chart.Value, 0, len(top))
	for _, c := range top {
		bars = append(bars, bar(c.Key, c.Count, defaultBarColor))
	}
	return renderBars(w, fmt.Sprintf("Top %d mutations", len(bars)), bars, format)
}

// RenderHotspotChart draws the position histogram of one region.
func RenderHotspotChart(w io.Writer, region string, hist mutation.Histogram, format string) error {
	positions := hist.Positions()
	bars := make([]chart.Value, 0, len(positions))
	for _, pos := range positions {
		bars = append(bars, bar(strconv.Itoa(pos), hist[pos], defaultBarColor))
	}
	title := strings.TrimSuffix(region, ":") + " mutation hotspots"
	return renderBars(w, title, bars, format)
}

func bar(label string, count int, col drawing.Color) chart.Value {
	return chart.Value{
		Label: label,
		Value: float64(count),
		Style: chart.Style{FillColor: col, StrokeColor: col},
	}
}

func renderBars(w io.Writer, title string, bars []chart.Value, format string) error {
	if len(bars) == 0 {
		return ErrNoData
	}

	var provider chart.RendererProvider
	switch format {
	case FormatPNG, "":
		provider = chart.PNG
	case FormatSVG:
		provider = chart.SVG
	default:
		return fmt.Errorf("unknown chart format %q", format)
	}

	maxValue := 1.0
	for _, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}

	bc := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      max(minWidth, len(bars)*(barWidth+barSpacing)+160),
		Height:     512,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{TextRotationDegrees: 90},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		Bars: bars,
	}

	if err := bc.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// parseHexColor parses "#rrggbb" or "#rgb", falling back to the default
// bar color.
func parseHexColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 3 && len(hex) != 6 {
		return defaultBarColor
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return defaultBarColor
	}
	return drawing.ColorFromHex(hex)
}
