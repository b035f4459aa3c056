package termgrid

import (
	"fmt"
	"strings"

	"github.com/2beens/whoopgrid/internal/heatmap"

	"github.com/charmbracelet/lipgloss"
)

const (
	labelWidth = 5
	cellWidth  = 2
	cellGlyph  = "■"
)

// plain glyphs, used when colours are off
var bandGlyphs = map[heatmap.Band]string{
	heatmap.BandNone: "·",
	heatmap.BandLow:  "░",
	heatmap.BandMid:  "▒",
	heatmap.BandHigh: "█",
}

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
)

type Options struct {
	Color bool
	// Renderer defaults to lipgloss' default renderer (stdout).
	Renderer *lipgloss.Renderer
}

type renderer struct {
	opts   Options
	header lipgloss.Style
	dim    lipgloss.Style
}

// Render draws the grid as text: a month label row, one row per weekday, then the legend.
func Render(grid heatmap.Grid, opts Options) string {
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	r := &renderer{
		opts:   opts,
		header: styleHeader.Renderer(opts.Renderer),
		dim:    styleDim.Renderer(opts.Renderer),
	}

	var sb strings.Builder
	sb.WriteString(r.title(grid))
	sb.WriteString("\n")
	if len(grid.Cells) == 0 {
		sb.WriteString(r.dim.Render("no days to show"))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(monthRow(grid))
	sb.WriteString("\n")
	for weekday := 0; weekday < 7; weekday++ {
		sb.WriteString(fmt.Sprintf("%-*s", labelWidth, heatmap.WeekdayLabels[weekday]))
		for week := 0; week < grid.WeekCount; week++ {
			cell, ok := grid.At(week, weekday)
			if !ok {
				sb.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			sb.WriteString(r.cell(cell.ColorBucket))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(r.legend(grid.Metric))
	sb.WriteString("\n")

	return sb.String()
}

func (r *renderer) title(grid heatmap.Grid) string {
	title := grid.Metric.Label()
	if unit := grid.Metric.Unit(); unit != "" {
		title += " (" + unit + ")"
	}
	if len(grid.Cells) > 0 {
		first, last := grid.Cells[0].Date, grid.Cells[len(grid.Cells)-1].Date
		withData := 0
		for _, cell := range grid.Cells {
			if cell.RawValue != nil {
				withData++
			}
		}
		title += fmt.Sprintf("  %s .. %s", first, last)
		return r.header.Render(title) + "  " + r.dim.Render(fmt.Sprintf("%d/%d days with data", withData, len(grid.Cells)))
	}
	return r.header.Render(title)
}

func (r *renderer) cell(band heatmap.Band) string {
	if !r.opts.Color {
		if glyph, ok := bandGlyphs[band]; ok {
			return glyph
		}
		return bandGlyphs[heatmap.BandNone]
	}
	return r.opts.Renderer.NewStyle().
		Foreground(lipgloss.Color(band.Color())).
		Render(cellGlyph)
}

func (r *renderer) legend(metric heatmap.Metric) string {
	parts := []string{r.cell(heatmap.BandNone) + " " + heatmap.BandNone.Label()}
	for _, entry := range heatmap.Legend(metric) {
		parts = append(parts, fmt.Sprintf("%s %s (e.g. %g%s)", r.cell(entry.Band), entry.Label, entry.Sample, metric.Unit()))
	}
	return r.dim.Render("legend: ") + strings.Join(parts, "   ")
}

// monthRow puts each month label above the week column it starts in.
func monthRow(grid heatmap.Grid) string {
	row := []rune(strings.Repeat(" ", labelWidth+grid.WeekCount*cellWidth+3))
	for week, label := range grid.MonthLabels {
		if label == "" {
			continue
		}
		start := labelWidth + week*cellWidth
		for i, ch := range label {
			if start+i < len(row) {
				row[start+i] = ch
			}
		}
	}
	return strings.TrimRight(string(row), " ")
}
