// Package report renders projections and ranking changes as text.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/artur/tubeprophet/internal/forecast"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

const (
	red   = "\033[0;31m"
	green = "\033[0;32m"
	blue  = "\033[0;34m"
	reset = "\033[0m"
)

const dateLayout = "Jan 02, 2006"

// Palette holds the escape sequences used for each highlight.
type Palette struct {
	Title string
	Views string
	Date  string
	Reset string
}

// Color is the ANSI palette.
var Color = Palette{Title: red, Views: green, Date: blue, Reset: reset}

// Plain renders without escapes.
var Plain = Palette{}

// PaletteFor picks Color when f is a terminal and colors are not disabled.
func PaletteFor(f *os.File, noColor bool) Palette {
	if noColor || f == nil {
		return Plain
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return Color
	}
	return Plain
}

// Writer renders reports to an io.Writer.
type Writer struct {
	w io.Writer
	p Palette
}

// New creates a Writer.
func New(w io.Writer, p Palette) *Writer {
	return &Writer{w: w, p: p}
}

// Summary is the one-line title and view count.
func (p Palette) Summary(title string, views float64) string {
	return fmt.Sprintf("%s%s%s - %s%s views%s",
		p.Title, title, p.Reset, p.Views, humanize.Comma(int64(views)), p.Reset)
}

// FullInfo describes a projection: upload date, views, age and daily average.
func (p Palette) FullInfo(pr *forecast.Projection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s%s%s - ", p.Title, pr.Video.Title, p.Reset)
	fmt.Fprintf(&b, "Uploaded on %s%s%s - ", p.Date, pr.Video.PublishedAt.Format(dateLayout), p.Reset)
	fmt.Fprintf(&b, "%s%s views%s\n", p.Views, humanize.Comma(pr.Video.Views), p.Reset)

	fmt.Fprintf(&b, "\t%s%s%d days%s since upload\n", p.Date, yearsPrefix(pr.YearsUp), pr.DaysUp%365, p.Reset)

	fmt.Fprintf(&b, "\t%s%s%s average views per day", p.Views, humanize.Comma(int64(pr.AvgViews)), p.Reset)

	return b.String()
}

func yearsPrefix(years int) string {
	switch years {
	case 0:
		return ""
	case 1:
		return "1 year and "
	default:
		return fmt.Sprintf("%d years and ", years)
	}
}

// Header is the heading printed above a ranking.
func Header(c forecast.Change) string {
	if c.Initial() {
		return "Starting state (Day 1):"
	}
	return fmt.Sprintf("Day %d:", c.Day)
}

// Ranking is the numbered list of entries.
func (p Palette) Ranking(entries []forecast.Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%d. %s", i+1, p.Summary(e.Title, e.Views))
	}
	return strings.Join(lines, "\n")
}

// Render builds the complete report: full info per projection in the given
// order, a blank line, then each ranking change.
func (p Palette) Render(projections []*forecast.Projection, changes []forecast.Change) string {
	var b strings.Builder
	for _, pr := range projections {
		b.WriteString(p.FullInfo(pr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, c := range changes {
		b.WriteString(Header(c))
		b.WriteString("\n")
		b.WriteString(p.Ranking(c.Ranking))
		b.WriteString("\n")
	}
	return b.String()
}

// Write renders the report to the underlying writer.
func (w *Writer) Write(projections []*forecast.Projection, changes []forecast.Change) error {
	_, err := io.WriteString(w.w, w.p.Render(projections, changes))
	return err
}
