package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics/svg"
)

// ErrDestroyed is returned when a destroyed chart is rendered.
var ErrDestroyed = errors.New("charts: chart destroyed")

// SVG writes a standalone SVG document.
type SVG struct {
	Width  int
	Height int
}

func (r SVG) Render(w io.Writer, c *Chart) error {
	if c.Destroyed() {
		return ErrDestroyed
	}
	n := c.Series.Len()
	labels, totals := c.Series.Labels[:n], c.Series.Totals[:n]
	var (
		out string
		err error
	)
	switch {
	case n == 0:
		out = svg.Empty(r.Width, r.Height, c.Series.Title)
	case c.Kind == KindBar:
		out, err = svg.Bars(r.Width, r.Height, totals, labels, svg.Opts{Title: c.Series.Title, SeriesLabel: c.Series.Title})
	default:
		out, err = svg.Line(r.Width, r.Height, totals, labels, svg.Opts{Title: c.Series.Title, SeriesLabel: c.Series.Title, Dots: true})
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}

// Text draws horizontal bars with block characters, one row per label.
type Text struct {
	// Width is the length of the longest bar.
	Width int
}

func (r Text) Render(w io.Writer, c *Chart) error {
	if c.Destroyed() {
		return ErrDestroyed
	}
	var b strings.Builder
	b.WriteString(c.Series.Title + "\n")
	n := c.Series.Len()
	if n == 0 {
		b.WriteString("  (no data)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	width := r.Width
	if width <= 0 {
		width = 40
	}
	labelWidth, peak := 0, 0.0
	for i := 0; i < n; i++ {
		labelWidth = max(labelWidth, utf8.RuneCountInString(c.Series.Labels[i]))
		peak = math.Max(peak, math.Abs(c.Series.Totals[i]))
	}
	for i := 0; i < n; i++ {
		label, total := c.Series.Labels[i], c.Series.Totals[i]
		bar := 0
		if peak > 0 {
			bar = int(math.Round(math.Abs(total) / peak * float64(width)))
		}
		pad := strings.Repeat(" ", labelWidth-utf8.RuneCountInString(label))
		fmt.Fprintf(&b, "  %s%s │%s %s\n", label, pad, strings.Repeat("█", bar), formatValue(c.Kind, total))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(kind Kind, v float64) string {
	if kind == KindBar && v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
