package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame is the plot area of one chart and the value range it maps onto it.
// The range always includes zero.
type frame struct {
	width, height int
	pad           float64
	plotW, plotH  float64
	lo, hi        float64
	ticks         int
}

func newFrame(width, height int, series []float64, labels []string, opts Opts) (*frame, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}
	if len(series) != len(labels) {
		return nil, ErrLabels
	}
	f := &frame{
		width:  orInt(width, DefaultWidth),
		height: orInt(height, DefaultHeight),
		pad:    opts.Padding,
		ticks:  orInt(opts.Ticks, DefaultTicks),
	}
	if f.pad <= 0 {
		f.pad = DefaultPadding
	}
	f.plotW = float64(f.width) - 2*f.pad
	f.plotH = float64(f.height) - 2*f.pad
	if f.plotW <= 0 || f.plotH <= 0 {
		return nil, fmt.Errorf("svg: %dx%d leaves no room to plot", f.width, f.height)
	}
	for _, v := range series {
		f.lo = math.Min(f.lo, v)
		f.hi = math.Max(f.hi, v)
	}
	if f.hi-f.lo < 1e-9 {
		f.hi = f.lo + 1
	}
	return f, nil
}

func (f *frame) bottom() float64 { return f.pad + f.plotH }

// y maps a value to its vertical pixel position.
func (f *frame) y(v float64) float64 {
	return f.bottom() - (v-f.lo)/(f.hi-f.lo)*f.plotH
}

func (f *frame) open(b *strings.Builder, kind, title, desc string) {
	titleID := elementID(title, kind+"-title")
	descID := elementID(title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, esc(title))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, esc(desc))
}

// legend draws the series label above the plot, where the dashboard shows it.
func (f *frame) legend(b *strings.Builder, color, label string) {
	if strings.TrimSpace(label) == "" {
		return
	}
	y := math.Max(f.pad-12, 12)
	fmt.Fprintf(b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, f.pad, y-8, color)
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="start">%s</text>`, f.pad+14, y, axisColor, esc(label))
}

func (f *frame) grid(b *strings.Builder) {
	for i := 0; i <= f.ticks; i++ {
		v := f.lo + (f.hi-f.lo)*float64(i)/float64(f.ticks)
		y := f.y(v)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, f.pad, y, f.pad+f.plotW, y, gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.pad-6, y+4, axisColor, esc(tick(v)))
	}
}

// axes draws the y axis and a horizontal axis at baseline.
func (f *frame) axes(b *strings.Builder, baseline float64) {
	fmt.Fprintf(b, `<g stroke="%s" aria-label="Axes">`, axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.pad, f.pad, f.pad, f.bottom())
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.pad, baseline, f.pad+f.plotW, baseline)
	b.WriteString("</g>")
}

func (f *frame) label(b *strings.Builder, x float64, text string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, f.bottom()+14, axisColor, esc(text))
}

// Empty renders the axes of a chart with no data, titled like the chart it
// stands in for.
func Empty(width, height int, title string) string {
	f := &frame{
		width:  orInt(width, DefaultWidth),
		height: orInt(height, DefaultHeight),
		pad:    DefaultPadding,
	}
	f.plotW = float64(f.width) - 2*f.pad
	f.plotH = float64(f.height) - 2*f.pad
	title = or(title, "Chart")
	var b strings.Builder
	f.open(&b, "empty", title, "No data")
	f.legend(&b, lineStroke, title)
	f.axes(&b, f.bottom())
	fmt.Fprintf(&b, `<text x="%d" y="%d" fill="%s" font-size="12" text-anchor="middle">No data</text>`, f.width/2, f.height/2, axisColor)
	b.WriteString("</svg>")
	return b.String()
}

func esc(s string) string { return template.HTMLEscapeString(s) }

func or(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// elementID derives a document-unique id from a chart title.
func elementID(title, suffix string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(title)))
	id = strings.Trim(id, "-")
	if id == "" {
		id = "chart"
	}
	return id + "-" + suffix
}

// tick shortens axis values: 1500 reads 1.5k.
func tick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case math.Abs(v-math.Round(v)) < 1e-9:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
