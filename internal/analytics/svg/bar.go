package svg

import (
	"fmt"
	"math"
	"strings"
)

// Bars renders one bar per label, growing up or down from zero.
func Bars(width, height int, series []float64, labels []string, opts Opts) (string, error) {
	f, err := newFrame(width, height, series, labels, opts)
	if err != nil {
		return "", err
	}
	color := or(opts.Color, barFill)
	zero := f.y(0)
	slot := f.plotW / float64(len(labels))
	barW := slot * 0.6

	var b strings.Builder
	f.open(&b, "bar", or(opts.Title, "Top items"), or(opts.Description, "Quantity sold per item"))
	f.legend(&b, color, opts.SeriesLabel)
	f.grid(&b)
	f.axes(&b, zero)

	for i, label := range labels {
		left := f.pad + float64(i)*slot
		top, h := f.bar(series[i], zero)
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s %s"></rect>`,
			left+(slot-barW)/2, top, barW, h, color, esc(label), esc(tick(series[i])))
		f.label(&b, left+slot/2, label)
	}

	b.WriteString("</svg>")
	return b.String(), nil
}

// bar returns the top and height of a bar for v, clipped to the plot.
func (f *frame) bar(v, zero float64) (top, height float64) {
	end := math.Min(math.Max(f.y(v), f.pad), f.bottom())
	top, bottom := math.Min(zero, end), math.Max(zero, end)
	return top, bottom - top
}
