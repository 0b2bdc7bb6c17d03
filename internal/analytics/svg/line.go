package svg

import (
	"fmt"
	"strings"
)

// Line renders sales totals as a line with the area under it filled. A
// single point sits in the middle of the plot.
func Line(width, height int, series []float64, labels []string, opts Opts) (string, error) {
	f, err := newFrame(width, height, series, labels, opts)
	if err != nil {
		return "", err
	}
	stroke := or(opts.Color, lineStroke)

	xs := make([]float64, len(series))
	for i := range series {
		if len(series) == 1 {
			xs[i] = f.pad + f.plotW/2
			continue
		}
		xs[i] = f.pad + float64(i)*f.plotW/float64(len(series)-1)
	}

	var d strings.Builder
	for i, v := range series {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			d.WriteByte(' ')
		}
		fmt.Fprintf(&d, "%s%.2f %.2f", cmd, xs[i], f.y(v))
	}

	var b strings.Builder
	f.open(&b, "line", or(opts.Title, "Sales"), or(opts.Description, "Sales totals"))
	f.legend(&b, stroke, opts.SeriesLabel)
	f.grid(&b)
	f.axes(&b, f.bottom())

	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`,
		d.String(), xs[len(xs)-1], f.bottom(), xs[0], f.bottom(), lineFill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, d.String(), stroke)

	for i, v := range series {
		if opts.Dots {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"></circle>`, xs[i], f.y(v), stroke)
		}
		f.label(&b, xs[i], labels[i])
	}

	b.WriteString("</svg>")
	return b.String(), nil
}
