// Package svg draws the report charts as standalone SVG documents: a filled
// line for sales trends and bars for top items.
package svg

import "errors"

// ErrNoData is returned by the renderers for an empty series. Callers draw
// Empty instead.
var ErrNoData = errors.New("svg: series required")

// ErrLabels is returned when labels and totals differ in length.
var ErrLabels = errors.New("svg: labels length must match series")

// Opts customises a chart. Zero values fall back to the dashboard defaults.
type Opts struct {
	Title       string
	Description string
	// SeriesLabel is drawn as a legend above the plot when set.
	SeriesLabel string
	Color       string
	Padding     float64
	Ticks       int
	// Dots marks each point of a line chart.
	Dots bool
}

// Defaults for the report charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 28.0
	DefaultTicks   = 5

	lineStroke = "rgb(54, 162, 235)"
	lineFill   = "rgba(54, 162, 235, 0.12)"
	barFill    = "rgba(54, 162, 235, 0.6)"
	axisColor  = "#475569"
	gridColor  = "#cbd5e1"
)
