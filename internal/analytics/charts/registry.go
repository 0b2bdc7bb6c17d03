// Package charts keeps one live chart per canvas and draws it with a
// pluggable renderer.
package charts

import (
	"fmt"
	"io"
	"sync"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
)

// Canvas ids of the reports screen.
const (
	CanvasSales    = "salesChart"
	CanvasTopItems = "topItemsChart"
)

// Kind is the chart type.
type Kind int

const (
	KindLine Kind = iota
	KindBar
)

// KindFor picks the chart type by canvas: bars for top items, lines
// everywhere else.
func KindFor(canvasID string) Kind {
	if canvasID == CanvasTopItems {
		return KindBar
	}
	return KindLine
}

// Chart is a drawn chart bound to a canvas.
type Chart struct {
	Canvas string
	Kind   Kind
	Series analytics.Series

	mu        sync.Mutex
	destroyed bool
}

// Destroy releases the chart. A destroyed chart is never drawn again.
func (c *Chart) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
}

func (c *Chart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Renderer draws a chart.
type Renderer interface {
	Render(w io.Writer, c *Chart) error
}

// Registry maps canvas ids to their current chart.
type Registry struct {
	renderer Renderer

	mu     sync.Mutex
	charts map[string]*Chart
}

func NewRegistry(renderer Renderer) *Registry {
	return &Registry{renderer: renderer, charts: make(map[string]*Chart)}
}

// Draw destroys the chart currently on canvasID, if any, then creates and
// renders a new one from series. Empty series still produce a chart.
func (r *Registry) Draw(w io.Writer, canvasID string, series analytics.Series) (*Chart, error) {
	chart := &Chart{Canvas: canvasID, Kind: KindFor(canvasID), Series: series}

	r.mu.Lock()
	if prev, ok := r.charts[canvasID]; ok {
		prev.Destroy()
	}
	r.charts[canvasID] = chart
	r.mu.Unlock()

	if err := r.renderer.Render(w, chart); err != nil {
		return chart, fmt.Errorf("render %s: %w", canvasID, err)
	}
	return chart, nil
}

// Current returns the live chart on canvasID.
func (r *Registry) Current(canvasID string) (*Chart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charts[canvasID]
	return c, ok
}

// Close destroys every chart.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.charts {
		c.Destroy()
		delete(r.charts, id)
	}
}
