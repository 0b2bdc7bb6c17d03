package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineDrawsEveryPoint(t *testing.T) {
	out, err := Line(400, 200, []float64{100, 200, 150}, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, Opts{
		Title:       "Sales (daily)",
		SeriesLabel: "Sales (daily)",
		Dots:        true,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "<svg"))
	require.Contains(t, out, `aria-labelledby="sales--daily-line-title sales--daily-line-desc"`)
	require.Equal(t, 3, strings.Count(out, "<circle"))
	require.Equal(t, 2, strings.Count(out, "<path"))
	require.Contains(t, out, ">2025-01-03</text>")
}

func TestLineSinglePointIsCentred(t *testing.T) {
	out, err := Line(200, 100, []float64{12.5}, []string{"2025-01-01"}, Opts{Dots: true})
	require.NoError(t, err)
	// plot spans 28..172, so the only point sits at x=100
	require.Contains(t, out, `<circle cx="100.00"`)
	require.NotContains(t, out, "NaN")
}

func TestBarsGrowFromZero(t *testing.T) {
	out, err := Bars(420, 220, []float64{12, 7, 3}, []string{"Tea", "Bun", "Kopi"}, Opts{
		Title:       "Top Items (qty)",
		SeriesLabel: "Top Items (qty)",
	})
	require.NoError(t, err)
	require.Equal(t, 4, strings.Count(out, "<rect"), "three bars and a legend swatch")
	require.Contains(t, out, ">Kopi</text>")
	require.Contains(t, out, `aria-label="Tea 12"`)
}

func TestBarClipsToPlot(t *testing.T) {
	f, err := newFrame(200, 100, []float64{-5, 5}, []string{"a", "b"}, Opts{})
	require.NoError(t, err)
	zero := f.y(0)

	top, h := f.bar(5, zero)
	require.InDelta(t, f.pad, top, 1e-9)
	require.InDelta(t, zero-f.pad, h, 1e-9)

	top, h = f.bar(-5, zero)
	require.InDelta(t, zero, top, 1e-9)
	require.InDelta(t, f.bottom()-zero, h, 1e-9)
}

func TestRenderersRejectBadInput(t *testing.T) {
	_, err := Bars(0, 0, []float64{1, 2}, []string{"a"}, Opts{})
	require.ErrorIs(t, err, ErrLabels)
	_, err = Line(0, 0, nil, nil, Opts{})
	require.ErrorIs(t, err, ErrNoData)
	_, err = Line(40, 40, []float64{1}, []string{"a"}, Opts{})
	require.Error(t, err)
}

func TestEmptyKeepsTitle(t *testing.T) {
	out := Empty(0, 0, "Sales (2025-01-01 → 2025-01-31)")
	require.Contains(t, out, ">Sales (2025-01-01 → 2025-01-31)</title>")
	require.Contains(t, out, ">No data</text>")
}

func TestTickShortensLargeValues(t *testing.T) {
	require.Equal(t, "1.5k", tick(1500))
	require.Equal(t, "2.0M", tick(2_000_000))
	require.Equal(t, "12", tick(12))
	require.Equal(t, "0.25", tick(0.25))
}
