package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	lines := []Line{
		{ID: 1, Name: "A", Price: 10, Quantity: 2},
		{ID: 2, Name: "B", Price: 5, Quantity: 1},
	}
	totals := Compute(lines, 10)

	assert.Equal(t, 25.0, totals.Subtotal)
	assert.Equal(t, 2.5, totals.DiscountAmount)
	assert.Equal(t, 22.5, totals.Final)
	assert.Equal(t, "22.50", totals.Display())
}

func TestComputeKeepsFinalUnrounded(t *testing.T) {
	lines := []Line{{ID: 1, Name: "A", Price: 2.5, Quantity: 3}}
	totals := Compute(lines, 15)

	assert.Equal(t, 6.375, totals.Final)
	assert.Equal(t, "6.38", totals.Display())
	assert.Equal(t, 6.38, totals.RoundedFinal())
}

func TestDiscountIsNotRangeChecked(t *testing.T) {
	lines := []Line{{ID: 1, Name: "A", Price: 10, Quantity: 1}}

	assert.Equal(t, -5.0, Compute(lines, 150).Final)
	assert.Equal(t, 11.0, Compute(lines, -10).Final)
}

func TestEmptyCartTotals(t *testing.T) {
	totals := Compute(nil, 10)
	assert.Equal(t, "0.00", totals.Display())
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:      "0.00",
		22.5:   "22.50",
		0.125:  "0.13",
		1.005:  "1.00",
		0.995:  "0.99",
		9.999:  "10.00",
		-2.345: "-2.35",
		-0.001: "0.00",
		1234.5: "1234.50",
		0.3:    "0.30",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(in), "FormatAmount(%v)", in)
	}
}
