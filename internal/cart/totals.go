package cart

import (
	"math"
	"strconv"
	"strings"
)

// Totals is the price breakdown for a set of lines and a discount percentage.
// Final is kept unrounded; it is what the checkout request carries.
type Totals struct {
	Subtotal        float64
	DiscountPercent float64
	DiscountAmount  float64
	Final           float64
}

// Subtotal sums price times quantity.
func Subtotal(lines []Line) float64 {
	var total float64
	for _, line := range lines {
		total += line.Amount()
	}
	return total
}

// Compute applies discount (a percentage, not range checked) to the lines.
func Compute(lines []Line, discount float64) Totals {
	subtotal := Subtotal(lines)
	amount := subtotal * discount / 100
	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: discount,
		DiscountAmount:  amount,
		Final:           subtotal - amount,
	}
}

// Display is the final total rounded to two decimals for display.
func (t Totals) Display() string {
	return FormatAmount(t.Final)
}

// RoundedFinal is the final total rounded to cents, as a number.
func (t Totals) RoundedFinal() float64 {
	return Round2(t.Final)
}

// FormatAmount renders v with exactly two decimals. Rounding works on the
// exact binary value and sends ties away from zero, so 0.125 gives "0.13"
// while 1.005 (stored just below) gives "1.00".
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	neg := v < 0
	expanded := strconv.FormatFloat(math.Abs(v), 'f', 40, 64)
	dot := strings.IndexByte(expanded, '.')
	kept := []byte(expanded[:dot] + expanded[dot+1:dot+3])
	if expanded[dot+3] >= '5' {
		kept = incrementDigits(kept)
	}
	whole, frac := string(kept[:len(kept)-2]), string(kept[len(kept)-2:])
	out := whole + "." + frac
	if neg && strings.Trim(out, "0.") != "" {
		out = "-" + out
	}
	return out
}

func incrementDigits(digits []byte) []byte {
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] < '9' {
			digits[i]++
			return digits
		}
		digits[i] = '0'
	}
	return append([]byte{'1'}, digits...)
}

// Round2 rounds v to two decimals by way of its display form.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(FormatAmount(v), 64)
	if err != nil {
		return v
	}
	return r
}
