package checkout

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/cart"
)

// Tender comparison modes.
const (
	TenderExact = "exact"
	TenderCents = "cents"
)

// TenderPolicy decides whether a mixed cash and card split pays final.
type TenderPolicy interface {
	Balanced(cash, card, final float64) bool
}

// ExactTender compares the float sum with the final total rounded to two
// decimals, without tolerance. 0.1 + 0.2 does not pay 0.30.
type ExactTender struct{}

func (ExactTender) Balanced(cash, card, final float64) bool {
	return cash+card == cart.Round2(final)
}

// CentsTender compares at cent precision using decimal arithmetic. The
// target is the same two decimal figure the register displays.
type CentsTender struct{}

func (CentsTender) Balanced(cash, card, final float64) bool {
	if !finite(cash) || !finite(card) || !finite(final) {
		return false
	}
	target, err := decimal.NewFromString(cart.FormatAmount(final))
	if err != nil {
		return false
	}
	paid := decimal.NewFromFloat(cash).Add(decimal.NewFromFloat(card)).Round(2)
	return paid.Equal(target)
}

// PolicyFor maps a configured mode name to its policy.
func PolicyFor(mode string) (TenderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", TenderExact:
		return ExactTender{}, nil
	case TenderCents:
		return CentsTender{}, nil
	default:
		return nil, fmt.Errorf("checkout: unknown tender mode %q", mode)
	}
}

var numericPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseAmount reads a free-text amount the way the register always has:
// leading whitespace is skipped, the longest numeric prefix is used and
// anything unparseable counts as zero.
func ParseAmount(raw string) float64 {
	s := strings.TrimLeft(raw, " \t\n\r\f\v")
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Out of range literals still parse to ±Inf with err set.
		if math.IsInf(v, 0) {
			return v
		}
		return 0
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
