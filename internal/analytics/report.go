// Package analytics loads the sales reports: trends per period or date
// range, top items, low stock and the sales export.
package analytics

import (
	"errors"
	"fmt"
	"time"
)

// Trend periods understood by the backend. Any other value yields an empty
// series.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// DefaultLowStockThreshold matches the backend default.
const DefaultLowStockThreshold = 10

// MsgSelectRange is shown when a date range is incomplete or malformed.
const MsgSelectRange = "Please select a date range."

var (
	ErrInvalidRange  = errors.New("invalid date range")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Periods lists the trend periods in display order.
func Periods() []string {
	return []string{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}
}

// Series is chart data: one total per label.
type Series struct {
	Title  string    `json:"-"`
	Labels []string  `json:"labels"`
	Totals []float64 `json:"totals"`
}

// Len is the number of plotted points. Extra labels or totals are ignored.
func (s Series) Len() int {
	return min(len(s.Labels), len(s.Totals))
}

// Empty is true when there is nothing to plot.
func (s Series) Empty() bool {
	return s.Len() == 0
}

// LowStockItem is one line of the low stock list.
type LowStockItem struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

func (i LowStockItem) String() string {
	return fmt.Sprintf("%s — Stock: %d", i.Name, i.Stock)
}

type lowStockResponse struct {
	Items []LowStockItem `json:"items"`
}

// Dashboard is the initial reports screen. Panels that failed to load are
// empty and named in Failed.
type Dashboard struct {
	Trend    Series
	TopItems Series
	LowStock []LowStockItem
	Failed   []string
}

// TrendTitle labels a period trend chart.
func TrendTitle(period string) string {
	return fmt.Sprintf("Sales (%s)", period)
}

// RangeTitle labels a date range trend chart.
func RangeTitle(start, end string) string {
	return fmt.Sprintf("Sales (%s → %s)", start, end)
}

// Top items chart titles. The failure title drops the unit.
const (
	TopItemsTitle       = "Top Items (qty)"
	TopItemsFailedTitle = "Top Items"
)

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidRange, s)
	}
	return day, nil
}
