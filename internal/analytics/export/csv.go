// Package export writes report data the screen already holds as CSV, next
// to the backend's own sales export.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
)

// WriteSeriesCSV emits a chart series, one label per row. value names the
// second column.
func WriteSeriesCSV(w io.Writer, series analytics.Series, label, value string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{label, value}); err != nil {
		return err
	}
	for i := 0; i < series.Len(); i++ {
		if err := writer.Write([]string{series.Labels[i], formatFloat(series.Totals[i])}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLowStockCSV emits the low stock list.
func WriteLowStockCSV(w io.Writer, items []analytics.LowStockItem) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Item", "Stock"}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{item.Name, strconv.Itoa(item.Stock)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
