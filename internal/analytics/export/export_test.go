package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
)

func TestWriteSeriesCSV(t *testing.T) {
	series := analytics.Series{
		Labels: []string{"2025-01-01", "2025-01-02", "dangling"},
		Totals: []float64{12.5, 40},
	}
	buf := &bytes.Buffer{}
	if err := WriteSeriesCSV(buf, series, "Date", "Total"); err != nil {
		t.Fatalf("series csv error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if records[0][0] != "Date" || records[0][1] != "Total" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][1] != "12.50" || records[2][1] != "40.00" {
		t.Fatalf("unexpected totals %v %v", records[1], records[2])
	}
}

func TestWriteLowStockCSV(t *testing.T) {
	items := []analytics.LowStockItem{{Name: "Tea, green", Stock: 0}, {Name: "Bun", Stock: 3}}
	buf := &bytes.Buffer{}
	if err := WriteLowStockCSV(buf, items); err != nil {
		t.Fatalf("low stock csv error: %v", err)
	}
	want := "Item,Stock\n\"Tea, green\",0\nBun,3\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv %q", buf.String())
	}
}

func TestWriteEmptySeries(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteSeriesCSV(buf, analytics.Series{}, "Item", "Quantity"); err != nil {
		t.Fatalf("series csv error: %v", err)
	}
	if buf.String() != "Item,Quantity\n" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}
