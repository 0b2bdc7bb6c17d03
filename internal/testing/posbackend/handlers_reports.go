package posbackend

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

var knownPeriods = map[string]bool{"daily": true, "weekly": true, "monthly": true, "yearly": true}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")
	s.mu.Lock()
	trend := s.trends[period]
	s.mu.Unlock()
	if !knownPeriods[period] {
		trend = Trend{}
	}
	httpx.JSON(w, http.StatusOK, normalizeTrend(trend))
}

// handleTrendsRange filters the daily series to [start, end]. Missing or
// malformed dates answer an empty series, as the report view does.
func (s *Server) handleTrendsRange(w http.ResponseWriter, r *http.Request) {
	start, err1 := time.Parse(time.DateOnly, r.URL.Query().Get("start"))
	end, err2 := time.Parse(time.DateOnly, r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil {
		httpx.JSON(w, http.StatusOK, normalizeTrend(Trend{}))
		return
	}
	s.mu.Lock()
	daily := s.trends["daily"]
	s.mu.Unlock()
	var out Trend
	for i, label := range daily.Labels {
		day, err := time.Parse(time.DateOnly, label)
		if err != nil || day.Before(start) || day.After(end) || i >= len(daily.Totals) {
			continue
		}
		out.Labels = append(out.Labels, label)
		out.Totals = append(out.Totals, daily.Totals[i])
	}
	httpx.JSON(w, http.StatusOK, normalizeTrend(out))
}

// handleTopItems ranks items by quantity sold, ten at most.
func (s *Server) handleTopItems(w http.ResponseWriter, r *http.Request) {
	branchID, hasBranch := branchParam(r)
	s.mu.Lock()
	qty := make(map[string]int)
	for _, sale := range s.sales {
		if hasBranch && sale.BranchID != branchID {
			continue
		}
		for _, line := range sale.Lines {
			qty[line.Name] += line.Quantity
		}
	}
	s.mu.Unlock()

	names := make([]string, 0, len(qty))
	for name := range qty {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if qty[names[i]] != qty[names[j]] {
			return qty[names[i]] > qty[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 10 {
		names = names[:10]
	}
	out := Trend{Labels: names, Totals: make([]float64, len(names))}
	for i, name := range names {
		out.Totals[i] = float64(qty[name])
	}
	httpx.JSON(w, http.StatusOK, normalizeTrend(out))
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.Atoi(r.URL.Query().Get("threshold"))
	if err != nil {
		threshold = 10
	}
	branchID, hasBranch := branchParam(r)
	type row struct {
		Name  string `json:"name"`
		Stock int    `json:"stock"`
	}
	out := []row{}
	s.mu.Lock()
	items := s.sortedItems()
	s.mu.Unlock()
	sort.SliceStable(items, func(i, j int) bool { return items[i].Stock < items[j].Stock })
	for _, it := range items {
		if hasBranch && it.BranchID != branchID {
			continue
		}
		if it.Stock <= threshold {
			out = append(out, row{Name: it.Name, Stock: it.Stock})
		}
		if len(out) == 50 {
			break
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "csv" && format != "pdf" {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	sales := s.exportRows(r)
	if format == "pdf" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="sales_report.pdf"`)
		_, _ = w.Write(minimalPDF(fmt.Sprintf("Sales report: %d sales", len(sales))))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sales_report.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"ID", "Date", "Customer", "Total Before Discount", "Discount", "Final Total", "Payment Method"})
	for _, sale := range sales {
		customer := "Walk-in"
		if sale.Request.CustomerID != nil {
			s.mu.Lock()
			customer = s.customers[*sale.Request.CustomerID].Name
			s.mu.Unlock()
		}
		_ = cw.Write([]string{
			strconv.FormatInt(sale.ID, 10),
			sale.At.Format("2006-01-02 15:04"),
			customer,
			sale.Total.StringFixed(2),
			sale.DiscountAmount.StringFixed(2),
			sale.FinalTotal.StringFixed(2),
			sale.Request.PaymentMethod,
		})
	}
	cw.Flush()
}

func (s *Server) exportRows(r *http.Request) []Sale {
	branchID, hasBranch := branchParam(r)
	start, err1 := time.Parse(time.DateOnly, r.URL.Query().Get("start"))
	end, err2 := time.Parse(time.DateOnly, r.URL.Query().Get("end"))
	ranged := err1 == nil && err2 == nil
	var out []Sale
	for _, sale := range s.Sales() {
		if hasBranch && sale.BranchID != branchID {
			continue
		}
		day := sale.At.Truncate(24 * time.Hour)
		if ranged && (day.Before(start) || day.After(end)) {
			continue
		}
		out = append(out, sale)
	}
	// Newest first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out
}

func branchParam(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("branch_id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func normalizeTrend(t Trend) Trend {
	if t.Labels == nil {
		t.Labels = []string{}
	}
	if t.Totals == nil {
		t.Totals = []float64{}
	}
	return t
}
