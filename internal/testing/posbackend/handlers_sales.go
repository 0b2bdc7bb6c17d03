package posbackend

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

var saleDetailPage = template.Must(template.New("sale").Parse(
	`<!doctype html><html><body><h1>Sale #{{.ID}}</h1><table>` +
		`{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price.StringFixed 2}}</td></tr>{{end}}` +
		`</table><p>Final total: {{.FinalTotal.StringFixed 2}}</p></body></html>`))

// handleCheckout follows the sales view: validate, reserve stock, compute
// totals at cent precision and check the mixed split against them.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OrderType == "" {
		req.OrderType = "dine_in"
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}
	if len(req.Items) == 0 {
		httpx.Error(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.CustomerID != nil {
		if _, ok := s.customers[*req.CustomerID]; !ok {
			httpx.Error(w, http.StatusBadRequest, "Invalid customer")
			return
		}
	}
	if req.OrderType == "dine_in" && strings.TrimSpace(req.TableNumber) == "" {
		httpx.Error(w, http.StatusBadRequest, "Please enter a table number for dine-in orders")
		return
	}

	total := decimal.Zero
	lines := make([]SaleLine, 0, len(req.Items))
	reserved := make(map[int64]int)
	var branchID int64
	for _, in := range req.Items {
		it, ok := s.items[in.ID]
		if !ok {
			httpx.Error(w, http.StatusBadRequest, fmt.Sprintf("Item not found: %d", in.ID))
			return
		}
		if it.Stock-reserved[it.ID] < in.Quantity {
			httpx.Error(w, http.StatusBadRequest, "Insufficient stock for item: "+it.Name)
			return
		}
		reserved[it.ID] += in.Quantity
		price := decimal.NewFromFloat(it.Price).Round(2)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(in.Quantity))))
		lines = append(lines, SaleLine{ItemID: it.ID, Name: it.Name, Quantity: in.Quantity, Price: price})
		branchID = it.BranchID
	}

	discount := decimal.NewFromFloat(req.Discount)
	discountAmount := total.Mul(discount).Div(decimal.NewFromInt(100)).Round(2)
	final := total.Sub(discountAmount).Round(2)
	if req.PaymentMethod == "mixed" {
		paid := decimal.NewFromFloat(req.CashAmount).Add(decimal.NewFromFloat(req.CardAmount))
		if !paid.Equal(final) {
			httpx.Error(w, http.StatusBadRequest, "Cash + Card amount must equal final total")
			return
		}
	}

	for id, qty := range reserved {
		it := s.items[id]
		it.Stock -= qty
		s.items[id] = it
	}
	sale := Sale{
		ID:             s.id(),
		At:             s.opts.Now(),
		BranchID:       branchID,
		Request:        req,
		Lines:          lines,
		Total:          total.Round(2),
		DiscountAmount: discountAmount,
		FinalTotal:     final,
	}
	s.sales = append(s.sales, sale)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"sale_id":          sale.ID,
		"total":            sale.Total.StringFixed(2),
		"final_total":      sale.FinalTotal.StringFixed(2),
		"discount_percent": discount.String(),
		"discount_amount":  sale.DiscountAmount.StringFixed(2),
		"redirect_url":     fmt.Sprintf("/sales/%d/", sale.ID),
	})
}

func (s *Server) handleCustomerAddress(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	s.mu.Lock()
	c := s.customers[id]
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, map[string]string{"address": c.Address})
}

func (s *Server) sale(id int64) (Sale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sale := range s.sales {
		if sale.ID == id {
			return sale, true
		}
	}
	return Sale{}, false
}

func (s *Server) handleSaleDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	sale, ok := s.sale(id)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = saleDetailPage.Execute(w, sale)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	sale, ok := s.sale(id)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%d.pdf"`, sale.ID))
	_, _ = w.Write(minimalPDF(fmt.Sprintf("Receipt #%d total %s", sale.ID, sale.FinalTotal.StringFixed(2))))
}

// minimalPDF is enough of a PDF for a download to be recognisable.
func minimalPDF(text string) []byte {
	return []byte("%PDF-1.4\n% " + text + "\n%%EOF\n")
}
