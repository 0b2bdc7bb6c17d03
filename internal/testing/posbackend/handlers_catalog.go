package posbackend

import (
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id >= 0
}

// ---- branches ----

func (s *Server) handleListBranches(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.Branches())
}

func (s *Server) handleGetBranch(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	s.mu.Lock()
	b, ok := s.branches[id]
	s.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (s *Server) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var in Branch
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]any{"error": map[string][]string{"name": {"This field is required."}}})
		return
	}
	httpx.JSON(w, http.StatusCreated, s.AddBranch(in.Name, in.Address))
}

func (s *Server) handleUpdateBranch(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	var in struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
	}
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	s.mu.Lock()
	b, ok := s.branches[id]
	if ok {
		if in.Name != nil {
			b.Name = *in.Name
		}
		if in.Address != nil {
			b.Address = *in.Address
		}
		s.branches[id] = b
	}
	s.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBranch(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	s.mu.Lock()
	_, ok := s.branches[id]
	delete(s.branches, id)
	s.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- customers ----

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	out := []Customer{}
	for _, c := range s.Customers() {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Phone), q) {
			out = append(out, c)
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	s.mu.Lock()
	c, ok := s.customers[id]
	s.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in Customer
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		httpx.Error(w, http.StatusBadRequest, "Name is required")
		return
	}
	httpx.JSON(w, http.StatusCreated, s.AddCustomer(in))
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	var in Customer
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	s.mu.Lock()
	c, ok := s.customers[id]
	if ok {
		c.Name, c.Phone, c.Type = in.Name, in.Phone, in.Type
		s.customers[id] = c
	}
	s.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "id")
	s.mu.Lock()
	_, ok := s.customers[id]
	delete(s.customers, id)
	s.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuickCreateCustomer answers the POS modal, which only works as an
// AJAX call.
func (s *Server) handleQuickCreateCustomer(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		httpx.Error(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid form")
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		httpx.Error(w, http.StatusOK, "Name is required")
		return
	}
	c := s.AddCustomer(Customer{
		Name:    name,
		Phone:   r.PostFormValue("phone"),
		Type:    r.PostFormValue("type"),
		Address: r.PostFormValue("address"),
	})
	httpx.JSON(w, http.StatusOK, c)
}

func (s *Server) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	out := []Customer{}
	for _, c := range s.Customers() {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	httpx.JSON(w, http.StatusOK, map[string][]Customer{"customers": out})
}

// ---- inventory ----

type itemCard struct {
	Item
	Category string
	Price    string
}

type itemGroup struct {
	Category string
	Items    []itemCard
}

var (
	itemsFragment = template.Must(template.New("items").Parse(
		`{{range .Groups}}<h5 class="category-title">{{.Category}}</h5><div class="category-items">` +
			`{{range .Items}}<div class="item-card" data-id="{{.ID}}" data-name="{{.Name}}" data-price="{{.Price}}" data-stock="{{.Stock}}" data-category="{{.Category}}" data-supplier="{{.Supplier}}">` +
			`<span class="item-name">{{.Name}}</span> <span class="item-price">{{.Price}}</span> <button class="add-to-cart" data-id="{{.ID}}">Add</button></div>{{end}}` +
			`</div>{{else}}<p>No items found.</p>{{end}}` +
			`{{if or .Prev .Next}}<nav>{{if .Prev}}<button class="paginate-btn" data-page="{{.Prev}}">Previous</button>{{end}}` +
			`{{if .Next}}<button class="paginate-btn" data-page="{{.Next}}">Next</button>{{end}}</nav>{{end}}`))

	categoriesFragment = template.Must(template.New("categories").Parse(
		`<table class="table"><tr><th>Name</th><th>Branch</th></tr>` +
			`{{range .Rows}}<tr><td class="name">{{.Name}}</td><td class="branch">{{.Branch}}</td></tr>{{else}}<tr><td colspan="2">No categories found.</td></tr>{{end}}` +
			`</table>{{if .Next}}<a class="ajax-page" href="?page={{.Next}}">Next</a>{{end}}`))
)

func (s *Server) handleItemsPartial(w http.ResponseWriter, r *http.Request) {
	branchID, _ := idParam(r, "branch")
	categoryID, _ := idParam(r, "category")
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	s.mu.Lock()
	var cards []itemCard
	for _, it := range s.sortedItems() {
		if branchID != 0 && it.BranchID != branchID {
			continue
		}
		if categoryID != 0 && it.CategoryID != categoryID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		cards = append(cards, s.card(it))
	}
	s.mu.Unlock()
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Category < cards[j].Category })

	page := pageParam(r)
	visible, next := paginate(cards, page)
	var groups []itemGroup
	for _, c := range visible {
		if n := len(groups); n > 0 && groups[n-1].Category == c.Category {
			groups[n-1].Items = append(groups[n-1].Items, c)
			continue
		}
		groups = append(groups, itemGroup{Category: c.Category, Items: []itemCard{c}})
	}
	var b strings.Builder
	if err := itemsFragment.Execute(&b, struct {
		Groups []itemGroup
		Prev   int
		Next   int
	}{groups, page - 1, next}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Fragment(w, b.String())
}

func (s *Server) card(it Item) itemCard {
	return itemCard{
		Item:     it,
		Category: s.categories[it.CategoryID].Name,
		Price:    decimal.NewFromFloat(it.Price).StringFixed(2),
	}
}

func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	type result struct {
		ID       int64   `json:"id"`
		Name     string  `json:"name"`
		Price    string  `json:"price"`
		Stock    int     `json:"stock"`
		Category *string `json:"category"`
		Branch   *string `json:"branch"`
		Supplier *string `json:"supplier"`
	}
	out := []result{}
	s.mu.Lock()
	for _, it := range s.sortedItems() {
		if !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		res := result{ID: it.ID, Name: it.Name, Price: s.card(it).Price, Stock: it.Stock}
		if c, ok := s.categories[it.CategoryID]; ok {
			res.Category = &c.Name
		}
		if b, ok := s.branches[it.BranchID]; ok {
			res.Branch = &b.Name
		}
		if it.Supplier != "" {
			supplier := it.Supplier
			res.Supplier = &supplier
		}
		out = append(out, res)
		if len(out) == 30 {
			break
		}
	}
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	type row struct{ Name, Branch string }
	var rows []row
	s.mu.Lock()
	for _, c := range s.sortedCategories() {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		rows = append(rows, row{Name: c.Name, Branch: s.branches[c.BranchID].Name})
	}
	s.mu.Unlock()

	visible, next := paginate(rows, pageParam(r))
	var b strings.Builder
	if err := categoriesFragment.Execute(&b, struct {
		Rows []row
		Next int
	}{visible, next}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Fragment(w, b.String())
}
