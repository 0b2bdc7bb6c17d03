package inventory

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
	"github.com/odyssey-erp/odyssey-pos/internal/testing/posbackend"
)

const sampleFragment = `
<h5 class="category-title">Drinks</h5>
<div class="category-items">
  <div class="item-card" data-id="1" data-name="Teh Manis" data-price="8.50" data-stock="12" data-category="Drinks" data-supplier="Sosro">
    <button class="add-to-cart" data-id="1">Add</button>
  </div>
  <div class="item-card" data-id="2" data-name="Kopi" data-price="12.00" data-stock="0" data-category="Drinks" data-supplier="">
    <button class="add-to-cart" data-id="2">Add</button>
  </div>
</div>
<h5 class="category-title">Snacks</h5>
<div class="category-items">
  <div class="item-card" data-id="3" data-name="Keripik" data-price="5.00" data-stock="40" data-category="Snacks" data-supplier="Qtela"></div>
</div>
<nav><button class="paginate-btn" data-page="2">Next</button></nav>`

func TestParsePage(t *testing.T) {
	page, err := ParsePage(sampleFragment, 1)
	require.NoError(t, err)
	require.Equal(t, 2, page.NextPage)
	require.Len(t, page.Groups, 2)
	require.Equal(t, "Drinks", page.Groups[0].Category)
	require.Equal(t, 3, page.Len())

	tea := page.Groups[0].Items[0]
	require.Equal(t, int64(1), tea.ID)
	require.Equal(t, "Teh Manis", tea.Name)
	require.Equal(t, 8.5, tea.Price)
	require.Equal(t, "8.50", tea.PriceText)
	require.Equal(t, 12, tea.Stock)
	require.Equal(t, "Sosro", tea.Supplier)
}

func TestParsePageEmptyAndLastPage(t *testing.T) {
	page, err := ParsePage(`<p>No items found.</p>`, 1)
	require.NoError(t, err)
	require.Zero(t, page.Len())
	require.Zero(t, page.NextPage)
}

func TestParsePageIgnoresPreviousButton(t *testing.T) {
	const middle = `<div class="category-items"><div class="item-card" data-id="5" data-name="Bun"></div></div>
<nav><button class="paginate-btn" data-page="1">Previous</button><button class="paginate-btn" data-page="3">Next</button></nav>`
	page, err := ParsePage(middle, 2)
	require.NoError(t, err)
	require.Equal(t, 3, page.NextPage)

	const last = `<div class="category-items"><div class="item-card" data-id="9" data-name="Kopi"></div></div>
<nav><button class="paginate-btn" data-page="2">Previous</button></nav>`
	page, err = ParsePage(last, 3)
	require.NoError(t, err)
	require.Zero(t, page.NextPage)

	_, err = ParsePage(`<nav><button class="paginate-btn" data-page="two">Next</button></nav>`, 1)
	require.Error(t, err)
}

// pagedRepo serves numbered pages with Previous and Next buttons.
type pagedRepo struct {
	pages int
	calls int
}

func (r *pagedRepo) ItemsFragment(_ context.Context, q Query) (string, error) {
	r.calls++
	html := fmt.Sprintf(`<div class="category-items"><div class="item-card" data-id="%d" data-name="Item %d"></div></div><nav>`, q.Page, q.Page)
	if q.Page > 1 {
		html += fmt.Sprintf(`<button class="paginate-btn" data-page="%d">Previous</button>`, q.Page-1)
	}
	if q.Page < r.pages {
		html += fmt.Sprintf(`<button class="paginate-btn" data-page="%d">Next</button>`, q.Page+1)
	}
	return html + "</nav>", nil
}

func (r *pagedRepo) Search(context.Context, string) ([]SearchResult, error) { return nil, nil }

func TestLookupStopsAtLastPage(t *testing.T) {
	repo := &pagedRepo{pages: 3}
	svc := NewService(repo, nil)

	_, err := svc.Lookup(context.Background(), Query{}, 99)
	require.ErrorIs(t, err, ErrItemNotFound)
	require.Equal(t, 3, repo.calls)

	repo.calls = 0
	it, err := svc.Lookup(context.Background(), Query{}, 3)
	require.NoError(t, err)
	require.Equal(t, "Item 3", it.Name)
	require.Equal(t, 3, repo.calls)
}

func TestParsePageRejectsBadCard(t *testing.T) {
	_, err := ParsePage(`<div class="category-items"><div class="item-card" data-id="x"></div></div>`, 1)
	require.Error(t, err)

	_, err = ParsePage(`<h1>Login</h1><form></form>`, 1)
	require.ErrorIs(t, err, ErrNoFragment)
}

func TestFilterItems(t *testing.T) {
	page, err := ParsePage(sampleFragment, 1)
	require.NoError(t, err)

	cases := []struct {
		name  string
		query string
		ids   []int64
	}{
		{name: "empty query keeps all", query: "", ids: []int64{1, 2, 3}},
		{name: "name ignores case", query: "KOPI", ids: []int64{2}},
		{name: "category", query: "snack", ids: []int64{3}},
		{name: "supplier", query: "sosro", ids: []int64{1}},
		{name: "price text", query: "12.00", ids: []int64{2}},
		{name: "stock text", query: "40", ids: []int64{3}},
		{name: "no match", query: "nasi", ids: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ids []int64
			for _, g := range FilterItems(page.Groups, tc.query) {
				require.NotEmpty(t, g.Items, "empty groups are hidden")
				for _, it := range g.Items {
					ids = append(ids, it.ID)
				}
			}
			require.Equal(t, tc.ids, ids)
		})
	}
}

func newService(t *testing.T) (*posbackend.Server, *Service) {
	t.Helper()
	srv, ts := posbackend.Start(t, posbackend.Options{})
	client, err := apiclient.New(apiclient.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	return srv, NewService(NewHTTPRepository(client), nil)
}

func TestItemsFromBackend(t *testing.T) {
	srv, svc := newService(t)
	branch := srv.AddBranch("Main", "")
	drinks := srv.AddCategory("Drinks", branch.ID)
	for i := 0; i < 12; i++ {
		srv.AddItem(posbackend.Item{Name: "Item", Price: 2.5, Stock: i, CategoryID: drinks.ID, BranchID: branch.ID})
	}

	first, err := svc.Items(context.Background(), Query{BranchID: branch.ID})
	require.NoError(t, err)
	require.Equal(t, 10, first.Len())
	require.Equal(t, 2, first.NextPage)
	require.Equal(t, "Drinks", first.Groups[0].Category)
	require.Equal(t, "2.50", first.Groups[0].Items[0].PriceText)

	second, err := svc.Items(context.Background(), Query{BranchID: branch.ID, Page: first.NextPage})
	require.NoError(t, err)
	require.Equal(t, 2, second.Len())
	require.Zero(t, second.NextPage)
}

func TestItemsFailure(t *testing.T) {
	srv, svc := newService(t)
	srv.Fail(http.MethodGet, "/inventory/items/partial/0/0/", http.StatusInternalServerError, "boom")

	_, err := svc.Items(context.Background(), Query{})
	require.ErrorIs(t, err, apiclient.ErrStatus)
}

func TestSearchKeepsNulls(t *testing.T) {
	srv, svc := newService(t)
	branch := srv.AddBranch("Main", "")
	srv.AddItem(posbackend.Item{Name: "Air Mineral", Price: 3, Stock: 9, BranchID: branch.ID})

	results, err := svc.Search(context.Background(), "air")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "3.00", results[0].Price)
	require.Nil(t, results[0].Category)
	require.Nil(t, results[0].Supplier)
	require.NotNil(t, results[0].Branch)
	require.Equal(t, "Main", *results[0].Branch)
}

func TestLookupWalksPages(t *testing.T) {
	srv, svc := newService(t)
	branch := srv.AddBranch("Main", "")
	drinks := srv.AddCategory("Drinks", branch.ID)
	var last posbackend.Item
	for i := 0; i < 12; i++ {
		last = srv.AddItem(posbackend.Item{Name: fmt.Sprintf("Item %02d", i), Price: 2.5, Stock: 4, CategoryID: drinks.ID, BranchID: branch.ID})
	}

	it, err := svc.Lookup(context.Background(), Query{BranchID: branch.ID}, last.ID)
	require.NoError(t, err)
	require.Equal(t, last.Name, it.Name)
	require.Equal(t, 2.5, it.Price)
	require.Equal(t, 2, srv.Calls(http.MethodGet, fmt.Sprintf("/inventory/items/partial/%d/0/", branch.ID)))

	_, err = svc.Lookup(context.Background(), Query{BranchID: branch.ID}, 9999)
	require.ErrorIs(t, err, ErrItemNotFound)
}
