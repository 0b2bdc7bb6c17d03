package categories_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
	"github.com/odyssey-erp/odyssey-pos/internal/testing/posbackend"
)

func TestParsePage(t *testing.T) {
	page, err := categories.ParsePage(`<table>
<tr><th>Name</th><th>Branch</th></tr>
<tr><td class="name"> Drinks </td><td class="branch">Main</td></tr>
<tr><td class="name">Snacks</td><td class="branch"></td></tr>
</table><a class="ajax-page" href="?page=3&q=dr">Next</a>`)
	require.NoError(t, err)
	require.Equal(t, []categories.Category{{Name: "Drinks", Branch: "Main"}, {Name: "Snacks"}}, page.Categories)
	require.Equal(t, 3, page.NextPage)
}

func TestListPagesAndSearches(t *testing.T) {
	srv, ts := posbackend.Start(t, posbackend.Options{})
	branch := srv.AddBranch("Main", "")
	for _, name := range []string{"Drinks", "Desserts", "Snacks", "Soups", "Rice", "Noodles", "Sides", "Sauces", "Salads", "Breads", "Coffee"} {
		srv.AddCategory(name, branch.ID)
	}
	client, err := apiclient.New(apiclient.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	svc := categories.NewService(categories.NewHTTPRepository(client), nil)

	first, err := svc.List(context.Background(), shared.ListFilters{})
	require.NoError(t, err)
	require.Len(t, first.Categories, 10)
	require.Equal(t, 2, first.NextPage)
	require.Equal(t, "Main", first.Categories[0].Branch)

	second, err := svc.List(context.Background(), shared.ListFilters{Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Categories, 1)
	require.Zero(t, second.NextPage)

	found, err := svc.List(context.Background(), shared.ListFilters{Search: " sa"})
	require.NoError(t, err)
	require.Len(t, found.Categories, 2)
}

func TestListFailure(t *testing.T) {
	srv, ts := posbackend.Start(t, posbackend.Options{})
	srv.Fail(http.MethodGet, "/inventory/categories/", http.StatusBadGateway, "bad gateway")
	client, err := apiclient.New(apiclient.Options{BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = categories.NewService(categories.NewHTTPRepository(client), nil).List(context.Background(), shared.ListFilters{})
	require.ErrorIs(t, err, apiclient.ErrStatus)
}
