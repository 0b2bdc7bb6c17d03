package inventory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

// Repository is the backend surface the catalogue needs.
type Repository interface {
	ItemsFragment(ctx context.Context, q Query) (string, error)
	Search(ctx context.Context, q string) ([]SearchResult, error)
}

// HTTPRepository reads the catalogue through the backend endpoints.
type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

// ItemsFragment fetches the `{html}` items partial for a branch and category.
func (r *HTTPRepository) ItemsFragment(ctx context.Context, q Query) (string, error) {
	path := fmt.Sprintf("/inventory/items/partial/%d/%d/", q.BranchID, q.CategoryID)
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("q", q.Search)
	html, err := r.client.Fetch(ctx, path, params)
	if err != nil {
		return "", fmt.Errorf("load items: %w", err)
	}
	return html, nil
}

func (r *HTTPRepository) Search(ctx context.Context, q string) ([]SearchResult, error) {
	var out searchResponse
	if err := r.client.GetJSON(ctx, "/inventory/items/search/", url.Values{"q": {q}}, &out); err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return out.Items, nil
}
