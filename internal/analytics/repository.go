package analytics

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

// Repository is the backend surface of the reports screen.
type Repository interface {
	Trends(ctx context.Context, period string) (Series, error)
	TrendsRange(ctx context.Context, start, end string) (Series, error)
	TopItems(ctx context.Context) (Series, error)
	LowStock(ctx context.Context, threshold int) ([]LowStockItem, error)
	Export(ctx context.Context, format, start, end string, w io.Writer) (string, error)
}

// HTTPRepository calls the report endpoints, adding branch_id when a branch
// is configured.
type HTTPRepository struct {
	client   *apiclient.Client
	branchID int64
}

// NewHTTPRepository binds the repository to client. A zero branchID leaves
// branch selection to the backend.
func NewHTTPRepository(client *apiclient.Client, branchID int64) *HTTPRepository {
	return &HTTPRepository{client: client, branchID: branchID}
}

func (r *HTTPRepository) params(kv ...string) url.Values {
	q := url.Values{}
	if r.branchID > 0 {
		q.Set("branch_id", strconv.FormatInt(r.branchID, 10))
	}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return q
}

func (r *HTTPRepository) Trends(ctx context.Context, period string) (Series, error) {
	var out Series
	path := "/reports/sales_trends/" + url.PathEscape(period) + "/"
	if err := r.client.GetJSON(ctx, path, r.params(), &out); err != nil {
		return Series{}, fmt.Errorf("sales trends %s: %w", period, err)
	}
	return out, nil
}

func (r *HTTPRepository) TrendsRange(ctx context.Context, start, end string) (Series, error) {
	var out Series
	if err := r.client.GetJSON(ctx, "/reports/sales_trends_range/", r.params("start", start, "end", end), &out); err != nil {
		return Series{}, fmt.Errorf("sales trends %s..%s: %w", start, end, err)
	}
	return out, nil
}

func (r *HTTPRepository) TopItems(ctx context.Context) (Series, error) {
	var out Series
	if err := r.client.GetJSON(ctx, "/reports/top_items/", r.params(), &out); err != nil {
		return Series{}, fmt.Errorf("top items: %w", err)
	}
	return out, nil
}

func (r *HTTPRepository) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	var out lowStockResponse
	q := r.params("threshold", strconv.Itoa(threshold))
	if err := r.client.GetJSON(ctx, "/reports/low_stock/", q, &out); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return out.Items, nil
}

// Export streams the sales export into w and returns its content type.
// start and end are sent only as a pair.
func (r *HTTPRepository) Export(ctx context.Context, format, start, end string, w io.Writer) (string, error) {
	q := r.params()
	if start != "" && end != "" {
		q.Set("start", start)
		q.Set("end", end)
	}
	contentType, err := r.client.Download(ctx, "/reports/export/"+format+"/", q, w)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", format, err)
	}
	return contentType, nil
}
