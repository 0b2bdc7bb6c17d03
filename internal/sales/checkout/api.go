package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

// HTTPBackend is the sales API: checkout, customer address lookup and
// receipt download.
type HTTPBackend struct {
	client *apiclient.Client
}

func NewHTTPBackend(client *apiclient.Client) *HTTPBackend {
	return &HTTPBackend{client: client}
}

func (b *HTTPBackend) Checkout(ctx context.Context, p Payload) (Receipt, error) {
	var r Receipt
	if err := b.client.SendJSON(ctx, http.MethodPost, "/sales/checkout/", p, &r); err != nil {
		return Receipt{}, err
	}
	return r, nil
}

func (b *HTTPBackend) CustomerAddress(ctx context.Context, customerID int64) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	path := fmt.Sprintf("/sales/customers/get_address/%d/", customerID)
	if err := b.client.GetJSON(ctx, path, nil, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

// Receipt streams the PDF receipt of a sale into w.
func (b *HTTPBackend) Receipt(ctx context.Context, saleID int64, w io.Writer) (string, error) {
	return b.client.Download(ctx, fmt.Sprintf("/sales/receipt/%d/", saleID), nil, w)
}
