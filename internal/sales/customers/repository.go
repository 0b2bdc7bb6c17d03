package customers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

// ErrNotFound is returned when the backend has no such customer.
var ErrNotFound = errors.New("customer not found")

// Repository is the backend surface the customer service needs.
type Repository interface {
	List(ctx context.Context, query string) ([]Customer, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, form CustomerForm) (Customer, error)
	Update(ctx context.Context, id int64, form CustomerForm) (Customer, error)
	Delete(ctx context.Context, id int64) error
	QuickCreate(ctx context.Context, form QuickCreateForm) (Customer, error)
	Search(ctx context.Context, query string) ([]Customer, error)
}

// HTTPRepository reads and writes customers through the REST endpoints.
type HTTPRepository struct {
	client *apiclient.Client
}

// NewHTTPRepository binds the repository to a client.
func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

func (r *HTTPRepository) List(ctx context.Context, query string) ([]Customer, error) {
	var q url.Values
	if query = strings.TrimSpace(query); query != "" {
		q = url.Values{"q": {query}}
	}
	var out []Customer
	if err := r.client.GetJSON(ctx, "/api/customers/", q, &out); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

func (r *HTTPRepository) Get(ctx context.Context, id int64) (Customer, error) {
	var out Customer
	if err := r.client.GetJSON(ctx, customerPath(id), nil, &out); err != nil {
		return Customer{}, fmt.Errorf("get customer %d: %w", id, notFound(err))
	}
	return out, nil
}

func (r *HTTPRepository) Create(ctx context.Context, form CustomerForm) (Customer, error) {
	var out Customer
	if err := r.client.SendJSON(ctx, http.MethodPost, "/api/customers/", form, &out); err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return out, nil
}

func (r *HTTPRepository) Update(ctx context.Context, id int64, form CustomerForm) (Customer, error) {
	var out Customer
	if err := r.client.SendJSON(ctx, http.MethodPut, customerPath(id), form, &out); err != nil {
		return Customer{}, fmt.Errorf("update customer %d: %w", id, notFound(err))
	}
	return out, nil
}

func (r *HTTPRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.SendJSON(ctx, http.MethodDelete, customerPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete customer %d: %w", id, notFound(err))
	}
	return nil
}

// QuickCreate posts the POS modal form to /customers/new/.
func (r *HTTPRepository) QuickCreate(ctx context.Context, form QuickCreateForm) (Customer, error) {
	values := url.Values{}
	values.Set("name", form.Name)
	values.Set("phone", form.Phone)
	values.Set("type", form.Type)
	values.Set("address", form.Address)
	var out Customer
	if err := r.client.PostForm(ctx, "/customers/new/", values, &out); err != nil {
		return Customer{}, fmt.Errorf("quick create customer: %w", err)
	}
	return out, nil
}

func (r *HTTPRepository) Search(ctx context.Context, query string) ([]Customer, error) {
	var out searchResponse
	if err := r.client.GetJSON(ctx, "/customers/search/", url.Values{"q": {query}}, &out); err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return out.Customers, nil
}

func customerPath(id int64) string {
	return fmt.Sprintf("/api/customers/%d/", id)
}

func notFound(err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
