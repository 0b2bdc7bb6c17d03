package branches

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

type Repository interface {
	List(ctx context.Context) ([]Branch, error)
	Get(ctx context.Context, id int64) (Branch, error)
	Create(ctx context.Context, form BranchForm) (Branch, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

func (r *HTTPRepository) List(ctx context.Context) ([]Branch, error) {
	var out []Branch
	if err := r.client.GetJSON(ctx, "/api/branches/", nil, &out); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return out, nil
}

func (r *HTTPRepository) Get(ctx context.Context, id int64) (Branch, error) {
	var out Branch
	if err := r.client.GetJSON(ctx, branchPath(id), nil, &out); err != nil {
		return Branch{}, fmt.Errorf("get branch %d: %w", id, notFound(err))
	}
	return out, nil
}

func (r *HTTPRepository) Create(ctx context.Context, form BranchForm) (Branch, error) {
	var out Branch
	if err := r.client.SendJSON(ctx, http.MethodPost, "/api/branches/", form, &out); err != nil {
		return Branch{}, fmt.Errorf("create branch: %w", err)
	}
	return out, nil
}

// Rename sends only the name, as the inline prompt edit does.
func (r *HTTPRepository) Rename(ctx context.Context, id int64, name string) error {
	if err := r.client.SendJSON(ctx, http.MethodPut, branchPath(id), renameForm{Name: name}, nil); err != nil {
		return fmt.Errorf("rename branch %d: %w", id, notFound(err))
	}
	return nil
}

func (r *HTTPRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.SendJSON(ctx, http.MethodDelete, branchPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete branch %d: %w", id, notFound(err))
	}
	return nil
}

func branchPath(id int64) string {
	return fmt.Sprintf("/api/branches/%d/", id)
}

func notFound(err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return errors.Join(shared.ErrNotFound, err)
	}
	return err
}
