package branches

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) List(ctx context.Context) ([]Branch, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form BranchForm) (Branch, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Address = strings.TrimSpace(form.Address)
	if form.Name == "" {
		return Branch{}, fmt.Errorf("branch name: %w", shared.ErrRequiredField)
	}
	if err := s.validate.Struct(form); err != nil {
		return Branch{}, fmt.Errorf("branch form: %w", err)
	}
	return s.repo.Create(ctx, form)
}

// Rename sends the name exactly as typed; only an empty name is refused.
func (s *Service) Rename(ctx context.Context, id int64, name string) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if name == "" {
		return fmt.Errorf("branch name: %w", shared.ErrRequiredField)
	}
	return s.repo.Rename(ctx, id, name)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
