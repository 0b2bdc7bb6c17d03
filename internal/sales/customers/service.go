package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidID rejects non-positive customer ids before any request is made.
var ErrInvalidID = errors.New("invalid customer ID")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) List(ctx context.Context, query string) ([]Customer, error) {
	return s.repo.List(ctx, query)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form CustomerForm) (Customer, error) {
	form = normalize(form)
	if err := s.validate.Struct(form); err != nil {
		return Customer{}, fmt.Errorf("customer form: %w", err)
	}
	return s.repo.Create(ctx, form)
}

func (s *Service) Update(ctx context.Context, id int64, form CustomerForm) (Customer, error) {
	if id <= 0 {
		return Customer{}, ErrInvalidID
	}
	form = normalize(form)
	if err := s.validate.Struct(form); err != nil {
		return Customer{}, fmt.Errorf("customer form: %w", err)
	}
	return s.repo.Update(ctx, id, form)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// QuickCreate creates a customer from the POS modal. The typed address is
// kept on the result even when the backend does not echo it, so a delivery
// order can use it without another lookup.
func (s *Service) QuickCreate(ctx context.Context, form QuickCreateForm) (Customer, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Address = strings.TrimSpace(form.Address)
	if form.Type == "" {
		form.Type = TypeRegular
	}
	if err := s.validate.Struct(form); err != nil {
		return Customer{}, fmt.Errorf("customer form: %w", err)
	}
	c, err := s.repo.QuickCreate(ctx, form)
	if err != nil {
		return Customer{}, err
	}
	if c.Address == "" {
		c.Address = form.Address
	}
	return c, nil
}

func (s *Service) Search(ctx context.Context, query string) ([]Customer, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query))
}

func normalize(form CustomerForm) CustomerForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Phone = strings.TrimSpace(form.Phone)
	if form.Type == "" {
		form.Type = TypeRegular
	}
	return form
}
