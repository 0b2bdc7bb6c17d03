package categories

import (
	"context"
	"io"
	"log/slog"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
)

// MsgLoadFailed replaces the categories table when loading fails.
const MsgLoadFailed = "Failed to load categories."

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) (Page, error) {
	page, err := s.repo.List(ctx, filters)
	if err != nil {
		s.logger.Error("load categories", slog.Int("page", filters.Page), slog.String("q", filters.Search), slog.Any("error", err))
		return Page{}, err
	}
	return page, nil
}
