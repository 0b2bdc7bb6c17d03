package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Service loads item pages and search results.
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

// Items loads and parses one page of the items fragment. Page defaults to 1
// and the search text is trimmed, as the item search box does.
func (s *Service) Items(ctx context.Context, q Query) (Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Search = strings.TrimSpace(q.Search)
	html, err := s.repo.ItemsFragment(ctx, q)
	if err != nil {
		s.logger.Error("load items", slog.Int("page", q.Page), slog.String("q", q.Search), slog.Any("error", err))
		return Page{}, err
	}
	page, err := ParsePage(html, q.Page)
	if err != nil {
		s.logger.Error("parse items fragment", slog.Any("error", err))
		return Page{}, err
	}
	return page, nil
}

// Search queries the item search endpoint. The backend caps results at 30.
func (s *Service) Search(ctx context.Context, q string) ([]SearchResult, error) {
	results, err := s.repo.Search(ctx, q)
	if err != nil {
		s.logger.Error("search items", slog.String("q", q), slog.Any("error", err))
		return nil, err
	}
	return results, nil
}

// ErrItemNotFound is returned by Lookup when no page holds the item.
var ErrItemNotFound = errors.New("inventory: item not found")

// maxLookupPages bounds Lookup against a backend that never ends paging.
const maxLookupPages = 100

// Lookup walks the item pages of q's branch and category until it finds id.
func (s *Service) Lookup(ctx context.Context, q Query, id int64) (Item, error) {
	q.Page = 1
	for i := 0; i < maxLookupPages; i++ {
		page, err := s.Items(ctx, q)
		if err != nil {
			return Item{}, err
		}
		for _, g := range page.Groups {
			for _, it := range g.Items {
				if it.ID == id {
					return it, nil
				}
			}
		}
		if page.NextPage == 0 {
			break
		}
		q.Page = page.NextPage
	}
	return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
}
