package analytics

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Service loads reports. Chart loads never leave the caller without data:
// on failure they return an empty series with the proper title next to the
// error, and the dashboard shows an empty chart.
type Service struct {
	repo     Repository
	cache    *Cache
	branchID int64
	logger   *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBranch scopes cache keys to the branch the repository reports on.
func WithBranch(branchID int64) Option {
	return func(s *Service) { s.branchID = branchID }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SalesTrends loads the trend for period.
func (s *Service) SalesTrends(ctx context.Context, period string) (Series, error) {
	title := TrendTitle(period)
	series, err := fetch(ctx, s.cache, []string{"trend", branchToken(s.branchID), period}, func(ctx context.Context) (Series, error) {
		return s.repo.Trends(ctx, period)
	})
	if err != nil {
		s.logger.Error("load trends", slog.String("period", period), slog.Any("error", err))
		return Series{Title: title}, err
	}
	series.Title = title
	return series, nil
}

// SalesTrendsRange loads daily totals between start and end, both
// YYYY-MM-DD. Malformed dates are rejected before any request.
func (s *Service) SalesTrendsRange(ctx context.Context, start, end string) (Series, error) {
	if err := ValidateRange(start, end); err != nil {
		return Series{}, err
	}
	title := RangeTitle(start, end)
	series, err := fetch(ctx, s.cache, []string{"range", branchToken(s.branchID), start, end}, func(ctx context.Context) (Series, error) {
		return s.repo.TrendsRange(ctx, start, end)
	})
	if err != nil {
		s.logger.Error("load trends range", slog.String("start", start), slog.String("end", end), slog.Any("error", err))
		return Series{Title: title}, err
	}
	series.Title = title
	return series, nil
}

// TopItems loads the ten best sellers by quantity.
func (s *Service) TopItems(ctx context.Context) (Series, error) {
	series, err := fetch(ctx, s.cache, []string{"top", branchToken(s.branchID)}, s.repo.TopItems)
	if err != nil {
		s.logger.Error("load top items", slog.Any("error", err))
		return Series{Title: TopItemsFailedTitle}, err
	}
	series.Title = TopItemsTitle
	return series, nil
}

// LowStock lists items at or below threshold, lowest stock first.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	key := []string{"low", branchToken(s.branchID), strconv.Itoa(threshold)}
	items, err := fetch(ctx, s.cache, key, func(ctx context.Context) ([]LowStockItem, error) {
		return s.repo.LowStock(ctx, threshold)
	})
	if err != nil {
		s.logger.Error("load low stock", slog.Int("threshold", threshold), slog.Any("error", err))
		return nil, err
	}
	return items, nil
}

// Export downloads the sales export. start and end are optional but must be
// given together.
func (s *Service) Export(ctx context.Context, format, start, end string, w io.Writer) (string, error) {
	if format != FormatCSV && format != FormatPDF {
		return "", ErrUnknownFormat
	}
	if start != "" || end != "" {
		if err := ValidateRange(start, end); err != nil {
			return "", err
		}
	}
	contentType, err := s.repo.Export(ctx, format, start, end, w)
	if err != nil {
		s.logger.Error("export sales", slog.String("format", format), slog.Any("error", err))
		return "", err
	}
	return contentType, nil
}

// Dashboard loads the daily trend, top items and low stock in parallel.
// A failed panel stays empty; the others are unaffected.
func (s *Service) Dashboard(ctx context.Context, threshold int) Dashboard {
	var (
		d  Dashboard
		mu sync.Mutex
		g  errgroup.Group
	)
	failed := func(panel string) {
		mu.Lock()
		d.Failed = append(d.Failed, panel)
		mu.Unlock()
	}
	g.Go(func() error {
		trend, err := s.SalesTrends(ctx, PeriodDaily)
		if err != nil {
			failed("trend")
		}
		d.Trend = trend
		return nil
	})
	g.Go(func() error {
		top, err := s.TopItems(ctx)
		if err != nil {
			failed("top_items")
		}
		d.TopItems = top
		return nil
	})
	g.Go(func() error {
		low, err := s.LowStock(ctx, threshold)
		if err != nil {
			failed("low_stock")
		}
		d.LowStock = low
		return nil
	})
	_ = g.Wait()
	sort.Strings(d.Failed)
	return d
}

// ValidateRange checks that start and end are both YYYY-MM-DD dates.
func ValidateRange(start, end string) error {
	if start == "" || end == "" {
		return ErrInvalidRange
	}
	if _, err := ParseDay(start); err != nil {
		return err
	}
	_, err := ParseDay(end)
	return err
}
