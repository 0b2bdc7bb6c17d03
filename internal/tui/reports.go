package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
	"github.com/odyssey-erp/odyssey-pos/internal/analytics/charts"
)

type dashboardMsg struct{ dashboard analytics.Dashboard }

type trendMsg struct{ series analytics.Series }

type reportsScreen struct {
	ctx    context.Context
	deps   Deps
	dlg    *Dialog
	period string

	trend    analytics.Series
	topItems analytics.Series
	lowStock []analytics.LowStockItem
	loading  bool
}

func newReportsScreen(ctx context.Context, deps Deps) *reportsScreen {
	return &reportsScreen{ctx: ctx, deps: deps, dlg: NewDialog(deps.Bridge), period: analytics.PeriodDaily}
}

func (s *reportsScreen) title() string   { return "Reports" }
func (s *reportsScreen) capturing() bool { return false }
func (s *reportsScreen) close()          {}

func (s *reportsScreen) init() tea.Cmd { return s.loadDashboard() }

func (s *reportsScreen) threshold() int {
	if s.deps.LowStock > 0 {
		return s.deps.LowStock
	}
	return analytics.DefaultLowStockThreshold
}

func (s *reportsScreen) loadDashboard() tea.Cmd {
	svc := s.deps.Reports
	if svc == nil {
		return nil
	}
	s.loading = true
	threshold := s.threshold()
	return func() tea.Msg {
		return dashboardMsg{dashboard: svc.Dashboard(s.ctx, threshold)}
	}
}

func (s *reportsScreen) loadPeriod(period string) tea.Cmd {
	svc := s.deps.Reports
	if svc == nil {
		return nil
	}
	s.period = period
	return func() tea.Msg {
		series, _ := svc.SalesTrends(s.ctx, period)
		return trendMsg{series: series}
	}
}

// loadRange asks for both dates. An incomplete or malformed range is
// refused with one alert and no request.
func (s *reportsScreen) loadRange() tea.Cmd {
	svc := s.deps.Reports
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		start, ok, err := s.dlg.Prompt(s.ctx, "Start date (YYYY-MM-DD):", "")
		if err != nil || !ok {
			return nil
		}
		end, ok, err := s.dlg.Prompt(s.ctx, "End date (YYYY-MM-DD):", "")
		if err != nil || !ok {
			return nil
		}
		start, end = strings.TrimSpace(start), strings.TrimSpace(end)
		series, err := svc.SalesTrendsRange(s.ctx, start, end)
		if errors.Is(err, analytics.ErrInvalidRange) {
			_ = s.dlg.Alert(s.ctx, analytics.MsgSelectRange)
			return nil
		}
		return trendMsg{series: series}
	}
}

func (s *reportsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardMsg:
		s.loading = false
		s.trend = msg.dashboard.Trend
		s.topItems = msg.dashboard.TopItems
		s.lowStock = msg.dashboard.LowStock
	case trendMsg:
		s.trend = msg.series
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "1", "2", "3", "4":
			return s.loadPeriod(analytics.Periods()[key[0]-'1'])
		case "g":
			return s.loadRange()
		case "r":
			return s.loadDashboard()
		}
	}
	return nil
}

// view draws into a fresh registry each time so the output depends only on
// the screen state.
func (s *reportsScreen) view(width int) string {
	if s.loading {
		return mutedStyle.Render("Loading reports...")
	}
	barWidth := max(min(width-40, 50), 10)
	reg := charts.NewRegistry(charts.Text{Width: barWidth})
	defer reg.Close()

	var b strings.Builder
	if _, err := reg.Draw(&b, charts.CanvasSales, s.trend); err != nil {
		b.WriteString(errorStyle.Render(err.Error()) + "\n")
	}
	b.WriteString("\n")
	if _, err := reg.Draw(&b, charts.CanvasTopItems, s.topItems); err != nil {
		b.WriteString(errorStyle.Render(err.Error()) + "\n")
	}
	b.WriteString("\n" + titleStyle.Render("Low stock") + "\n")
	if len(s.lowStock) == 0 {
		b.WriteString(mutedStyle.Render("  No low stock items.") + "\n")
	}
	for _, item := range s.lowStock {
		b.WriteString("  " + item.String() + "\n")
	}
	out := boxStyle.Width(max(width-4, 40)).Render(strings.TrimRight(b.String(), "\n"))
	return out + "\n" + helpStyle.Render("1 daily  2 weekly  3 monthly  4 yearly  g date range  r reload")
}
