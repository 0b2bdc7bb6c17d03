// Package tui is the full screen register: POS, customers, branches and
// reports as tabs of one bubbletea program.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/inventory"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/checkout"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
)

// Deps are the services the screens drive. Handlers must report failures
// through the Dialog built on Bridge.
type Deps struct {
	Bridge    *Bridge
	Cart      *cart.Store
	Checkout  *checkout.Controller
	Inventory *inventory.Service
	Customers *customers.Handler
	Branches  *branches.Handler
	Reports   *analytics.Service
	Logger    *slog.Logger

	BranchID       int64
	CategoryID     int64
	SearchDebounce time.Duration
	LowStock       int
}

type screen interface {
	title() string
	init() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	// capturing is true while a text input owns the keyboard.
	capturing() bool
	view(width int) string
	close()
}

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	screens []screen
	active  int
	modals  []*modal
	width   int
	height  int
	logger  *slog.Logger
}

// New builds the model. ctx bounds every backend call the screens make.
func New(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Bridge == nil {
		deps.Bridge = &Bridge{}
	}
	return &Model{
		ctx: ctx,
		screens: []screen{
			newPOSScreen(ctx, deps),
			newCustomersScreen(ctx, deps),
			newBranchesScreen(ctx, deps),
			newReportsScreen(ctx, deps),
		},
		width:  100,
		logger: logger,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.screens))
	for _, s := range m.screens {
		cmds = append(cmds, s.init())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case modalMsg:
		m.modals = append(m.modals, newModal(msg))
		return m, nil
	case tea.KeyMsg:
		if len(m.modals) > 0 {
			closed, cmd := m.modals[0].update(msg)
			if closed {
				m.modals = m.modals[1:]
			}
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()
		case "q":
			if !m.screens[m.active].capturing() {
				return m, m.quit()
			}
		case "f1", "f2", "f3", "f4":
			m.active = int(msg.String()[1] - '1')
			return m, nil
		case "ctrl+right":
			m.active = (m.active + 1) % len(m.screens)
			return m, nil
		case "ctrl+left":
			m.active = (m.active + len(m.screens) - 1) % len(m.screens)
			return m, nil
		}
		return m, m.screens[m.active].update(msg)
	}
	// Results are routed to every screen; each ignores what is not its own.
	cmds := make([]tea.Cmd, 0, len(m.screens))
	for _, s := range m.screens {
		cmds = append(cmds, s.update(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) quit() tea.Cmd {
	for _, md := range m.modals {
		md.msg.reply <- modalAnswer{}
	}
	m.modals = nil
	for _, s := range m.screens {
		s.close()
	}
	return tea.Quit
}

func (m *Model) View() string {
	tabs := make([]string, len(m.screens))
	for i, s := range m.screens {
		label := fmt.Sprintf("F%d %s", i+1, s.title())
		if i == m.active {
			tabs[i] = activeTab.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	if len(m.modals) > 0 {
		b.WriteString(m.modals[0].view())
	} else {
		b.WriteString(m.screens[m.active].view(m.width))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("F1-F4 switch screen  ctrl+c quit"))
	return b.String()
}

// Run starts the program on the terminal and blocks until it exits.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if deps.Bridge == nil {
		deps.Bridge = &Bridge{}
	}
	model := New(ctx, deps)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)
	deps.Bridge.Attach(p)
	defer deps.Bridge.Attach(nil)
	_, err := p.Run()
	return err
}
