package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/branches"
)

type branchesMsg struct {
	list []branches.Branch
	err  error
}

type branchesScreen struct {
	ctx  context.Context
	deps Deps
	dlg  *Dialog

	list    []branches.Branch
	loadErr string
	cursor  int
}

func newBranchesScreen(ctx context.Context, deps Deps) *branchesScreen {
	return &branchesScreen{ctx: ctx, deps: deps, dlg: NewDialog(deps.Bridge)}
}

func (s *branchesScreen) title() string   { return "Branches" }
func (s *branchesScreen) capturing() bool { return false }
func (s *branchesScreen) close()          {}

func (s *branchesScreen) init() tea.Cmd { return s.load() }

func (s *branchesScreen) load() tea.Cmd {
	h := s.deps.Branches
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := h.Load(s.ctx)
		return branchesMsg{list: list, err: err}
	}
}

func (s *branchesScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case branchesMsg:
		if msg.err != nil {
			s.loadErr = "Failed to load branches."
			return nil
		}
		s.loadErr = ""
		s.list = msg.list
		if s.cursor >= len(s.list) {
			s.cursor = max(len(s.list)-1, 0)
		}
	case tea.KeyMsg:
		return s.key(msg)
	}
	return nil
}

func (s *branchesScreen) key(msg tea.KeyMsg) tea.Cmd {
	h := s.deps.Branches
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.list)-1 {
			s.cursor++
		}
	case "r":
		return s.load()
	case "n":
		if h == nil {
			return nil
		}
		return func() tea.Msg {
			name, ok, err := s.dlg.Prompt(s.ctx, "Branch name:", "")
			if err != nil || !ok {
				return nil
			}
			address, ok, err := s.dlg.Prompt(s.ctx, "Address:", "")
			if err != nil || !ok {
				return nil
			}
			if _, err := h.Create(s.ctx, branches.BranchForm{Name: name, Address: address}); err != nil {
				return nil
			}
			return s.load()()
		}
	case "e", "enter":
		if h == nil || s.cursor >= len(s.list) {
			return nil
		}
		b := s.list[s.cursor]
		return func() tea.Msg {
			if renamed, err := h.Rename(s.ctx, b); err != nil || !renamed {
				return nil
			}
			return s.load()()
		}
	case "d":
		if h == nil || s.cursor >= len(s.list) {
			return nil
		}
		id := s.list[s.cursor].ID
		return func() tea.Msg {
			if deleted, err := h.Delete(s.ctx, id); err != nil || !deleted {
				return nil
			}
			return s.load()()
		}
	}
	return nil
}

func (s *branchesScreen) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Branches") + "\n\n")
	switch {
	case s.loadErr != "":
		b.WriteString(errorStyle.Render(s.loadErr))
	case len(s.list) == 0:
		b.WriteString(mutedStyle.Render("No branches yet."))
	default:
		for i, br := range s.list {
			b.WriteString(cursorPrefix(i == s.cursor) + fmt.Sprintf("%-24s %s", br.Name, br.Address) + "\n")
		}
	}
	out := boxStyle.Width(max(width-4, 40)).Render(strings.TrimRight(b.String(), "\n"))
	return out + "\n" + helpStyle.Render("n new  e rename  d delete  r reload")
}
