package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/search"
)

type customersMsg struct{ result search.Result[[]customers.Customer] }

// customersChangedMsg asks the list to reload after a save or delete.
type customersChangedMsg struct{}

type customersScreen struct {
	ctx  context.Context
	deps Deps
	dlg  *Dialog
	live *search.Live[[]customers.Customer]

	searching bool
	query     textinput.Model
	list      []customers.Customer
	loadErr   string
	cursor    int
}

func newCustomersScreen(ctx context.Context, deps Deps) *customersScreen {
	s := &customersScreen{ctx: ctx, deps: deps, dlg: NewDialog(deps.Bridge)}
	s.query = textinput.New()
	s.query.Placeholder = "Search customers"
	if deps.Customers != nil {
		s.live = search.NewLive(ctx, search.NewDebouncer(deps.SearchDebounce), deps.Customers.Load,
			func(r search.Result[[]customers.Customer]) {
				deps.Bridge.Send(customersMsg{result: r})
			})
	}
	return s
}

func (s *customersScreen) title() string { return "Customers" }

func (s *customersScreen) init() tea.Cmd {
	if s.live != nil {
		s.live.Now("")
	}
	return nil
}

func (s *customersScreen) close() {
	if s.live != nil {
		s.live.Close()
	}
}

func (s *customersScreen) capturing() bool { return s.searching }

func (s *customersScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case customersMsg:
		if msg.result.Err != nil {
			s.loadErr = customers.MsgListFailed
			s.list = nil
			return nil
		}
		s.loadErr = ""
		s.list = msg.result.Value
		if s.cursor >= len(s.list) {
			s.cursor = max(len(s.list)-1, 0)
		}
	case customersChangedMsg:
		if s.live != nil {
			s.live.Now(s.query.Value())
		}
	case tea.KeyMsg:
		return s.key(msg)
	}
	return nil
}

func (s *customersScreen) key(msg tea.KeyMsg) tea.Cmd {
	if s.searching {
		switch msg.String() {
		case "enter", "esc", "down":
			s.searching = false
			s.query.Blur()
			return nil
		}
		before := s.query.Value()
		var cmd tea.Cmd
		s.query, cmd = s.query.Update(msg)
		if q := s.query.Value(); q != before && s.live != nil {
			s.live.Input(q)
		}
		return cmd
	}
	switch msg.String() {
	case "/":
		s.searching = true
		s.query.Focus()
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.list)-1 {
			s.cursor++
		}
	case "r":
		return func() tea.Msg { return customersChangedMsg{} }
	case "n":
		return s.edit(0)
	case "e", "enter":
		if c, ok := s.selected(); ok {
			return s.edit(c.ID)
		}
	case "d":
		if c, ok := s.selected(); ok {
			return s.remove(c.ID)
		}
	}
	return nil
}

func (s *customersScreen) selected() (customers.Customer, bool) {
	if s.cursor < len(s.list) {
		return s.list[s.cursor], true
	}
	return customers.Customer{}, false
}

// edit walks the form as a chain of prompts. Cancelling any prompt drops
// the whole edit.
func (s *customersScreen) edit(id int64) tea.Cmd {
	h := s.deps.Customers
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		var current customers.Customer
		if id != 0 {
			c, err := h.Edit(s.ctx, id)
			if err != nil {
				return nil
			}
			current = c
		}
		form := customers.CustomerForm{}
		fields := []struct {
			label string
			def   string
			dst   *string
		}{
			{"Name:", current.Name, &form.Name},
			{"Phone:", current.Phone, &form.Phone},
			{"Type (regular, vip, other):", current.Type, &form.Type},
		}
		for _, f := range fields {
			value, ok, err := s.dlg.Prompt(s.ctx, f.label, f.def)
			if err != nil || !ok {
				return nil
			}
			*f.dst = strings.TrimSpace(value)
		}
		if _, err := h.Save(s.ctx, id, form); err != nil {
			return nil
		}
		return customersChangedMsg{}
	}
}

func (s *customersScreen) remove(id int64) tea.Cmd {
	h := s.deps.Customers
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		deleted, err := h.Delete(s.ctx, id)
		if err != nil || !deleted {
			return nil
		}
		return customersChangedMsg{}
	}
}

func (s *customersScreen) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Customers") + "\n")
	b.WriteString(s.query.View() + "\n\n")
	switch {
	case s.loadErr != "":
		b.WriteString(errorStyle.Render(s.loadErr))
	case len(s.list) == 0:
		b.WriteString(mutedStyle.Render("No customers found."))
	default:
		for i, c := range s.list {
			row := fmt.Sprintf("%-24s %-16s %s", c.Name, c.Phone, c.Type)
			b.WriteString(cursorPrefix(i == s.cursor) + row + "\n")
		}
	}
	out := boxStyle.Width(max(width-4, 40)).Render(strings.TrimRight(b.String(), "\n"))
	return out + "\n" + helpStyle.Render("/ search  n new  e edit  d delete  r reload")
}
