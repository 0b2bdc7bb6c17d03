package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/inventory"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/checkout"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/search"
)

type posFocus int

const (
	focusSearch posFocus = iota
	focusItems
	focusCart
	focusForm
)

// Form inputs, in tab order.
const (
	inputDiscount = iota
	inputTable
	inputAddress
	inputCash
	inputCard
	inputCount
)

var (
	orderTypes     = []checkout.OrderType{checkout.OrderTakeaway, checkout.OrderDineIn, checkout.OrderDelivery}
	paymentMethods = []string{checkout.PaymentCash, checkout.PaymentCard, checkout.PaymentMixed}
)

type itemsMsg struct{ result search.Result[inventory.Page] }

type cartMsg struct{ err error }

type formMsg struct{}

type checkoutMsg struct {
	receipt checkout.Receipt
	err     error
}

type posScreen struct {
	ctx  context.Context
	deps Deps
	live *search.Live[inventory.Page]

	focus    posFocus
	search   textinput.Model
	groups   []inventory.Group
	visible  []inventory.Item
	itemsErr string
	cursor   int

	lines      []cart.Line
	cartCursor int

	inputs     []textinput.Model
	inputFocus int
	form       checkout.Form
	totals     cart.Totals
	status     string
	busy       bool
}

func newPOSScreen(ctx context.Context, deps Deps) *posScreen {
	s := &posScreen{ctx: ctx, deps: deps}
	s.search = textinput.New()
	s.search.Placeholder = "Search items"
	s.search.Focus()

	placeholders := []string{"Discount %", "Table number", "Delivery address", "Cash", "Card"}
	s.inputs = make([]textinput.Model, inputCount)
	for i := range s.inputs {
		s.inputs[i] = textinput.New()
		s.inputs[i].Placeholder = placeholders[i]
		s.inputs[i].Width = 24
	}
	if deps.Inventory != nil {
		s.live = search.NewLive(ctx, search.NewDebouncer(deps.SearchDebounce), s.fetchItems, func(r search.Result[inventory.Page]) {
			deps.Bridge.Send(itemsMsg{result: r})
		})
	}
	s.sync()
	return s
}

func (s *posScreen) fetchItems(ctx context.Context, q string) (inventory.Page, error) {
	return s.deps.Inventory.Items(ctx, inventory.Query{
		BranchID:   s.deps.BranchID,
		CategoryID: s.deps.CategoryID,
		Page:       1,
		Search:     q,
	})
}

func (s *posScreen) title() string { return "POS" }

func (s *posScreen) init() tea.Cmd {
	if s.live != nil {
		s.live.Now("")
	}
	return nil
}

func (s *posScreen) close() {
	if s.live != nil {
		s.live.Close()
	}
}

func (s *posScreen) capturing() bool {
	return s.focus == focusSearch || s.focus == focusForm
}

// sync copies cart and form state out of the stores.
func (s *posScreen) sync() {
	if s.deps.Cart != nil {
		s.lines = s.deps.Cart.Lines()
		if s.cartCursor >= len(s.lines) {
			s.cartCursor = max(len(s.lines)-1, 0)
		}
	}
	if s.deps.Checkout != nil {
		s.form = s.deps.Checkout.Form()
		s.totals = s.deps.Checkout.Totals()
		s.inputs[inputAddress].SetValue(s.form.DeliveryAddress)
	}
}

func (s *posScreen) refilter() {
	s.visible = s.visible[:0]
	for _, g := range inventory.FilterItems(s.groups, s.search.Value()) {
		s.visible = append(s.visible, g.Items...)
	}
	if s.cursor >= len(s.visible) {
		s.cursor = max(len(s.visible)-1, 0)
	}
}

func (s *posScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case itemsMsg:
		if msg.result.Err != nil {
			s.itemsErr = inventory.MsgItemsFailed
			return nil
		}
		s.itemsErr = ""
		s.groups = msg.result.Value.Groups
		s.refilter()
		return nil
	case cartMsg:
		s.busy = false
		if msg.err != nil {
			s.status = errorStyle.Render(msg.err.Error())
		}
		s.sync()
		return nil
	case formMsg:
		s.busy = false
		s.sync()
		return nil
	case checkoutMsg:
		s.busy = false
		if msg.err == nil {
			s.status = successStyle.Render(fmt.Sprintf("Sale #%d completed", msg.receipt.SaleID))
			for i := range s.inputs {
				s.inputs[i].SetValue("")
			}
		} else {
			s.status = ""
		}
		s.sync()
		return nil
	case tea.KeyMsg:
		return s.key(msg)
	}
	return nil
}

func (s *posScreen) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		s.setFocus((s.focus + 1) % 4)
		return nil
	case "shift+tab":
		s.setFocus((s.focus + 3) % 4)
		return nil
	case "ctrl+s":
		return s.submit()
	case "ctrl+o":
		return s.cycleOrderType()
	case "ctrl+p":
		return s.cyclePayment()
	case "ctrl+u":
		return s.pickCustomer()
	}
	switch s.focus {
	case focusSearch:
		var cmd tea.Cmd
		before := s.search.Value()
		s.search, cmd = s.search.Update(msg)
		if q := s.search.Value(); q != before {
			s.refilter()
			if s.live != nil {
				s.live.Input(q)
			}
		}
		if msg.String() == "down" || msg.String() == "enter" {
			s.setFocus(focusItems)
		}
		return cmd
	case focusItems:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.visible)-1 {
				s.cursor++
			}
		case "enter", "a", " ":
			if s.cursor < len(s.visible) {
				return s.addItem(s.visible[s.cursor])
			}
		case "/":
			s.setFocus(focusSearch)
		}
	case focusCart:
		switch msg.String() {
		case "up", "k":
			if s.cartCursor > 0 {
				s.cartCursor--
			}
		case "down", "j":
			if s.cartCursor < len(s.lines)-1 {
				s.cartCursor++
			}
		case "+", "=":
			return s.changeQty(1)
		case "-":
			return s.changeQty(-1)
		case "x", "delete", "backspace":
			return s.removeLine()
		}
	case focusForm:
		switch msg.String() {
		case "up":
			s.focusInput((s.inputFocus + inputCount - 1) % inputCount)
			return nil
		case "down", "enter":
			s.focusInput((s.inputFocus + 1) % inputCount)
			return nil
		}
		var cmd tea.Cmd
		s.inputs[s.inputFocus], cmd = s.inputs[s.inputFocus].Update(msg)
		s.applyInputs()
		return cmd
	}
	return nil
}

func (s *posScreen) setFocus(f posFocus) {
	s.focus = f
	s.search.Blur()
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
	switch f {
	case focusSearch:
		s.search.Focus()
	case focusForm:
		s.inputs[s.inputFocus].Focus()
	}
}

func (s *posScreen) focusInput(i int) {
	s.inputs[s.inputFocus].Blur()
	s.inputFocus = i
	s.inputs[i].Focus()
}

// applyInputs pushes the typed values into the controller.
func (s *posScreen) applyInputs() {
	ctl := s.deps.Checkout
	if ctl == nil {
		return
	}
	ctl.SetDiscount(s.inputs[inputDiscount].Value())
	ctl.SetTableNumber(s.inputs[inputTable].Value())
	ctl.SetDeliveryAddress(s.inputs[inputAddress].Value())
	ctl.SetTender(s.inputs[inputCash].Value(), s.inputs[inputCard].Value())
	s.form = ctl.Form()
	s.totals = ctl.Totals()
}

func (s *posScreen) addItem(it inventory.Item) tea.Cmd {
	if s.deps.Cart == nil {
		return nil
	}
	s.busy = true
	return func() tea.Msg {
		return cartMsg{err: s.deps.Cart.Add(s.ctx, it.ID, it.Name, it.Price, 1)}
	}
}

func (s *posScreen) changeQty(delta int) tea.Cmd {
	if s.deps.Cart == nil || s.cartCursor >= len(s.lines) {
		return nil
	}
	id := s.lines[s.cartCursor].ID
	s.busy = true
	return func() tea.Msg {
		return cartMsg{err: s.deps.Cart.ChangeQuantity(s.ctx, id, delta)}
	}
}

func (s *posScreen) removeLine() tea.Cmd {
	if s.deps.Cart == nil || s.cartCursor >= len(s.lines) {
		return nil
	}
	id := s.lines[s.cartCursor].ID
	s.busy = true
	return func() tea.Msg {
		return cartMsg{err: s.deps.Cart.Remove(s.ctx, id)}
	}
}

func (s *posScreen) cycleOrderType() tea.Cmd {
	ctl := s.deps.Checkout
	if ctl == nil {
		return nil
	}
	next := orderTypes[(indexOf(orderTypes, s.form.OrderType)+1)%len(orderTypes)]
	s.busy = true
	return func() tea.Msg {
		ctl.SetOrderType(s.ctx, next)
		return formMsg{}
	}
}

func (s *posScreen) cyclePayment() tea.Cmd {
	ctl := s.deps.Checkout
	if ctl == nil {
		return nil
	}
	ctl.SetPaymentMethod(paymentMethods[(indexOf(paymentMethods, s.form.PaymentMethod)+1)%len(paymentMethods)])
	s.sync()
	return nil
}

// pickCustomer prompts for a search and selects the first match.
func (s *posScreen) pickCustomer() tea.Cmd {
	ctl, h := s.deps.Checkout, s.deps.Customers
	if ctl == nil || h == nil {
		return nil
	}
	dlg := NewDialog(s.deps.Bridge)
	return func() tea.Msg {
		q, ok, err := dlg.Prompt(s.ctx, "Customer name or phone (empty clears):", "")
		if err != nil || !ok {
			return formMsg{}
		}
		if strings.TrimSpace(q) == "" {
			ctl.SelectCustomer(s.ctx, nil)
			return formMsg{}
		}
		found, err := h.Load(s.ctx, q)
		if err != nil {
			_ = dlg.Alert(s.ctx, customers.MsgListFailed)
			return formMsg{}
		}
		if len(found) == 0 {
			_ = dlg.Alert(s.ctx, "No customers found.")
			return formMsg{}
		}
		ctl.SelectCustomer(s.ctx, &found[0])
		return formMsg{}
	}
}

func (s *posScreen) submit() tea.Cmd {
	ctl := s.deps.Checkout
	if ctl == nil || s.busy {
		return nil
	}
	s.applyInputs()
	s.busy = true
	s.status = mutedStyle.Render("Processing...")
	return func() tea.Msg {
		receipt, err := ctl.Submit(s.ctx)
		return checkoutMsg{receipt: receipt, err: err}
	}
}

func (s *posScreen) view(width int) string {
	half := max(width/2-4, 30)
	left := s.itemsView(half)
	right := lipgloss.JoinVertical(lipgloss.Left, s.cartView(half), s.formView(half))
	out := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	if s.status != "" {
		out += "\n" + s.status
	}
	out += "\n" + helpStyle.Render("tab focus  enter add  +/- qty  x remove  ctrl+o order type  ctrl+p payment  ctrl+u customer  ctrl+s checkout")
	return out
}

func (s *posScreen) itemsView(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Items") + "\n")
	b.WriteString(s.search.View() + "\n\n")
	switch {
	case s.itemsErr != "":
		b.WriteString(errorStyle.Render(s.itemsErr))
	case len(s.visible) == 0:
		b.WriteString(mutedStyle.Render(inventory.MsgNoItems))
	default:
		for i, it := range s.visible {
			line := fmt.Sprintf("%s  %s  stock %d", ansi.Truncate(it.Name, width-24, "…"), cart.FormatAmount(it.Price), it.Stock)
			b.WriteString(cursorPrefix(s.focus == focusItems && i == s.cursor) + line + "\n")
		}
	}
	return s.box(focusItems, width).Render(strings.TrimRight(b.String(), "\n"))
}

func (s *posScreen) cartView(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cart") + "\n")
	if len(s.lines) == 0 {
		b.WriteString(mutedStyle.Render("Cart is empty."))
	}
	for i, line := range s.lines {
		row := fmt.Sprintf("%s x%d  %s", ansi.Truncate(line.Name, width-20, "…"), line.Quantity, cart.FormatAmount(line.Amount()))
		b.WriteString(cursorPrefix(s.focus == focusCart && i == s.cartCursor) + row + "\n")
	}
	fmt.Fprintf(&b, "\nSubtotal %s  Discount %s  Total %s",
		cart.FormatAmount(s.totals.Subtotal), cart.FormatAmount(s.totals.DiscountAmount), s.totals.Display())
	return s.box(focusCart, width).Render(b.String())
}

func (s *posScreen) formView(width int) string {
	vis := s.form.Visibility()
	var b strings.Builder
	fmt.Fprintf(&b, "%s  order: %s  payment: %s\n", titleStyle.Render("Order"), s.form.OrderType, s.form.PaymentMethod)
	if vis.Customer {
		customer := "none"
		if s.form.Customer != nil {
			customer = s.form.Customer.Label()
		}
		b.WriteString("Customer: " + customer + "\n")
	}
	rows := []struct {
		input int
		show  bool
	}{
		{inputDiscount, true},
		{inputTable, vis.TableNumber},
		{inputAddress, vis.DeliveryAddress},
		{inputCash, vis.MixedTender},
		{inputCard, vis.MixedTender},
	}
	for _, r := range rows {
		if r.show {
			b.WriteString(s.inputs[r.input].View() + "\n")
		}
	}
	return s.box(focusForm, width).Render(strings.TrimRight(b.String(), "\n"))
}

func (s *posScreen) box(f posFocus, width int) lipgloss.Style {
	style := boxStyle
	if s.focus == f || (f == focusItems && s.focus == focusSearch) {
		style = focusBox
	}
	return style.Width(width)
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}
