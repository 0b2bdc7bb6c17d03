package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNotRunning is returned by dialogs raised while no program is attached.
var ErrNotRunning = errors.New("tui: program not running")

type modalKind int

const (
	modalAlert modalKind = iota
	modalConfirm
	modalPrompt
)

// modalMsg asks the running program to show a modal and answer on reply.
type modalMsg struct {
	kind  modalKind
	text  string
	def   string
	reply chan modalAnswer
}

type modalAnswer struct {
	ok    bool
	value string
}

// Bridge forwards messages from background goroutines into the running
// program. Messages sent before Attach or after the program ended are dropped.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p == nil {
		b.send = nil
		return
	}
	b.send = p.Send
}

// Send delivers msg and reports whether a program was attached.
func (b *Bridge) Send(msg tea.Msg) bool {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// Dialog shows alerts, confirmations and prompts as modals of the running
// program. Calls block until the cashier answers, so they must come from
// commands, never from Update.
type Dialog struct {
	bridge *Bridge
}

func NewDialog(bridge *Bridge) *Dialog {
	return &Dialog{bridge: bridge}
}

func (d *Dialog) Alert(ctx context.Context, msg string) error {
	_, err := d.ask(ctx, modalMsg{kind: modalAlert, text: msg})
	return err
}

func (d *Dialog) Confirm(ctx context.Context, msg string) (bool, error) {
	a, err := d.ask(ctx, modalMsg{kind: modalConfirm, text: msg})
	return a.ok, err
}

func (d *Dialog) Prompt(ctx context.Context, msg, def string) (string, bool, error) {
	a, err := d.ask(ctx, modalMsg{kind: modalPrompt, text: msg, def: def})
	return a.value, a.ok, err
}

func (d *Dialog) ask(ctx context.Context, m modalMsg) (modalAnswer, error) {
	m.reply = make(chan modalAnswer, 1)
	if !d.bridge.Send(m) {
		return modalAnswer{}, ErrNotRunning
	}
	select {
	case a := <-m.reply:
		return a, nil
	case <-ctx.Done():
		return modalAnswer{}, ctx.Err()
	}
}

// modal is the open modal of the model.
type modal struct {
	msg   modalMsg
	input textinput.Model
}

func newModal(m modalMsg) *modal {
	md := &modal{msg: m}
	if m.kind == modalPrompt {
		md.input = textinput.New()
		md.input.SetValue(m.def)
		md.input.CursorEnd()
		md.input.Focus()
	}
	return md
}

// update handles a key and reports whether the modal closed.
func (md *modal) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	answer := func(a modalAnswer) (bool, tea.Cmd) {
		md.msg.reply <- a
		return true, nil
	}
	switch md.msg.kind {
	case modalAlert:
		switch msg.String() {
		case "enter", "esc", " ":
			return answer(modalAnswer{ok: true})
		}
	case modalConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			return answer(modalAnswer{ok: true})
		case "n", "N", "esc":
			return answer(modalAnswer{})
		}
	case modalPrompt:
		switch msg.String() {
		case "enter":
			return answer(modalAnswer{ok: true, value: md.input.Value()})
		case "esc":
			return answer(modalAnswer{})
		}
		var cmd tea.Cmd
		md.input, cmd = md.input.Update(msg)
		return false, cmd
	}
	return false, nil
}

func (md *modal) view() string {
	body := md.msg.text
	switch md.msg.kind {
	case modalAlert:
		body += "\n\n" + helpStyle.Render("enter: OK")
	case modalConfirm:
		body += "\n\n" + helpStyle.Render("y: yes  n: no")
	case modalPrompt:
		body += "\n\n" + md.input.View() + "\n\n" + helpStyle.Render("enter: OK  esc: cancel")
	}
	return modalStyle.Render(body)
}
