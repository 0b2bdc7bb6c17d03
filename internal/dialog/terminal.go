package dialog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Terminal asks questions on a line-oriented reader/writer pair.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal wraps r and w.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(r), out: w}
}

func (t *Terminal) Alert(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, msg)
	return err
}

// Confirm accepts y or yes in any case; anything else, including EOF, is no.
func (t *Terminal) Confirm(ctx context.Context, msg string) (bool, error) {
	line, err := t.ask(ctx, msg+" [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Prompt returns def on an empty line and reports cancel on EOF, like a
// dismissed browser prompt.
func (t *Terminal) Prompt(ctx context.Context, msg, def string) (string, bool, error) {
	label := msg + ": "
	if def != "" {
		label = fmt.Sprintf("%s [%s]: ", msg, def)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", false, nil
	}
	value := strings.TrimSpace(line)
	if value == "" {
		value = def
	}
	return value, true, nil
}

func (t *Terminal) ask(ctx context.Context, label string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
