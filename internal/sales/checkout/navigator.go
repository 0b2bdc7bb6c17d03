package checkout

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Navigator moves the register to another view after a sale.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Navigate(ctx context.Context, path string) error { return f(ctx, path) }

// PrintNavigator writes the absolute URL of the target view, for one-shot
// commands that have nowhere else to go.
type PrintNavigator struct {
	W       io.Writer
	Resolve func(path string) string
}

func (p PrintNavigator) Navigate(_ context.Context, path string) error {
	target := path
	if p.Resolve != nil {
		target = p.Resolve(path)
	}
	_, err := fmt.Fprintf(p.W, "Sale detail: %s\n", target)
	return err
}

// RecordingNavigator remembers every navigation.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (r *RecordingNavigator) Navigate(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

// Last returns the most recent target, or "".
func (r *RecordingNavigator) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}
