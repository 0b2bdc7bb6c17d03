// Package cart holds the till's shopping cart and persists it as a single
// JSON array under the "cart" key of the local store.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/localstore"
)

// StorageKey is the local store key the cart lives under.
const StorageKey = "cart"

var (
	// ErrInvalidLine rejects lines that break the cart invariants.
	ErrInvalidLine = errors.New("cart: invalid line")
)

// Line is one product in the cart.
type Line struct {
	ID       int64   `json:"id" validate:"gt=0"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gt=0"`
}

// Amount is price times quantity.
func (l Line) Amount() float64 {
	return l.Price * float64(l.Quantity)
}

// Item is the {id, quantity} pair sent at checkout.
type Item struct {
	ID       int64 `json:"id" validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0"`
}

// Recorder receives one call per successful mutation.
type Recorder interface {
	CartMutation(op string)
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save problems.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(s *Store) { s.recorder = rec }
}

// WithKey overrides the storage key, for tills sharing one backend store.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// Store is the cart. It is safe for concurrent use; every mutation is
// written through to the local store before the call returns.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	kv       localstore.Store
	key      string
	logger   *slog.Logger
	recorder Recorder
	validate *validator.Validate
}

// Open loads the persisted cart once. A missing key yields an empty cart; an
// unreadable blob is discarded with a warning.
func Open(ctx context.Context, kv localstore.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:       kv,
		key:      StorageKey,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	raw, err := kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, localstore.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Warn("discarding unreadable cart", slog.Any("error", err))
		return s, nil
	}
	s.lines = s.sanitize(lines)
	return s, nil
}

// sanitize drops lines that violate the invariants and merges duplicate ids,
// since the blob may have been written by another till or edited by hand.
func (s *Store) sanitize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if err := s.validate.Struct(line); err != nil {
			s.logger.Warn("dropping invalid cart line", slog.Int64("id", line.ID), slog.Any("error", err))
			continue
		}
		if at, ok := index[line.ID]; ok {
			out[at].Quantity += line.Quantity
			continue
		}
		index[line.ID] = len(out)
		out = append(out, line)
	}
	return out
}

// Add puts qty units of a product in the cart, incrementing the existing line
// when the id is already present. The stored name and price are kept on merge.
func (s *Store) Add(ctx context.Context, id int64, name string, price float64, qty int) error {
	candidate := Line{ID: id, Name: name, Price: price, Quantity: qty}
	if err := s.validate.Struct(candidate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLine, err)
	}
	return s.mutate(ctx, "add", func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ID == id {
				q, err := grow(lines[i].Quantity, qty)
				if err != nil {
					return nil, err
				}
				lines[i].Quantity = q
				return lines, nil
			}
		}
		return append(lines, candidate), nil
	})
}

// ChangeQuantity adds delta to a line's quantity and removes the line when
// the result is zero or less. Unknown ids are ignored.
func (s *Store) ChangeQuantity(ctx context.Context, id int64, delta int) error {
	s.mu.Lock()
	found := s.indexOf(id) >= 0
	s.mu.Unlock()
	if !found {
		return nil
	}
	return s.mutate(ctx, "change", func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ID != id {
				continue
			}
			q, err := grow(lines[i].Quantity, delta)
			if err != nil {
				return nil, err
			}
			if q <= 0 {
				return append(lines[:i], lines[i+1:]...), nil
			}
			lines[i].Quantity = q
			return lines, nil
		}
		return lines, nil
	})
}

// Remove drops the line for id.
func (s *Store) Remove(ctx context.Context, id int64) error {
	return s.mutate(ctx, "remove", func(lines []Line) ([]Line, error) {
		out := lines[:0]
		for _, line := range lines {
			if line.ID != id {
				out = append(out, line)
			}
		}
		return out, nil
	})
}

// Clear empties the cart and deletes the stored key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	s.lines = nil
	s.record("clear")
	return nil
}

// Lines returns a copy of the cart contents in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Items is the checkout payload view of the cart.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.lines))
	for i, line := range s.lines {
		items[i] = Item{ID: line.ID, Quantity: line.Quantity}
	}
	return items
}

// Subtotal is the sum of price times quantity over all lines.
func (s *Store) Subtotal() float64 {
	return Subtotal(s.Lines())
}

func (s *Store) indexOf(id int64) int {
	for i, line := range s.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// mutate applies fn to a copy of the lines, persists the result and only
// then swaps it in, so a failed write leaves the cart as it was.
func (s *Store) mutate(ctx context.Context, op string, fn func([]Line) ([]Line, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(append([]Line(nil), s.lines...))
	if err != nil {
		return err
	}
	raw, err := json.Marshal(nonNil(next))
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.logger.Error("persist cart", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("cart: save: %w", err)
	}
	s.lines = next
	s.record(op)
	return nil
}

// grow adds delta to a quantity, refusing results an int cannot hold.
func grow(quantity, delta int) (int, error) {
	if delta > 0 && quantity > math.MaxInt-delta {
		return 0, fmt.Errorf("%w: quantity %d + %d overflows", ErrInvalidLine, quantity, delta)
	}
	return quantity + delta, nil
}

func (s *Store) record(op string) {
	if s.recorder != nil {
		s.recorder.CartMutation(op)
	}
}

func nonNil(lines []Line) []Line {
	if lines == nil {
		return []Line{}
	}
	return lines
}
