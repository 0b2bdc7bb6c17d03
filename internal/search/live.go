package search

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token identifies one issued request. Larger tokens are newer.
type Token uint64

// Generations hands out request tokens and answers whether a token is still
// the newest one issued.
type Generations struct {
	n atomic.Uint64
}

// Next issues a new token, making every earlier token stale.
func (g *Generations) Next() Token {
	return Token(g.n.Add(1))
}

// Current reports whether tok is the newest token.
func (g *Generations) Current(tok Token) bool {
	return uint64(tok) == g.n.Load()
}

// Result is what a live search delivers.
type Result[T any] struct {
	Query string
	Token Token
	Value T
	Err   error
}

// FetchFunc performs one search.
type FetchFunc[T any] func(ctx context.Context, query string) (T, error)

// Live debounces query edits, cancels superseded requests and drops their
// late results, so the delivered result always matches the newest query.
type Live[T any] struct {
	debouncer *Debouncer
	fetch     FetchFunc[T]
	deliver   func(Result[T])
	gens      Generations
	parent    context.Context

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	stale  atomic.Uint64
}

// NewLive wires a debouncer to fetch and deliver. deliver is called from a
// background goroutine, at most once per issued token.
func NewLive[T any](ctx context.Context, debouncer *Debouncer, fetch FetchFunc[T], deliver func(Result[T])) *Live[T] {
	if debouncer == nil {
		debouncer = NewDebouncer(DefaultDelay)
	}
	return &Live[T]{debouncer: debouncer, fetch: fetch, deliver: deliver, parent: ctx}
}

// Input records a query edit. The fetch fires after the debounce delay.
func (l *Live[T]) Input(query string) {
	l.debouncer.Trigger(func() { l.issue(query) })
}

// Now skips the debounce, used for the initial load and explicit submits.
func (l *Live[T]) Now(query string) {
	l.debouncer.Flush()
	l.issue(query)
}

func (l *Live[T]) issue(query string) {
	ctx, cancel := context.WithCancel(l.parent)
	// The token and the cancel swap move together, so the surviving context
	// always belongs to the newest token.
	l.mu.Lock()
	tok := l.gens.Next()
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		value, err := l.fetch(ctx, query)
		if !l.gens.Current(tok) {
			l.stale.Add(1)
			return
		}
		l.deliver(Result[T]{Query: query, Token: tok, Value: value, Err: err})
	}()
}

// Dropped counts results discarded because a newer request was issued.
func (l *Live[T]) Dropped() uint64 {
	return l.stale.Load()
}

// Close stops the debouncer, cancels the in-flight request and waits for it.
func (l *Live[T]) Close() {
	l.debouncer.Stop()
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.wg.Wait()
}
