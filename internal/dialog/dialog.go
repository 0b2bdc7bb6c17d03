// Package dialog replaces the browser's alert, confirm and prompt with a
// service that returns results, so destructive actions and error reporting
// can be driven from tests.
package dialog

import "context"

// Service presents blocking questions and notices to the cashier.
type Service interface {
	// Alert shows msg and returns once it was acknowledged.
	Alert(ctx context.Context, msg string) error
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, msg string) (bool, error)
	// Prompt asks for a line of text, offering def as the default. ok is
	// false when the cashier cancelled.
	Prompt(ctx context.Context, msg, def string) (value string, ok bool, err error)
}
