// Package cli is the one-shot command surface of the register. Every
// command shares one Env per invocation and reports through an exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-pos/internal/accounts"
	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
	"github.com/odyssey-erp/odyssey-pos/internal/app"
	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/checkout"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitBlocked = 10
)

// Options carries the process surface into Execute. Nil writers and reader
// default to the process streams.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// Config skips LoadConfig when set.
	Config      *app.Config
	ConfigFiles []string

	// Dialog replaces the terminal dialog on Stdin/Stdout.
	Dialog    dialog.Service
	Navigator checkout.Navigator
	Transport http.RoundTripper
}

const annotationOwnEnv = "own-env"

type runner struct {
	opts Options
	env  *Env
}

// Execute runs one command line and returns its exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	r := &runner{opts: opts}
	root := r.rootCommand()
	root.SetArgs(args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetIn(opts.Stdin)

	err := root.ExecuteContext(ctx)
	if r.env != nil {
		if cerr := r.env.Close(); cerr != nil {
			r.env.Logger.Warn("close environment", slog.Any("error", cerr))
		}
	}
	if err == nil {
		return ExitOK
	}
	_, _ = fmt.Fprintf(opts.Stderr, "pos: %v\n", err)
	if blocked(err) {
		return ExitBlocked
	}
	return ExitFailure
}

// blocked is true for failures stopped by local validation before or
// instead of a backend call.
func blocked(err error) bool {
	var verrs validator.ValidationErrors
	return checkout.Blocked(err) ||
		errors.Is(err, cart.ErrInvalidLine) ||
		errors.Is(err, analytics.ErrInvalidRange) ||
		errors.Is(err, shared.ErrRequiredField) ||
		errors.Is(err, accounts.ErrInvalidBranch) ||
		errors.As(err, &verrs)
}

func (r *runner) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "pos",
		Short:             "Odyssey point of sale terminal client",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
	}
	root.AddCommand(
		r.cartCommand(),
		r.checkoutCommand(),
		r.receiptCommand(),
		r.itemsCommand(),
		r.categoriesCommand(),
		r.branchesCommand(),
		r.customersCommand(),
		r.reportsCommand(),
		r.loginCommand(),
		r.logoutCommand(),
		r.profileCommand(),
		r.meCommand(),
		r.usersCommand(),
		r.tuiCommand(),
	)
	return root
}

func (r *runner) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationOwnEnv] != "" {
		return nil
	}
	dlg := r.opts.Dialog
	if dlg == nil {
		dlg = dialog.NewTerminal(r.opts.Stdin, r.opts.Stdout)
	}
	_, err := r.open(cmd.Context(), dlg)
	return err
}

func (r *runner) open(ctx context.Context, dlg dialog.Service) (*Env, error) {
	if r.opts.Config == nil {
		cfg, err := app.LoadConfig(r.opts.ConfigFiles...)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		r.opts.Config = cfg
	}
	env, err := newEnv(ctx, r.opts, dlg)
	if err != nil {
		return nil, err
	}
	r.env = env
	return env, nil
}

func (r *runner) render(name string, data any) error {
	return r.env.Views.Render(r.opts.Stdout, name, data)
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}

// customerByID resolves the --customer flag, alerting when it cannot.
func (r *runner) customerByID(ctx context.Context, id int64) (*customers.Customer, error) {
	c, err := r.env.Customers.Edit(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
