package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-pos/internal/accounts"
	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
	"github.com/odyssey-erp/odyssey-pos/internal/app"
	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/inventory"
	"github.com/odyssey-erp/odyssey-pos/internal/localstore"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/checkout"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/view"
)

// Env is everything one command invocation needs, built from Config.
type Env struct {
	Config  *app.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Client  *apiclient.Client
	Store   localstore.Store
	Dialog  dialog.Service
	Views   *view.Engine

	Cart       *cart.Store
	Sales      *checkout.HTTPBackend
	Checkout   *checkout.Controller
	Inventory  *inventory.Service
	Categories *categories.Service
	Customers  *customers.Handler
	Branches   *branches.Handler
	Reports    *analytics.Service
	Accounts   *accounts.Handler

	customerService *customers.Service
	branchService   *branches.Service
	closers         []func() error
}

// newEnv wires services over one API client and one local store. The
// saved session is restored before any command runs.
func newEnv(ctx context.Context, opts Options, dlg dialog.Service) (_ *Env, err error) {
	cfg := opts.Config
	logger := app.NewLoggerTo(opts.Stderr, cfg)
	env := &Env{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Dialog:  dlg,
	}
	defer func() {
		if err != nil {
			_ = env.Close()
		}
	}()

	env.Client, err = apiclient.New(apiclient.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout,
		Transport: env.Metrics.Transport(opts.Transport),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	env.Store, err = localstore.Open(ctx, localstore.Options{
		Driver:    cfg.Store,
		Path:      cfg.StoreDir(),
		RedisAddr: cfg.RedisAddr,
		PGDSN:     cfg.PGDSN,
		SQLiteDSN: cfg.SQLiteDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	env.closers = append(env.closers, env.Store.Close)
	if err := env.Client.RestoreSession(ctx, env.Store); err != nil {
		logger.Warn("restore session", slog.Any("error", err))
	}

	env.Views, err = view.NewEngine(cfg.Locale)
	if err != nil {
		return nil, err
	}

	env.Cart, err = cart.Open(ctx, env.Store, cart.WithLogger(logger), cart.WithRecorder(env.Metrics))
	if err != nil {
		return nil, fmt.Errorf("open cart: %w", err)
	}

	reportOpts := []analytics.Option{analytics.WithLogger(logger), analytics.WithBranch(cfg.BranchID)}
	var reportsCache *analytics.Cache
	if cfg.ReportsCacheTTL > 0 {
		rdb, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("reports cache disabled", slog.Any("error", err))
		} else {
			env.closers = append(env.closers, rdb.Close)
			reportsCache = analytics.NewCache(rdb, cfg.ReportsCacheTTL, logger)
			reportOpts = append(reportOpts, analytics.WithCache(reportsCache))
		}
	}
	env.Reports = analytics.NewService(analytics.NewHTTPRepository(env.Client, cfg.BranchID), reportOpts...)

	policy, err := checkout.PolicyFor(cfg.TenderMode)
	if err != nil {
		return nil, err
	}
	env.Sales = checkout.NewHTTPBackend(env.Client)
	navigator := opts.Navigator
	if navigator == nil {
		navigator = checkout.PrintNavigator{
			W:       opts.Stdout,
			Resolve: func(path string) string { return env.Client.URL(path, nil) },
		}
	}
	checkoutOpts := []checkout.Option{
		checkout.WithLogger(logger),
		checkout.WithTenderPolicy(policy),
		checkout.WithRecorder(env.Metrics),
		checkout.WithNavigator(navigator),
	}
	if reportsCache != nil {
		checkoutOpts = append(checkoutOpts, checkout.WithRecorder(reportsCache))
	}
	env.Checkout = checkout.NewController(env.Cart, env.Sales, checkout.NewAddressResolver(env.Sales, logger), dlg, checkoutOpts...)

	env.Inventory = inventory.NewService(inventory.NewHTTPRepository(env.Client), logger)
	env.Categories = categories.NewService(categories.NewHTTPRepository(env.Client), logger)
	env.customerService = customers.NewService(customers.NewHTTPRepository(env.Client))
	env.Customers = customers.NewHandler(env.customerService, dlg, logger)
	env.branchService = branches.NewService(branches.NewHTTPRepository(env.Client))
	env.Branches = branches.NewHandler(env.branchService, dlg, logger)
	env.Accounts = accounts.NewHandler(accounts.NewService(accounts.NewHTTPRepository(env.Client), env.Client, env.Store), dlg, logger)
	return env, nil
}

// itemQuery scopes item listings to the configured branch and category.
func (e *Env) itemQuery() inventory.Query {
	return inventory.Query{BranchID: e.Config.BranchID, CategoryID: e.Config.CategoryID}
}

// Close releases the store and cache connections in reverse order.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}
