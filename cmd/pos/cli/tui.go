package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
	"github.com/odyssey-erp/odyssey-pos/internal/tui"
)

func (r *runner) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Run the full screen register",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationOwnEnv: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			bridge := &tui.Bridge{}
			env, err := r.open(ctx, tui.NewDialog(bridge))
			if err != nil {
				return err
			}
			if addr := env.Config.MetricsAddr; addr != "" {
				stop := serveMetrics(env, addr)
				defer stop()
			}
			return tui.Run(ctx, tui.Deps{
				Bridge:         bridge,
				Cart:           env.Cart,
				Checkout:       env.Checkout,
				Inventory:      env.Inventory,
				Customers:      env.Customers,
				Branches:       env.Branches,
				Reports:        env.Reports,
				Logger:         env.Logger,
				BranchID:       env.Config.BranchID,
				CategoryID:     env.Config.CategoryID,
				SearchDebounce: env.Config.SearchDebounce,
				LowStock:       analytics.DefaultLowStockThreshold,
			}, tea.WithInput(r.opts.Stdin), tea.WithOutput(r.opts.Stdout))
		},
	}
}

// serveMetrics exposes /metrics until the returned stop is called.
func serveMetrics(env *Env, addr string) (stop func()) {
	router := chi.NewRouter()
	router.Use(env.Metrics.Middleware)
	router.Method(http.MethodGet, "/metrics", env.Metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		env.Logger.Info("serving metrics", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.Logger.Error("metrics server", slog.Any("error", err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			env.Logger.Error("metrics shutdown", slog.Any("error", err))
		}
	}
}
