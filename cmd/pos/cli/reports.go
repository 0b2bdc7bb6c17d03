package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
	"github.com/odyssey-erp/odyssey-pos/internal/analytics/charts"
	"github.com/odyssey-erp/odyssey-pos/internal/analytics/export"
)

// Output formats of the chart commands.
const (
	outText  = "text"
	outChart = "chart"
	outSVG   = "svg"
	outCSV   = "csv"
)

var errUnknownOutput = errors.New("unknown output format")

// writeSeries prints a series even when it failed to load, so a failed
// chart still shows its title over an empty body.
func (r *runner) writeSeries(w io.Writer, canvas, format string, series analytics.Series) error {
	switch format {
	case outText, "":
		return r.env.Views.Render(w, "series", series)
	case outChart:
		_, err := charts.NewRegistry(charts.Text{}).Draw(w, canvas, series)
		return err
	case outSVG:
		_, err := charts.NewRegistry(charts.SVG{Width: 640, Height: 320}).Draw(w, canvas, series)
		return err
	case outCSV:
		label := "Date"
		if canvas == charts.CanvasTopItems {
			label = "Item"
		}
		return export.WriteSeriesCSV(w, series, label, "Total")
	default:
		return fmt.Errorf("%w %q (expected text, chart, svg or csv)", errUnknownOutput, format)
	}
}

func (r *runner) seriesCommand(use, short string, args cobra.PositionalArgs, canvas string, load func(ctx context.Context, args []string) (analytics.Series, error)) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := load(cmd.Context(), args)
			if errors.Is(err, analytics.ErrInvalidRange) {
				_ = r.env.Dialog.Alert(cmd.Context(), analytics.MsgSelectRange)
				return err
			}
			if werr := r.writeSeries(r.opts.Stdout, canvas, format, series); werr != nil {
				return errors.Join(err, werr)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", outText, "text, chart, svg or csv")
	return cmd
}

func (r *runner) reportsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "reports", Short: "Sales reports"}

	trends := r.seriesCommand("trends [period]", "Sales totals for daily, weekly, monthly or yearly periods",
		cobra.MaximumNArgs(1), charts.CanvasSales,
		func(ctx context.Context, args []string) (analytics.Series, error) {
			period := analytics.PeriodDaily
			if len(args) == 1 {
				period = args[0]
			}
			return r.env.Reports.SalesTrends(ctx, period)
		})

	rangeCmd := r.seriesCommand("range <start> <end>", "Daily sales totals between two YYYY-MM-DD dates",
		cobra.ExactArgs(2), charts.CanvasSales,
		func(ctx context.Context, args []string) (analytics.Series, error) {
			return r.env.Reports.SalesTrendsRange(ctx, args[0], args[1])
		})

	top := r.seriesCommand("top", "Best selling items by quantity",
		cobra.NoArgs, charts.CanvasTopItems,
		func(ctx context.Context, _ []string) (analytics.Series, error) {
			return r.env.Reports.TopItems(ctx)
		})

	var (
		threshold int
		lowFormat string
	)
	low := &cobra.Command{
		Use:   "low-stock",
		Short: "Items at or below a stock threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := r.env.Reports.LowStock(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			switch lowFormat {
			case outText:
				return r.render("low_stock", items)
			case outCSV:
				return export.WriteLowStockCSV(r.opts.Stdout, items)
			default:
				return fmt.Errorf("%w %q (expected text or csv)", errUnknownOutput, lowFormat)
			}
		},
	}
	low.Flags().IntVar(&threshold, "threshold", analytics.DefaultLowStockThreshold, "stock threshold")
	low.Flags().StringVarP(&lowFormat, "format", "f", outText, "text or csv")

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Daily trend, top items and low stock in one view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := r.env.Reports.Dashboard(cmd.Context(), threshold)
			registry := charts.NewRegistry(charts.Text{})
			defer registry.Close()
			out := r.opts.Stdout
			if _, err := registry.Draw(out, charts.CanvasSales, d.Trend); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			if _, err := registry.Draw(out, charts.CanvasTopItems, d.TopItems); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "\nLow stock")
			if err := r.render("low_stock", d.LowStock); err != nil {
				return err
			}
			if len(d.Failed) > 0 {
				return fmt.Errorf("failed panels: %v", d.Failed)
			}
			return nil
		},
	}
	dashboard.Flags().IntVar(&threshold, "threshold", analytics.DefaultLowStockThreshold, "low stock threshold")

	var (
		exportFormat string
		start, end   string
		out          string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Download the sales export as csv or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = "sales-export." + exportFormat
			}
			if out == "-" {
				_, err := r.env.Reports.Export(cmd.Context(), exportFormat, start, end, r.opts.Stdout)
				return err
			}
			return r.download(out, func(f *os.File) (string, error) {
				return r.env.Reports.Export(cmd.Context(), exportFormat, start, end, f)
			})
		},
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", analytics.FormatCSV, "csv or pdf")
	exportCmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default sales-export.<format>)")

	cmd.AddCommand(trends, rangeCmd, top, low, dashboard, exportCmd)
	return cmd
}
