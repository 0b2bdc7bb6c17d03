package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/checkout"
)

type cartView struct {
	Lines  []cart.Line
	Totals cart.Totals
}

func (r *runner) showCart(discount float64) error {
	lines := r.env.Cart.Lines()
	return r.render("cart", cartView{Lines: lines, Totals: cart.Compute(lines, discount)})
}

func (r *runner) cartCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "cart", Short: "Inspect and edit the saved cart"}

	var (
		name  string
		price float64
	)
	add := &cobra.Command{
		Use:   "add <item-id> [qty]",
		Short: "Add an item, looking up its name and price unless given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item")
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
			}
			if name == "" || !cmd.Flags().Changed("price") {
				item, err := r.env.Inventory.Lookup(cmd.Context(), r.env.itemQuery(), id)
				if err != nil {
					return err
				}
				name, price = item.Name, item.Price
			}
			if err := r.env.Cart.Add(cmd.Context(), id, name, price, qty); err != nil {
				return err
			}
			return r.showCart(0)
		},
	}
	add.Flags().StringVar(&name, "name", "", "item name, with --price skips the catalogue lookup")
	add.Flags().Float64Var(&price, "price", 0, "unit price")

	qty := &cobra.Command{
		Use:   "qty <item-id> <delta>",
		Short: "Change a line's quantity; lines reaching zero are removed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item")
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			if err := r.env.Cart.ChangeQuantity(cmd.Context(), id, delta); err != nil {
				return err
			}
			return r.showCart(0)
		},
	}

	rm := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item")
			if err != nil {
				return err
			}
			if err := r.env.Cart.Remove(cmd.Context(), id); err != nil {
				return err
			}
			return r.showCart(0)
		},
	}

	var discount float64
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart and its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.showCart(discount)
		},
	}
	show.Flags().Float64Var(&discount, "discount", 0, "discount percentage to preview")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.env.Cart.Clear(cmd.Context()); err != nil {
				return err
			}
			return r.showCart(0)
		},
	}

	cmd.AddCommand(add, qty, rm, show, clearCmd)
	return cmd
}

type checkoutFlags struct {
	orderType string
	payment   string
	discount  string
	cash      string
	card      string
	table     string
	address   string
	customer  int64
}

func (r *runner) checkoutCommand() *cobra.Command {
	var f checkoutFlags
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit the saved cart as a sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ctl := r.env.Checkout
			ctl.SetOrderType(ctx, checkout.OrderType(f.orderType))
			if f.customer != 0 {
				c, err := r.customerByID(ctx, f.customer)
				if err != nil {
					return err
				}
				ctl.SelectCustomer(ctx, c)
			}
			if f.address != "" {
				ctl.SetDeliveryAddress(f.address)
			}
			ctl.SetTableNumber(f.table)
			ctl.SetDiscount(f.discount)
			ctl.SetPaymentMethod(f.payment)
			ctl.SetTender(f.cash, f.card)
			_, err := ctl.Submit(ctx)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.orderType, "type", string(checkout.OrderTakeaway), "order type: takeaway, dine_in or delivery")
	flags.StringVar(&f.payment, "payment", checkout.PaymentCash, "payment method: cash, card or mixed")
	flags.StringVar(&f.discount, "discount", "", "discount percentage")
	flags.StringVar(&f.cash, "cash", "", "cash amount for mixed payment")
	flags.StringVar(&f.card, "card", "", "card amount for mixed payment")
	flags.StringVar(&f.table, "table", "", "table number for dine-in orders")
	flags.StringVar(&f.address, "address", "", "delivery address, overriding the customer's")
	flags.Int64Var(&f.customer, "customer", 0, "customer id")
	return cmd
}

func (r *runner) receiptCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "receipt <sale-id>",
		Short: "Download the PDF receipt of a sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "sale")
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("receipt-%d.pdf", id)
			}
			return r.download(out, func(f *os.File) (string, error) {
				return r.env.Sales.Receipt(cmd.Context(), id, f)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default receipt-<id>.pdf)")
	return cmd
}

// download writes into a temporary file next to path and renames it into
// place only when fetch succeeded.
func (r *runner) download(path string, fetch func(*os.File) (string, error)) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	contentType, err := fetch(tmp)
	if err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(r.opts.Stdout, "Saved %s (%s)\n", path, contentType)
	return nil
}
