package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
)

func (r *runner) say(format string, args ...any) {
	_, _ = fmt.Fprintf(r.opts.Stdout, format+"\n", args...)
}

func (r *runner) branchesCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "branches", Short: "Manage branches"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := r.env.Branches.Load(cmd.Context())
			if err != nil {
				r.say(branches.MsgListFailed)
				return err
			}
			return r.render("branches", list)
		},
	}

	var form branches.BranchForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := r.env.Branches.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			r.say("Created branch #%d %s", b.ID, b.Name)
			return nil
		},
	}
	create.Flags().StringVar(&form.Name, "name", "", "branch name")
	create.Flags().StringVar(&form.Address, "address", "", "branch address")

	rename := &cobra.Command{
		Use:   "rename <branch-id>",
		Short: "Rename a branch, prompting with its current name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "branch")
			if err != nil {
				return err
			}
			b, err := r.env.branchService.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			renamed, err := r.env.Branches.Rename(cmd.Context(), b)
			if err != nil {
				return err
			}
			if !renamed {
				r.say("Unchanged.")
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <branch-id>",
		Short: "Delete a branch after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "branch")
			if err != nil {
				return err
			}
			deleted, err := r.env.Branches.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if deleted {
				r.say("Deleted branch #%d", id)
			}
			return nil
		},
	}

	cmd.AddCommand(list, create, rename, del)
	return cmd
}

func (r *runner) customersCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "customers", Short: "Manage customers"}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := r.env.Customers.Load(cmd.Context(), query)
			if err != nil {
				r.say(customers.MsgListFailed)
				return err
			}
			return r.render("customers", list)
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "filter text")

	search := &cobra.Command{
		Use:   "search <text>",
		Short: "Search customers by name or phone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := r.env.customerService.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				r.env.Logger.Error("search customers", slog.Any("error", err))
				return err
			}
			return r.render("customers", found)
		},
	}

	var (
		form    customers.CustomerForm
		address string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a customer; with --address the register's quick-create form is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				c   customers.Customer
				err error
			)
			if address != "" {
				c, err = r.env.Customers.QuickCreate(cmd.Context(), customers.QuickCreateForm{
					Name:    form.Name,
					Phone:   form.Phone,
					Type:    form.Type,
					Address: address,
				})
			} else {
				c, err = r.env.Customers.Save(cmd.Context(), 0, form)
			}
			if err != nil {
				return err
			}
			return r.render("customer", c)
		},
	}
	create.Flags().StringVar(&form.Name, "name", "", "customer name")
	create.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	create.Flags().StringVar(&form.Type, "type", customers.TypeRegular, "regular, vip or other")
	create.Flags().StringVar(&address, "address", "", "delivery address")

	var patch customers.CustomerForm
	update := &cobra.Command{
		Use:   "update <customer-id>",
		Short: "Update the given fields of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "customer")
			if err != nil {
				return err
			}
			current, err := r.env.Customers.Edit(cmd.Context(), id)
			if err != nil {
				return err
			}
			next := customers.CustomerForm{Name: current.Name, Phone: current.Phone, Type: current.Type}
			flags := cmd.Flags()
			if flags.Changed("name") {
				next.Name = patch.Name
			}
			if flags.Changed("phone") {
				next.Phone = patch.Phone
			}
			if flags.Changed("type") {
				next.Type = patch.Type
			}
			c, err := r.env.Customers.Save(cmd.Context(), id, next)
			if err != nil {
				return err
			}
			return r.render("customer", c)
		},
	}
	update.Flags().StringVar(&patch.Name, "name", "", "customer name")
	update.Flags().StringVar(&patch.Phone, "phone", "", "phone number")
	update.Flags().StringVar(&patch.Type, "type", "", "regular, vip or other")

	del := &cobra.Command{
		Use:   "delete <customer-id>",
		Short: "Delete a customer after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "customer")
			if err != nil {
				return err
			}
			deleted, err := r.env.Customers.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if deleted {
				r.say("Deleted customer #%d", id)
			}
			return nil
		},
	}

	cmd.AddCommand(list, search, create, update, del)
	return cmd
}
