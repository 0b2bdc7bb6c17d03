package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
)

func (r *runner) itemsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "items", Short: "Browse the item catalogue"}

	var (
		page       int
		query      string
		branchID   int64
		categoryID int64
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of items grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := r.env.itemQuery()
			if cmd.Flags().Changed("branch") {
				q.BranchID = branchID
			}
			if cmd.Flags().Changed("category") {
				q.CategoryID = categoryID
			}
			q.Page, q.Search = page, query
			items, err := r.env.Inventory.Items(cmd.Context(), q)
			if err != nil {
				return err
			}
			return r.render("items", items)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().StringVarP(&query, "query", "q", "", "search text")
	list.Flags().Int64Var(&branchID, "branch", 0, "branch id (default POS_BRANCH_ID)")
	list.Flags().Int64Var(&categoryID, "category", 0, "category id (default POS_CATEGORY_ID)")

	search := &cobra.Command{
		Use:   "search <text>",
		Short: "Search items across branches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := r.env.Inventory.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return r.render("item_search", results)
		},
	}

	cmd.AddCommand(list, search)
	return cmd
}

func (r *runner) categoriesCommand() *cobra.Command {
	var filters shared.ListFilters
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List item categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := r.env.Categories.List(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return r.render("categories", page)
		},
	}
	cmd.Flags().IntVar(&filters.Page, "page", shared.DefaultPage, "page number")
	cmd.Flags().StringVarP(&filters.Search, "query", "q", "", "search text")
	return cmd
}
