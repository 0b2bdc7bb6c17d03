package cli

import (
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-pos/internal/accounts"
)

func (r *runner) loginCommand() *cobra.Command {
	var creds accounts.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if creds.Username == "" {
				name, ok, err := r.env.Dialog.Prompt(ctx, "Username", "")
				if err != nil || !ok {
					return err
				}
				creds.Username = name
			}
			if creds.Password == "" {
				password, ok, err := r.env.Dialog.Prompt(ctx, "Password", "")
				if err != nil || !ok {
					return err
				}
				creds.Password = password
			}
			if err := r.env.Accounts.Login(ctx, creds); err != nil {
				return err
			}
			r.say("Logged in as %s", creds.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username (prompted when empty)")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func (r *runner) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.env.Accounts.Logout(cmd.Context()); err != nil {
				return err
			}
			r.say("Logged out.")
			return nil
		},
	}
}

func (r *runner) profileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the profile card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := r.env.Accounts.Profile(cmd.Context())
			if err != nil {
				return err
			}
			r.say("%s", text)
			return nil
		},
	}
}

func (r *runner) meCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := r.env.Accounts.Me(cmd.Context())
			if err != nil {
				return err
			}
			return r.render("me", p)
		},
	}
}

func (r *runner) usersCommand() *cobra.Command {
	var (
		branchID int64
		page     int
		query    string
	)
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the users of a branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("branch") {
				branchID = r.env.Config.BranchID
			}
			users, err := r.env.Accounts.BranchUsers(cmd.Context(), branchID, page, query)
			if err != nil {
				return err
			}
			return r.render("users", users)
		},
	}
	cmd.Flags().Int64Var(&branchID, "branch", 0, "branch id (default POS_BRANCH_ID)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search text")
	return cmd
}
