package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store"
	"github.com/alphabot-ai/blog/internal/store/sqlite"
)

func newUsersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Inspect accounts and manage the admin role",
	}
	users.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all accounts",
			Args:  cobra.NoArgs,
			RunE:  runUsersList,
		},
		&cobra.Command{
			Use:   "promote <email>",
			Short: "Grant the admin role",
			Args:  cobra.ExactArgs(1),
			RunE:  setRole(model.RoleAdmin),
		},
		&cobra.Command{
			Use:   "demote <email>",
			Short: "Revoke the admin role",
			Args:  cobra.ExactArgs(1),
			RunE:  setRole(model.RoleUser),
		},
	)
	return users
}

func openStore() (*sqlite.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return st, nil
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.ListUsers(cmd.Context())
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"ID", "Email", "Name", "Role", "Created"})
	for _, u := range users {
		t.AppendRow(table.Row{u.ID, u.Email, u.Name, u.Role, u.CreatedAt.Format(model.PostDateLayout)})
	}
	t.Render()
	return nil
}

func setRole(role model.Role) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := st.FindUserByEmail(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no account with email %s", args[0])
		}
		if err != nil {
			return err
		}
		if err := st.SetUserRole(cmd.Context(), u.ID, role); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, role)
		return nil
	}
}
