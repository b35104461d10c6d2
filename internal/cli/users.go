package cli

import "github.com/spf13/cobra"

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User directory commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users (for assignee selection)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			users, err := app.client.ListUsers(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: users, Meta: map[string]any{"count": len(users)}, tbl: usersTable(users)})
		},
	})
	return cmd
}
