package cli

import (
	"github.com/spf13/cobra"

	"taskdash/internal/mutate"
	"taskdash/internal/statusutil"
)

func newMembersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Project member commands (admins only)",
	}
	cmd.AddCommand(newMembersListCmd(app))
	cmd.AddCommand(newMembersAddCmd(app))
	return cmd
}

func newMembersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine := app.engine()
			if err := engine.LoadProjects(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			coord := app.coordinator(engine)
			if err := coord.OpenMembers(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			members := coord.Members().Members
			return writeOut(cmd, app, envelope{Data: members, Meta: map[string]any{"count": len(members)}, tbl: membersTable(members)})
		},
	}
}

func newMembersAddCmd(app *App) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Add a user to a project by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := statusutil.ParseRole(role)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine := app.engine()
			if err := engine.LoadProjects(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			coord := app.coordinator(engine)
			if err := coord.OpenMembers(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			out, err := coord.AddProjectMember(cmd.Context(), id, email, r)
			if err != nil {
				return writeOutcomeErr(cmd, out, err)
			}
			members := coord.Members().Members
			return writeOut(cmd, app, envelope{Data: members, Meta: map[string]any{"message": out.Message}, tbl: membersTable(members)})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user to add")
	cmd.Flags().StringVar(&role, "role", mutate.DefaultMemberRole.String(), "admin|member|viewer")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
