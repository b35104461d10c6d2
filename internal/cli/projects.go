package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskdash/internal/model"
	"taskdash/internal/mutate"
	"taskdash/internal/viewstate"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsUpdateCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine := app.engine()
			if err := engine.LoadProjects(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			projects := viewstate.FilterProjects(engine.Projects(), search)
			return writeOut(cmd, app, envelope{
				Data: projects,
				Meta: map[string]any{"count": len(projects)},
				tbl:  projectsTable(projects),
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by title (case-insensitive)")
	return cmd
}

func newProjectsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project with its task statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			p, err := app.client.GetProject(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			engine := app.engine()
			if err := engine.LoadTasks(cmd.Context(), viewstate.ProjectScope(id)); err != nil {
				return writeErr(cmd, err)
			}
			stats := engine.Stats()
			return writeOut(cmd, app, envelope{
				Data: map[string]any{"project": p, "stats": stats},
				tbl:  statsTable(stats),
			})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project owned by the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine := app.engine()
			coord := app.coordinator(engine)
			out, err := coord.SubmitProject(cmd.Context(), 0, mutate.ProjectForm{Title: title, Description: description})
			if err != nil {
				return writeOutcomeErr(cmd, out, err)
			}
			p, _ := engine.Project(out.ID)
			return writeOut(cmd, app, envelope{Data: p, Meta: map[string]any{"message": out.Message}})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func parseProjectStatus(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "1":
		return model.ProjectActive, nil
	case "inactive", "0":
		return model.ProjectInactive, nil
	default:
		return 0, fmt.Errorf("invalid project status: %q (want active or inactive)", s)
	}
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var title, description, status string

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project (admins only)",
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
			if err := coord.OpenEditProject(id); err != nil {
				return writeErr(cmd, err)
			}
			form := coord.ProjectEditor().Form
			if cmd.Flags().Changed("title") {
				form.Title = title
			}
			if cmd.Flags().Changed("description") {
				form.Description = description
			}
			if cmd.Flags().Changed("status") {
				st, err := parseProjectStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				form.Status = &st
			}
			out, err := coord.SubmitProject(cmd.Context(), id, form)
			if err != nil {
				return writeOutcomeErr(cmd, out, err)
			}
			p, _ := engine.Project(id)
			return writeOut(cmd, app, envelope{Data: p, Meta: map[string]any{"message": out.Message}})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "active|inactive")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and its tasks (admins only)",
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
			if err := coord.DeleteProject(id); err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				coord.CancelDelete()
				return writeErr(cmd, errConfirmRequired("project", id))
			}
			out, err := coord.ConfirmDelete(cmd.Context())
			if err != nil {
				return writeOutcomeErr(cmd, out, err)
			}
			return writeOut(cmd, app, envelope{Data: map[string]any{"id": id, "deleted": true}, Meta: map[string]any{"message": out.Message}})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}
