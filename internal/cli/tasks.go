package cli

import (
	"context"

	"github.com/spf13/cobra"

	"taskdash/internal/model"
	"taskdash/internal/mutate"
	"taskdash/internal/statusutil"
	"taskdash/internal/viewstate"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksStatsCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

// loadScope loads projects and the tasks of scope into a fresh engine.
func (app *App) loadScope(ctx context.Context, scope viewstate.Scope) (*viewstate.Engine, error) {
	engine := app.engine()
	if err := engine.LoadProjects(ctx); err != nil {
		return nil, err
	}
	if err := engine.LoadTasks(ctx, scope); err != nil {
		return nil, err
	}
	return engine, nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		projectID int64
		status    string
		priority  string
		search    string
		assignee  bool
		grouped   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of a project, or of all projects",
		Example: `  taskdash tasks list --project 3 --status blocked
  taskdash tasks list --search alice --assignee --grouped`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := viewstate.ParseStatusFilter(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			pf, err := viewstate.ParsePriorityFilter(priority)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine, err := app.loadScope(cmd.Context(), viewstate.ProjectScope(projectID))
			if err != nil {
				return writeErr(cmd, err)
			}

			visible, empty := engine.View(viewstate.Criteria{SearchText: search, Status: sf, Priority: pf, MatchAssignee: assignee})
			meta := map[string]any{
				"scope":    engine.Scope().String(),
				"count":    len(visible),
				"total":    len(engine.Tasks()),
				"status":   sf.String(),
				"priority": pf.String(),
			}
			if empty != "" {
				meta["empty"] = empty
			}
			if grouped {
				return writeOut(cmd, app, envelope{Data: groupViews(viewstate.GroupByStatus(visible)), Meta: meta, tbl: tasksTable(taskViews(visible))})
			}
			views := taskViews(visible)
			return writeOut(cmd, app, envelope{Data: views, Meta: meta, tbl: tasksTable(views)})
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project id (default: all projects)")
	cmd.Flags().StringVar(&status, "status", "", "all|to-do|in-progress|blocked|done")
	cmd.Flags().StringVar(&priority, "priority", "", "all|lower|medium|high|highest")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive summary search")
	cmd.Flags().BoolVar(&assignee, "assignee", false, "Also match --search against the assignee name")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "Group tasks by status")
	return cmd
}

func newTasksStatsCmd(app *App) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count tasks by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine := app.engine()
			if err := engine.LoadTasks(cmd.Context(), viewstate.ProjectScope(projectID)); err != nil {
				return writeErr(cmd, err)
			}
			stats := engine.Stats()
			return writeOut(cmd, app, envelope{Data: stats, Meta: map[string]any{"scope": engine.Scope().String(), "total": stats.Total()}, tbl: statsTable(stats)})
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project id (default: all projects)")
	return cmd
}

// taskFlags are the editable task fields. Only changed flags reach the form.
type taskFlags struct {
	summary     string
	description string
	status      string
	priority    string
	kind        string
	assignee    int64
	due         string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.summary, "summary", "", "Task summary")
	cmd.Flags().StringVar(&f.description, "description", "", "Task description (markdown)")
	cmd.Flags().StringVar(&f.status, "status", "", "to-do|in-progress|blocked|done")
	cmd.Flags().StringVar(&f.priority, "priority", "", "lower|medium|high|highest")
	cmd.Flags().StringVar(&f.kind, "type", "", "epic|story|task|sub-task")
	cmd.Flags().Int64Var(&f.assignee, "assignee", 0, "Assignee user id")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD)")
}

func (f *taskFlags) apply(cmd *cobra.Command, form *mutate.TaskForm) error {
	changed := cmd.Flags().Changed
	if changed("summary") {
		s := f.summary
		form.Summary = &s
	}
	if changed("description") {
		d := f.description
		form.Description = &d
	}
	if changed("status") {
		st, err := statusutil.ParseStatus(f.status)
		if err != nil {
			return err
		}
		form.Status = &st
	}
	if changed("priority") {
		p, err := statusutil.ParsePriority(f.priority)
		if err != nil {
			return err
		}
		form.Priority = &p
	}
	if changed("type") {
		t, err := statusutil.ParseType(f.kind)
		if err != nil {
			return err
		}
		form.Type = &t
	}
	if changed("assignee") {
		id := f.assignee
		form.AssigneeID = &id
	}
	if changed("due") {
		d, err := model.ParseDate(f.due)
		if err != nil {
			return err
		}
		form.DueDate = &d
	}
	return nil
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var (
		projectID int64
		flags     taskFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task (defaults: To Do, Medium, Task)",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := mutate.TaskForm{ProjectID: projectID}
			if err := flags.apply(cmd, &form); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine, err := app.loadScope(cmd.Context(), viewstate.ProjectScope(projectID))
			if err != nil {
				return writeErr(cmd, err)
			}
			coord := app.coordinator(engine)
			coord.OpenNewTask()
			out, err := coord.SubmitTask(cmd.Context(), 0, form)
			if err != nil {
				return writeOutcomeErr(cmd, out, err)
			}
			return writeSavedTask(cmd, app, engine, out)
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project id")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("summary")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var form mutate.TaskForm
			if err := flags.apply(cmd, &form); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine, err := app.loadScope(cmd.Context(), viewstate.AllTasks())
			if err != nil {
				return writeErr(cmd, err)
			}
			t, ok := engine.Task(id)
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "task", ID: id})
			}
			form.ProjectID = t.ProjectID
			coord := app.coordinator(engine)
			out, err := coord.SubmitTask(cmd.Context(), id, form)
			if err != nil {
				return writeOutcomeErr(cmd, out, err)
			}
			return writeSavedTask(cmd, app, engine, out)
		},
	}

	flags.register(cmd)
	return cmd
}

func writeSavedTask(cmd *cobra.Command, app *App, engine *viewstate.Engine, out mutate.Outcome) error {
	meta := map[string]any{"message": out.Message}
	t, ok := engine.Task(out.ID)
	if !ok {
		return writeOut(cmd, app, envelope{Data: map[string]any{"id": out.ID}, Meta: meta})
	}
	v := newTaskView(t)
	return writeOut(cmd, app, envelope{Data: v, Meta: meta, tbl: tasksTable([]taskView{v})})
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine, err := app.loadScope(cmd.Context(), viewstate.AllTasks())
			if err != nil {
				return writeErr(cmd, err)
			}
			coord := app.coordinator(engine)
			if err := coord.DeleteTask(id); err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				coord.CancelDelete()
				return writeErr(cmd, errConfirmRequired("task", id))
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
