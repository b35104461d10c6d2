package cli

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"taskdash/internal/format"
	"taskdash/internal/model"
	"taskdash/internal/viewstate"
)

type projectSummary struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Role  string          `json:"role"`
	Stats viewstate.Stats `json:"stats"`
}

type dashboard struct {
	User     string           `json:"user"`
	Stats    viewstate.Stats  `json:"stats"`
	Projects []projectSummary `json:"projects"`
}

func (d dashboard) Table() format.Table {
	t := format.Table{Headers: []string{"PROJECT", "ROLE", "TO DO", "IN PROGRESS", "BLOCKED", "COMPLETED"}}
	row := func(name, role string, s viewstate.Stats) []string {
		return []string{name, role, strconv.Itoa(s.ToDo), strconv.Itoa(s.InProgress), strconv.Itoa(s.Blocked), strconv.Itoa(s.Completed)}
	}
	for _, p := range d.Projects {
		t.Rows = append(t.Rows, row(p.Title, p.Role, p.Stats))
	}
	t.Rows = append(t.Rows, row("All projects", "", d.Stats))
	return t
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Overview of every project's task statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			engine := app.engine()

			// Projects and tasks are independent reads.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return engine.LoadProjects(ctx) })
			g.Go(func() error { return engine.LoadTasks(ctx, viewstate.AllTasks()) })
			if err := g.Wait(); err != nil {
				return writeErr(cmd, err)
			}

			u, _ := app.session.CurrentUser()
			d := buildDashboard(u.Email, engine.Projects(), engine.Tasks())
			tbl := d.Table()
			return writeOut(cmd, app, envelope{Data: d, tbl: &tbl})
		},
	}
}

func buildDashboard(user string, projects []model.Project, tasks []model.Task) dashboard {
	byProject := map[int64][]model.Task{}
	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}
	d := dashboard{User: user, Stats: viewstate.ComputeStats(tasks), Projects: []projectSummary{}}
	for _, p := range projects {
		d.Projects = append(d.Projects, projectSummary{
			ID:    p.ID,
			Title: p.Title,
			Role:  p.CurrentUserRole.String(),
			Stats: viewstate.ComputeStats(byProject[p.ID]),
		})
	}
	sort.SliceStable(d.Projects, func(i, j int) bool { return d.Projects[i].Title < d.Projects[j].Title })
	return d
}
