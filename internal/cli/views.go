package cli

import (
	"fmt"
	"sort"
	"strconv"

	"taskdash/internal/format"
	"taskdash/internal/model"
	"taskdash/internal/statusutil"
	"taskdash/internal/viewstate"
)

// envelope is the JSON shape of every command result. tbl, when set, is the
// table rendering of Data.
type envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`

	tbl *format.Table
}

func (e envelope) Table() format.Table {
	if e.tbl != nil {
		return *e.tbl
	}
	t := format.Table{Headers: []string{"KEY", "VALUE"}}
	if m, ok := e.Data.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.Rows = append(t.Rows, []string{k, fmt.Sprint(m[k])})
		}
	}
	return t
}

// taskView is a task with its enum fields resolved for output.
type taskView struct {
	ID          int64          `json:"id"`
	ProjectID   int64          `json:"projectId"`
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Status      model.Status   `json:"status"`
	Priority    model.Priority `json:"priority"`
	Type        model.TaskType `json:"type"`
	Assignee    string         `json:"assignee,omitempty"`
	DueDate     string         `json:"dueDate,omitempty"`
}

func newTaskView(t model.Task) taskView {
	v := taskView{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Summary:     t.Summary,
		Description: t.Description,
		Status:      statusutil.StatusOf(t),
		Priority:    statusutil.PriorityOf(t),
		Type:        statusutil.TypeOf(t),
		Assignee:    t.AssigneeName(),
	}
	if t.DueDate != nil {
		v.DueDate = t.DueDate.String()
	}
	return v
}

func taskViews(tasks []model.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskView(t))
	}
	return out
}

func tasksTable(tasks []taskView) *format.Table {
	t := &format.Table{Headers: []string{"ID", "STATUS", "PRIORITY", "TYPE", "SUMMARY", "ASSIGNEE", "DUE"}}
	for _, v := range tasks {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.Status.Display().Glyph + " " + v.Status.String(),
			v.Priority.String(),
			v.Type.String(),
			v.Summary,
			v.Assignee,
			v.DueDate,
		})
	}
	return t
}

type groupView struct {
	Status model.Status `json:"status"`
	Tasks  []taskView   `json:"tasks"`
}

func groupViews(groups []viewstate.StatusGroup) []groupView {
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupView{Status: g.Status, Tasks: taskViews(g.Tasks)})
	}
	return out
}

func projectsTable(projects []model.Project) *format.Table {
	t := &format.Table{Headers: []string{"ID", "TITLE", "STATUS", "TASKS", "ROLE"}}
	for _, p := range projects {
		status := "inactive"
		if p.Active() {
			status = "active"
		}
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			status,
			strconv.Itoa(p.TaskCount()),
			p.CurrentUserRole.String(),
		})
	}
	return t
}

func statsTable(s viewstate.Stats) *format.Table {
	return &format.Table{
		Headers: []string{"STATUS", "COUNT"},
		Rows: [][]string{
			{model.StatusToDo.String(), strconv.Itoa(s.ToDo)},
			{model.StatusInProgress.String(), strconv.Itoa(s.InProgress)},
			{model.StatusBlocked.String(), strconv.Itoa(s.Blocked)},
			{"Completed", strconv.Itoa(s.Completed)},
			{"Total", strconv.Itoa(s.Total())},
		},
	}
}

func membersTable(members []model.Member) *format.Table {
	t := &format.Table{Headers: []string{"ID", "NAME", "EMAIL", "ROLE"}}
	for _, m := range members {
		t.Rows = append(t.Rows, []string{strconv.FormatInt(m.ID, 10), m.Name, m.Email, m.RoleID.String()})
	}
	return t
}

func usersTable(users []model.User) *format.Table {
	t := &format.Table{Headers: []string{"ID", "NAME", "EMAIL"}}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email})
	}
	return t
}
