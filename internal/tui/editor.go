package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/model"
	"taskdash/internal/mutate"
)

type editorAction int

const (
	editorNone editorAction = iota
	editorSubmit
	editorCancel
)

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newTextArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

func fieldLabel(label string, focused bool) string {
	st := lipgloss.NewStyle().Width(12).Foreground(colorChromeFg)
	if focused {
		st = st.Foreground(colorAccent).Bold(true)
	}
	return st.Render(label)
}

func choice(label string, focused bool) string {
	if focused {
		return "‹ " + label + " ›"
	}
	return "  " + label
}

func cycle(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

type taskField int

const (
	taskFieldSummary taskField = iota
	taskFieldDescription
	taskFieldProject
	taskFieldStatus
	taskFieldPriority
	taskFieldType
	taskFieldAssignee
	taskFieldDue

	taskFieldCount
)

// taskEditor is the create/edit task dialog. taskID 0 means create.
type taskEditor struct {
	taskID    int64
	orig      mutate.TaskForm
	projects  []model.Project
	projectIx int

	summary  textinput.Model
	desc     textarea.Model
	status   model.Status
	priority model.Priority
	kind     model.TaskType
	assignee textinput.Model
	due      textinput.Model

	focus taskField
	busy  bool
	err   string
}

func newTaskEditor(taskID int64, form mutate.TaskForm, projects []model.Project) taskEditor {
	e := taskEditor{
		taskID:   taskID,
		orig:     form,
		projects: projects,
		summary:  newInput("What needs doing?", 200),
		desc:     newTextArea("Markdown description"),
		status:   model.StatusToDo,
		priority: model.PriorityMedium,
		kind:     model.TypeTask,
		assignee: newInput("user id", 12),
		due:      newInput("YYYY-MM-DD", 10),
	}
	for i, p := range projects {
		if p.ID == form.ProjectID {
			e.projectIx = i
		}
	}
	if form.Summary != nil {
		e.summary.SetValue(*form.Summary)
	}
	if form.Description != nil {
		e.desc.SetValue(*form.Description)
	}
	if form.Status != nil {
		e.status = *form.Status
	}
	if form.Priority != nil {
		e.priority = *form.Priority
	}
	if form.Type != nil {
		e.kind = *form.Type
	}
	if form.AssigneeID != nil && *form.AssigneeID != 0 {
		e.assignee.SetValue(strconv.FormatInt(*form.AssigneeID, 10))
	}
	if form.DueDate != nil {
		e.due.SetValue(form.DueDate.String())
	}
	e.setFocus(taskFieldSummary)
	return e
}

func (e *taskEditor) creating() bool { return e.taskID == 0 }

// move steps the focus; the project is fixed once a task exists.
func (e *taskEditor) move(delta int) {
	f := taskField(cycle(int(e.focus), delta, int(taskFieldCount)))
	if f == taskFieldProject && !e.creating() {
		f = taskField(cycle(int(f), delta, int(taskFieldCount)))
	}
	e.setFocus(f)
}

func (e *taskEditor) setFocus(f taskField) {
	e.focus = f
	e.summary.Blur()
	e.desc.Blur()
	e.assignee.Blur()
	e.due.Blur()
	switch f {
	case taskFieldSummary:
		e.summary.Focus()
	case taskFieldDescription:
		e.desc.Focus()
	case taskFieldAssignee:
		e.assignee.Focus()
	case taskFieldDue:
		e.due.Focus()
	}
}

func (e taskEditor) update(msg tea.KeyMsg) (taskEditor, editorAction, tea.Cmd) {
	if e.busy {
		return e, editorNone, nil
	}
	switch msg.String() {
	case "esc":
		return e, editorCancel, nil
	case "ctrl+s":
		return e, editorSubmit, nil
	case "tab":
		e.move(1)
		return e, editorNone, nil
	case "shift+tab":
		e.move(-1)
		return e, editorNone, nil
	case "enter":
		if e.focus != taskFieldDescription {
			return e, editorSubmit, nil
		}
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch e.focus {
		case taskFieldProject:
			e.projectIx = cycle(e.projectIx, delta, len(e.projects))
			return e, editorNone, nil
		case taskFieldStatus:
			e.status = model.Status(cycle(int(e.status), delta, len(model.Statuses())))
			return e, editorNone, nil
		case taskFieldPriority:
			e.priority = model.Priority(cycle(int(e.priority), delta, len(model.Priorities())))
			return e, editorNone, nil
		case taskFieldType:
			e.kind = model.TaskType(cycle(int(e.kind), delta, len(model.TaskTypes())))
			return e, editorNone, nil
		}
	}

	var cmd tea.Cmd
	switch e.focus {
	case taskFieldSummary:
		e.summary, cmd = e.summary.Update(msg)
	case taskFieldDescription:
		e.desc, cmd = e.desc.Update(msg)
	case taskFieldAssignee:
		e.assignee, cmd = e.assignee.Update(msg)
	case taskFieldDue:
		e.due, cmd = e.due.Update(msg)
	}
	return e, editorNone, cmd
}

// form builds the submission. On create every entered field is sent; on
// update only fields that differ from the stored task.
func (e taskEditor) form() (mutate.TaskForm, error) {
	var f mutate.TaskForm
	if e.creating() {
		if len(e.projects) > 0 {
			f.ProjectID = e.projects[e.projectIx].ID
		} else {
			f.ProjectID = e.orig.ProjectID
		}
	} else {
		f.ProjectID = e.orig.ProjectID
	}

	summary := e.summary.Value()
	if e.creating() || summary != deref(e.orig.Summary) {
		f.Summary = &summary
	}
	if desc := e.desc.Value(); (e.creating() && strings.TrimSpace(desc) != "") || (!e.creating() && desc != deref(e.orig.Description)) {
		f.Description = &desc
	}
	if st := e.status; e.creating() || e.orig.Status == nil || st != *e.orig.Status {
		f.Status = &st
	}
	if pr := e.priority; e.creating() || e.orig.Priority == nil || pr != *e.orig.Priority {
		f.Priority = &pr
	}
	if ty := e.kind; e.creating() || e.orig.Type == nil || ty != *e.orig.Type {
		f.Type = &ty
	}

	if raw := strings.TrimSpace(e.assignee.Value()); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, errors.New("Assignee must be a user id")
		}
		if e.orig.AssigneeID == nil || *e.orig.AssigneeID != id {
			f.AssigneeID = &id
		}
	}
	if raw := strings.TrimSpace(e.due.Value()); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return f, err
		}
		if e.orig.DueDate == nil || !e.orig.DueDate.Equal(d.Time) {
			f.DueDate = &d
		}
	}
	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (e taskEditor) view(width int) string {
	bodyW := modalBodyWidth(width)
	e.summary.Width = bodyW - 14
	e.desc.SetWidth(bodyW - 2)

	project := "-"
	if e.creating() && len(e.projects) > 0 {
		project = e.projects[e.projectIx].Title
	} else if !e.creating() {
		for _, p := range e.projects {
			if p.ID == e.orig.ProjectID {
				project = p.Title
			}
		}
	}

	rows := []string{
		fieldLabel("Summary", e.focus == taskFieldSummary) + e.summary.View(),
		fieldLabel("Description", e.focus == taskFieldDescription),
		e.desc.View(),
		fieldLabel("Project", e.focus == taskFieldProject) + choice(project, e.focus == taskFieldProject && e.creating()),
		fieldLabel("Status", e.focus == taskFieldStatus) + choice(statusBadge(e.status), e.focus == taskFieldStatus),
		fieldLabel("Priority", e.focus == taskFieldPriority) + choice(priorityBadge(e.priority), e.focus == taskFieldPriority),
		fieldLabel("Type", e.focus == taskFieldType) + choice(e.kind.String(), e.focus == taskFieldType),
		fieldLabel("Assignee", e.focus == taskFieldAssignee) + e.assignee.View(),
		fieldLabel("Due", e.focus == taskFieldDue) + e.due.View(),
		"",
	}
	switch {
	case e.busy:
		rows = append(rows, styleMuted().Render("Saving..."))
	case e.err != "":
		rows = append(rows, styleError().Render(e.err))
	}
	rows = append(rows, styleMuted().Render("tab: next field   ←/→: change   ctrl+s: save   esc: cancel"))

	title := "New task"
	if !e.creating() {
		title = fmt.Sprintf("Edit task #%d", e.taskID)
	}
	return renderModalBox(width, title, strings.Join(rows, "\n"))
}

type projectField int

const (
	projectFieldTitle projectField = iota
	projectFieldDescription
	projectFieldStatus
)

type projectEditor struct {
	projectID int64
	title     textinput.Model
	desc      textarea.Model
	status    int
	origState int
	focus     projectField
	busy      bool
	err       string
}

func newProjectEditor(id int64, form mutate.ProjectForm) projectEditor {
	e := projectEditor{
		projectID: id,
		title:     newInput("Project title", 120),
		desc:      newTextArea("What is this project about?"),
		status:    model.ProjectActive,
	}
	e.title.SetValue(form.Title)
	e.desc.SetValue(form.Description)
	if form.Status != nil {
		e.status = *form.Status
	}
	e.origState = e.status
	e.setFocus(projectFieldTitle)
	return e
}

func (e *projectEditor) setFocus(f projectField) {
	e.focus = f
	e.title.Blur()
	e.desc.Blur()
	switch f {
	case projectFieldTitle:
		e.title.Focus()
	case projectFieldDescription:
		e.desc.Focus()
	}
}

func (e projectEditor) fields() int {
	if e.projectID == 0 {
		return 2
	}
	return 3
}

func (e projectEditor) update(msg tea.KeyMsg) (projectEditor, editorAction, tea.Cmd) {
	if e.busy {
		return e, editorNone, nil
	}
	switch msg.String() {
	case "esc":
		return e, editorCancel, nil
	case "ctrl+s":
		return e, editorSubmit, nil
	case "tab":
		e.setFocus(projectField(cycle(int(e.focus), 1, e.fields())))
		return e, editorNone, nil
	case "shift+tab":
		e.setFocus(projectField(cycle(int(e.focus), -1, e.fields())))
		return e, editorNone, nil
	case "enter":
		if e.focus != projectFieldDescription {
			return e, editorSubmit, nil
		}
	case "left", "right", " ":
		if e.focus == projectFieldStatus {
			if e.status == model.ProjectActive {
				e.status = model.ProjectInactive
			} else {
				e.status = model.ProjectActive
			}
			return e, editorNone, nil
		}
	}
	var cmd tea.Cmd
	switch e.focus {
	case projectFieldTitle:
		e.title, cmd = e.title.Update(msg)
	case projectFieldDescription:
		e.desc, cmd = e.desc.Update(msg)
	}
	return e, editorNone, cmd
}

func (e projectEditor) form() mutate.ProjectForm {
	f := mutate.ProjectForm{Title: e.title.Value(), Description: e.desc.Value()}
	if e.projectID != 0 && e.status != e.origState {
		st := e.status
		f.Status = &st
	}
	return f
}

func (e projectEditor) view(width int) string {
	bodyW := modalBodyWidth(width)
	e.title.Width = bodyW - 14
	e.desc.SetWidth(bodyW - 2)

	rows := []string{
		fieldLabel("Title", e.focus == projectFieldTitle) + e.title.View(),
		fieldLabel("Description", e.focus == projectFieldDescription),
		e.desc.View(),
	}
	if e.projectID != 0 {
		label := "inactive"
		if e.status == model.ProjectActive {
			label = "active"
		}
		rows = append(rows, fieldLabel("Status", e.focus == projectFieldStatus)+choice(label, e.focus == projectFieldStatus))
	}
	rows = append(rows, "")
	switch {
	case e.busy:
		rows = append(rows, styleMuted().Render("Saving..."))
	case e.err != "":
		rows = append(rows, styleError().Render(e.err))
	}
	rows = append(rows, styleMuted().Render("tab: next field   ctrl+s: save   esc: cancel"))

	title := "New project"
	if e.projectID != 0 {
		title = "Edit project"
	}
	return renderModalBox(width, title, strings.Join(rows, "\n"))
}

var memberRoles = []model.Role{model.RoleAdmin, model.RoleMember, model.RoleViewer}

// memberEditor is the add-member form inside the members panel.
type memberEditor struct {
	email  textinput.Model
	roleIx int
	busy   bool
}

func newMemberEditor() memberEditor {
	e := memberEditor{email: newInput("teammate@example.com", 254)}
	for i, r := range memberRoles {
		if r == mutate.DefaultMemberRole {
			e.roleIx = i
		}
	}
	e.email.Focus()
	return e
}

func (e memberEditor) role() model.Role { return memberRoles[e.roleIx] }

func (e memberEditor) update(msg tea.KeyMsg) (memberEditor, editorAction, tea.Cmd) {
	if e.busy {
		if msg.String() == "esc" {
			return e, editorCancel, nil
		}
		return e, editorNone, nil
	}
	switch msg.String() {
	case "esc":
		return e, editorCancel, nil
	case "enter":
		return e, editorSubmit, nil
	case "tab", "right":
		e.roleIx = cycle(e.roleIx, 1, len(memberRoles))
		return e, editorNone, nil
	case "shift+tab", "left":
		e.roleIx = cycle(e.roleIx, -1, len(memberRoles))
		return e, editorNone, nil
	}
	var cmd tea.Cmd
	e.email, cmd = e.email.Update(msg)
	return e, editorNone, cmd
}

func renderMembersPanel(width int, projectTitle string, panel mutate.MemberPanel, e memberEditor) string {
	bodyW := modalBodyWidth(width)
	e.email.Width = bodyW - 14

	var rows []string
	switch {
	case panel.Loading:
		rows = append(rows, styleMuted().Render("Loading members..."))
	case len(panel.Members) == 0:
		rows = append(rows, styleMuted().Render("No members yet"))
	default:
		for _, m := range panel.Members {
			name := m.Name
			if name == "" {
				name = m.Email
			}
			rows = append(rows, fitLine(name, bodyW-28)+"  "+fitLine(m.Email, 18)+" "+m.RoleID.String())
		}
	}
	rows = append(rows,
		"",
		fieldLabel("Add by email", true)+e.email.View(),
		fieldLabel("Role", false)+choice(e.role().String(), true),
	)
	if panel.Message != "" {
		st := styleError()
		if panel.MessageOK {
			st = styleOK()
		}
		rows = append(rows, "", st.Render(panel.Message))
	}
	if e.busy {
		rows = append(rows, styleMuted().Render("Adding..."))
	}
	rows = append(rows, "", styleMuted().Render("enter: add   tab: role   esc: close"))
	return renderModalBox(width, "Members · "+projectTitle, strings.Join(rows, "\n"))
}

// loginForm is the email/password screen shown while anonymous.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	message  string
}

func newLoginForm() loginForm {
	f := loginForm{
		email:    newInput("you@example.com", 254),
		password: newInput("password", 128),
	}
	f.password.EchoMode = textinput.EchoPassword
	f.password.EchoCharacter = '•'
	f.email.Focus()
	return f
}

func (f loginForm) update(msg tea.KeyMsg) (loginForm, editorAction, tea.Cmd) {
	if f.busy {
		return f, editorNone, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		f.focus = 1 - f.focus
		f.applyFocus()
		return f, editorNone, nil
	case "enter":
		if f.focus == 0 {
			f.focus = 1
			f.applyFocus()
			return f, editorNone, nil
		}
		return f, editorSubmit, nil
	}
	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, editorNone, cmd
}

func (f *loginForm) applyFocus() {
	if f.focus == 0 {
		f.password.Blur()
		f.email.Focus()
		return
	}
	f.email.Blur()
	f.password.Focus()
}

func (f loginForm) view(width int, spinner string) string {
	bodyW := modalBodyWidth(width)
	f.email.Width = bodyW - 14
	f.password.Width = bodyW - 14

	rows := []string{
		fieldLabel("Email", f.focus == 0) + f.email.View(),
		fieldLabel("Password", f.focus == 1) + f.password.View(),
		"",
	}
	switch {
	case f.busy:
		rows = append(rows, spinner+" Logging in...")
	case f.message != "":
		rows = append(rows, styleError().Render(f.message))
	}
	rows = append(rows, styleMuted().Render("tab: switch field   enter: log in   ctrl+c: quit"))
	return renderModalBox(width, "Log in to taskdash", strings.Join(rows, "\n"))
}
