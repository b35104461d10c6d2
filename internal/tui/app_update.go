package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/model"
	"taskdash/internal/mutate"
	"taskdash/internal/perm"
	"taskdash/internal/viewstate"
)

const (
	headerHeight = 3
	footerHeight = 3
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := m.height - headerHeight - footerHeight - 2
		if h < 1 {
			h = 1
		}
		m.projectsList.SetSize(m.width, h)
		m.tasksList.SetSize(m.width, h)
		return m, nil

	case toastMsg:
		return m, waitForToast(m.pings)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case loginDoneMsg:
		m.login.busy = false
		if !msg.res.OK {
			m.login.message = msg.res.Message
			return m, nil
		}
		m.login = newLoginForm()
		return m, m.enterProjects()

	case loggedOutMsg:
		m.resetView()
		m.modal = modalNone
		m.view = viewLogin
		m.login = newLoginForm()
		return m, nil

	case projectsLoadedMsg:
		if discarded(msg.err) {
			return m, nil
		}
		m.refreshProjects()
		if st := m.restore; st != nil && msg.err == nil {
			m.restore = nil
			if st.View == stateViewAllTasks {
				return m, m.enterTasks(viewstate.AllTasks())
			}
			if _, ok := m.engine.Project(st.SelectedProjectID); ok {
				return m, m.enterTasks(viewstate.ProjectScope(st.SelectedProjectID))
			}
		}
		return m, nil

	case tasksLoadedMsg:
		if discarded(msg.err) || m.view != viewTasks || msg.scope != m.scope {
			return m, nil
		}
		m.refreshTasks()
		return m, nil

	case taskSavedMsg:
		m.taskForm.busy = false
		if msg.err != nil {
			m.taskForm.err = msg.out.Message
			return m, nil
		}
		m.modal = modalNone
		m.refreshTasks()
		return m, nil

	case projectSavedMsg:
		m.projectForm.busy = false
		if msg.err != nil {
			m.projectForm.err = msg.out.Message
			return m, nil
		}
		m.modal = modalNone
		m.refreshProjects()
		return m, nil

	case deleteDoneMsg:
		m.deleting = false
		m.modal = modalNone
		if msg.err == nil {
			if msg.target.Kind == mutate.TargetProject {
				m.refreshProjects()
			} else {
				m.refreshTasks()
			}
		}
		return m, nil

	case membersLoadedMsg:
		if errors.Is(msg.err, mutate.ErrNotAdmin) && m.modal == modalMembers {
			m.notes.Error(msg.err.Error())
			m.modal = modalNone
		}
		return m, nil

	case memberAddedMsg:
		m.memberForm.busy = false
		if msg.err == nil {
			m.memberForm.email.SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.closeView()
		return m, tea.Quit
	}
	if m.modal != modalNone {
		return m.updateModal(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}
	switch m.view {
	case viewLogin:
		return m.updateLogin(msg)
	case viewProjects:
		return m.updateProjects(msg)
	default:
		return m.updateTasks(msg)
	}
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		return m, tea.Quit
	}
	var (
		action editorAction
		cmd    tea.Cmd
	)
	m.login, action, cmd = m.login.update(msg)
	if action != editorSubmit {
		return m, cmd
	}
	m.login.busy = true
	m.login.message = ""
	sess, ctx := m.session, m.rootCtx
	email, password := m.login.email.Value(), m.login.password.Value()
	return m, func() tea.Msg {
		return loginDoneMsg{res: sess.Login(ctx, email, password)}
	}
}

func (m appModel) startSearch(current string) (tea.Model, tea.Cmd) {
	m.searching = true
	m.search.SetValue(current)
	m.search.CursorEnd()
	m.search.Focus()
	return m, nil
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		if msg.String() == "esc" {
			m.search.SetValue("")
			m.applySearch("")
		}
		m.saveState()
		return m, nil
	}
	m.search, _ = m.search.Update(msg)
	m.applySearch(m.search.Value())
	return m, nil
}

func (m *appModel) applySearch(text string) {
	if m.view == viewProjects {
		m.projectSearch = text
		m.refreshProjects()
		return
	}
	m.criteria.SearchText = text
	m.refreshTasks()
}

func (m appModel) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.closeView()
		return m, tea.Quit
	case "/":
		return m.startSearch(m.projectSearch)
	case "r":
		return m, m.loadProjects()
	case "a":
		return m, m.enterTasks(viewstate.AllTasks())
	case "L":
		sess, ctx := m.session, m.rootCtx
		return m, func() tea.Msg {
			sess.Logout(ctx)
			return loggedOutMsg{}
		}
	case "n":
		m.coord.OpenNewProject()
		m.projectForm = newProjectEditor(0, m.coord.ProjectEditor().Form)
		m.modal = modalProjectEditor
		return m, nil
	}

	p, ok := m.selectedProject()
	switch msg.String() {
	case "enter", "right", "l":
		if ok {
			return m, m.enterTasks(viewstate.ProjectScope(p.ID))
		}
		return m, nil
	case "e":
		if !ok {
			return m, nil
		}
		if !perm.CanManageProject(m.coord.RoleFor(p.ID)) {
			m.notes.Error(mutate.ErrNotAdmin.Error())
			return m, nil
		}
		if err := m.coord.OpenEditProject(p.ID); err != nil {
			m.notes.Error(err.Error())
			return m, nil
		}
		m.projectForm = newProjectEditor(p.ID, m.coord.ProjectEditor().Form)
		m.modal = modalProjectEditor
		return m, nil
	case "d":
		if !ok {
			return m, nil
		}
		return m.openDelete(m.coord.DeleteProject(p.ID))
	case "m":
		if !ok {
			return m, nil
		}
		if !perm.CanManageMembers(m.coord.RoleFor(p.ID)) {
			m.notes.Error(mutate.ErrNotAdmin.Error())
			return m, nil
		}
		m.memberForm = newMemberEditor()
		m.modal = modalMembers
		coord, ctx, id := m.coord, m.viewCtx, p.ID
		return m, func() tea.Msg {
			return membersLoadedMsg{err: coord.OpenMembers(ctx, id)}
		}
	}

	var cmd tea.Cmd
	m.projectsList, cmd = m.projectsList.Update(msg)
	return m, cmd
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		m.closeView()
		return m, tea.Quit
	case "esc", "left", "h":
		return m, m.enterProjects()
	case "/":
		return m.startSearch(m.criteria.SearchText)
	case "r":
		return m, m.loadTasks()
	case "1", "2", "3", "4":
		st := model.Statuses()[int(key[0]-'1')]
		m.criteria.Status = m.criteria.Status.Toggle(st)
		m.refreshTasks()
		m.saveState()
		return m, nil
	case "0":
		m.criteria.Status = viewstate.StatusFilter{}
		m.refreshTasks()
		m.saveState()
		return m, nil
	case "p":
		m.criteria.Priority = m.criteria.Priority.Cycle()
		m.refreshTasks()
		m.saveState()
		return m, nil
	case "g":
		m.grouped = !m.grouped
		m.refreshTasks()
		m.saveState()
		return m, nil
	case "n":
		projectID := m.scope.ProjectID
		if projectID == 0 {
			if t, ok := m.selectedTask(); ok {
				projectID = t.ProjectID
			}
		}
		if projectID != 0 && !perm.CanMutateTasks(m.coord.RoleFor(projectID)) {
			m.notes.Error(mutate.ErrReadOnly.Error())
			return m, nil
		}
		m.coord.OpenNewTask()
		form := m.coord.Editor().Form
		if form.ProjectID == 0 {
			form.ProjectID = projectID
		}
		m.taskForm = newTaskEditor(0, form, m.writableProjects())
		m.modal = modalTaskEditor
		return m, nil
	}

	t, ok := m.selectedTask()
	switch key {
	case "enter":
		if ok {
			m.detailID = t.ID
			m.modal = modalTaskDetail
		}
		return m, nil
	case "e":
		if ok {
			return m.openEditTask(t)
		}
		return m, nil
	case "d":
		if ok {
			return m.openDelete(m.coord.DeleteTask(t.ID))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tasksList, cmd = m.tasksList.Update(msg)
	return m, cmd
}

// writableProjects are the projects a new task may be filed under.
func (m appModel) writableProjects() []model.Project {
	var out []model.Project
	for _, p := range m.engine.Projects() {
		if perm.CanMutateTasks(m.coord.RoleFor(p.ID)) {
			out = append(out, p)
		}
	}
	return out
}

func (m appModel) openEditTask(t model.Task) (tea.Model, tea.Cmd) {
	if !perm.CanMutateTasks(m.coord.RoleFor(t.ProjectID)) {
		m.notes.Error(mutate.ErrReadOnly.Error())
		return m, nil
	}
	if err := m.coord.OpenEditTask(t.ID); err != nil {
		m.notes.Error(err.Error())
		return m, nil
	}
	m.taskForm = newTaskEditor(t.ID, m.coord.Editor().Form, m.engine.Projects())
	m.modal = modalTaskEditor
	return m, nil
}

func (m appModel) openDelete(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.notes.Error(err.Error())
		return m, nil
	}
	m.modal = modalConfirmDelete
	m.confirmFocus = confirmFocusCancel
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirmDelete:
		return m.updateConfirmDelete(msg)
	case modalTaskEditor:
		return m.updateTaskEditor(msg)
	case modalProjectEditor:
		return m.updateProjectEditor(msg)
	case modalMembers:
		return m.updateMembers(msg)
	case modalTaskDetail:
		switch msg.String() {
		case "esc", "enter", "q":
			m.modal = modalNone
		case "e":
			if t, ok := m.engine.Task(m.detailID); ok {
				m.modal = modalNone
				return m.openEditTask(t)
			}
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deleting {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
	case "esc", "n":
		m.coord.CancelDelete()
		m.modal = modalNone
	case "y":
		m.confirmFocus = confirmFocusConfirm
		return m.confirmDelete()
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return m.confirmDelete()
		}
		m.coord.CancelDelete()
		m.modal = modalNone
	}
	return m, nil
}

func (m appModel) confirmDelete() (tea.Model, tea.Cmd) {
	target, ok := m.coord.PendingDelete()
	if !ok {
		m.modal = modalNone
		return m, nil
	}
	m.deleting = true
	coord, ctx := m.coord, m.viewCtx
	return m, func() tea.Msg {
		out, err := coord.ConfirmDelete(ctx)
		return deleteDoneMsg{target: target, out: out, err: err}
	}
}

func (m appModel) updateTaskEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		action editorAction
		cmd    tea.Cmd
	)
	m.taskForm, action, cmd = m.taskForm.update(msg)
	switch action {
	case editorCancel:
		m.coord.CloseEditor()
		m.modal = modalNone
	case editorSubmit:
		form, err := m.taskForm.form()
		if err != nil {
			m.taskForm.err = err.Error()
			return m, nil
		}
		m.taskForm.busy = true
		m.taskForm.err = ""
		coord, ctx, id := m.coord, m.viewCtx, m.taskForm.taskID
		return m, func() tea.Msg {
			out, err := coord.SubmitTask(ctx, id, form)
			return taskSavedMsg{out: out, err: err}
		}
	}
	return m, cmd
}

func (m appModel) updateProjectEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		action editorAction
		cmd    tea.Cmd
	)
	m.projectForm, action, cmd = m.projectForm.update(msg)
	switch action {
	case editorCancel:
		m.coord.CloseProjectEditor()
		m.modal = modalNone
	case editorSubmit:
		m.projectForm.busy = true
		m.projectForm.err = ""
		coord, ctx, id, form := m.coord, m.viewCtx, m.projectForm.projectID, m.projectForm.form()
		return m, func() tea.Msg {
			out, err := coord.SubmitProject(ctx, id, form)
			return projectSavedMsg{out: out, err: err}
		}
	}
	return m, cmd
}

func (m appModel) updateMembers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		action editorAction
		cmd    tea.Cmd
	)
	m.memberForm, action, cmd = m.memberForm.update(msg)
	switch action {
	case editorCancel:
		m.coord.CloseMembers()
		m.modal = modalNone
	case editorSubmit:
		panel := m.coord.Members()
		m.memberForm.busy = true
		coord, ctx := m.coord, m.viewCtx
		email, role := m.memberForm.email.Value(), m.memberForm.role()
		return m, func() tea.Msg {
			out, err := coord.AddProjectMember(ctx, panel.ProjectID, email, role)
			return memberAddedMsg{out: out, err: err}
		}
	}
	return m, cmd
}

func deleteBody(t mutate.Target) string {
	if t.Kind == mutate.TargetProject {
		return fmt.Sprintf("Delete project %q and all of its tasks? This cannot be undone.", t.Label)
	}
	return fmt.Sprintf("Delete task %q? This cannot be undone.", t.Label)
}
