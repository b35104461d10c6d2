package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"taskdash/internal/model"
	"taskdash/internal/mutate"
	"taskdash/internal/notify"
	"taskdash/internal/session"
	"taskdash/internal/store"
	"taskdash/internal/viewstate"
)

const (
	stateViewProjects = "projects"
	stateViewTasks    = "tasks"
	stateViewAllTasks = "all-tasks"
)

type appModel struct {
	session *session.Session
	store   store.Store
	log     *zap.Logger
	notes   *notify.Center
	pings   <-chan struct{}
	engine  *viewstate.Engine
	coord   *mutate.Coordinator

	width  int
	height int

	view  view
	scope viewstate.Scope

	// Each view owns a context; leaving the view cancels its loads.
	rootCtx    context.Context
	viewCtx    context.Context
	viewCancel context.CancelFunc

	login loginForm
	spin  spinner.Model

	projectsList  list.Model
	projectSearch string
	tasksList     list.Model
	criteria      viewstate.Criteria
	grouped       bool
	emptyMsg      string

	searching bool
	search    textinput.Model

	modal        modalKind
	confirmFocus confirmModalFocus
	deleting     bool
	taskForm     taskEditor
	projectForm  projectEditor
	memberForm   memberEditor
	detailID     int64

	// restore holds the saved screen until the first project load.
	restore *store.TUIState
}

func newAppModel(deps Deps, notes *notify.Center, pings <-chan struct{}) appModel {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	if notes == nil {
		notes = notify.New()
	}
	engine := viewstate.New(deps.Client, notes, log.Named("viewstate"))
	coord := mutate.New(deps.Client, notes,
		mutate.WithEngine(engine),
		mutate.WithIdentity(deps.Session),
		mutate.WithLogger(log.Named("mutate")),
	)

	m := appModel{
		session: deps.Session,
		store:   deps.Store,
		log:     log,
		notes:   notes,
		pings:   pings,
		engine:  engine,
		coord:   coord,
		rootCtx: context.Background(),
		login:   newLoginForm(),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		search:  newInput("search", 120),
	}
	m.search.Prompt = "/ "
	m.projectsList = newList(nil, projectDelegate{})
	m.tasksList = newList(nil, taskDelegate{})
	m.viewCtx, m.viewCancel = context.WithCancel(m.rootCtx)

	if st, err := deps.Store.LoadTUIState(); err != nil {
		log.Warn("load tui state failed", zap.Error(err))
	} else {
		m.applyState(st)
	}

	if deps.Session.Authenticated() {
		m.view = viewProjects
	} else {
		m.view = viewLogin
	}
	return m
}

func (m *appModel) applyState(st *store.TUIState) {
	if st == nil {
		return
	}
	if f, err := viewstate.ParseStatusFilter(st.StatusFilter); err == nil {
		m.criteria.Status = f
	}
	if f, err := viewstate.ParsePriorityFilter(st.PriorityFilter); err == nil {
		m.criteria.Priority = f
	}
	m.criteria.SearchText = st.Search
	m.grouped = st.Grouped
	if st.View == stateViewTasks || st.View == stateViewAllTasks {
		m.restore = st
	}
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, waitForToast(m.pings)}
	if m.view == viewProjects {
		cmds = append(cmds, m.loadProjects())
	}
	return tea.Batch(cmds...)
}

// resetView cancels the current view's loads and starts a fresh context.
func (m *appModel) resetView() {
	if m.viewCancel != nil {
		m.viewCancel()
	}
	m.viewCtx, m.viewCancel = context.WithCancel(m.rootCtx)
}

func (m appModel) closeView() {
	if m.viewCancel != nil {
		m.viewCancel()
	}
}

func (m *appModel) enterProjects() tea.Cmd {
	m.resetView()
	m.view = viewProjects
	m.scope = viewstate.AllTasks()
	m.searching = false
	m.saveState()
	return m.loadProjects()
}

func (m *appModel) enterTasks(scope viewstate.Scope) tea.Cmd {
	m.resetView()
	m.view = viewTasks
	m.scope = scope
	m.searching = false
	// The all-tasks view searches assignees too.
	m.criteria.MatchAssignee = scope.All()
	m.tasksList.SetItems(nil)
	m.emptyMsg = ""
	d := taskDelegate{}
	if scope.All() {
		d.showProject = m.projectTitle
	}
	m.tasksList.SetDelegate(d)
	m.saveState()
	return m.loadTasks()
}

func (m appModel) projectTitle(id int64) string {
	if p, ok := m.engine.Project(id); ok {
		return p.Title
	}
	return ""
}

func (m appModel) loadProjects() tea.Cmd {
	ctx, engine := m.viewCtx, m.engine
	return func() tea.Msg {
		return projectsLoadedMsg{err: engine.LoadProjects(ctx)}
	}
}

func (m appModel) loadTasks() tea.Cmd {
	ctx, engine, scope := m.viewCtx, m.engine, m.scope
	return func() tea.Msg {
		return tasksLoadedMsg{scope: scope, err: engine.LoadTasks(ctx, scope)}
	}
}

// discarded reports load results that belong to a superseded request or a
// view that was left.
func discarded(err error) bool {
	return errors.Is(err, viewstate.ErrStaleLoad) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (m *appModel) refreshProjects() {
	projects := viewstate.FilterProjects(m.engine.Projects(), m.projectSearch)
	items := make([]list.Item, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectItem{project: p})
	}
	m.projectsList.SetItems(items)
}

func (m *appModel) refreshTasks() {
	visible, empty := m.engine.View(m.criteria)
	if m.grouped {
		var ordered []model.Task
		for _, g := range viewstate.GroupByStatus(visible) {
			ordered = append(ordered, g.Tasks...)
		}
		visible = ordered
	}
	items := make([]list.Item, 0, len(visible))
	for _, t := range visible {
		items = append(items, taskItem{task: t})
	}
	m.tasksList.SetItems(items)
	m.emptyMsg = empty
}

func (m appModel) selectedProject() (model.Project, bool) {
	it, ok := m.projectsList.SelectedItem().(projectItem)
	if !ok {
		return model.Project{}, false
	}
	return it.project, true
}

func (m appModel) selectedTask() (model.Task, bool) {
	it, ok := m.tasksList.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

// saveState persists the current screen. Failures are logged and ignored.
func (m appModel) saveState() {
	st := &store.TUIState{
		View:           stateViewProjects,
		StatusFilter:   m.criteria.Status.Key(),
		PriorityFilter: m.criteria.Priority.Key(),
		Search:         strings.TrimSpace(m.criteria.SearchText),
		Grouped:        m.grouped,
	}
	if m.view == viewTasks {
		if m.scope.All() {
			st.View = stateViewAllTasks
		} else {
			st.View = stateViewTasks
			st.SelectedProjectID = m.scope.ProjectID
		}
	}
	if err := m.store.SaveTUIState(st); err != nil {
		m.log.Warn("save tui state failed", zap.Error(err))
	}
}

func (m appModel) userEmail() string {
	u, err := m.session.CurrentUser()
	if err != nil {
		return ""
	}
	return u.Email
}
