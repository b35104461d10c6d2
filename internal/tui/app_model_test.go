package tui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"taskdash/internal/api"
	"taskdash/internal/fakeapi"
	"taskdash/internal/model"
	"taskdash/internal/mutate"
	"taskdash/internal/notify"
	"taskdash/internal/session"
	"taskdash/internal/statusutil"
	"taskdash/internal/store"
	"taskdash/internal/viewstate"
)

type harness struct {
	t       *testing.T
	m       appModel
	url     string
	backend *fakeapi.Server
	store   store.Store
}

func newBackend(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	backend, err := fakeapi.New(fakeapi.WithPasswordCost(bcrypt.MinCost), fakeapi.WithDemoData())
	if err != nil {
		t.Fatalf("fakeapi.New: %v", err)
	}
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, srv.URL
}

func newSession(t *testing.T, url string, st store.Store) (*session.Session, *api.Client) {
	t.Helper()
	anon, err := api.New(url)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	sess := session.New(anon, st.FileCredentials())
	client, err := api.New(url, api.WithTokenSource(sess))
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	if err := sess.CheckPersistedSession(context.Background()); err != nil {
		t.Fatalf("CheckPersistedSession: %v", err)
	}
	return sess, client
}

// newHarness builds a model against a fresh backend. An empty email starts
// logged out.
func newHarness(t *testing.T, email, password string) *harness {
	t.Helper()
	backend, url := newBackend(t)
	return newHarnessFor(t, backend, url, store.Store{Dir: t.TempDir()}, email, password)
}

func newHarnessFor(t *testing.T, backend *fakeapi.Server, url string, st store.Store, email, password string) *harness {
	t.Helper()
	sess, client := newSession(t, url, st)
	if email != "" {
		if res := sess.Login(context.Background(), email, password); !res.OK {
			t.Fatalf("login %s: %s", email, res.Message)
		}
	}
	h := &harness{t: t, url: url, backend: backend, store: st}
	h.m = newAppModel(Deps{Session: sess, Client: client, Store: st}, notify.New(), nil)
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(h.m.Init())
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	mAny, cmd := h.m.Update(msg)
	m, ok := mAny.(appModel)
	if !ok {
		h.t.Fatalf("expected appModel; got %T", mAny)
	}
	h.m = m
	h.run(cmd)
}

// run executes cmd synchronously and feeds its messages back. Timer-driven
// messages are dropped.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.send(msg)
	}
}

func (h *harness) keys(s string) {
	h.t.Helper()
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) key(k tea.KeyType) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: k})
}

func (h *harness) openFirstProject() model.Project {
	h.t.Helper()
	p, ok := h.m.selectedProject()
	if !ok {
		h.t.Fatalf("expected a selected project; projects=%d", len(h.m.projectsList.Items()))
	}
	h.key(tea.KeyEnter)
	if h.m.view != viewTasks || h.m.scope != viewstate.ProjectScope(p.ID) {
		h.t.Fatalf("expected tasks view of project %d; got view=%v scope=%v", p.ID, h.m.view, h.m.scope)
	}
	return p
}

func (h *harness) toast() string {
	n, ok := h.m.notes.Current()
	if !ok {
		return ""
	}
	return n.Message
}

func TestLogin_ShowsMessageThenProjects(t *testing.T) {
	h := newHarness(t, "", "")
	if h.m.view != viewLogin {
		t.Fatalf("expected login view when anonymous; got %v", h.m.view)
	}

	h.keys(fakeapi.SeedAdminEmail)
	h.key(tea.KeyEnter)
	h.keys("wrong")
	h.key(tea.KeyEnter)
	if h.m.view != viewLogin || h.m.login.message != "Invalid credentials" {
		t.Fatalf("expected backend message on failed login; view=%v message=%q", h.m.view, h.m.login.message)
	}

	h.key(tea.KeyTab)
	h.key(tea.KeyTab)
	for range "wrong" {
		h.key(tea.KeyBackspace)
	}
	h.keys(fakeapi.SeedAdminPassword)
	h.key(tea.KeyEnter)
	if h.m.view != viewProjects {
		t.Fatalf("expected projects view after login; got %v (message %q)", h.m.view, h.m.login.message)
	}
	if got := len(h.m.projectsList.Items()); got != 1 {
		t.Fatalf("expected the demo project; got %d projects", got)
	}
	if !strings.Contains(h.m.View(), fakeapi.SeedAdminEmail) {
		t.Fatalf("expected header to show the user")
	}
}

func TestTasksView_FiltersAndRestoresState(t *testing.T) {
	h := newHarness(t, fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword)
	p := h.openFirstProject()
	if got := len(h.m.tasksList.Items()); got != 4 {
		t.Fatalf("expected 4 demo tasks; got %d", got)
	}

	h.keys("3")
	if got := len(h.m.tasksList.Items()); got != 1 {
		t.Fatalf("expected only blocked tasks; got %d", got)
	}
	if it := h.m.tasksList.Items()[0].(taskItem); it.task.Summary != "Fix login redirect" {
		t.Fatalf("unexpected blocked task: %q", it.task.Summary)
	}
	h.keys("3")
	if got := len(h.m.tasksList.Items()); got != 4 {
		t.Fatalf("expected toggle back to all; got %d", got)
	}

	h.keys("p")
	if h.m.emptyMsg != viewstate.EmptyNoMatches {
		t.Fatalf("expected no-match message for Lower priority; got %q (%d items)", h.m.emptyMsg, len(h.m.tasksList.Items()))
	}
	if stats := h.m.engine.Stats(); stats.Total() != 4 {
		t.Fatalf("expected stats over the whole collection; got %#v", stats)
	}

	st, err := h.store.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.View != stateViewTasks || st.SelectedProjectID != p.ID || st.PriorityFilter != "lower" {
		t.Fatalf("unexpected saved state: %#v", st)
	}

	again := newHarnessFor(t, h.backend, h.url, h.store, "", "")
	if again.m.view != viewTasks || again.m.scope.ProjectID != p.ID {
		t.Fatalf("expected restored tasks view; got view=%v scope=%v", again.m.view, again.m.scope)
	}
	if pr, ok := again.m.criteria.Priority.Priority(); !ok || pr != model.PriorityLower {
		t.Fatalf("expected restored priority filter; got %v", again.m.criteria.Priority)
	}
}

func TestSearch_FiltersSummaries(t *testing.T) {
	h := newHarness(t, fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword)
	h.openFirstProject()

	h.keys("/")
	h.keys("readme")
	if got := len(h.m.tasksList.Items()); got != 1 {
		t.Fatalf("expected live search to narrow to one task; got %d", got)
	}
	h.key(tea.KeyEsc)
	if h.m.searching || len(h.m.tasksList.Items()) != 4 {
		t.Fatalf("expected esc to clear the search; searching=%v items=%d", h.m.searching, len(h.m.tasksList.Items()))
	}
}

func TestTaskEditor_CreateAndValidation(t *testing.T) {
	h := newHarness(t, fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword)
	h.openFirstProject()

	h.keys("n")
	if h.m.modal != modalTaskEditor {
		t.Fatalf("expected task editor")
	}
	h.key(tea.KeyCtrlS)
	if h.m.modal != modalTaskEditor || h.m.taskForm.err != "Summary is required" {
		t.Fatalf("expected editor to stay open with validation error; modal=%v err=%q", h.m.modal, h.m.taskForm.err)
	}

	h.keys("Write tests")
	h.key(tea.KeyCtrlS)
	if h.m.modal != modalNone {
		t.Fatalf("expected editor closed after save; err=%q", h.m.taskForm.err)
	}
	if got := len(h.m.tasksList.Items()); got != 5 {
		t.Fatalf("expected reloaded list with the new task; got %d", got)
	}
	if got := h.toast(); got != "saved" {
		t.Fatalf("expected saved toast; got %q", got)
	}
	var created model.Task
	for _, it := range h.m.tasksList.Items() {
		if tk := it.(taskItem).task; tk.Summary == "Write tests" {
			created = tk
		}
	}
	if created.ID == 0 || statusutil.PriorityOf(created) != model.PriorityMedium || statusutil.StatusOf(created) != model.StatusToDo {
		t.Fatalf("expected created task with default priority; got %#v", created)
	}
}

func TestTaskEditor_UpdateSendsChangedFields(t *testing.T) {
	h := newHarness(t, fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword)
	h.openFirstProject()

	first, _ := h.m.selectedTask()
	h.keys("e")
	if h.m.modal != modalTaskEditor || h.m.taskForm.taskID != first.ID {
		t.Fatalf("expected edit dialog for task %d", first.ID)
	}
	form, err := h.m.taskForm.form()
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if form.Summary != nil || form.Status != nil || form.Priority != nil {
		t.Fatalf("expected an untouched editor to send nothing; got %#v", form)
	}

	// Summary -> Description -> Status (project is skipped when editing).
	h.key(tea.KeyTab)
	h.key(tea.KeyTab)
	if h.m.taskForm.focus != taskFieldStatus {
		t.Fatalf("expected status focus; got %v", h.m.taskForm.focus)
	}
	h.key(tea.KeyRight)
	h.key(tea.KeyCtrlS)
	if h.m.modal != modalNone {
		t.Fatalf("expected editor closed; err=%q", h.m.taskForm.err)
	}
	updated, ok := h.m.engine.Task(first.ID)
	if !ok || updated.Summary != first.Summary {
		t.Fatalf("expected summary unchanged; got %#v", updated)
	}
}

func TestDelete_TwoStepConfirmation(t *testing.T) {
	h := newHarness(t, fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword)
	h.openFirstProject()

	h.keys("d")
	if h.m.modal != modalConfirmDelete || h.m.confirmFocus != confirmFocusCancel {
		t.Fatalf("expected confirmation focused on cancel")
	}
	if !strings.Contains(h.m.View(), "Confirm delete") {
		t.Fatalf("expected confirmation overlay in view")
	}
	h.key(tea.KeyEnter)
	if h.m.modal != modalNone || len(h.m.tasksList.Items()) != 4 {
		t.Fatalf("expected cancel to keep the task")
	}
	if _, pending := h.m.coord.PendingDelete(); pending {
		t.Fatalf("expected confirmation cleared")
	}

	h.keys("d")
	h.keys("y")
	if h.m.modal != modalNone || h.m.deleting {
		t.Fatalf("expected confirmation closed after delete")
	}
	if got := len(h.m.tasksList.Items()); got != 3 {
		t.Fatalf("expected task removed; got %d", got)
	}
	if got := h.toast(); got != "Task deleted" {
		t.Fatalf("expected delete toast; got %q", got)
	}
}

func TestViewer_IsReadOnly(t *testing.T) {
	backend, url := newBackend(t)
	if _, err := backend.AddUser("Vera", "vera@example.com", "secret"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	admin, adminClient := newSession(t, url, store.Store{Dir: t.TempDir()})
	if res := admin.Login(context.Background(), fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword); !res.OK {
		t.Fatalf("admin login: %s", res.Message)
	}
	projects, err := adminClient.ListProjects(context.Background())
	if err != nil || len(projects) != 1 {
		t.Fatalf("ListProjects: %v (%d)", err, len(projects))
	}
	if _, err := adminClient.AddProjectMember(context.Background(), projects[0].ID, api.MemberInput{Email: "vera@example.com", RoleID: model.RoleViewer}); err != nil {
		t.Fatalf("AddProjectMember: %v", err)
	}

	h := newHarnessFor(t, backend, url, store.Store{Dir: t.TempDir()}, "vera@example.com", "secret")
	h.keys("m")
	if h.m.modal != modalNone || h.toast() != mutate.ErrNotAdmin.Error() {
		t.Fatalf("expected members panel refused; modal=%v toast=%q", h.m.modal, h.toast())
	}
	h.openFirstProject()
	h.keys("n")
	if h.m.modal != modalNone || h.toast() != mutate.ErrReadOnly.Error() {
		t.Fatalf("expected read-only refusal; modal=%v toast=%q", h.m.modal, h.toast())
	}
	h.keys("d")
	if h.m.modal != modalNone {
		t.Fatalf("expected delete refused for viewer")
	}
}

func TestMembersPanel_AddReportsInline(t *testing.T) {
	h := newHarness(t, fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword)
	if _, err := h.backend.AddUser("Vera", "vera@example.com", "secret"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	h.keys("m")
	if h.m.modal != modalMembers {
		t.Fatalf("expected members panel")
	}
	if got := len(h.m.coord.Members().Members); got != 1 {
		t.Fatalf("expected the owner as only member; got %d", got)
	}
	h.keys("vera@example.com")
	h.key(tea.KeyEnter)
	panel := h.m.coord.Members()
	if !panel.MessageOK || panel.Message != "User added successfully!" || len(panel.Members) != 2 {
		t.Fatalf("unexpected panel after add: %#v", panel)
	}
	if h.m.memberForm.email.Value() != "" {
		t.Fatalf("expected email cleared after success")
	}
	if h.toast() != "" {
		t.Fatalf("expected member results to stay inline; toast=%q", h.toast())
	}

	h.keys("nobody@example.com")
	h.key(tea.KeyEnter)
	if panel := h.m.coord.Members(); panel.MessageOK || panel.Message != "User not found" {
		t.Fatalf("expected inline backend failure; got %#v", panel)
	}
}

func TestStaleTaskLoadIsIgnoredAfterLeavingView(t *testing.T) {
	h := newHarness(t, fakeapi.SeedAdminEmail, fakeapi.SeedAdminPassword)
	p := h.openFirstProject()
	h.key(tea.KeyEsc)
	if h.m.view != viewProjects {
		t.Fatalf("expected projects view; got %v", h.m.view)
	}
	if h.m.viewCtx.Err() != nil {
		t.Fatalf("expected a live context for the new view")
	}

	h.send(tasksLoadedMsg{scope: viewstate.ProjectScope(p.ID)})
	if h.m.view != viewProjects {
		t.Fatalf("expected late task load to be ignored")
	}
	h.send(projectsLoadedMsg{err: context.Canceled})
	if got := len(h.m.projectsList.Items()); got != 1 {
		t.Fatalf("expected canceled load to keep the list; got %d", got)
	}
}
