package fakeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/session"
	"taskdash/internal/store"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestServer(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	srv, err := New(append([]Option{WithPasswordCost(bcrypt.MinCost)}, opts...)...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func login(t *testing.T, baseURL, email, password string) *api.Client {
	t.Helper()
	anon, err := api.New(baseURL)
	require.NoError(t, err)
	res, err := anon.Login(context.Background(), email, password)
	require.NoError(t, err)
	require.True(t, res.Success)
	c, err := api.New(baseURL, api.WithTokenSource(staticToken(res.Token)))
	require.NoError(t, err)
	return c
}

func TestLogin_IssuesParsableToken(t *testing.T) {
	_, url := newTestServer(t)
	c, err := api.New(url)
	require.NoError(t, err)

	res, err := c.Login(context.Background(), SeedAdminEmail, SeedAdminPassword)
	require.NoError(t, err)
	require.True(t, res.Success)

	claims, err := api.ParseClaimsUnverified(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.ID())
	assert.Equal(t, SeedAdminEmail, claims.Email)
	assert.False(t, claims.Expired(time.Now()))

	_, err = c.Login(context.Background(), SeedAdminEmail, "wrong")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", api.Message(err, ""))
}

func TestAuthMiddleware_RejectsMissingAndForgedTokens(t *testing.T) {
	_, url := newTestServer(t)
	ctx := context.Background()

	anon, err := api.New(url)
	require.NoError(t, err)
	_, err = anon.ListProjects(ctx)
	assert.True(t, api.IsUnauthorized(err))

	other, err := New(WithPasswordCost(bcrypt.MinCost), WithSigningKey([]byte("other-key")))
	require.NoError(t, err)
	forged, err := other.issueToken(1, SeedAdminEmail)
	require.NoError(t, err)
	c, err := api.New(url, api.WithTokenSource(staticToken(forged)))
	require.NoError(t, err)
	_, err = c.ListProjects(ctx)
	assert.True(t, api.IsUnauthorized(err))
}

func TestAuthMiddleware_RejectsExpiredToken(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var elapsed atomic.Int64
	clock := func() time.Time { return base.Add(time.Duration(elapsed.Load())) }
	_, url := newTestServer(t, WithClock(clock), WithTokenTTL(time.Hour))
	c := login(t, url, SeedAdminEmail, SeedAdminPassword)

	_, err := c.ListProjects(context.Background())
	require.NoError(t, err)

	elapsed.Store(int64(2 * time.Hour))
	_, err = c.ListProjects(context.Background())
	assert.True(t, api.IsUnauthorized(err))
}

func TestProjectsAndTasks_EndToEnd(t *testing.T) {
	_, url := newTestServer(t)
	c := login(t, url, SeedAdminEmail, SeedAdminPassword)
	ctx := context.Background()

	res, err := c.CreateProject(ctx, api.ProjectInput{Title: "Launch", Status: model.ProjectActive, OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Project created successfully", res.Message)
	pid := res.ID

	p, err := c.GetProject(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, p.CurrentUserRole)
	assert.Equal(t, int64(1), p.OwnerID)

	created, err := c.CreateTask(ctx, api.TaskInput{ProjectID: pid, Summary: "Draft plan", StatusID: 1, PriorityID: 2, TypeID: 3})
	require.NoError(t, err)

	tasks, err := c.ListProjectTasks(ctx, pid)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Draft plan", tasks[0].Summary)
	assert.Equal(t, model.Ref{ID: 1, Name: "To Do"}, tasks[0].Status)
	assert.Equal(t, model.Ref{ID: 2, Name: "Medium"}, tasks[0].Priority)
	assert.Equal(t, model.Ref{ID: 3, Name: "Task"}, tasks[0].Type)

	done := model.StatusDone.ID()
	_, err = c.UpdateTask(ctx, created.ID, api.TaskPatch{StatusID: &done})
	require.NoError(t, err)
	all, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Done", all[0].Status.Name)
	assert.Equal(t, "Draft plan", all[0].Summary)

	bad := 9
	_, err = c.UpdateTask(ctx, created.ID, api.TaskPatch{PriorityID: &bad})
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))

	_, err = c.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	_, err = c.DeleteTask(ctx, created.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestDeleteProject_CascadesTasks(t *testing.T) {
	_, url := newTestServer(t, WithDemoData())
	c := login(t, url, SeedAdminEmail, SeedAdminPassword)
	ctx := context.Background()

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 4, projects[0].TaskCount())

	_, err = c.DeleteProject(ctx, projects[0].ID)
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	_, err = c.GetProject(ctx, projects[0].ID)
	assert.True(t, api.IsNotFound(err))
}

func TestMembers_RolesAreEnforced(t *testing.T) {
	srv, url := newTestServer(t)
	_, err := srv.AddUser("Vera", "vera@example.com", "secret")
	require.NoError(t, err)
	_, err = srv.AddUser("Mo", "mo@example.com", "secret")
	require.NoError(t, err)

	admin := login(t, url, SeedAdminEmail, SeedAdminPassword)
	ctx := context.Background()
	res, err := admin.CreateProject(ctx, api.ProjectInput{Title: "Shared", Status: model.ProjectActive})
	require.NoError(t, err)
	pid := res.ID

	_, err = admin.AddProjectMember(ctx, pid, api.MemberInput{Email: "vera@example.com", RoleID: model.RoleViewer})
	require.NoError(t, err)
	_, err = admin.AddProjectMember(ctx, pid, api.MemberInput{Email: "mo@example.com", RoleID: model.RoleMember})
	require.NoError(t, err)

	_, err = admin.AddProjectMember(ctx, pid, api.MemberInput{Email: "vera@example.com", RoleID: model.RoleMember})
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))
	_, err = admin.AddProjectMember(ctx, pid, api.MemberInput{Email: "ghost@example.com", RoleID: model.RoleMember})
	assert.Equal(t, "User not found", api.Message(err, ""))

	members, err := admin.ListProjectMembers(ctx, pid)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, model.RoleAdmin, members[0].RoleID)
	assert.Equal(t, "vera@example.com", members[1].Email)
	assert.Equal(t, model.RoleViewer, members[1].RoleID)

	viewer := login(t, url, "vera@example.com", "secret")
	p, err := viewer.GetProject(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, p.CurrentUserRole)
	_, err = viewer.CreateTask(ctx, api.TaskInput{ProjectID: pid, Summary: "nope", StatusID: 1, PriorityID: 2, TypeID: 3})
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))

	member := login(t, url, "mo@example.com", "secret")
	_, err = member.CreateTask(ctx, api.TaskInput{ProjectID: pid, Summary: "ok", StatusID: 1, PriorityID: 2, TypeID: 3})
	require.NoError(t, err)
	_, err = member.AddProjectMember(ctx, pid, api.MemberInput{Email: "vera@example.com", RoleID: model.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))
	_, err = member.DeleteProject(ctx, pid)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))

	users, err := member.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestSession_LoginPersistsAndRestores(t *testing.T) {
	_, url := newTestServer(t)
	ctx := context.Background()
	creds := &store.FileCredentials{Path: filepath.Join(t.TempDir(), "credentials.json")}

	anon, err := api.New(url)
	require.NoError(t, err)
	s := session.New(anon, creds)
	require.NoError(t, s.CheckPersistedSession(ctx))
	assert.Equal(t, session.Anonymous, s.State())

	res := s.Login(ctx, SeedAdminEmail, SeedAdminPassword)
	require.True(t, res.OK, res.Message)

	restored := session.New(anon, creds)
	require.NoError(t, restored.CheckPersistedSession(ctx))
	require.Equal(t, session.Authenticated, restored.State())
	u, err := restored.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, SeedAdminEmail, u.Email)

	c, err := api.New(url, api.WithTokenSource(restored))
	require.NoError(t, err)
	_, err = c.ListProjects(ctx)
	require.NoError(t, err)
}
