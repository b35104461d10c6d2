// Package mutate coordinates create/update/delete flows: editor state,
// two-step deletes, member management, and the notifications they emit.
package mutate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/notify"
	"taskdash/internal/perm"
	"taskdash/internal/session"
	"taskdash/internal/viewstate"
)

// Gateway is the subset of the API client used for writes.
type Gateway interface {
	CreateTask(ctx context.Context, in api.TaskInput) (api.MutationResult, error)
	UpdateTask(ctx context.Context, id int64, in api.TaskPatch) (api.MutationResult, error)
	DeleteTask(ctx context.Context, id int64) (api.MutationResult, error)
	CreateProject(ctx context.Context, in api.ProjectInput) (api.MutationResult, error)
	UpdateProject(ctx context.Context, id int64, in api.ProjectPatch) (api.MutationResult, error)
	DeleteProject(ctx context.Context, id int64) (api.MutationResult, error)
	AddProjectMember(ctx context.Context, projectID int64, in api.MemberInput) (api.MutationResult, error)
	ListProjectMembers(ctx context.Context, projectID int64) ([]model.Member, error)
}

// Identity supplies the logged-in user.
type Identity interface {
	CurrentUser() (session.User, error)
}

// Outcome is the user-facing result of a flow. Message is what was shown.
type Outcome struct {
	OK      bool
	Message string
	// ID is the saved item's id on a successful submit.
	ID int64
}

type Coordinator struct {
	gw     Gateway
	engine *viewstate.Engine
	notes  notify.Notifier
	ident  Identity
	log    *zap.Logger

	mu       sync.Mutex
	editor   TaskEditor
	projects ProjectEditor
	pending  *Target
	deleting bool
	members  MemberPanel
}

type Option func(*Coordinator)

// WithEngine attaches the view-state engine used for reloads, local removal
// and role lookups. Without it the coordinator only talks to the backend.
func WithEngine(e *viewstate.Engine) Option {
	return func(c *Coordinator) { c.engine = e }
}

func WithIdentity(id Identity) Option {
	return func(c *Coordinator) { c.ident = id }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func New(gw Gateway, notes notify.Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{gw: gw, notes: notes, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) success(msg string) Outcome {
	if c.notes != nil {
		c.notes.Success(msg)
	}
	return Outcome{OK: true, Message: msg}
}

func (c *Coordinator) failure(msg string) Outcome {
	if c.notes != nil {
		c.notes.Error(msg)
	}
	return Outcome{Message: msg}
}

func (c *Coordinator) currentUserID() int64 {
	if c.ident == nil {
		return 0
	}
	u, err := c.ident.CurrentUser()
	if err != nil {
		return 0
	}
	return u.ID
}

// RoleFor is the caller's effective role on a loaded project, or RoleUnknown.
func (c *Coordinator) RoleFor(projectID int64) model.Role {
	if c.engine == nil || projectID == 0 {
		return model.RoleUnknown
	}
	p, ok := c.engine.Project(projectID)
	if !ok {
		return model.RoleUnknown
	}
	return perm.EffectiveRole(p, c.currentUserID())
}

func (c *Coordinator) activeProjectID() int64 {
	if c.engine == nil {
		return 0
	}
	return c.engine.Scope().ProjectID
}

func (c *Coordinator) reloadTasks(ctx context.Context) {
	if c.engine == nil {
		return
	}
	_ = c.engine.LoadTasks(ctx, c.engine.Scope())
}

func (c *Coordinator) reloadProjects(ctx context.Context) {
	if c.engine == nil {
		return
	}
	_ = c.engine.LoadProjects(ctx)
}
