// Package viewstate owns the in-memory task and project collections of the
// active view and derives filtered views and stats from them.
package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/notify"
)

// ErrStaleLoad is returned by a load superseded by a newer one; its result
// was discarded.
var ErrStaleLoad = errors.New("load superseded by a newer request")

// Gateway is the subset of the API client the engine reads from.
type Gateway interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListProjectTasks(ctx context.Context, projectID int64) ([]model.Task, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
}

// Scope selects the task collection: one project, or all tasks when ProjectID is 0.
type Scope struct {
	ProjectID int64
}

func AllTasks() Scope             { return Scope{} }
func ProjectScope(id int64) Scope { return Scope{ProjectID: id} }
func (s Scope) All() bool         { return s.ProjectID == 0 }

func (s Scope) String() string {
	if s.All() {
		return "all"
	}
	return fmt.Sprintf("project:%d", s.ProjectID)
}

type Engine struct {
	gw    Gateway
	notes notify.Notifier
	log   *zap.Logger

	mu              sync.Mutex
	scope           Scope
	tasks           []model.Task
	projects        []model.Project
	taskGen         uint64
	projectGen      uint64
	tasksLoading    bool
	projectsLoading bool
}

// New returns an empty engine. notes may be nil.
func New(gw Gateway, notes notify.Notifier, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{gw: gw, notes: notes, log: log}
}

// LoadTasks replaces the task collection with the scope's tasks.
//
// Only the newest issued load may apply its result; older responses return
// ErrStaleLoad. A load whose ctx is done when it settles is dropped without a
// notification. On failure the previous collection is kept.
func (e *Engine) LoadTasks(ctx context.Context, scope Scope) error {
	e.mu.Lock()
	e.taskGen++
	gen := e.taskGen
	e.tasksLoading = true
	e.mu.Unlock()

	var (
		tasks []model.Task
		err   error
	)
	if scope.All() {
		tasks, err = e.gw.ListTasks(ctx)
	} else {
		tasks, err = e.gw.ListProjectTasks(ctx, scope.ProjectID)
	}

	e.mu.Lock()
	if gen != e.taskGen {
		e.mu.Unlock()
		e.log.Debug("discarding stale task load", zap.Stringer("scope", scope), zap.Uint64("gen", gen))
		return ErrStaleLoad
	}
	e.tasksLoading = false
	if ctxErr := ctx.Err(); ctxErr != nil {
		e.mu.Unlock()
		return ctxErr
	}
	if err != nil {
		e.mu.Unlock()
		e.log.Warn("load tasks failed", zap.Stringer("scope", scope), zap.Error(err))
		e.notifyError(api.Message(err, "Failed to load tasks"))
		return err
	}
	e.tasks = dedupeTasks(tasks)
	e.scope = scope
	e.mu.Unlock()
	return nil
}

// LoadProjects replaces the project collection, with the same ordering and
// failure rules as LoadTasks.
func (e *Engine) LoadProjects(ctx context.Context) error {
	e.mu.Lock()
	e.projectGen++
	gen := e.projectGen
	e.projectsLoading = true
	e.mu.Unlock()

	projects, err := e.gw.ListProjects(ctx)

	e.mu.Lock()
	if gen != e.projectGen {
		e.mu.Unlock()
		return ErrStaleLoad
	}
	e.projectsLoading = false
	if ctxErr := ctx.Err(); ctxErr != nil {
		e.mu.Unlock()
		return ctxErr
	}
	if err != nil {
		e.mu.Unlock()
		e.log.Warn("load projects failed", zap.Error(err))
		e.notifyError(api.Message(err, "Failed to load projects"))
		return err
	}
	if projects == nil {
		projects = []model.Project{}
	}
	e.projects = projects
	e.mu.Unlock()
	return nil
}

func (e *Engine) notifyError(msg string) {
	if e.notes != nil {
		e.notes.Error(msg)
	}
}

func dedupeTasks(in []model.Task) []model.Task {
	seen := make(map[int64]struct{}, len(in))
	out := make([]model.Task, 0, len(in))
	for _, t := range in {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Tasks returns a copy of the loaded task collection.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Task(nil), e.tasks...)
}

func (e *Engine) Projects() []model.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Project(nil), e.projects...)
}

func (e *Engine) Project(id int64) (model.Project, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

func (e *Engine) Task(id int64) (model.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Scope is the scope of the currently held task collection.
func (e *Engine) Scope() Scope {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scope
}

func (e *Engine) TasksLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasksLoading
}

func (e *Engine) ProjectsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectsLoading
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasksLoading || e.projectsLoading
}

// RemoveTask drops a task from the local collection after a confirmed delete.
func (e *Engine) RemoveTask(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, t := range e.tasks {
		if t.ID == id {
			e.tasks = append(e.tasks[:i:i], e.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Stats are computed over the whole loaded collection, ignoring filters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeStats(e.tasks)
}

// View returns the filtered tasks and the empty-state message for them.
func (e *Engine) View(c Criteria) ([]model.Task, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	visible := Filter(e.tasks, c)
	return visible, EmptyState(len(e.tasks), len(visible))
}
