package mutate

import (
	"context"

	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/perm"
)

type TargetKind int

const (
	TargetTask TargetKind = iota
	TargetProject
)

func (k TargetKind) String() string {
	if k == TargetProject {
		return "project"
	}
	return "task"
}

// Target is the item held by an open delete confirmation.
type Target struct {
	Kind  TargetKind
	ID    int64
	Label string
}

// DeleteTask opens a confirmation for the task. Nothing is sent until
// ConfirmDelete.
func (c *Coordinator) DeleteTask(id int64) error {
	if !perm.CanMutateTasks(c.taskRole(id)) {
		return ErrReadOnly
	}
	label := ""
	if c.engine != nil {
		if t, ok := c.engine.Task(id); ok {
			label = t.Summary
		}
	}
	return c.openConfirmation(Target{Kind: TargetTask, ID: id, Label: label})
}

// DeleteProject opens a confirmation for the project.
func (c *Coordinator) DeleteProject(id int64) error {
	if !perm.CanManageProject(c.RoleFor(id)) {
		return ErrNotAdmin
	}
	label := ""
	if c.engine != nil {
		if p, ok := c.engine.Project(id); ok {
			label = p.Title
		}
	}
	return c.openConfirmation(Target{Kind: TargetProject, ID: id, Label: label})
}

func (c *Coordinator) taskRole(id int64) model.Role {
	projectID := c.activeProjectID()
	if c.engine != nil {
		if t, ok := c.engine.Task(id); ok && t.ProjectID != 0 {
			projectID = t.ProjectID
		}
	}
	return c.RoleFor(projectID)
}

func (c *Coordinator) openConfirmation(t Target) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting {
		return ErrDeleteInFlight
	}
	c.pending = &t
	return nil
}

// PendingDelete returns the target awaiting confirmation.
func (c *Coordinator) PendingDelete() (Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Target{}, false
	}
	return *c.pending, true
}

// Deleting is true while a confirmed deletion is in flight.
func (c *Coordinator) Deleting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleting
}

// CancelDelete closes the confirmation. It is ignored while deleting.
func (c *Coordinator) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.deleting {
		c.pending = nil
	}
}

// ConfirmDelete issues the pending deletion. At most one request is in flight;
// a second confirm meanwhile returns ErrDeleteInFlight without a request.
func (c *Coordinator) ConfirmDelete(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.deleting {
		c.mu.Unlock()
		return Outcome{}, ErrDeleteInFlight
	}
	if c.pending == nil {
		c.mu.Unlock()
		return Outcome{}, ErrNoConfirmation
	}
	target := *c.pending
	c.deleting = true
	c.mu.Unlock()

	var (
		res api.MutationResult
		err error
	)
	switch target.Kind {
	case TargetProject:
		res, err = c.gw.DeleteProject(ctx, target.ID)
	default:
		res, err = c.gw.DeleteTask(ctx, target.ID)
	}

	c.mu.Lock()
	c.deleting = false
	c.pending = nil
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("delete failed", zap.Stringer("kind", target.Kind), zap.Int64("id", target.ID), zap.Error(err))
		if api.IsNotFound(err) {
			err = wrapNotFound{NotFoundError{Kind: target.Kind.String(), ID: target.ID}, err}
		}
		if target.Kind == TargetProject {
			return c.failure(api.Message(err, "Failed to delete project")), err
		}
		return c.failure(api.Message(err, "Failed to delete task")), err
	}

	if target.Kind == TargetProject {
		c.reloadProjects(ctx)
		return c.success(nonEmpty(res.Message, "Project deleted")), nil
	}
	if c.engine != nil {
		c.engine.RemoveTask(target.ID)
	}
	return c.success(nonEmpty(res.Message, "Task deleted")), nil
}

// wrapNotFound lets callers match both NotFoundError and the gateway error.
type wrapNotFound struct {
	NotFoundError
	cause error
}

func (w wrapNotFound) Unwrap() []error { return []error{w.NotFoundError, w.cause} }
