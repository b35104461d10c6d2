package mutate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/perm"
)

type ProjectForm struct {
	Title       string
	Description string
	// Status is only sent on update when set; create always sends active.
	Status *int
}

type ProjectEditor struct {
	Open      bool
	ProjectID int64
	Form      ProjectForm
}

func (c *Coordinator) OpenNewProject() {
	c.mu.Lock()
	c.projects = ProjectEditor{Open: true}
	c.mu.Unlock()
}

func (c *Coordinator) OpenEditProject(id int64) error {
	if c.engine == nil {
		return NotFoundError{Kind: "project", ID: id}
	}
	p, ok := c.engine.Project(id)
	if !ok {
		return NotFoundError{Kind: "project", ID: id}
	}
	status := p.Status
	c.mu.Lock()
	c.projects = ProjectEditor{Open: true, ProjectID: id, Form: ProjectForm{Title: p.Title, Description: p.Description, Status: &status}}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) CloseProjectEditor() {
	c.mu.Lock()
	c.projects = ProjectEditor{}
	c.mu.Unlock()
}

func (c *Coordinator) ProjectEditor() ProjectEditor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projects
}

// SubmitProject creates (existingID 0) or updates a project. Creates are
// owned by the current user and start active.
func (c *Coordinator) SubmitProject(ctx context.Context, existingID int64, form ProjectForm) (Outcome, error) {
	c.mu.Lock()
	if c.projects.Open && c.projects.ProjectID == existingID {
		c.projects.Form = form
	}
	c.mu.Unlock()

	title := strings.TrimSpace(form.Title)
	if title == "" {
		verr := ValidationError{Field: "title", Message: "Title is required"}
		return c.failure(verr.Message), verr
	}

	var (
		res api.MutationResult
		err error
		ok  string
	)
	if existingID == 0 {
		ownerID := c.currentUserID()
		if ownerID == 0 {
			return c.failure(ErrNoUser.Error()), ErrNoUser
		}
		res, err = c.gw.CreateProject(ctx, api.ProjectInput{
			Title:       title,
			Description: form.Description,
			Status:      model.ProjectActive,
			OwnerID:     ownerID,
		})
		ok = "Project created successfully"
	} else {
		if !perm.CanManageProject(c.RoleFor(existingID)) {
			return c.failure(ErrNotAdmin.Error()), ErrNotAdmin
		}
		desc := form.Description
		res, err = c.gw.UpdateProject(ctx, existingID, api.ProjectPatch{
			Title:       &title,
			Description: &desc,
			Status:      form.Status,
		})
		ok = "Project updated successfully"
	}
	if err != nil {
		c.log.Warn("save project failed", zap.Int64("project_id", existingID), zap.Error(err))
		return c.failure(api.Message(err, "Operation failed")), err
	}

	c.reloadProjects(ctx)
	c.mu.Lock()
	if c.projects.Open && c.projects.ProjectID == existingID {
		c.projects = ProjectEditor{}
	}
	c.mu.Unlock()
	out := c.success(nonEmpty(res.Message, ok))
	out.ID = savedID(res.ID, existingID)
	return out, nil
}
