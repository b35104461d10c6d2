package mutate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/perm"
	"taskdash/internal/statusutil"
)

const (
	taskSavedMessage      = "saved"
	taskSaveFailedMessage = "failed to save"
)

// TaskForm is the task editor's data. Nil fields were not supplied: on create
// they take defaults, on update they are left unchanged.
type TaskForm struct {
	// ProjectID defaults to the active project when 0.
	ProjectID   int64
	Summary     *string
	Description *string
	Status      *model.Status
	Priority    *model.Priority
	Type        *model.TaskType
	AssigneeID  *int64
	DueDate     *model.Date
}

// FormFromTask prefills the editor from a stored task.
func FormFromTask(t model.Task) TaskForm {
	summary, desc := t.Summary, t.Description
	st, pr, ty := statusutil.StatusOf(t), statusutil.PriorityOf(t), statusutil.TypeOf(t)
	f := TaskForm{
		ProjectID:   t.ProjectID,
		Summary:     &summary,
		Description: &desc,
		Status:      &st,
		Priority:    &pr,
		Type:        &ty,
	}
	if t.Assignee != nil && t.Assignee.ID != 0 {
		id := t.Assignee.ID
		f.AssigneeID = &id
	}
	if t.DueDate != nil {
		d := *t.DueDate
		f.DueDate = &d
	}
	return f
}

// TaskEditor is the state of the create/edit dialog. TaskID 0 means create.
type TaskEditor struct {
	Open   bool
	TaskID int64
	Form   TaskForm
}

func (c *Coordinator) OpenNewTask() {
	c.mu.Lock()
	c.editor = TaskEditor{Open: true, Form: TaskForm{ProjectID: c.activeProjectID()}}
	c.mu.Unlock()
}

// OpenEditTask opens the editor prefilled from a loaded task.
func (c *Coordinator) OpenEditTask(id int64) error {
	if c.engine == nil {
		return NotFoundError{Kind: "task", ID: id}
	}
	t, ok := c.engine.Task(id)
	if !ok {
		return NotFoundError{Kind: "task", ID: id}
	}
	c.mu.Lock()
	c.editor = TaskEditor{Open: true, TaskID: id, Form: FormFromTask(t)}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) CloseEditor() {
	c.mu.Lock()
	c.editor = TaskEditor{}
	c.mu.Unlock()
}

func (c *Coordinator) Editor() TaskEditor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editor
}

// SubmitTask creates (existingID 0) or updates a task. On success the task
// collection is reloaded and the editor closed; on failure the editor keeps
// the submitted form.
func (c *Coordinator) SubmitTask(ctx context.Context, existingID int64, form TaskForm) (Outcome, error) {
	if form.ProjectID == 0 && existingID == 0 {
		form.ProjectID = c.activeProjectID()
	}
	c.keepForm(existingID, form)

	if !perm.CanMutateTasks(c.RoleFor(form.ProjectID)) {
		return c.failure(ErrReadOnly.Error()), ErrReadOnly
	}

	var (
		res api.MutationResult
		err error
	)
	if existingID == 0 {
		in, verr := createPayload(form)
		if verr != nil {
			return c.failure(verr.Error()), verr
		}
		res, err = c.gw.CreateTask(ctx, in)
	} else {
		patch, verr := updatePayload(form)
		if verr != nil {
			return c.failure(verr.Error()), verr
		}
		res, err = c.gw.UpdateTask(ctx, existingID, patch)
	}
	if err != nil {
		c.log.Warn("save task failed", zap.Int64("task_id", existingID), zap.Int64("project_id", form.ProjectID), zap.Error(err))
		return c.failure(api.Message(err, taskSaveFailedMessage)), err
	}

	c.reloadTasks(ctx)
	c.mu.Lock()
	if c.editor.Open && c.editor.TaskID == existingID {
		c.editor = TaskEditor{}
	}
	c.mu.Unlock()
	out := c.success(nonEmpty(res.Message, taskSavedMessage))
	out.ID = savedID(res.ID, existingID)
	return out, nil
}

func savedID(returned, existing int64) int64 {
	if existing != 0 {
		return existing
	}
	return returned
}

// keepForm records the submitted data in an open editor for the same task so a
// failed submit can be retried as-is.
func (c *Coordinator) keepForm(id int64, form TaskForm) {
	c.mu.Lock()
	if c.editor.Open && c.editor.TaskID == id {
		c.editor.Form = form
	}
	c.mu.Unlock()
}

func createPayload(f TaskForm) (api.TaskInput, error) {
	if f.ProjectID == 0 {
		return api.TaskInput{}, ValidationError{Field: "project", Message: "Select a project before creating a task"}
	}
	if f.Summary == nil || strings.TrimSpace(*f.Summary) == "" {
		return api.TaskInput{}, ValidationError{Field: "summary", Message: "Summary is required"}
	}
	in := api.TaskInput{
		ProjectID:  f.ProjectID,
		Summary:    strings.TrimSpace(*f.Summary),
		StatusID:   model.StatusToDo.ID(),
		PriorityID: model.PriorityMedium.ID(),
		TypeID:     model.TypeTask.ID(),
		AssigneeID: f.AssigneeID,
		DueDate:    f.DueDate,
	}
	if f.Description != nil {
		in.Description = *f.Description
	}
	if f.Status != nil && f.Status.Valid() {
		in.StatusID = f.Status.ID()
	}
	if f.Priority != nil && f.Priority.Valid() {
		in.PriorityID = f.Priority.ID()
	}
	if f.Type != nil && f.Type.Valid() {
		in.TypeID = f.Type.ID()
	}
	return in, nil
}

func updatePayload(f TaskForm) (api.TaskPatch, error) {
	var p api.TaskPatch
	if f.Summary != nil {
		s := strings.TrimSpace(*f.Summary)
		if s == "" {
			return p, ValidationError{Field: "summary", Message: "Summary is required"}
		}
		p.Summary = &s
	}
	p.Description = f.Description
	if f.Status != nil {
		id := f.Status.ID()
		p.StatusID = &id
	}
	if f.Priority != nil {
		id := f.Priority.ID()
		p.PriorityID = &id
	}
	if f.Type != nil {
		id := f.Type.ID()
		p.TypeID = &id
	}
	p.AssigneeID = f.AssigneeID
	p.DueDate = f.DueDate
	return p, nil
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
