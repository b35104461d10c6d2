package api

import (
	"context"
	"fmt"
	"net/http"

	"taskdash/internal/model"
)

// TaskInput is the create payload. Enum fields carry backend ids.
type TaskInput struct {
	ProjectID   int64       `json:"projectId"`
	Summary     string      `json:"summary"`
	Description string      `json:"description,omitempty"`
	StatusID    int         `json:"statusId"`
	PriorityID  int         `json:"priorityId"`
	TypeID      int         `json:"typeId"`
	AssigneeID  *int64      `json:"assigneeId,omitempty"`
	DueDate     *model.Date `json:"dueDate,omitempty"`
}

// TaskPatch carries only the fields being changed.
type TaskPatch struct {
	Summary     *string     `json:"summary,omitempty"`
	Description *string     `json:"description,omitempty"`
	StatusID    *int        `json:"statusId,omitempty"`
	PriorityID  *int        `json:"priorityId,omitempty"`
	TypeID      *int        `json:"typeId,omitempty"`
	AssigneeID  *int64      `json:"assigneeId,omitempty"`
	DueDate     *model.Date `json:"dueDate,omitempty"`
}

func (c *Client) ListProjectTasks(ctx context.Context, projectID int64) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, "tasks.list_project", http.MethodGet, fmt.Sprintf("/projects/%d/tasks", projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, "tasks.list", http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (MutationResult, error) {
	var out MutationResult
	err := c.do(ctx, "tasks.create", http.MethodPost, "/tasks", in, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskPatch) (MutationResult, error) {
	var out MutationResult
	err := c.do(ctx, "tasks.update", http.MethodPatch, fmt.Sprintf("/tasks/%d", id), in, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) (MutationResult, error) {
	var out MutationResult
	err := c.do(ctx, "tasks.delete", http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, &out)
	return out, err
}
