package api

import (
	"context"
	"fmt"
	"net/http"

	"taskdash/internal/model"
)

// ProjectInput is the create payload.
type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      int    `json:"status"`
	OwnerID     int64  `json:"projectOwnerId,omitempty"`
}

// ProjectPatch carries only the fields being changed.
type ProjectPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *int    `json:"status,omitempty"`
}

type MemberInput struct {
	Email  string     `json:"email"`
	RoleID model.Role `json:"roleId"`
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.do(ctx, "projects.list", http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, "projects.get", http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (MutationResult, error) {
	var out MutationResult
	err := c.do(ctx, "projects.create", http.MethodPost, "/projects", in, &out)
	return out, err
}

func (c *Client) UpdateProject(ctx context.Context, id int64, in ProjectPatch) (MutationResult, error) {
	var out MutationResult
	err := c.do(ctx, "projects.update", http.MethodPatch, fmt.Sprintf("/projects/%d", id), in, &out)
	return out, err
}

func (c *Client) DeleteProject(ctx context.Context, id int64) (MutationResult, error) {
	var out MutationResult
	err := c.do(ctx, "projects.delete", http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, &out)
	return out, err
}

func (c *Client) AddProjectMember(ctx context.Context, projectID int64, in MemberInput) (MutationResult, error) {
	var out MutationResult
	err := c.do(ctx, "projects.members.add", http.MethodPost, fmt.Sprintf("/projects/%d/members", projectID), in, &out)
	return out, err
}

// ListProjectMembers flattens the [{user:{...}, roleId}] response shape.
func (c *Client) ListProjectMembers(ctx context.Context, projectID int64) ([]model.Member, error) {
	var rows []struct {
		User   model.User `json:"user"`
		RoleID model.Role `json:"roleId"`
	}
	if err := c.do(ctx, "projects.members.list", http.MethodGet, fmt.Sprintf("/projects/%d/users", projectID), nil, &rows); err != nil {
		return nil, err
	}
	out := make([]model.Member, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Member{User: r.User, RoleID: r.RoleID})
	}
	return out, nil
}
