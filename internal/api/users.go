package api

import (
	"context"
	"net/http"

	"taskdash/internal/model"
)

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, "users.list", http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
