package mutate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/perm"
)

const (
	memberAddedMessage     = "User added successfully!"
	memberAddFailedMessage = "Failed to add user"
	// DefaultMemberRole is preselected in the add-member form.
	DefaultMemberRole = model.RoleMember
)

// MemberPanel is the member-management view of one project. Its Message is
// shown inline in the panel, never as a global notification.
type MemberPanel struct {
	Open      bool
	ProjectID int64
	Members   []model.Member
	Loading   bool
	Message   string
	MessageOK bool
}

// OpenMembers opens the panel for an admin and loads the member list.
func (c *Coordinator) OpenMembers(ctx context.Context, projectID int64) error {
	if !perm.CanManageMembers(c.RoleFor(projectID)) {
		return ErrNotAdmin
	}
	c.mu.Lock()
	c.members = MemberPanel{Open: true, ProjectID: projectID, Loading: true}
	c.mu.Unlock()
	return c.refreshMembers(ctx, projectID)
}

func (c *Coordinator) CloseMembers() {
	c.mu.Lock()
	c.members = MemberPanel{}
	c.mu.Unlock()
}

func (c *Coordinator) Members() MemberPanel {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.members
	p.Members = append([]model.Member(nil), c.members.Members...)
	return p
}

func (c *Coordinator) refreshMembers(ctx context.Context, projectID int64) error {
	members, err := c.gw.ListProjectMembers(ctx, projectID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.members.ProjectID != projectID {
		return nil
	}
	c.members.Loading = false
	if err != nil {
		c.log.Warn("load members failed", zap.Int64("project_id", projectID), zap.Error(err))
		c.members.Message = api.Message(err, "Failed to load members")
		c.members.MessageOK = false
		return err
	}
	c.members.Members = members
	return nil
}

// AddProjectMember adds a user by email. Duplicate handling is left to the
// backend. The result is reported inline in the member panel.
func (c *Coordinator) AddProjectMember(ctx context.Context, projectID int64, email string, role model.Role) (Outcome, error) {
	email = strings.TrimSpace(email)
	if role == model.RoleUnknown {
		role = DefaultMemberRole
	}
	if email == "" {
		verr := ValidationError{Field: "email", Message: "Email is required"}
		return c.inline(projectID, Outcome{Message: verr.Message}), verr
	}
	if !role.Valid() {
		verr := ValidationError{Field: "role", Message: "Role must be admin, member or viewer"}
		return c.inline(projectID, Outcome{Message: verr.Message}), verr
	}

	_, err := c.gw.AddProjectMember(ctx, projectID, api.MemberInput{Email: email, RoleID: role})
	if err != nil {
		c.log.Warn("add member failed", zap.Int64("project_id", projectID), zap.Error(err))
		return c.inline(projectID, Outcome{Message: api.Message(err, memberAddFailedMessage)}), err
	}
	c.mu.Lock()
	panelOpen := c.members.Open && c.members.ProjectID == projectID
	c.mu.Unlock()
	if panelOpen {
		_ = c.refreshMembers(ctx, projectID)
	}
	return c.inline(projectID, Outcome{OK: true, Message: memberAddedMessage}), nil
}

func (c *Coordinator) inline(projectID int64, o Outcome) Outcome {
	c.mu.Lock()
	if c.members.ProjectID == projectID {
		c.members.Message = o.Message
		c.members.MessageOK = o.OK
	}
	c.mu.Unlock()
	return o
}
