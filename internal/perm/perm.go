package perm

import "taskdash/internal/model"

// Role rules:
// - Admin (1): full access, including project settings and member management.
// - Member (2): create, edit and delete tasks.
// - Viewer (3): read-only.
//
// An unknown role (0) is never read-only, and may edit or delete the project
// but not manage its members. The backend stays authoritative for anything
// the client lets through.

// CanMutateTasks reports whether task create/update/delete affordances are shown.
func CanMutateTasks(role model.Role) bool {
	return role != model.RoleViewer
}

// CanManageMembers reports whether the member-management panel is available.
func CanManageMembers(role model.Role) bool {
	return role == model.RoleAdmin
}

// CanManageProject reports whether a project may be edited or deleted.
func CanManageProject(role model.Role) bool {
	return role == model.RoleAdmin || role == model.RoleUnknown
}

// IsReadOnly is true for viewers.
func IsReadOnly(role model.Role) bool {
	return role == model.RoleViewer
}

// EffectiveRole resolves the caller's role on a project. A project without a
// reported role is treated as admin when the caller owns it.
func EffectiveRole(p model.Project, userID int64) model.Role {
	if p.CurrentUserRole.Valid() {
		return p.CurrentUserRole
	}
	if userID != 0 && p.OwnerID == userID {
		return model.RoleAdmin
	}
	return model.RoleUnknown
}
