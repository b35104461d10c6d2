package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskdash/internal/model"
	"taskdash/internal/perm"
)

type projectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *int    `json:"status"`
	OwnerID     *int64  `json:"projectOwnerId"`
}

type memberRequest struct {
	Email  string     `json:"email"`
	RoleID model.Role `json:"roleId"`
}

func (s *Server) handleListUsers(c *gin.Context) {
	s.mu.Lock()
	users := s.data.listUsers()
	s.mu.Unlock()
	respondOK(c, http.StatusOK, users)
}

func (s *Server) handleListProjects(c *gin.Context) {
	s.mu.Lock()
	projects := s.data.visibleProjects(callerID(c))
	s.mu.Unlock()
	respondOK(c, http.StatusOK, projects)
}

// projectFor loads a project the caller can see and returns their role, or
// writes a 404.
func (s *Server) projectFor(c *gin.Context) (model.Project, model.Role, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return model.Project{}, model.RoleUnknown, false
	}
	p, found := s.data.projects[id]
	role := s.data.role(id, callerID(c))
	if !found || role == model.RoleUnknown {
		respondError(c, http.StatusNotFound, "Project not found")
		return model.Project{}, model.RoleUnknown, false
	}
	return s.data.annotate(*p, role), role, true
}

func (s *Server) handleGetProject(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _, ok := s.projectFor(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, p)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		respondError(c, http.StatusBadRequest, "title is required")
		return
	}
	status := model.ProjectActive
	if req.Status != nil {
		status = *req.Status
	}
	owner := callerID(c)
	if req.OwnerID != nil && *req.OwnerID != owner {
		respondError(c, http.StatusForbidden, "projects can only be created for yourself")
		return
	}

	s.mu.Lock()
	p := s.data.createProject(strings.TrimSpace(*req.Title), deref(req.Description), status, owner, s.now())
	s.mu.Unlock()
	respondOK(c, http.StatusCreated, gin.H{"id": p.ID, "message": "Project created successfully"})
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.projectFor(c)
	if !ok {
		return
	}
	if !perm.CanManageProject(role) {
		respondError(c, http.StatusForbidden, "Only project admins can edit the project")
		return
	}
	stored := s.data.projects[p.ID]
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			respondError(c, http.StatusBadRequest, "title is required")
			return
		}
		stored.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		stored.Description = *req.Description
	}
	if req.Status != nil {
		stored.Status = *req.Status
	}
	now := s.now()
	stored.UpdatedOn = &now
	respondOK(c, http.StatusOK, gin.H{"id": p.ID})
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.projectFor(c)
	if !ok {
		return
	}
	if role != model.RoleAdmin {
		respondError(c, http.StatusForbidden, "Only project admins can delete the project")
		return
	}
	if err := s.data.deleteProject(p.ID); err != nil {
		respondError(c, http.StatusNotFound, "Project not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": p.ID})
}

func (s *Server) handleListMembers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _, ok := s.projectFor(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, s.data.projectMembers(p.ID))
}

func (s *Server) handleAddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.RoleID.Valid() {
		respondError(c, http.StatusBadRequest, "roleId must be 1, 2 or 3")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.projectFor(c)
	if !ok {
		return
	}
	if !perm.CanManageMembers(role) {
		respondError(c, http.StatusForbidden, "Only project admins can manage members")
		return
	}
	u, found := s.data.userByEmail(req.Email)
	if !found {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}
	if err := s.data.addMember(p.ID, u.ID, req.RoleID); err != nil {
		respondError(c, http.StatusConflict, "User is already a member of this project")
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"id": u.ID})
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
