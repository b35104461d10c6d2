package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskdash/internal/model"
	"taskdash/internal/perm"
)

type taskRequest struct {
	ProjectID   *int64      `json:"projectId"`
	Summary     *string     `json:"summary"`
	Description *string     `json:"description"`
	StatusID    *int        `json:"statusId"`
	PriorityID  *int        `json:"priorityId"`
	TypeID      *int        `json:"typeId"`
	AssigneeID  *int64      `json:"assigneeId"`
	DueDate     *model.Date `json:"dueDate"`
}

func validEnumID(id *int) bool {
	return id == nil || (*id >= 1 && *id <= 4)
}

func (req taskRequest) validate() string {
	switch {
	case !validEnumID(req.StatusID):
		return "statusId must be between 1 and 4"
	case !validEnumID(req.PriorityID):
		return "priorityId must be between 1 and 4"
	case !validEnumID(req.TypeID):
		return "typeId must be between 1 and 4"
	}
	return ""
}

func (s *Server) handleListTasks(c *gin.Context) {
	uid := callerID(c)
	s.mu.Lock()
	tasks := s.data.tasksWhere(func(t *model.Task) bool {
		return s.data.role(t.ProjectID, uid) != model.RoleUnknown
	})
	s.mu.Unlock()
	respondOK(c, http.StatusOK, tasks)
}

func (s *Server) handleListProjectTasks(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _, ok := s.projectFor(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, s.data.tasksWhere(func(t *model.Task) bool { return t.ProjectID == p.ID }))
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}
	if req.ProjectID == nil || *req.ProjectID <= 0 {
		respondError(c, http.StatusBadRequest, "projectId is required")
		return
	}
	if req.Summary == nil || strings.TrimSpace(*req.Summary) == "" {
		respondError(c, http.StatusBadRequest, "summary is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	role := s.data.role(*req.ProjectID, callerID(c))
	if role == model.RoleUnknown {
		respondError(c, http.StatusNotFound, "Project not found")
		return
	}
	if !perm.CanMutateTasks(role) {
		respondError(c, http.StatusForbidden, "Viewers cannot modify tasks")
		return
	}

	t := model.Task{
		ProjectID:   *req.ProjectID,
		Summary:     strings.TrimSpace(*req.Summary),
		Description: deref(req.Description),
		Status:      statusRef(orDefault(req.StatusID, model.StatusToDo.ID())),
		Priority:    priorityRef(orDefault(req.PriorityID, model.PriorityMedium.ID())),
		Type:        typeRef(orDefault(req.TypeID, model.TypeTask.ID())),
		DueDate:     req.DueDate,
	}
	if req.AssigneeID != nil {
		ref, ok := s.data.assigneeRef(*req.AssigneeID)
		if !ok {
			respondError(c, http.StatusBadRequest, "assignee not found")
			return
		}
		t.Assignee = ref
	}
	now := s.now()
	t.CreatedAt = &now
	created := s.data.insertTask(t)
	respondOK(c, http.StatusCreated, gin.H{"id": created.ID})
}

// taskFor loads a task the caller can mutate, or writes the error response.
func (s *Server) taskFor(c *gin.Context) (*model.Task, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	t, found := s.data.tasks[id]
	if !found {
		respondError(c, http.StatusNotFound, "Task not found")
		return nil, false
	}
	role := s.data.role(t.ProjectID, callerID(c))
	if role == model.RoleUnknown {
		respondError(c, http.StatusNotFound, "Task not found")
		return nil, false
	}
	if !perm.CanMutateTasks(role) {
		respondError(c, http.StatusForbidden, "Viewers cannot modify tasks")
		return nil, false
	}
	return t, true
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.taskFor(c)
	if !ok {
		return
	}
	if req.Summary != nil && strings.TrimSpace(*req.Summary) == "" {
		respondError(c, http.StatusBadRequest, "summary is required")
		return
	}
	var assignee *model.Ref
	if req.AssigneeID != nil {
		if assignee, ok = s.data.assigneeRef(*req.AssigneeID); !ok {
			respondError(c, http.StatusBadRequest, "assignee not found")
			return
		}
	}

	if req.Summary != nil {
		t.Summary = strings.TrimSpace(*req.Summary)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.StatusID != nil {
		t.Status = statusRef(*req.StatusID)
	}
	if req.PriorityID != nil {
		t.Priority = priorityRef(*req.PriorityID)
	}
	if req.TypeID != nil {
		t.Type = typeRef(*req.TypeID)
	}
	if req.AssigneeID != nil {
		t.Assignee = assignee
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	now := s.now()
	t.UpdatedAt = &now
	respondOK(c, http.StatusOK, gin.H{"id": t.ID})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.taskFor(c)
	if !ok {
		return
	}
	delete(s.data.tasks, t.ID)
	respondOK(c, http.StatusOK, gin.H{"id": t.ID})
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
