package statusutil

import (
	"fmt"
	"strings"

	"taskdash/internal/model"
)

func key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeStatus maps a raw or legacy status label to a display status.
// "Cancelled" is treated as Blocked; anything unrecognized is To Do.
func NormalizeStatus(raw string) model.Status {
	switch key(raw) {
	case "in progress", "inprogress", "doing", "started", "active":
		return model.StatusInProgress
	case "blocked", "cancelled", "canceled", "on hold":
		return model.StatusBlocked
	case "done", "completed", "complete", "closed", "resolved":
		return model.StatusDone
	default:
		// "to do", "todo", "pending", "new", "open", "" and anything else.
		return model.StatusToDo
	}
}

// NormalizePriority maps a raw priority label; anything unrecognized is Medium.
func NormalizePriority(raw string) model.Priority {
	switch key(raw) {
	case "lower", "low", "lowest", "minor", "trivial":
		return model.PriorityLower
	case "high", "major":
		return model.PriorityHigh
	case "highest", "urgent", "critical", "blocker":
		return model.PriorityHighest
	default:
		return model.PriorityMedium
	}
}

// NormalizeType maps a raw task type label; anything unrecognized is Task.
func NormalizeType(raw string) model.TaskType {
	switch key(raw) {
	case "epic":
		return model.TypeEpic
	case "story", "user story":
		return model.TypeStory
	case "sub task", "subtask":
		return model.TypeSubTask
	default:
		return model.TypeTask
	}
}

// StatusOf resolves a task's stored status. A name wins over an id; an id is
// only consulted when the backend sent no name.
func StatusOf(t model.Task) model.Status {
	if strings.TrimSpace(t.Status.Name) == "" && t.Status.ID != 0 {
		if s, ok := model.StatusFromID(int(t.Status.ID)); ok {
			return s
		}
	}
	return NormalizeStatus(t.Status.Name)
}

func PriorityOf(t model.Task) model.Priority {
	if strings.TrimSpace(t.Priority.Name) == "" && t.Priority.ID != 0 {
		if p, ok := model.PriorityFromID(int(t.Priority.ID)); ok {
			return p
		}
	}
	return NormalizePriority(t.Priority.Name)
}

func TypeOf(t model.Task) model.TaskType {
	if strings.TrimSpace(t.Type.Name) == "" && t.Type.ID != 0 {
		if ty, ok := model.TaskTypeFromID(int(t.Type.ID)); ok {
			return ty
		}
	}
	return NormalizeType(t.Type.Name)
}

// ParseStatus is the strict variant used for user input (flags, pickers).
// It accepts labels, aliases and backend ids ("1".."4").
func ParseStatus(s string) (model.Status, error) {
	k := key(s)
	for _, st := range model.Statuses() {
		if k == key(st.String()) || k == fmt.Sprint(st.ID()) {
			return st, nil
		}
	}
	switch k {
	case "todo", "inprogress", "doing", "cancelled", "canceled", "completed":
		return NormalizeStatus(k), nil
	}
	return 0, fmt.Errorf("invalid status: %q (want one of: to-do, in-progress, blocked, done)", s)
}

func ParsePriority(s string) (model.Priority, error) {
	k := key(s)
	for _, p := range model.Priorities() {
		if k == key(p.String()) || k == fmt.Sprint(p.ID()) {
			return p, nil
		}
	}
	switch k {
	case "low", "urgent":
		return NormalizePriority(k), nil
	}
	return 0, fmt.Errorf("invalid priority: %q (want one of: lower, medium, high, highest)", s)
}

func ParseType(s string) (model.TaskType, error) {
	k := key(s)
	for _, ty := range model.TaskTypes() {
		if k == key(ty.String()) || k == fmt.Sprint(ty.ID()) {
			return ty, nil
		}
	}
	if k == "subtask" {
		return model.TypeSubTask, nil
	}
	return 0, fmt.Errorf("invalid type: %q (want one of: epic, story, task, sub-task)", s)
}

func ParseRole(s string) (model.Role, error) {
	switch key(s) {
	case "1", "admin":
		return model.RoleAdmin, nil
	case "2", "member", "user":
		return model.RoleMember, nil
	case "3", "viewer", "read only", "readonly":
		return model.RoleViewer, nil
	default:
		return model.RoleUnknown, fmt.Errorf("invalid role: %q (want admin, member or viewer)", s)
	}
}
