package viewstate

import (
	"strings"

	"taskdash/internal/model"
	"taskdash/internal/statusutil"
)

// StatusFilter is either All (the zero value) or a single status.
type StatusFilter struct {
	status model.Status
	set    bool
}

func OnlyStatus(s model.Status) StatusFilter { return StatusFilter{status: s, set: true} }

func (f StatusFilter) All() bool { return !f.set }

func (f StatusFilter) Status() (model.Status, bool) { return f.status, f.set }

func (f StatusFilter) Matches(s model.Status) bool { return !f.set || f.status == s }

// Toggle selects s, or resets to All when s is already selected.
func (f StatusFilter) Toggle(s model.Status) StatusFilter {
	if f.set && f.status == s {
		return StatusFilter{}
	}
	return OnlyStatus(s)
}

func (f StatusFilter) String() string {
	if !f.set {
		return "All"
	}
	return f.status.String()
}

// Key is the persisted/CLI spelling ("" for All).
func (f StatusFilter) Key() string {
	if !f.set {
		return ""
	}
	return flagKey(f.status.String())
}

// ParseStatusFilter accepts "", "all", or anything statusutil.ParseStatus does.
func ParseStatusFilter(s string) (StatusFilter, error) {
	if k := strings.ToLower(strings.TrimSpace(s)); k == "" || k == "all" {
		return StatusFilter{}, nil
	}
	st, err := statusutil.ParseStatus(s)
	if err != nil {
		return StatusFilter{}, err
	}
	return OnlyStatus(st), nil
}

// PriorityFilter is either All (the zero value) or a single priority.
type PriorityFilter struct {
	priority model.Priority
	set      bool
}

func OnlyPriority(p model.Priority) PriorityFilter { return PriorityFilter{priority: p, set: true} }

func (f PriorityFilter) All() bool { return !f.set }

func (f PriorityFilter) Priority() (model.Priority, bool) { return f.priority, f.set }

func (f PriorityFilter) Matches(p model.Priority) bool { return !f.set || f.priority == p }

// Cycle steps All -> Lower -> ... -> Highest -> All.
func (f PriorityFilter) Cycle() PriorityFilter {
	if !f.set {
		return OnlyPriority(model.PriorityLower)
	}
	next := f.priority + 1
	if !next.Valid() {
		return PriorityFilter{}
	}
	return OnlyPriority(next)
}

func (f PriorityFilter) String() string {
	if !f.set {
		return "All"
	}
	return f.priority.String()
}

func (f PriorityFilter) Key() string {
	if !f.set {
		return ""
	}
	return flagKey(f.priority.String())
}

func ParsePriorityFilter(s string) (PriorityFilter, error) {
	if k := strings.ToLower(strings.TrimSpace(s)); k == "" || k == "all" {
		return PriorityFilter{}, nil
	}
	p, err := statusutil.ParsePriority(s)
	if err != nil {
		return PriorityFilter{}, err
	}
	return OnlyPriority(p), nil
}

func flagKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "-")
}

// Criteria is the active filter set of a task view.
type Criteria struct {
	SearchText string
	Status     StatusFilter
	Priority   PriorityFilter
	// MatchAssignee extends the search to the assignee display name.
	MatchAssignee bool
}

func (c Criteria) Active() bool {
	return strings.TrimSpace(c.SearchText) != "" || !c.Status.All() || !c.Priority.All()
}

// Filter returns the tasks matching c in input order. The input is not modified.
func Filter(tasks []model.Task, c Criteria) []model.Task {
	needle := strings.ToLower(c.SearchText)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesSearch(t, needle, c.MatchAssignee) {
			continue
		}
		if !c.Status.Matches(statusutil.StatusOf(t)) {
			continue
		}
		if !c.Priority.Matches(statusutil.PriorityOf(t)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t model.Task, needle string, assignee bool) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Summary), needle) {
		return true
	}
	return assignee && strings.Contains(strings.ToLower(t.AssigneeName()), needle)
}

// FilterProjects returns projects whose title contains search, case-insensitively.
func FilterProjects(projects []model.Project, search string) []model.Project {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if needle == "" || strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}

const (
	EmptyNoTasks   = "No tasks yet"
	EmptyNoMatches = "No tasks match your filters"
)

// EmptyState returns the placeholder for a task view, or "" when visible > 0.
func EmptyState(total, visible int) string {
	switch {
	case visible > 0:
		return ""
	case total == 0:
		return EmptyNoTasks
	default:
		return EmptyNoMatches
	}
}
