package viewstate

import (
	"taskdash/internal/model"
	"taskdash/internal/statusutil"
)

// Stats counts tasks by normalized status over a whole collection.
type Stats struct {
	ToDo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Blocked    int `json:"blocked"`
	Completed  int `json:"completed"`
}

func (s Stats) Total() int { return s.ToDo + s.InProgress + s.Blocked + s.Completed }

func (s Stats) Count(st model.Status) int {
	switch st {
	case model.StatusInProgress:
		return s.InProgress
	case model.StatusBlocked:
		return s.Blocked
	case model.StatusDone:
		return s.Completed
	default:
		return s.ToDo
	}
}

func ComputeStats(tasks []model.Task) Stats {
	var s Stats
	for _, t := range tasks {
		switch statusutil.StatusOf(t) {
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusBlocked:
			s.Blocked++
		case model.StatusDone:
			s.Completed++
		default:
			s.ToDo++
		}
	}
	return s
}

type StatusGroup struct {
	Status model.Status `json:"status"`
	Tasks  []model.Task `json:"tasks"`
}

// GroupByStatus returns one group per status in display order, each keeping
// input order.
func GroupByStatus(tasks []model.Task) []StatusGroup {
	statuses := model.Statuses()
	groups := make([]StatusGroup, len(statuses))
	for i, st := range statuses {
		groups[i] = StatusGroup{Status: st, Tasks: []model.Task{}}
	}
	for _, t := range tasks {
		st := statusutil.StatusOf(t)
		groups[st].Tasks = append(groups[st].Tasks, t)
	}
	return groups
}
