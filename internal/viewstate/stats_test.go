package viewstate

import (
	"testing"

	"taskdash/internal/model"
)

func TestComputeStats_CountsEveryTaskOnce(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		task(1, "", "To Do", ""),
		task(2, "", "In Progress", ""),
		task(3, "", "Blocked", ""),
		task(4, "", "Cancelled", ""),
		task(5, "", "Done", ""),
		task(6, "", "Completed", ""),
		task(7, "", "", ""),
		task(8, "", "mystery", ""),
		{ID: 9, Status: model.Ref{ID: 2}},
	}
	got := ComputeStats(tasks)
	want := Stats{ToDo: 3, InProgress: 2, Blocked: 2, Completed: 2}
	if got != want {
		t.Fatalf("expected %+v; got %+v", want, got)
	}
	if got.Total() != len(tasks) {
		t.Fatalf("expected total %d; got %d", len(tasks), got.Total())
	}
	if got.Count(model.StatusDone) != 2 {
		t.Fatalf("expected Count(Done)=2; got %d", got.Count(model.StatusDone))
	}
}

func TestGroupByStatus(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		task(1, "", "Done", ""),
		task(2, "", "To Do", ""),
		task(3, "", "Completed", ""),
	}
	groups := GroupByStatus(tasks)
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups; got %d", len(groups))
	}
	for i, st := range model.Statuses() {
		if groups[i].Status != st {
			t.Fatalf("group %d: expected %v; got %v", i, st, groups[i].Status)
		}
	}
	if got := ids(groups[model.StatusDone].Tasks); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected done group [1 3]; got %v", got)
	}
	if groups[model.StatusBlocked].Tasks == nil {
		t.Fatalf("expected empty groups to be non-nil")
	}
}
