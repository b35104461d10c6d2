package statusutil

import (
	"testing"

	"taskdash/internal/model"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want model.Status
	}{
		{"To Do", model.StatusToDo},
		{"todo", model.StatusToDo},
		{"Pending", model.StatusToDo},
		{"In Progress", model.StatusInProgress},
		{"in-progress", model.StatusInProgress},
		{"Blocked", model.StatusBlocked},
		{"Cancelled", model.StatusBlocked},
		{"CANCELLED", model.StatusBlocked},
		{"cAnCeLlEd", model.StatusBlocked},
		{"Done", model.StatusDone},
		{"Completed", model.StatusDone},
		{"", model.StatusToDo},
		{"   ", model.StatusToDo},
		{"archived-ish", model.StatusToDo},
	}
	for _, tc := range cases {
		if got := NormalizeStatus(tc.in); got != tc.want {
			t.Fatalf("NormalizeStatus(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		in   string
		want model.Priority
	}{
		{"Lower", model.PriorityLower},
		{"low", model.PriorityLower},
		{"Medium", model.PriorityMedium},
		{"High", model.PriorityHigh},
		{"Highest", model.PriorityHighest},
		{"", model.PriorityMedium},
		{"whatever", model.PriorityMedium},
	}
	for _, tc := range cases {
		if got := NormalizePriority(tc.in); got != tc.want {
			t.Fatalf("NormalizePriority(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestNormalizeType(t *testing.T) {
	if got := NormalizeType(""); got != model.TypeTask {
		t.Fatalf("expected default Task; got %v", got)
	}
	if got := NormalizeType("Sub-task"); got != model.TypeSubTask {
		t.Fatalf("expected Sub-task; got %v", got)
	}
	if got := NormalizeType("EPIC"); got != model.TypeEpic {
		t.Fatalf("expected Epic; got %v", got)
	}
}

func TestStatusOf_FallsBackToBackendID(t *testing.T) {
	tk := model.Task{Status: model.Ref{ID: 3}, Priority: model.Ref{ID: 4}, Type: model.Ref{ID: 1}}
	if got := StatusOf(tk); got != model.StatusBlocked {
		t.Fatalf("expected Blocked from id 3; got %v", got)
	}
	if got := PriorityOf(tk); got != model.PriorityHighest {
		t.Fatalf("expected Highest from id 4; got %v", got)
	}
	if got := TypeOf(tk); got != model.TypeEpic {
		t.Fatalf("expected Epic from id 1; got %v", got)
	}

	// Name wins over id.
	tk.Status = model.Ref{ID: 3, Name: "Done"}
	if got := StatusOf(tk); got != model.StatusDone {
		t.Fatalf("expected Done from name; got %v", got)
	}

	// Unknown ids still resolve to the defaults.
	if got := StatusOf(model.Task{Status: model.Ref{ID: 99}}); got != model.StatusToDo {
		t.Fatalf("expected To Do for unknown id; got %v", got)
	}
	if got := PriorityOf(model.Task{}); got != model.PriorityMedium {
		t.Fatalf("expected Medium for missing priority; got %v", got)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    model.Status
		wantErr bool
	}{
		{"todo", model.StatusToDo, false},
		{"in-progress", model.StatusInProgress, false},
		{"In Progress", model.StatusInProgress, false},
		{"3", model.StatusBlocked, false},
		{"cancelled", model.StatusBlocked, false},
		{"done", model.StatusDone, false},
		{"nope", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.wantErr && err == nil {
			t.Fatalf("ParseStatus(%q): expected error", tc.in)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("ParseStatus(%q): unexpected error: %v", tc.in, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("ParseStatus(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]model.Role{
		"admin":  model.RoleAdmin,
		"2":      model.RoleMember,
		"User":   model.RoleMember,
		"viewer": model.RoleViewer,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q): expected %v, got %v (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
