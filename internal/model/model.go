package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Project status values as stored by the backend.
const (
	ProjectInactive = 0
	ProjectActive   = 1
)

type ProjectCount struct {
	Tasks int `json:"tasks"`
}

type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      int    `json:"status"`
	OwnerID     int64  `json:"projectOwnerId,omitempty"`

	Count *ProjectCount `json:"_count,omitempty"`

	CreatedOn time.Time  `json:"createdOn"`
	UpdatedOn *time.Time `json:"updatedOn,omitempty"`

	// CurrentUserRole is the caller's effective role on the project.
	CurrentUserRole Role `json:"currentUserRole,omitempty"`
}

func (p Project) TaskCount() int {
	if p.Count == nil {
		return 0
	}
	return p.Count.Tasks
}

func (p Project) Active() bool { return p.Status == ProjectActive }

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Member is a user attached to a project with a role.
type Member struct {
	User
	RoleID Role `json:"roleId"`
}

type Task struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"projectId"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`

	// Status, Priority and Type hold the raw stored value. Use statusutil to
	// resolve them to the closed enumerations.
	Status   Ref `json:"status"`
	Priority Ref `json:"priority"`
	Type     Ref `json:"type"`

	Assignee *Ref  `json:"assignee,omitempty"`
	DueDate  *Date `json:"dueDate,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// AssigneeName returns the display name of the assignee or "".
func (t Task) AssigneeName() string {
	if t.Assignee == nil {
		return ""
	}
	return strings.TrimSpace(t.Assignee.Name)
}

func (t *Task) UnmarshalJSON(b []byte) error {
	type wireTask Task
	var w struct {
		wireTask
		// Legacy payloads carried the summary as "title" and the assignee as "assignedTo".
		Title      json.RawMessage `json:"title"`
		AssignedTo *Ref            `json:"assignedTo"`
		AssigneeID json.RawMessage `json:"assigneeId"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Task(w.wireTask)
	if title := rawString(w.Title); strings.TrimSpace(t.Summary) == "" && strings.TrimSpace(title) != "" {
		t.Summary = title
	}
	if t.Assignee == nil && w.AssignedTo != nil {
		t.Assignee = w.AssignedTo
	}
	if id, ok := rawID(w.AssigneeID); ok {
		if t.Assignee == nil {
			t.Assignee = &Ref{}
		}
		if t.Assignee.ID == 0 {
			t.Assignee.ID = id
		}
	}
	if t.DueDate != nil && t.DueDate.IsZero() {
		t.DueDate = nil
	}
	if t.Assignee != nil && t.Assignee.IsZero() {
		t.Assignee = nil
	}
	return nil
}

// Ref is a loosely-shaped backend reference: it decodes from a bare string
// ("In Progress"), a bare number (2) or an object ({"id":2,"name":"In Progress"}).
// Decoding never fails on an unexpected shape; anything unusable becomes the
// zero Ref, which normalizes to the defaults.
type Ref struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (r Ref) IsZero() bool { return r.ID == 0 && strings.TrimSpace(r.Name) == "" }

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	type wireRef Ref
	return json.Marshal(wireRef(r))
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Ref{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		r.Name = rawString(b)
	case '{':
		var obj struct {
			ID    json.RawMessage `json:"id"`
			Name  json.RawMessage `json:"name"`
			Label json.RawMessage `json:"label"`
			Title json.RawMessage `json:"title"`
		}
		if json.Unmarshal(b, &obj) != nil {
			return nil
		}
		r.ID, _ = rawID(obj.ID)
		for _, raw := range []json.RawMessage{obj.Name, obj.Label, obj.Title} {
			if name := rawString(raw); strings.TrimSpace(name) != "" {
				r.Name = name
				break
			}
		}
		// {"id":"todo"} carries a label in the id slot.
		if r.Name == "" && r.ID == 0 {
			if name := rawString(obj.ID); strings.TrimSpace(name) != "" {
				r.Name = name
			}
		}
	default:
		r.ID, _ = rawID(b)
	}
	return nil
}

// rawString returns the JSON string in b, or "" for any other value.
func rawString(b json.RawMessage) string {
	var s string
	if len(b) == 0 || json.Unmarshal(b, &s) != nil {
		return ""
	}
	return s
}

// rawID accepts an integral JSON number (2, 2.0) or a quoted integer ("2").
func rawID(b json.RawMessage) (int64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0, false
	}
	if b[0] == '"' {
		b = []byte(rawString(b))
	}
	s := strings.TrimSpace(string(b))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false
	}
	return int64(f), true
}

// Date is a calendar date (due dates carry no time-of-day semantics).
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a date string. A value that is not a parseable date
// string decodes to the zero Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}
	s := rawString(bytes.TrimSpace(b))
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
	}
	return nil
}
