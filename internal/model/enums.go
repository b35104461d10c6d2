package model

// Status is the closed set of task statuses shown to users.
type Status int

const (
	StatusToDo Status = iota
	StatusInProgress
	StatusBlocked
	StatusDone

	statusCount
)

// Priority is the closed set of task priorities.
type Priority int

const (
	PriorityLower Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityHighest

	priorityCount
)

// TaskType is the closed set of task types.
type TaskType int

const (
	TypeEpic TaskType = iota
	TypeStory
	TypeTask
	TypeSubTask

	typeCount
)

// Role is the caller's numeric, externally assigned role on a project.
type Role int

const (
	RoleUnknown Role = 0
	RoleAdmin   Role = 1
	RoleMember  Role = 2
	RoleViewer  Role = 3
)

// Display carries the presentation metadata attached to an enum variant.
// Colors are ANSI 256 / hex strings for light and dark terminals.
type Display struct {
	Label string
	Glyph string
	Light string
	Dark  string
}

var statusDisplay = [statusCount]Display{
	StatusToDo:       {Label: "To Do", Glyph: "○", Light: "240", Dark: "250"},
	StatusInProgress: {Label: "In Progress", Glyph: "◔", Light: "27", Dark: "75"},
	StatusBlocked:    {Label: "Blocked", Glyph: "⊘", Light: "160", Dark: "203"},
	StatusDone:       {Label: "Done", Glyph: "●", Light: "28", Dark: "114"},
}

var priorityDisplay = [priorityCount]Display{
	PriorityLower:   {Label: "Lower", Glyph: "↓", Light: "242", Dark: "246"},
	PriorityMedium:  {Label: "Medium", Glyph: "•", Light: "25", Dark: "111"},
	PriorityHigh:    {Label: "High", Glyph: "↑", Light: "166", Dark: "215"},
	PriorityHighest: {Label: "Highest", Glyph: "⇈", Light: "124", Dark: "196"},
}

var typeDisplay = [typeCount]Display{
	TypeEpic:    {Label: "Epic", Glyph: "◆", Light: "91", Dark: "177"},
	TypeStory:   {Label: "Story", Glyph: "▣", Light: "28", Dark: "114"},
	TypeTask:    {Label: "Task", Glyph: "☐", Light: "25", Dark: "111"},
	TypeSubTask: {Label: "Sub-task", Glyph: "↳", Light: "240", Dark: "250"},
}

// Statuses returns all statuses in display order.
func Statuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusBlocked, StatusDone}
}

func Priorities() []Priority {
	return []Priority{PriorityLower, PriorityMedium, PriorityHigh, PriorityHighest}
}

func TaskTypes() []TaskType {
	return []TaskType{TypeEpic, TypeStory, TypeTask, TypeSubTask}
}

func (s Status) Valid() bool   { return s >= 0 && s < statusCount }
func (p Priority) Valid() bool { return p >= 0 && p < priorityCount }
func (t TaskType) Valid() bool { return t >= 0 && t < typeCount }

func (s Status) Display() Display {
	if !s.Valid() {
		return statusDisplay[StatusToDo]
	}
	return statusDisplay[s]
}

func (p Priority) Display() Display {
	if !p.Valid() {
		return priorityDisplay[PriorityMedium]
	}
	return priorityDisplay[p]
}

func (t TaskType) Display() Display {
	if !t.Valid() {
		return typeDisplay[TypeTask]
	}
	return typeDisplay[t]
}

func (s Status) String() string   { return s.Display().Label }
func (p Priority) String() string { return p.Display().Label }
func (t TaskType) String() string { return t.Display().Label }

// Backend enum ids are 1-based in display order.

func (s Status) ID() int   { return int(s) + 1 }
func (p Priority) ID() int { return int(p) + 1 }
func (t TaskType) ID() int { return int(t) + 1 }

func StatusFromID(id int) (Status, bool) {
	s := Status(id - 1)
	return s, s.Valid()
}

func PriorityFromID(id int) (Priority, bool) {
	p := Priority(id - 1)
	return p, p.Valid()
}

func TaskTypeFromID(id int) (TaskType, bool) {
	t := TaskType(id - 1)
	return t, t.Valid()
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleMember:
		return "Member"
	case RoleViewer:
		return "Viewer"
	default:
		return "Unknown"
	}
}

func (r Role) Valid() bool { return r >= RoleAdmin && r <= RoleViewer }

// Enums encode as their display label in JSON output.

func (s Status) MarshalText() ([]byte, error)   { return []byte(s.String()), nil }
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (t TaskType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
