package fakeapi

import (
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskdash/internal/model"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("already exists")
)

type userRecord struct {
	model.User
	passwordHash []byte
}

type membership struct {
	ProjectID int64
	UserID    int64
	Role      model.Role
}

// data is the in-memory backing store. Callers hold Server.mu.
type data struct {
	users    map[int64]*userRecord
	projects map[int64]*model.Project
	tasks    map[int64]*model.Task
	members  []membership

	nextUser    int64
	nextProject int64
	nextTask    int64
}

func newData() *data {
	return &data{
		users:    map[int64]*userRecord{},
		projects: map[int64]*model.Project{},
		tasks:    map[int64]*model.Task{},
	}
}

func (d *data) addUser(name, email, password string, cost int) (*userRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := d.userByEmail(email); ok {
		return nil, errDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	d.nextUser++
	u := &userRecord{User: model.User{ID: d.nextUser, Name: name, Email: email}, passwordHash: hash}
	d.users[u.ID] = u
	return u, nil
}

func (d *data) userByEmail(email string) (*userRecord, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range d.users {
		if u.Email == email {
			return u, true
		}
	}
	return nil, false
}

func (d *data) authenticate(email, password string) (*userRecord, bool) {
	u, ok := d.userByEmail(email)
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return nil, false
	}
	return u, true
}

func (d *data) listUsers() []model.User {
	out := make([]model.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// role is the caller's role on a project: owners are admins, otherwise the
// membership role, otherwise RoleUnknown (no access).
func (d *data) role(projectID, userID int64) model.Role {
	p, ok := d.projects[projectID]
	if !ok {
		return model.RoleUnknown
	}
	if p.OwnerID == userID {
		return model.RoleAdmin
	}
	for _, m := range d.members {
		if m.ProjectID == projectID && m.UserID == userID {
			return m.Role
		}
	}
	return model.RoleUnknown
}

func (d *data) createProject(title, description string, status int, ownerID int64, now time.Time) *model.Project {
	d.nextProject++
	p := &model.Project{
		ID:          d.nextProject,
		Title:       title,
		Description: description,
		Status:      status,
		OwnerID:     ownerID,
		CreatedOn:   now,
	}
	d.projects[p.ID] = p
	d.members = append(d.members, membership{ProjectID: p.ID, UserID: ownerID, Role: model.RoleAdmin})
	return p
}

// visibleProjects returns the projects userID can see, annotated with the
// caller's role and task count.
func (d *data) visibleProjects(userID int64) []model.Project {
	out := []model.Project{}
	for _, p := range d.projects {
		role := d.role(p.ID, userID)
		if role == model.RoleUnknown {
			continue
		}
		out = append(out, d.annotate(*p, role))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) annotate(p model.Project, role model.Role) model.Project {
	n := 0
	for _, t := range d.tasks {
		if t.ProjectID == p.ID {
			n++
		}
	}
	p.Count = &model.ProjectCount{Tasks: n}
	p.CurrentUserRole = role
	return p
}

// deleteProject removes the project with its tasks and memberships.
func (d *data) deleteProject(id int64) error {
	if _, ok := d.projects[id]; !ok {
		return errNotFound
	}
	delete(d.projects, id)
	for tid, t := range d.tasks {
		if t.ProjectID == id {
			delete(d.tasks, tid)
		}
	}
	kept := d.members[:0]
	for _, m := range d.members {
		if m.ProjectID != id {
			kept = append(kept, m)
		}
	}
	d.members = kept
	return nil
}

func (d *data) addMember(projectID, userID int64, role model.Role) error {
	for _, m := range d.members {
		if m.ProjectID == projectID && m.UserID == userID {
			return errDuplicate
		}
	}
	d.members = append(d.members, membership{ProjectID: projectID, UserID: userID, Role: role})
	return nil
}

type memberRow struct {
	User   model.User `json:"user"`
	RoleID model.Role `json:"roleId"`
}

func (d *data) projectMembers(projectID int64) []memberRow {
	out := []memberRow{}
	for _, m := range d.members {
		if m.ProjectID != projectID {
			continue
		}
		if u, ok := d.users[m.UserID]; ok {
			out = append(out, memberRow{User: u.User, RoleID: m.Role})
		}
	}
	return out
}

func (d *data) tasksWhere(keep func(*model.Task) bool) []model.Task {
	out := []model.Task{}
	for _, t := range d.tasks {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) insertTask(t model.Task) *model.Task {
	d.nextTask++
	t.ID = d.nextTask
	d.tasks[t.ID] = &t
	return &t
}

func statusRef(id int) model.Ref {
	s, _ := model.StatusFromID(id)
	return model.Ref{ID: int64(id), Name: s.String()}
}

func priorityRef(id int) model.Ref {
	p, _ := model.PriorityFromID(id)
	return model.Ref{ID: int64(id), Name: p.String()}
}

func typeRef(id int) model.Ref {
	t, _ := model.TaskTypeFromID(id)
	return model.Ref{ID: int64(id), Name: t.String()}
}

func (d *data) assigneeRef(id int64) (*model.Ref, bool) {
	u, ok := d.users[id]
	if !ok {
		return nil, false
	}
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return &model.Ref{ID: u.ID, Name: name}, true
}
