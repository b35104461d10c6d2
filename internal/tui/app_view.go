package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/model"
	"taskdash/internal/notify"
	"taskdash/internal/statusutil"
)

func (m appModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	switch m.view {
	case viewLogin:
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.login.view(m.width, m.spin.View()))
	case viewProjects:
		body = m.viewProjects()
	default:
		body = m.viewTasks()
	}

	screen := strings.Join([]string{m.viewHeader(), body, m.viewFooter()}, "\n")
	if overlay := m.viewModal(); overlay != "" {
		screen = overlayCenter(screen, overlay, m.width, m.height)
	}
	return screen
}

func (m appModel) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 1 {
		return 1
	}
	return h
}

func (m appModel) viewHeader() string {
	crumb := "Projects"
	if m.view == viewLogin {
		crumb = "Log in"
	} else if m.view == viewTasks {
		if m.scope.All() {
			crumb = "Projects › All tasks"
		} else {
			crumb = "Projects › " + m.projectTitle(m.scope.ProjectID)
		}
	}
	left := styleHeader().Render("taskdash") + "  " + styleBreadcrumb().Render(crumb)
	right := styleMuted().Render(m.userEmail())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	rule := styleMuted().Render(strings.Repeat("─", m.width))
	return left + strings.Repeat(" ", gap) + right + "\n" + rule + "\n"
}

func (m appModel) viewFooter() string {
	var help string
	switch m.view {
	case viewLogin:
		help = ""
	case viewProjects:
		help = "enter: open   a: all tasks   n: new   e: edit   d: delete   m: members   /: search   r: reload   L: log out   q: quit"
	default:
		help = "1-4: status   0: all   p: priority   g: group   /: search   n: new   e: edit   d: delete   enter: details   esc: back"
	}
	lines := []string{m.viewToast(), styleMuted().Width(m.width).Render(help)}
	return strings.Join(lines, "\n")
}

func (m appModel) viewToast() string {
	n, ok := m.notes.Current()
	if !ok {
		return ""
	}
	bg := colorSuccessBg
	if n.Kind == notify.KindError {
		bg = colorErrorBg
	}
	return lipgloss.NewStyle().
		Foreground(colorToastFg).
		Background(bg).
		Padding(0, 1).
		Render(n.Message)
}

func (m appModel) searchLine(current string) string {
	if m.searching {
		return m.search.View()
	}
	if strings.TrimSpace(current) != "" {
		return styleMuted().Render("/ " + current)
	}
	return ""
}

func (m appModel) viewProjects() string {
	lines := []string{m.searchLine(m.projectSearch)}
	switch {
	case m.engine.ProjectsLoading() && len(m.engine.Projects()) == 0:
		lines = append(lines, m.spin.View()+" Loading projects...")
	case len(m.projectsList.Items()) == 0:
		msg := "No projects yet. Press n to create one."
		if strings.TrimSpace(m.projectSearch) != "" {
			msg = "No projects match your search"
		}
		lines = append(lines, styleMuted().Render(msg))
	default:
		lines = append(lines, m.projectsList.View())
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewTasks() string {
	lines := []string{m.viewStats(), m.viewFilters()}
	switch {
	case m.engine.TasksLoading() && len(m.tasksList.Items()) == 0:
		lines = append(lines, m.spin.View()+" Loading tasks...")
	case m.emptyMsg != "":
		lines = append(lines, styleMuted().Render(m.emptyMsg))
	default:
		lines = append(lines, m.tasksList.View())
	}
	return strings.Join(lines, "\n")
}

// viewStats shows counts over the whole loaded collection, not the filtered one.
func (m appModel) viewStats() string {
	stats := m.engine.Stats()
	parts := make([]string, 0, 4)
	for i, st := range model.Statuses() {
		d := st.Display()
		label := fmt.Sprintf("%d %s %s %d", i+1, d.Glyph, d.Label, stats.Count(st))
		if sel, ok := m.criteria.Status.Status(); ok && sel == st {
			parts = append(parts, styleSelected().Render(label))
			continue
		}
		parts = append(parts, displayStyle(d).Render(label))
	}
	return strings.Join(parts, "   ")
}

func (m appModel) viewFilters() string {
	parts := []string{
		"Status: " + m.criteria.Status.String(),
		"Priority: " + m.criteria.Priority.String(),
	}
	if m.grouped {
		parts = append(parts, "grouped")
	}
	line := styleMuted().Render(strings.Join(parts, " · "))
	if s := m.searchLine(m.criteria.SearchText); s != "" {
		line += "   " + s
	}
	return line
}

func (m appModel) viewModal() string {
	switch m.modal {
	case modalConfirmDelete:
		target, ok := m.coord.PendingDelete()
		if !ok {
			return ""
		}
		return renderConfirmModal(m.width, "Confirm delete", deleteBody(target), "Delete", "Cancel", m.confirmFocus, m.deleting)
	case modalTaskEditor:
		return m.taskForm.view(m.width)
	case modalProjectEditor:
		return m.projectForm.view(m.width)
	case modalMembers:
		panel := m.coord.Members()
		return renderMembersPanel(m.width, m.projectTitle(panel.ProjectID), panel, m.memberForm)
	case modalTaskDetail:
		t, ok := m.engine.Task(m.detailID)
		if !ok {
			return ""
		}
		return m.viewTaskDetail(t)
	}
	return ""
}

func (m appModel) viewTaskDetail(t model.Task) string {
	bodyW := modalBodyWidth(m.width)
	rows := []string{
		statusBadge(statusutil.StatusOf(t)) + "   " + priorityBadge(statusutil.PriorityOf(t)) + "   " + statusutil.TypeOf(t).String(),
	}
	var meta []string
	if p := m.projectTitle(t.ProjectID); p != "" {
		meta = append(meta, "Project: "+p)
	}
	if a := t.AssigneeName(); a != "" {
		meta = append(meta, "Assignee: "+a)
	}
	if t.DueDate != nil {
		meta = append(meta, "Due: "+t.DueDate.String())
	}
	if len(meta) > 0 {
		rows = append(rows, styleMuted().Render(strings.Join(meta, " · ")))
	}
	rows = append(rows, "")
	if desc := renderMarkdown(t.Description, bodyW); desc != "" {
		rows = append(rows, desc)
	} else {
		rows = append(rows, styleMuted().Render("No description"))
	}
	rows = append(rows, "", styleMuted().Render("e: edit   esc: close"))
	return renderModalBox(m.width, fmt.Sprintf("#%d %s", t.ID, t.Summary), strings.Join(rows, "\n"))
}
