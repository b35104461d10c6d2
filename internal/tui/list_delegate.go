package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"taskdash/internal/model"
	"taskdash/internal/statusutil"
)

type projectItem struct {
	project model.Project
}

func (i projectItem) FilterValue() string { return i.project.Title }

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Summary }

func newList(items []list.Item, d list.ItemDelegate) list.Model {
	l := list.New(items, d, 0, 0)
	// Chrome and filtering are drawn by the app model.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	return l
}

// fitLine pads or cuts s to exactly w cells.
func fitLine(s string, w int) string {
	sw := xansi.StringWidth(s)
	switch {
	case sw < w:
		return s + strings.Repeat(" ", w-sw)
	case sw > w:
		return xansi.Cut(s, 0, w)
	}
	return s
}

type projectDelegate struct{}

func (projectDelegate) Height() int                             { return 1 }
func (projectDelegate) Spacing() int                            { return 0 }
func (projectDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(projectItem)
	if !ok || m.Width() < 4 {
		return
	}
	p := it.project
	meta := fmt.Sprintf("%d tasks · %s", p.TaskCount(), p.CurrentUserRole)
	if !p.Active() {
		meta += " · inactive"
	}
	titleW := m.Width() - xansi.StringWidth(meta) - 4
	if titleW < 8 {
		titleW = 8
	}
	line := "  " + fitLine(p.Title, titleW) + "  " + meta
	if index == m.Index() {
		fmt.Fprint(w, styleSelected().Render(fitLine(line, m.Width())))
		return
	}
	fmt.Fprint(w, fitLine(line, m.Width()))
}

type taskDelegate struct {
	showProject func(id int64) string
}

func (taskDelegate) Height() int                             { return 1 }
func (taskDelegate) Spacing() int                            { return 0 }
func (taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok || m.Width() < 4 {
		return
	}
	t := it.task
	status := lipgloss.NewStyle().Width(14).Render(statusBadge(statusutil.StatusOf(t)))
	prio := lipgloss.NewStyle().Width(11).Render(priorityBadge(statusutil.PriorityOf(t)))
	kind := typeBadge(statusutil.TypeOf(t))

	var meta []string
	if d.showProject != nil {
		if name := d.showProject(t.ProjectID); name != "" {
			meta = append(meta, name)
		}
	}
	if a := t.AssigneeName(); a != "" {
		meta = append(meta, "@"+a)
	} else if t.Assignee != nil && t.Assignee.ID != 0 {
		meta = append(meta, "@"+strconv.FormatInt(t.Assignee.ID, 10))
	}
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.String())
	}
	tail := ""
	if len(meta) > 0 {
		tail = styleMuted().Render(strings.Join(meta, " · "))
	}

	prefix := "  " + status + " " + prio + " " + kind + " "
	summaryW := m.Width() - xansi.StringWidth(prefix) - xansi.StringWidth(tail) - 2
	if summaryW < 8 {
		summaryW = 8
	}
	line := fitLine(prefix+fitLine(t.Summary, summaryW)+"  "+tail, m.Width())
	if index == m.Index() {
		fmt.Fprint(w, styleSelected().Render(xansi.Strip(line)))
		return
	}
	fmt.Fprint(w, line)
}
