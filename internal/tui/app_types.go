package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/mutate"
	"taskdash/internal/session"
	"taskdash/internal/viewstate"
)

type view int

const (
	viewLogin view = iota
	viewProjects
	viewTasks
)

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmDelete
	modalTaskEditor
	modalProjectEditor
	modalMembers
	modalTaskDetail
)

type loginDoneMsg struct{ res session.LoginResult }

type loggedOutMsg struct{}

type projectsLoadedMsg struct{ err error }

type tasksLoadedMsg struct {
	scope viewstate.Scope
	err   error
}

type taskSavedMsg struct {
	out mutate.Outcome
	err error
}

type projectSavedMsg struct {
	out mutate.Outcome
	err error
}

type deleteDoneMsg struct {
	target mutate.Target
	out    mutate.Outcome
	err    error
}

type membersLoadedMsg struct{ err error }

type memberAddedMsg struct {
	out mutate.Outcome
	err error
}

// toastMsg wakes the model when the visible notification changes.
type toastMsg struct{}

func waitForToast(pings <-chan struct{}) tea.Cmd {
	if pings == nil {
		return nil
	}
	return func() tea.Msg {
		<-pings
		return toastMsg{}
	}
}
