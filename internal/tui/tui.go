package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/notify"
	"taskdash/internal/session"
	"taskdash/internal/store"
)

// Deps are the long-lived collaborators the TUI drives.
type Deps struct {
	Session *session.Session
	Client  *api.Client
	Store   store.Store
	Log     *zap.Logger
}

func Run(deps Deps) error {
	applyThemePreference()
	applyColorProfilePreference()

	// Show and expire transitions arrive from timer goroutines; the model
	// only needs a wake-up to re-render the current notification.
	pings := make(chan struct{}, 1)
	notes := notify.New(notify.WithListener(func(notify.Notification, bool) {
		select {
		case pings <- struct{}{}:
		default:
		}
	}))
	defer notes.Close()

	m := newAppModel(deps, notes, pings)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(appModel); ok {
		fm.closeView()
	}
	return err
}
