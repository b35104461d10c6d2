package store

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small, user-facing UI state for restoring the last screen on relaunch.
// Best effort: callers should tolerate missing/invalid data.
type TUIState struct {
	Version int `json:"version"`

	// View is one of: projects|tasks|all-tasks
	View string `json:"view,omitempty"`

	SelectedProjectID int64 `json:"selectedProjectId,omitempty"`

	// Filters use the CLI spellings ("in-progress", "high"); empty means All.
	StatusFilter   string `json:"statusFilter,omitempty"`
	PriorityFilter string `json:"priorityFilter,omitempty"`
	Search         string `json:"search,omitempty"`

	Grouped bool `json:"grouped,omitempty"`
}

func (s Store) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &TUIState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.path(tuiStateFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, tuiStateFileName+".*.tmp", s.path(tuiStateFileName), b, 0o644)
}
