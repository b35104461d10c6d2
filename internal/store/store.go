package store

import (
	"os"
	"path/filepath"
	"strings"
)

// Store is the per-user client state directory (credentials, TUI state).
type Store struct {
	Dir string
}

// Open returns the store rooted at ConfigDir.
func Open() (Store, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: dir}, nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o700)
}

func (s Store) path(name string) string {
	return filepath.Join(s.Dir, name)
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.taskdash).
	if v := strings.TrimSpace(os.Getenv("TASKDASH_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdash"), nil
}
