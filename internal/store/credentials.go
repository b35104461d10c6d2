package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"
)

const credentialsFileName = "credentials.json"

// CredentialUser is the minimal profile persisted next to the token.
type CredentialUser struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
}

// Credential is the persisted login: a bearer token plus the profile it belongs to.
type Credential struct {
	Token   string         `json:"token"`
	User    CredentialUser `json:"user"`
	SavedAt time.Time      `json:"savedAt"`
}

// Complete reports whether both halves of the pair are present.
func (c *Credential) Complete() bool {
	return c != nil && strings.TrimSpace(c.Token) != "" && strings.TrimSpace(c.User.Email) != ""
}

// FileCredentials persists the credential as a 0600 JSON file.
type FileCredentials struct {
	Path string
}

func (s Store) FileCredentials() *FileCredentials {
	return &FileCredentials{Path: s.path(credentialsFileName)}
}

// Load returns (nil, nil) when nothing is stored or the stored pair is incomplete.
func (f *FileCredentials) Load(_ context.Context) (*Credential, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var c Credential
	if err := json.Unmarshal(b, &c); err != nil {
		// Corrupted file is treated as missing.
		return nil, nil
	}
	if !c.Complete() {
		return nil, nil
	}
	return &c, nil
}

func (f *FileCredentials) Save(_ context.Context, c Credential) error {
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now().UTC()
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(f.Path, b, 0o600)
}

func (f *FileCredentials) Clear(_ context.Context) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
