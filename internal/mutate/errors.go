package mutate

import (
	"errors"
	"fmt"
)

var (
	ErrNoConfirmation = errors.New("no deletion awaiting confirmation")
	ErrDeleteInFlight = errors.New("a deletion is already in progress")
	ErrReadOnly       = errors.New("read-only access: viewers cannot modify tasks")
	ErrNotAdmin       = errors.New("only project admins can do this")
	ErrNoProject      = errors.New("no project selected")
	ErrNoUser         = errors.New("User not logged in or ID missing")
)

type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// ValidationError is a client-side form error; nothing was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}
