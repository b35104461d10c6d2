package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskdash/internal/mutate"
)

type confirmRequiredError struct {
	kind string
	id   int64
}

func (e confirmRequiredError) Error() string {
	return fmt.Sprintf("refusing to delete %s %d without --yes", e.kind, e.id)
}

func errConfirmRequired(kind string, id int64) error {
	return confirmRequiredError{kind: kind, id: id}
}

// outcomeError carries the user-facing message of a failed flow while keeping
// the underlying error matchable.
type outcomeError struct {
	msg string
	err error
}

func (e outcomeError) Error() string { return e.msg }
func (e outcomeError) Unwrap() error { return e.err }

// writeOutcomeErr reports a failed coordinator flow. The message shown is the
// one the flow surfaced, falling back to the error text.
func writeOutcomeErr(cmd *cobra.Command, out mutate.Outcome, err error) error {
	if err == nil {
		err = errors.New(out.Message)
	}
	if out.Message == "" || out.Message == err.Error() {
		return writeErr(cmd, err)
	}
	return writeErr(cmd, outcomeError{msg: out.Message, err: err})
}
