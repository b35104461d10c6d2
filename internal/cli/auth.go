package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		Long:  "Log in with email and password. Without --password the password is read from the first line of stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errors.New("--email is required"))
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return writeErr(cmd, errors.New("password required (pass --password or pipe it on stdin)"))
				}
				password = strings.TrimRight(line, "\r\n")
			}

			res := app.session.Login(cmd.Context(), email, password)
			if !res.OK {
				return writeErr(cmd, errors.New(res.Message))
			}
			u, err := app.session.CurrentUser()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: u, Meta: map[string]any{"baseUrl": app.client.BaseURL()}})
		},
	}

	cmd.Flags().StringVar(&email, "email", envOr("TASKDASH_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&password, "password", envOr("TASKDASH_PASSWORD", ""), "Account password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = app.session.CheckPersistedSession(cmd.Context())
			app.session.Logout(cmd.Context())
			return writeOut(cmd, app, envelope{Data: map[string]any{"state": app.session.State().String()}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			u, err := app.session.CurrentUser()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: map[string]any{
				"id":    u.ID,
				"email": u.Email,
				"state": app.session.State().String(),
			}})
		},
	}
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}
