package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/config"
	"taskdash/internal/format"
	"taskdash/internal/logging"
	"taskdash/internal/mutate"
	"taskdash/internal/notify"
	"taskdash/internal/session"
	"taskdash/internal/store"
	"taskdash/internal/tui"
	"taskdash/internal/viewstate"
)

type App struct {
	ConfigPath string
	BaseURL    string
	Format     string
	PrettyJSON bool
	Verbose    bool

	cfg     *config.Config
	log     *zap.Logger
	store   store.Store
	client  *api.Client
	session *session.Session
	notes   *notify.Center
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdash",
		Short:        "Task and project dashboard CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskdash

  # Log in and list projects
  taskdash login --email admin@example.com
  taskdash projects list

  # Filter tasks
  taskdash tasks list --project 3 --status in-progress --search login

  # Direct project lookup (shortcut for: taskdash projects show <id>)
  taskdash 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
		if app.notes != nil {
			app.notes.Close()
		}
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TASKDASH_CONFIG", ""), "Path to config.yaml (default: ~/.taskdash/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "Backend base URL (overrides api.base_url)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|table)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newMembersCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDevServerCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// setup loads config, applies flag overrides and builds the shared
// components. Flags win over the config file, which wins over defaults.
func (app *App) setup(cmd *cobra.Command) error {
	path := app.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return writeErr(cmd, err)
		}
		path = p
	}
	app.ConfigPath = path

	cfg, err := config.Load(path)
	if err != nil {
		return writeErr(cmd, err)
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.API.BaseURL = app.BaseURL
	}
	if flags.Changed("format") {
		cfg.Output.Format = app.Format
	}
	if flags.Changed("pretty") {
		cfg.Output.Pretty = app.PrettyJSON
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	app.Format = cfg.Output.Format
	app.PrettyJSON = cfg.Output.Pretty

	app.log, err = logging.New(cfg.Logging, logging.Options{Verbose: app.Verbose, Interactive: isInteractive(cmd)})
	if err != nil {
		return writeErr(cmd, err)
	}

	app.store, err = store.Open()
	if err != nil {
		return writeErr(cmd, err)
	}
	var creds session.CredentialStore = app.store.FileCredentials()
	if cfg.Session.Store == "sqlite" {
		creds = app.store.SQLiteCredentials()
	}

	timeout, err := cfg.APITimeout()
	if err != nil {
		return writeErr(cmd, err)
	}
	opts := []api.Option{api.WithTimeout(timeout), api.WithLogger(app.log)}
	anon, err := api.New(cfg.API.BaseURL, opts...)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.session = session.New(anon, creds, session.WithLogger(app.log))
	app.client, err = api.New(cfg.API.BaseURL, append(opts, api.WithTokenSource(app.session))...)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.notes = notify.New()
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

var errNotLoggedIn = errors.New("not logged in; run `taskdash login`")

// requireAuth resolves the persisted session and fails unless a user is
// logged in.
func (app *App) requireAuth(ctx context.Context) error {
	if app.session == nil {
		return session.ErrNoSession
	}
	if err := app.session.CheckPersistedSession(ctx); err != nil {
		app.log.Warn("session check failed", zap.Error(err))
	}
	if !app.session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (app *App) engine() *viewstate.Engine {
	return viewstate.New(app.client, app.notes, app.log)
}

func (app *App) coordinator(engine *viewstate.Engine) *mutate.Coordinator {
	opts := []mutate.Option{mutate.WithIdentity(app.session), mutate.WithLogger(app.log)}
	if engine != nil {
		opts = append(opts, mutate.WithEngine(engine))
	}
	return mutate.New(app.client, app.notes, opts...)
}

func runTUI(cmd *cobra.Command, app *App) error {
	if err := app.session.CheckPersistedSession(cmd.Context()); err != nil {
		app.log.Warn("session check failed", zap.Error(err))
	}
	return tui.Run(tui.Deps{
		Session: app.session,
		Client:  app.client,
		Store:   app.store,
		Log:     app.log,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
