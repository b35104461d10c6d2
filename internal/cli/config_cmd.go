package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskdash/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Client configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file + env + flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, envelope{Data: app.cfg, Meta: map[string]any{"path": app.ConfigPath}})
		},
	})
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(app.ConfigPath); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config already exists: %s (use --force to overwrite)", app.ConfigPath))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return writeErr(cmd, err)
			}
			cfg := config.DefaultConfig()
			if cmd.Flags().Changed("base-url") {
				cfg.API.BaseURL = app.BaseURL
			}
			if err := cfg.Save(app.ConfigPath); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: cfg, Meta: map[string]any{"path": app.ConfigPath}})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}
