// Package command contains the CLI command constructors.
package command

import (
	"context"
	"fmt"

	"github.com/alwitt/reporter/config"
	"github.com/apex/log"
	"github.com/spf13/cobra"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	var configFilePath string
	cmd := &cobra.Command{
		Use:          "reporter [command] [flags]",
		Short:        "Test run results reporting service",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFilePath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := installLogHandler(cfg.Log, cmd.ErrOrStderr()); err != nil {
				return err
			}
			log.WithField("config", cfg.Redacted()).Debug("Configuration loaded")
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(
		&configFilePath,
		"config", "c",
		"",
		"path to the YAML configuration file",
	)

	cmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		userCommand(),
		eventsCommand(),
	)

	return cmd
}
