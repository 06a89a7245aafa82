// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/ledger-import/internal/config"
	"fjacquet/ledger-import/internal/container"
	"fjacquet/ledger-import/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands. It is replaced by the
	// configured logger once the container is built.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// ConfigFile is the value of the --config flag.
	ConfigFile string

	// AppContainer holds the wired dependencies for the running command.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "ledger-import",
		Short: "Import bank statement CSV files into a categorized ledger.",
		Long: `ledger-import reads bank statement exports, classifies each row with
keyword tables (asking on the terminal when nothing matches), removes
duplicates by content fingerprint and stores the result in PostgreSQL or SQLite.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig(ConfigFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			c, err := container.NewContainer(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			AppContainer = c
			Log = c.GetLogger()
			return nil
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "config file (default searches $HOME/.ledger-import, .ledger-import and .)")
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application container not initialized")
	}
	return AppContainer, nil
}

// Close releases the resources of the container built for the command. It is
// called after Execute so the database is closed even when the command failed.
func Close() error {
	if AppContainer == nil {
		return nil
	}
	err := AppContainer.Close()
	AppContainer = nil
	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
