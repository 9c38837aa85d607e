package cmd

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/cmd/migrate"
	"github.com/gaze-network/ledger-importer/internal/config"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:  "importer",
	Long: `Imports decoded ledger record files into a relational store and publishes committed data`,
}

func init() {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("network", "mainnet", "network of the record files, E.g. `mainnet` or `testnet`")

	// Bind flags to configuration
	config.BindPFlag("network", flags.Lookup("network"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		// Initialize configuration
		config := config.Parse(configFile)

		// Initialize logger
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

// Execute runs the importer command line until ctx is canceled or the command returns.
func Execute(ctx context.Context) error {
	cmd.AddCommand(
		NewRunCommand(),
		migrate.NewMigrateCommand(),
		NewVersionCommand(),
	)
	return errors.WithStack(cmd.ExecuteContext(ctx))
}
