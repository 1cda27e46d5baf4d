// Package cmd holds the command line entry points: the HTTP server and the
// operator commands that share its configuration.
package cmd

import (
	"github.com/ecoreport/api-go/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "ecoreport",
	Short:        "Environmental complaints reporting API",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to an optional YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

// Execute runs the root command. With no subcommand it serves HTTP.
func Execute() error {
	return rootCmd.Execute()
}

// bootstrap loads config, builds the logger and opens a migrated database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := config.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return nil, nil, nil, err
	}

	if err := config.Migrate(db); err != nil {
		log.Error("failed to migrate database", zap.Error(err))
		return nil, nil, nil, err
	}

	return cfg, log, db, nil
}
