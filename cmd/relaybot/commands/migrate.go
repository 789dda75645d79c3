package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQLite schema migrations and exit",
		Long: `Apply every pending embedded migration to the SQLite database named by
database.path. MongoDB needs no migrations.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	path := configPath(cmd)
	cfg, err := config.LoadDatabaseConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)

	if cfg.Database.Driver != "sqlite" {
		log.Info("Nothing to migrate", "driver", cfg.Database.Driver)
		return nil
	}

	db, err := database.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cfg.Database.Path, err)
	}
	defer database.CloseDB(db)

	version, err := database.ApplyMigrations(db.DB, database.ExtractDBNameFromPath(cfg.Database.Path))
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", cfg.Database.Path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", cfg.Database.Path, version)
	return nil
}
