package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/jon4hz/cinelog/internal/config"
	"github.com/jon4hz/cinelog/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the database migrations and exit",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if _, err := database.New(cfg.Database.Path); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Info("database migrated", "path", cfg.Database.Path)
}
