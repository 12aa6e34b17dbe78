package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/incident-report-tracker/internal/config"
	"github.com/iliyamo/incident-report-tracker/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadDatabase()
			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			log.WithField("database", cfg.DBName).Info("schema is up to date")
			return nil
		},
	}
}
