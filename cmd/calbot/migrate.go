package main

import (
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/guilherme-santos/calbot/internal/sqlite"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the session database",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			storage, err := sqlite.Open(a.cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			a.logger.Info("database is up to date", slog.String("path", a.cfg.Database.Path))
			return storage.Close()
		},
	}
}
