package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"admission-portal/internal/common/database"
	"admission-portal/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the Postgres schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.Ping(cmd.Context()); err != nil {
			return err
		}
		if err := store.Migrate(cmd.Context(), pg.DB); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s\n", cfg.Database.Postgres.Database)
		return nil
	},
}
