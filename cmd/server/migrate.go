package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/seed"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and load reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync()

		ctx := cmd.Context()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		if err := seed.New(db, cfg.BcryptCost, log).Reference(ctx); err != nil {
			return err
		}
		log.Info("schema migrated", zap.Int("statements", len(database.Statements())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
