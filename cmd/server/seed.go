package main

import (
	"github.com/spf13/cobra"

	"github.com/sidago/crm-api/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert reference data and the demo accounts",
	Long: "Insert roles, timezones, lead and contact types, and three demo " +
		"accounts per role (admin1..3, backoffice1..3, agent1..3 @example.com) " +
		"with password " + seed.DemoPassword + ". Existing rows are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync()

		s := seed.New(db, cfg.BcryptCost, log)
		if err := s.Reference(cmd.Context()); err != nil {
			return err
		}
		return s.DemoUsers(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
