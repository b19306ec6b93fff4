package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourusername/freelancedesk/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Long: `Run schema migrations for the SQL backend selected by STORE_BACKEND.
The in-memory backend has no schema, so this is a no-op there.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg, log)
		if err != nil {
			return err
		}
		if db == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "memory backend selected, nothing to migrate")
			return nil
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := config.Migrate(db); err != nil {
			return err
		}
		log.Info("Migrations applied")
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
