package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/database"
)

// MigrateCmd returns the command that creates or updates the schema
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), database.Options{
				Driver:       cfg.Database.Driver,
				DSN:          cfg.Database.DSN,
				MaxOpenConns: cfg.Database.MaxOpenConns,
			})
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", cfg.Database.Driver)
			return err
		},
	}

	cmd.Flags().String("config", "", "Path to the config file")
	return cmd
}
