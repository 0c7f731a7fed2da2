package cmd

import (
	"context"
	"fmt"
	"time"

	"lostfound/internal/storage"

	"github.com/spf13/cobra"
)

// migrateCmd applies the postgres schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the postgres schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is not set")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pg, err := storage.NewPostgresStore(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(migrateCmd)
}
