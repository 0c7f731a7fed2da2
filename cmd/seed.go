package cmd

import (
	"context"
	"fmt"
	"time"

	"lostfound/internal/seed"
	"lostfound/internal/storage"

	"github.com/spf13/cobra"
)

var seedFile string

// seedCmd loads a YAML fixture into the configured store.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo or fixture data into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		fx, err := seed.Demo()
		if seedFile != "" {
			fx, err = seed.LoadFile(seedFile)
		}
		if err != nil {
			return err
		}
		if cfg.Store.Driver == "memory" {
			fmt.Fprintln(cmd.ErrOrStderr(), "store.driver is memory: data is discarded on exit")
		}

		repo, err := storage.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		c, err := seed.Apply(ctx, repo, fx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d profiles, %d items, %d matches, %d messages\n",
			c.Profiles, c.Items, c.Matches, c.Messages)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture (default: built-in demo data)")
	rootCmd.AddCommand(seedCmd)
}
