package cmd

import (
	"context"
	"fmt"
	"time"

	"lostfound/internal/redisclient"
	"lostfound/internal/storage"

	"github.com/spf13/cobra"
)

// redisCmd groups commands for the redis store backend.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Inspect the redis store backend",
}

var redisStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print how many items, matches and messages the redis store holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		rdb, err := redisclient.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		st := storage.NewRedisStore(rdb)
		defer st.Close()

		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		for _, k := range []string{"item", "match", "message"} {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d\n", k, stats[k])
		}
		return nil
	},
}

func init() {
	redisCmd.AddCommand(redisStatsCmd)
	rootCmd.AddCommand(redisCmd)
}
