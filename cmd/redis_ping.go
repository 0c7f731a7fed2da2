package cmd

import (
	"context"
	"fmt"
	"time"

	"lostfound/internal/redisclient"

	"github.com/spf13/cobra"
)

// pingCmd checks that the configured Redis server answers.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the configured Redis server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		rdb, err := redisclient.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "PONG from %s (db %d) in %s\n", cfg.Redis.Addr, cfg.Redis.DB, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	redisCmd.AddCommand(pingCmd)
}
