package cmd

import "github.com/spf13/cobra"

// dbCmd groups database subcommands.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Postgres utilities",
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
