package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"lostfound/internal/geo"
	"lostfound/internal/model"
	"lostfound/internal/search"

	"github.com/spf13/cobra"
)

var (
	searchCategory  string
	searchStatus    string
	searchTimeRange string
	searchLat       float64
	searchLng       float64
)

// searchCmd runs a ranked search against the configured store.
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search open listings and print scored results",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		req := search.Request{
			Category:  searchCategory,
			Status:    model.Status(searchStatus),
			TimeRange: searchTimeRange,
		}
		if len(args) == 1 {
			req.Query = args[0]
		}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			req.UserLocation = &geo.Point{Lat: searchLat, Lng: searchLng}
		}
		resp, err := a.search.Search(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCORE\tSTATUS\tTITLE\tLOCATION\tDISTANCE")
		for _, r := range resp.Results {
			dist := "-"
			if r.DistanceKm != nil {
				dist = fmt.Sprintf("%.1f km", *r.DistanceKm)
			}
			badge := ""
			if r.StrongMatch {
				badge = " *"
			}
			fmt.Fprintf(tw, "%d%s\t%s\t%s\t%s\t%s\n", r.SimilarityScore, badge, r.Status, r.Title, r.Location, dist)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d results, %d smart matches, %d nearby\n", len(resp.Results), len(resp.SmartMatches), len(resp.Nearby))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "filter by category")
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "filter by status (lost|found)")
	searchCmd.Flags().StringVar(&searchTimeRange, "time-range", "", "today, week or month")
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "your latitude")
	searchCmd.Flags().Float64Var(&searchLng, "lng", 0, "your longitude")
	rootCmd.AddCommand(searchCmd)
}
