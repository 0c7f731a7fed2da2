package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lostfound/internal/api"
	"lostfound/internal/config"
	"lostfound/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the match scanner",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		h := api.NewHandler(a.repo, a.search, a.matching, a.messaging)
		srv := &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      api.NewRouter(h, cfg.HTTP.AllowedOrigins),
			ReadTimeout:  config.Duration(cfg.HTTP.ReadTimeout, 10*time.Second),
			WriteTimeout: config.Duration(cfg.HTTP.WriteTimeout, 15*time.Second),
		}

		ws := []worker.Worker{
			&worker.HTTPServer{Server: srv, ShutdownTimeout: config.Duration(cfg.HTTP.ShutdownTimeout, 5*time.Second)},
			&worker.MatchScanner{Scanner: a.matching, Schedule: cfg.Matching.ScanSchedule},
		}
		slog.Info("serve: starting", "addr", cfg.HTTP.Addr, "store", cfg.Store.Driver, "scan_schedule", cfg.Matching.ScanSchedule)
		mgr := worker.NewManager(ws...)

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("serve: received signal, shutting down", "signal", s.String())
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
