package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
)

// Scanner records match suggestions; implemented by matching.Service.
type Scanner interface {
	Scan(ctx context.Context) (int, error)
}

// MatchScanner runs Scanner once at start and then on a cron schedule.
type MatchScanner struct {
	Scanner  Scanner
	Schedule string // cron expression, e.g. "@every 10m"; "off" runs only at start
}

func (w *MatchScanner) Start(ctx context.Context) error {
	schedule := strings.TrimSpace(w.Schedule)
	if schedule == "" {
		schedule = "@every 10m"
	}

	// initial run
	w.runOnce(ctx)

	if strings.EqualFold(schedule, "off") {
		<-ctx.Done()
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { w.runOnce(ctx) }); err != nil {
		return fmt.Errorf("match-scanner: bad schedule %q: %w", schedule, err)
	}
	c.Start()
	slog.Info("match-scanner: scheduled", "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (w *MatchScanner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := w.Scanner.Scan(ctx)
	if err != nil {
		slog.Error("match-scanner: scan error", "error", err, "created", n)
		return
	}
	slog.Info("match-scanner: completed", "created", n)
}
