package cmd

import (
	"context"
	"fmt"

	"lostfound/internal/ai"
	"lostfound/internal/config"
	"lostfound/internal/geo"
	"lostfound/internal/matching"
	"lostfound/internal/messaging"
	"lostfound/internal/search"
	"lostfound/internal/seed"
	"lostfound/internal/storage"
)

// app bundles the services every command builds on.
type app struct {
	repo      storage.Repository
	search    *search.Service
	matching  *matching.Service
	messaging *messaging.Service
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Seed && cfg.Store.Driver == "memory" {
		fx, err := seed.Demo()
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("load demo fixture: %w", err)
		}
		if _, err := seed.Apply(ctx, repo, fx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	notifier := ai.New(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
	return &app{
		repo: repo,
		search: search.New(repo, geo.NewCityTable(), search.Options{
			Threshold: cfg.Matching.Threshold,
			TopN:      cfg.Matching.TopN,
			RadiusKm:  cfg.Matching.NearbyRadiusKm,
			Limit:     cfg.Matching.SearchLimit,
		}),
		matching: matching.New(repo, notifier, matching.Options{
			Threshold:     cfg.Matching.Threshold,
			TopN:          cfg.Matching.TopN,
			ReportedScore: cfg.Matching.ReportedScore,
		}),
		messaging: messaging.New(repo),
	}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}
