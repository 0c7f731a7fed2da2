package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"lostfound/internal/model"
	"lostfound/internal/storage"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var demo []byte

// Fixture is a set of records to load into a repository.
type Fixture struct {
	Profiles []model.Profile `yaml:"profiles"`
	Items    []model.Item    `yaml:"items"`
	Matches  []model.Match   `yaml:"matches"`
	Messages []model.Message `yaml:"messages"`
}

// Counts reports how many records Apply wrote.
type Counts struct {
	Profiles, Items, Matches, Messages int
}

// Load decodes a YAML fixture.
func Load(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return fx, nil
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, err
	}
	defer f.Close()
	return Load(f)
}

// Demo returns the built-in demo fixture.
func Demo() (Fixture, error) {
	return Load(bytes.NewReader(demo))
}

// Apply writes fx through repo. Records whose ID already exists are skipped,
// so applying the same fixture twice is harmless.
func Apply(ctx context.Context, repo storage.Repository, fx Fixture) (Counts, error) {
	var c Counts
	for _, p := range fx.Profiles {
		if _, err := repo.GetProfile(ctx, p.UserID); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return c, err
		}
		if _, err := repo.UpsertProfile(ctx, p); err != nil {
			return c, fmt.Errorf("profile %s: %w", p.UserID, err)
		}
		c.Profiles++
	}
	for _, it := range fx.Items {
		if it.ID != "" {
			if _, err := repo.GetItem(ctx, it.ID); err == nil {
				continue
			} else if !errors.Is(err, storage.ErrNotFound) {
				return c, err
			}
		}
		if _, err := repo.CreateItem(ctx, it); err != nil {
			return c, fmt.Errorf("item %s: %w", it.ID, err)
		}
		c.Items++
	}
	for _, m := range fx.Matches {
		if m.ID != "" {
			if _, err := repo.GetMatch(ctx, m.ID); err == nil {
				continue
			} else if !errors.Is(err, storage.ErrNotFound) {
				return c, err
			}
		}
		if _, err := repo.CreateMatch(ctx, m); err != nil {
			return c, fmt.Errorf("match %s: %w", m.ID, err)
		}
		c.Matches++
	}
	for _, m := range fx.Messages {
		if m.ID != "" {
			n, err := repo.CountMessages(ctx, storage.MessageFilter{ID: m.ID})
			if err != nil {
				return c, err
			}
			if n > 0 {
				continue
			}
		}
		if _, err := repo.CreateMessage(ctx, m); err != nil {
			return c, fmt.Errorf("message %s: %w", m.ID, err)
		}
		c.Messages++
	}
	slog.Info("seed: applied fixture", "profiles", c.Profiles, "items", c.Items, "matches", c.Matches, "messages", c.Messages)
	return c, nil
}
