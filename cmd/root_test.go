package cmd

import (
	"context"
	"log/slog"
	"testing"

	"lostfound/internal/config"

	"github.com/spf13/viper"
)

func TestNewLogger(t *testing.T) {
	l := newLogger(config.AppConfig{LogLevel: "debug", LogFormat: "json"})
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level not enabled")
	}
	l = newLogger(config.AppConfig{LogLevel: "loud"})
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("unknown level should fall back to info")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LOSTFOUND_STORE_DRIVER", "redis")
	t.Setenv("LOSTFOUND_MATCHING_TOP_N", "3")

	v := viper.New()
	configureEnv(v)
	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		t.Fatal(err)
	}
	c.FillDefaults()
	if c.Store.Driver != "redis" || c.Matching.TopN != 3 {
		t.Fatalf("env not applied: driver=%q top_n=%d", c.Store.Driver, c.Matching.TopN)
	}
}

func TestEnvOverrideOriginsAndZeroThreshold(t *testing.T) {
	t.Setenv("LOSTFOUND_HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LOSTFOUND_MATCHING_THRESHOLD", "0")

	v := viper.New()
	configureEnv(v)
	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		t.Fatal(err)
	}
	c.FillDefaults()
	want := []string{"https://a.example", "https://b.example"}
	if len(c.HTTP.AllowedOrigins) != 2 || c.HTTP.AllowedOrigins[0] != want[0] || c.HTTP.AllowedOrigins[1] != want[1] {
		t.Fatalf("allowed origins = %q, want %q", c.HTTP.AllowedOrigins, want)
	}
	if c.Matching.Threshold == nil || *c.Matching.Threshold != 0 {
		t.Fatalf("threshold = %v, want 0", c.Matching.Threshold)
	}
}
