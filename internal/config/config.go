package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json
}

// HTTPConfig controls the API listener.
type HTTPConfig struct {
	Addr            string   `mapstructure:"addr"`
	ReadTimeout     string   `mapstructure:"read_timeout"`     // duration string, e.g., "10s"
	WriteTimeout    string   `mapstructure:"write_timeout"`    // duration string
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"` // duration string
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig holds the postgres connection string.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, redis or postgres
	Seed   bool   `mapstructure:"seed"`   // load demo fixtures into an empty memory store
}

// MatchingConfig tunes search ranking and match suggestions. Apart from
// Threshold, zero values mean "use the default".
type MatchingConfig struct {
	Threshold      *int    `mapstructure:"threshold"`        // smart match score must exceed this; unset means 30, 0 is honoured
	TopN           int     `mapstructure:"top_n"`            // max smart matches
	NearbyRadiusKm float64 `mapstructure:"nearby_radius_km"` // "nearby" cut-off
	SearchLimit    int     `mapstructure:"search_limit"`     // rows loaded per search
	ScanSchedule   string  `mapstructure:"scan_schedule"`    // cron expression for the match scanner, "off" disables
	ReportedScore  int     `mapstructure:"reported_score"`   // score given to user-reported matches
}

// OpenAIConfig enables AI-written match notifications.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Store    StoreConfig    `mapstructure:"store"`
	Matching MatchingConfig `mapstructure:"matching"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == "" {
		c.HTTP.ReadTimeout = "10s"
	}
	if c.HTTP.WriteTimeout == "" {
		c.HTTP.WriteTimeout = "15s"
	}
	if c.HTTP.ShutdownTimeout == "" {
		c.HTTP.ShutdownTimeout = "5s"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Matching.Threshold == nil {
		threshold := 30
		c.Matching.Threshold = &threshold
	}
	if c.Matching.TopN == 0 {
		c.Matching.TopN = 10
	}
	if c.Matching.NearbyRadiusKm == 0 {
		c.Matching.NearbyRadiusKm = 10
	}
	if c.Matching.SearchLimit == 0 {
		c.Matching.SearchLimit = 50
	}
	if c.Matching.ReportedScore == 0 {
		c.Matching.ReportedScore = 95
	}
	if c.Matching.ScanSchedule == "" {
		c.Matching.ScanSchedule = "@every 10m"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
}

// Validate checks values FillDefaults cannot repair.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "redis":
	case "postgres":
		if strings.TrimSpace(c.Postgres.URL) == "" {
			return fmt.Errorf("store.driver=postgres requires postgres.url")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	for name, v := range map[string]string{
		"http.read_timeout":     c.HTTP.ReadTimeout,
		"http.write_timeout":    c.HTTP.WriteTimeout,
		"http.shutdown_timeout": c.HTTP.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if t := c.Matching.Threshold; t != nil && (*t < 0 || *t > 100) {
		return fmt.Errorf("matching.threshold must be between 0 and 100")
	}
	if c.Matching.NearbyRadiusKm < 0 {
		return fmt.Errorf("matching.nearby_radius_km must be positive")
	}
	return nil
}

// Duration parses a duration field already checked by Validate.
func Duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
