package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"lostfound/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "lostfound",
	Short:         "Lost & found marketplace service",
	Long:          "Lost and found listings, search ranking, match suggestions and messaging over an HTTP API.",
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	v := viper.GetViper()
	configureEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lostfound")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	if err := appCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(appCfg.App))
}

// configureEnv maps LOSTFOUND_SECTION_KEY variables onto section.key. Keys
// are bound explicitly so Unmarshal sees them even without a config file.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("LOSTFOUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range []string{
		"app.log_level", "app.log_format",
		"http.addr", "http.read_timeout", "http.write_timeout", "http.shutdown_timeout",
		"http.allowed_origins",
		"redis.addr", "redis.username", "redis.password", "redis.db",
		"postgres.url",
		"store.driver", "store.seed",
		"matching.threshold", "matching.top_n", "matching.nearby_radius_km",
		"matching.search_limit", "matching.scan_schedule", "matching.reported_score",
		"openai.api_key", "openai.model", "openai.base_url",
	} {
		_ = v.BindEnv(k)
	}
}

func newLogger(c config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}
