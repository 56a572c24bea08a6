package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"moviereview/pkg/tmdb"
)

const defaultLogLevel = "warn"

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"database.path": "MOVIE_DATABASE",
	"editor":        "EDITOR",
	"tmdb.api_key":  "TMDB_API_KEY",
	"tmdb.base_url": "TMDB_BASE_URL",
	"tmdb.language": "TMDB_LANGUAGE",
	"tmdb.timeout":  "TMDB_TIMEOUT",
	"log.level":     "REVIEW_LOG_LEVEL",
}

// AppConfig captures runtime configuration for the review CLI.
type AppConfig struct {
	DatabasePath string
	Editor       string
	TMDBAPIKey   string
	TMDBBaseURL  string
	TMDBLanguage string
	TMDBTimeout  time.Duration
	LogLevel     string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	for key, env := range envBindings {
		// BindEnv only fails when no key is given.
		_ = configViper.BindEnv(key, env)
	}

	configViper.SetDefault("tmdb.base_url", tmdb.DefaultBaseURL)
	configViper.SetDefault("tmdb.language", tmdb.DefaultLanguage)
	configViper.SetDefault("tmdb.timeout", tmdb.DefaultTimeout)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper. Only the database path is
// required here; the editor and the API key are checked where they are used.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		DatabasePath: configViper.GetString("database.path"),
		Editor:       configViper.GetString("editor"),
		TMDBAPIKey:   configViper.GetString("tmdb.api_key"),
		TMDBBaseURL:  configViper.GetString("tmdb.base_url"),
		TMDBLanguage: configViper.GetString("tmdb.language"),
		TMDBTimeout:  configViper.GetDuration("tmdb.timeout"),
		LogLevel:     configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database path is required (set MOVIE_DATABASE)")
	}
	if c.TMDBTimeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}
	return nil
}
