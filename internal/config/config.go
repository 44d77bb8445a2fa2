// Package config reads settings from command-line flags and the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/bryan-buckman/vakantie/internal/holidays"
	"github.com/bryan-buckman/vakantie/internal/model"
	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultAddr   = ":8080"
	DefaultDBPath = "vakantie.db"
)

// Config holds the settings for one command.
type Config struct {
	Addr        string
	DBPath      string
	DatabaseURL string
	FeedURL     string
	Timeout     time.Duration

	// One-off overrides; empty means use the stored preference.
	Region     model.Region
	SchoolYear model.SchoolYear

	// Args are the positional arguments left after the flags.
	Args []string
}

// LoadEnv loads a dotenv file into the environment. A missing file is not an
// error; variables already set are not overwritten.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Parse parses flags for the named command. Flags win over environment
// variables, which win over defaults.
func Parse(name string, args []string) (Config, error) {
	var cfg Config
	var region, schoolYear, timeout string

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&cfg.Addr, "addr", "", "HTTP listen address (env VAKANTIE_ADDR)")
	flags.StringVar(&cfg.DBPath, "db", "", "SQLite database path (env VAKANTIE_DB)")
	flags.StringVar(&cfg.DatabaseURL, "database-url", "", "Postgres connection string (env DATABASE_URL)")
	flags.StringVar(&cfg.FeedURL, "feed-url", "", "school holiday API base URL (env VAKANTIE_FEED_URL)")
	flags.StringVar(&timeout, "timeout", "", "feed request timeout (env VAKANTIE_FETCH_TIMEOUT)")
	flags.StringVar(&region, "region", "", "region for this command: Noord, Midden or Zuid")
	flags.StringVar(&schoolYear, "schoolyear", "", "school year for this command, e.g. 2025-2026")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = flags.Args()

	// Fall back to environment variables
	if cfg.Addr == "" {
		cfg.Addr = envOr("VAKANTIE_ADDR", DefaultAddr)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = envOr("VAKANTIE_DB", DefaultDBPath)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = envOr("VAKANTIE_FEED_URL", holidays.DefaultBaseURL)
	}

	if timeout == "" {
		timeout = os.Getenv("VAKANTIE_FETCH_TIMEOUT")
	}
	cfg.Timeout = holidays.DefaultTimeout
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid timeout %q", timeout)
		}
		cfg.Timeout = d
	}

	if region != "" {
		r, err := model.ParseRegion(region)
		if err != nil {
			return Config{}, err
		}
		cfg.Region = r
	}
	if schoolYear != "" {
		y, err := model.ParseSchoolYear(schoolYear)
		if err != nil {
			return Config{}, err
		}
		cfg.SchoolYear = y
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
