package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bryan-buckman/vakantie/internal/holidays"
	"github.com/bryan-buckman/vakantie/internal/model"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"VAKANTIE_ADDR", "VAKANTIE_DB", "DATABASE_URL", "VAKANTIE_FEED_URL", "VAKANTIE_FETCH_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse("serve", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.FeedURL != holidays.DefaultBaseURL {
		t.Errorf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.Timeout != holidays.DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.Region != "" || cfg.SchoolYear != "" {
		t.Errorf("overrides should be empty: %q %q", cfg.Region, cfg.SchoolYear)
	}
}

func TestParseEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("VAKANTIE_ADDR", ":9000")
	t.Setenv("VAKANTIE_DB", "/tmp/x.db")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("VAKANTIE_FETCH_TIMEOUT", "3s")

	cfg, err := Parse("serve", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DatabaseURL != "postgres://test" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("VAKANTIE_ADDR", ":9000")
	t.Setenv("VAKANTIE_FETCH_TIMEOUT", "3s")

	cfg, err := Parse("next", []string{"-addr", ":7000", "-timeout", "500ms", "-region", "zuid", "-schoolyear", "2026-2027", "extra"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("flag should override env: Addr = %q", cfg.Addr)
	}
	if cfg.Timeout != 500*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.Region != model.RegionZuid {
		t.Errorf("Region = %q", cfg.Region)
	}
	if cfg.SchoolYear != "2026-2027" {
		t.Errorf("SchoolYear = %q", cfg.SchoolYear)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "extra" {
		t.Errorf("Args = %v", cfg.Args)
	}
}

func TestParseInvalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		args    []string
		env     string
		wantErr error
	}{
		{name: "bad region", args: []string{"-region", "Oost"}, wantErr: model.ErrInvalidRegion},
		{name: "bad school year", args: []string{"-schoolyear", "2025-2027"}, wantErr: model.ErrInvalidSchoolYear},
		{name: "bad timeout flag", args: []string{"-timeout", "soon"}},
		{name: "bad timeout env", env: "-1s"},
		{name: "unknown flag", args: []string{"-verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VAKANTIE_FETCH_TIMEOUT", tt.env)
			_, err := Parse("test", tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if err := LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("VAKANTIE_DB=from-dotenv.db\nVAKANTIE_ADDR=:1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VAKANTIE_ADDR", ":5555")
	// godotenv does not override variables that are set; unset VAKANTIE_DB so
	// the file provides it.
	os.Unsetenv("VAKANTIE_DB")

	if err := LoadEnv(path); err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse("serve", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "from-dotenv.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Addr != ":5555" {
		t.Errorf("existing env should win over .env: Addr = %q", cfg.Addr)
	}
}
