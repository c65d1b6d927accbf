// Package config reads server settings from flags, falling back to
// CHESS_* environment variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Config holds the server settings.
type Config struct {
	Addr                string
	AllowedOrigins      []string
	Clock               time.Duration
	ArchiveDir          string
	InMemoryArchive     bool
	MatchmakingInterval time.Duration
}

const (
	envAddr       = "CHESS_ADDR"
	envOrigins    = "CHESS_ALLOWED_ORIGINS"
	envClock      = "CHESS_CLOCK"
	envArchiveDir = "CHESS_ARCHIVE_DIR"
	envInterval   = "CHESS_MATCHMAKING_INTERVAL"
)

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:                ":3000",
		AllowedOrigins:      []string{"http://localhost:5173"},
		Clock:               10 * time.Minute,
		ArchiveDir:          "data/archive",
		MatchmakingInterval: time.Second,
	}
}

// Load parses args (without the program name). getenv is consulted for
// anything not given as a flag; pass os.Getenv in production.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(envAddr); v != "" {
		cfg.Addr = v
	}
	if v := getenv(envOrigins); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := getenv(envArchiveDir); v != "" {
		cfg.ArchiveDir = v
	}
	var err error
	if v := getenv(envClock); v != "" {
		if cfg.Clock, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", envClock, err)
		}
	}
	if v := getenv(envInterval); v != "" {
		if cfg.MatchmakingInterval, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", envInterval, err)
		}
	}

	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	origins := strings.Join(cfg.AllowedOrigins, ",")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	fs.StringVar(&origins, "origins", origins, "Comma-separated origins allowed to connect")
	fs.DurationVar(&cfg.Clock, "clock", cfg.Clock, "Time per side")
	fs.StringVar(&cfg.ArchiveDir, "archive", cfg.ArchiveDir, "Directory of the finished-game archive")
	fs.BoolVar(&cfg.InMemoryArchive, "memory", false, "Keep the archive in memory only")
	fs.DurationVar(&cfg.MatchmakingInterval, "match-interval", cfg.MatchmakingInterval, "How often queued players are paired")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.AllowedOrigins = splitList(origins)
	if cfg.InMemoryArchive {
		cfg.ArchiveDir = ""
	}

	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("listen address is empty")
	case c.Clock <= 0:
		return fmt.Errorf("clock must be positive, got %s", c.Clock)
	case c.MatchmakingInterval <= 0:
		return fmt.Errorf("matchmaking interval must be positive, got %s", c.MatchmakingInterval)
	case c.ArchiveDir == "" && !c.InMemoryArchive:
		return errors.New("archive directory is empty; use -memory for an in-memory archive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
