// Package config resolves runtime configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvVenue     = "LS_SEATS_VENUE"
	EnvStore     = "LS_SEATS_STORE"
	EnvStorePath = "LS_SEATS_STORE_PATH"
	EnvLogLevel  = "LS_SEATS_LOG_LEVEL"
	EnvLogFile   = "LS_SEATS_LOG_FILE"
)

// Config holds everything main needs to wire the application.
type Config struct {
	VenueSource string // file path or http(s) URL; empty selects the demo venue
	Store       string // StoreFile or StoreSQLite
	StorePath   string
	LogLevel    string
	LogFile     string

	// Headless modes
	Summary        bool
	ExportLayout   string
	ExportSVG      string
	ClearSelection bool
	ShowVersion    bool
}

// Headless reports whether any non-interactive mode was requested.
func (c Config) Headless() bool {
	return c.Summary || c.ExportLayout != "" || c.ExportSVG != "" || c.ClearSelection
}

// Load parses args (without the program name). A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(args)
}

func parse(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("ls-seats", flag.ContinueOnError)
	fs.StringVar(&cfg.VenueSource, "venue", "", "Venue document (file path or URL)")
	fs.StringVar(&cfg.Store, "store", "", "Selection store backend (file or sqlite)")
	fs.StringVar(&cfg.StorePath, "store-path", "", "Selection store location")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&cfg.Summary, "summary", false, "Print venue and selection summary instead of TUI")
	fs.StringVar(&cfg.ExportLayout, "export-layout", "", "Export projected seats as JSON (use - for stdout)")
	fs.StringVar(&cfg.ExportSVG, "export-svg", "", "Export projected layout as SVG (use - for stdout)")
	fs.BoolVar(&cfg.ClearSelection, "clear-selection", false, "Clear the persisted selection and exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.VenueSource = fallback(cfg.VenueSource, EnvVenue, "")
	cfg.Store = fallback(cfg.Store, EnvStore, StoreFile)
	cfg.StorePath = fallback(cfg.StorePath, EnvStorePath, "")
	cfg.LogLevel = fallback(cfg.LogLevel, EnvLogLevel, "info")
	cfg.LogFile = fallback(cfg.LogFile, EnvLogFile, "")

	switch cfg.Store {
	case StoreFile, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("unknown store backend %q (want %s or %s)", cfg.Store, StoreFile, StoreSQLite)
	}

	if cfg.StorePath == "" {
		path, err := defaultStorePath(cfg.Store)
		if err != nil {
			return Config{}, err
		}
		cfg.StorePath = path
	}

	return cfg, nil
}

func fallback(value, envKey, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

func defaultStorePath(store string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	name := "storage.json"
	if store == StoreSQLite {
		name = "storage.db"
	}
	return filepath.Join(dir, "ls-seats", name), nil
}
