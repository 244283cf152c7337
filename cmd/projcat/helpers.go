package main

import (
	"encoding/json"
	"fmt"
	"os"

	"projcat/internal/config"
	"projcat/internal/logging"
	"projcat/internal/storage"
)

// newLogger builds the command logger. JSON output keeps logs on stderr
// in JSON too, so piped stdout stays machine-parseable.
func newLogger(format string) *logging.Logger {
	cfg, err := config.Load()
	level := logging.InfoLevel
	logFormat := logging.HumanFormat
	if err == nil {
		level = logging.ParseLevel(cfg.Logging.Level)
		logFormat = logging.Format(cfg.Logging.Format)
	}
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{Format: logFormat, Level: level})
}

// mustLoadConfig loads the config file or exits with the validation error
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustOpenCatalog opens (creating if needed) the catalog database
func mustOpenCatalog(cfg *config.Config, logger *logging.Logger) *storage.DB {
	path, err := cfg.ResolveCatalogPath(dbFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving catalog path: %v\n", err)
		os.Exit(1)
	}
	db, err := storage.Open(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}
	return db
}

// mustOpenExisting opens the catalog but refuses to create an empty one,
// for read-oriented commands where a missing catalog means "scan first"
func mustOpenExisting(cfg *config.Config, logger *logging.Logger) *storage.DB {
	path, err := cfg.ResolveCatalogPath(dbFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving catalog path: %v\n", err)
		os.Exit(1)
	}
	db, err := storage.OpenExisting(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}
	return db
}

// openQuiet opens an existing catalog, returning the error instead of
// exiting, for hook-driven commands that must degrade silently
func openQuiet(path string, logger *logging.Logger) (*storage.DB, error) {
	return storage.OpenExisting(path, logger)
}

// printJSON writes v to stdout as indented JSON
func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
