// Package config loads scraper settings from an optional YAML file.
//
// Every field has a default matching the stock scrape of
// fantasy.freetrail.com, so running without a config file needs no setup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/freetrail-races/internal/scraper"
)

// Config holds all settings for a scrape run.
type Config struct {
	URL         string        `yaml:"url"`          // events page to scrape
	OutputFile  string        `yaml:"output_file"`  // JSON results path
	DebugFile   string        `yaml:"debug_file"`   // raw HTML dump path
	Timeout     time.Duration `yaml:"timeout"`      // HTTP request timeout
	HistoryPath string        `yaml:"history_path"` // sqlite run journal; empty disables
	LogLevel    string        `yaml:"log_level"`    // debug | info | warning | error
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		URL:        scraper.EventsURL,
		OutputFile: "races_scraped.json",
		DebugFile:  "freetrail_debug.html",
		Timeout:    scraper.Timeout,
		LogLevel:   "info",
	}
}

// Load reads configuration from a YAML file, falling back to Default for
// any field the file leaves unset. An empty path returns Default directly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg.normalized(), nil
}

// normalized fills zero-valued fields back in from Default so an explicit
// empty string or zero in the file cannot break the run.
func (c Config) normalized() Config {
	def := Default()

	if c.URL == "" {
		c.URL = def.URL
	}
	if c.OutputFile == "" {
		c.OutputFile = def.OutputFile
	}
	if c.DebugFile == "" {
		c.DebugFile = def.DebugFile
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	return c
}
