package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/freetrail-races/internal/logger"
	"github.com/pfrederiksen/freetrail-races/internal/race"
)

// Storage handles persistence of scraped race results and the raw HTML
// debug copy.
type Storage struct {
	resultsPath string
	debugPath   string
	log         *logger.Logger
}

// New creates a new Storage instance writing to the given paths.
func New(resultsPath, debugPath string, log *logger.Logger) (*Storage, error) {
	resultsPath, err := expandPath(resultsPath)
	if err != nil {
		return nil, err
	}

	debugPath, err = expandPath(debugPath)
	if err != nil {
		return nil, err
	}

	// Create parent directories if they don't exist
	for _, path := range []string{resultsPath, debugPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating output directory: %w", err)
			}
		}
	}

	if log == nil {
		log = logger.New(logger.LevelInfo, os.Stdout)
	}

	return &Storage{
		resultsPath: resultsPath,
		debugPath:   debugPath,
		log:         log,
	}, nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}

// WriteRaces writes the race list to the results file as indented JSON,
// replacing any previous run's output.
func (s *Storage) WriteRaces(races []race.Race) error {
	if races == nil {
		races = []race.Race{}
	}

	// Encode with SetEscapeHTML off so names and locations keep their
	// literal characters (&, é) instead of \u escapes
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(races); err != nil {
		return fmt.Errorf("encoding races: %w", err)
	}

	if err := os.WriteFile(s.resultsPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing races: %w", err)
	}

	s.log.Info("saved race results", logger.Fields{
		"path":  s.resultsPath,
		"races": len(races),
	})

	return nil
}

// ReadRaces loads a previously written results file.
func (s *Storage) ReadRaces() ([]race.Race, error) {
	data, err := os.ReadFile(s.resultsPath)
	if err != nil {
		return nil, fmt.Errorf("reading races: %w", err)
	}

	var races []race.Race
	if err := json.Unmarshal(data, &races); err != nil {
		return nil, fmt.Errorf("parsing races: %w", err)
	}

	if races == nil {
		races = []race.Race{}
	}

	return races, nil
}

// SaveHTML writes the fetched page to the debug file so selector
// breakage can be diagnosed offline. It satisfies scraper.DebugSink.
func (s *Storage) SaveHTML(html string) error {
	if err := os.WriteFile(s.debugPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing debug HTML: %w", err)
	}

	s.log.Debug("saved debug HTML", logger.Fields{"path": s.debugPath})
	return nil
}
