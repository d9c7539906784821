package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/shelf/internal/clock"
	"github.com/danieljhkim/shelf/internal/config"
	"github.com/danieljhkim/shelf/internal/engine"
	"github.com/danieljhkim/shelf/internal/fsops"
	"github.com/danieljhkim/shelf/internal/gitx"
	"github.com/danieljhkim/shelf/internal/hash"
	"github.com/danieljhkim/shelf/internal/logging"
	"github.com/danieljhkim/shelf/internal/shelves"
)

// app bundles what a command needs.
type app struct {
	engine   *engine.Engine
	settings *config.Settings
	logger   zerolog.Logger
	fs       fsops.FS
}

// newApp loads settings and creates an engine with real implementations of
// all dependencies.
func newApp() (*app, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	settings, err := config.LoadSettings(paths)
	if err != nil {
		return nil, err
	}

	var console io.Writer
	if verbose {
		console = os.Stderr
	}
	logger, err := logging.New(settings.Log, console)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	fs := fsops.NewRealFS()
	gitRepo := gitx.NewRealGitRepo()
	hasher := hash.NewSHA256Hasher()
	clk := &clock.RealClock{}
	store := shelves.NewFileStore(fs, paths.Shelves)

	return &app{
		engine:   engine.New(gitRepo, store, fs, hasher, clk, logger),
		settings: settings,
		logger:   logger,
		fs:       fs,
	}, nil
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}
