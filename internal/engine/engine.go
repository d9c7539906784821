// Package engine provides the core business logic for shelf operations.
//
// The engine package is the orchestration layer between CLI commands and the
// lower-level packages. It discovers the workspace, captures files into the
// shelf store, and hands restores to the restore package.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Shelve: Captures changed or explicitly named files into a new entry
//   - Restore: Writes an entry back through a conflict Policy
//   - List/Show/Diff/Verify/Drop: Entry inspection and maintenance
package engine

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danieljhkim/shelf/internal/clock"
	"github.com/danieljhkim/shelf/internal/fsops"
	"github.com/danieljhkim/shelf/internal/gitx"
	"github.com/danieljhkim/shelf/internal/hash"
	"github.com/danieljhkim/shelf/internal/shelves"
)

// Engine orchestrates all shelf operations.
// It is the main API surface called by the CLI.
type Engine struct {
	gitRepo gitx.GitRepo
	store   shelves.Store
	fs      fsops.FS
	hasher  hash.Hasher
	clock   clock.Clock
	logger  zerolog.Logger
	newID   func() string
}

// New creates a new Engine with the given dependencies.
func New(
	gitRepo gitx.GitRepo,
	store shelves.Store,
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		gitRepo: gitRepo,
		store:   store,
		fs:      fs,
		hasher:  hasher,
		clock:   clk,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// discoverRoot returns the repository root enclosing cwd. Outside a
// repository, cwd itself is used when allowFallback is set.
func (e *Engine) discoverRoot(cwd string, allowFallback bool) (string, error) {
	root, err := e.gitRepo.Discover(cwd)
	if err == nil {
		return root, nil
	}
	if !allowFallback {
		if errors.Is(err, gitx.ErrNotInRepo) {
			return "", fmt.Errorf("%w: %s", ErrNotInRepo, cwd)
		}
		return "", fmt.Errorf("failed to discover repository: %w", err)
	}

	abs, absErr := filepath.Abs(cwd)
	if absErr != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", absErr)
	}
	e.logger.Debug().Err(err).Str("root", abs).Msg("no git repository, using working directory as root")
	return abs, nil
}

// resolveEntry looks up an entry by reference and maps store errors to
// engine errors.
func (e *Engine) resolveEntry(ref string) (*shelves.Entry, error) {
	entry, err := e.store.Resolve(ref)
	if err != nil {
		switch {
		case errors.Is(err, shelves.ErrEntryNotFound):
			if ref == "" {
				return nil, fmt.Errorf("%w: no shelf entries", ErrNotFound)
			}
			return nil, fmt.Errorf("%w: shelf entry %q", ErrNotFound, ref)
		case errors.Is(err, shelves.ErrAmbiguousRef):
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		default:
			return nil, fmt.Errorf("failed to resolve shelf entry: %w", err)
		}
	}
	return entry, nil
}
