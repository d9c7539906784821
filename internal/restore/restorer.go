package restore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/shelf/internal/fsops"
	"github.com/danieljhkim/shelf/internal/merge"
)

// defaultFileMode is used for files the restore creates.
const defaultFileMode os.FileMode = 0644

// Restorer writes snapshots back into a workspace.
// It holds no state between calls.
type Restorer struct {
	fs        fsops.FS
	snapshots SnapshotReader
	policy    Policy
	logger    zerolog.Logger
}

// New creates a Restorer. policy may be nil when every call uses Force.
func New(fs fsops.FS, snapshots SnapshotReader, policy Policy, logger zerolog.Logger) *Restorer {
	return &Restorer{
		fs:        fs,
		snapshots: snapshots,
		policy:    policy,
		logger:    logger,
	}
}

// Restore processes req.Paths in order. Each file is fully resolved,
// including any blocking policy decision, before the next one starts.
// Per-file failures are recorded in the result; Restore itself never fails.
func (r *Restorer) Restore(ctx context.Context, req *Request) *Result {
	result := &Result{Files: make([]FileResult, 0, len(req.Paths))}

	for _, relPath := range req.Paths {
		fr := r.restoreFile(ctx, req, relPath)
		if fr.Err != nil {
			fr.Error = fr.Err.Error()
		}

		evt := r.logger.Debug()
		if fr.Outcome == OutcomeError {
			evt = r.logger.Warn().Err(fr.Err)
		}
		evt.Str("entry", req.EntryLabel).
			Str("path", relPath).
			Str("outcome", string(fr.Outcome)).
			Bool("conflict", fr.HadConflict).
			Msg("restore file")

		result.Summary.Add(fr)
		result.Files = append(result.Files, fr)
	}

	return result
}

func (r *Restorer) restoreFile(ctx context.Context, req *Request, relPath string) FileResult {
	fr := FileResult{Path: relPath}
	fail := func(err error) FileResult {
		fr.Outcome = OutcomeError
		fr.Err = err
		return fr
	}

	if err := r.fs.ValidateRelPath(relPath); err != nil {
		return fail(err)
	}

	shelved, exists, err := r.snapshots.ReadSnapshot(req.SnapshotRoot, relPath)
	if err != nil {
		return fail(fmt.Errorf("failed to read snapshot: %w", err))
	}
	if !exists {
		return fail(fmt.Errorf("%w: %s", ErrSnapshotMissing, relPath))
	}

	dest := filepath.Join(req.WorkspaceRoot, filepath.FromSlash(relPath))
	if err := r.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fail(fmt.Errorf("failed to create parent directory: %w", err))
	}

	info, err := r.fs.Stat(dest)
	if err != nil {
		if !os.IsNotExist(err) {
			return fail(fmt.Errorf("failed to stat destination: %w", err))
		}
		if err := r.fs.AtomicWrite(dest, shelved, defaultFileMode); err != nil {
			return fail(fmt.Errorf("failed to write file: %w", err))
		}
		fr.Outcome = OutcomeRestored
		return fr
	}
	if info.IsDir() {
		return fail(fmt.Errorf("destination %s is a directory", relPath))
	}
	mode := info.Mode().Perm()

	current, err := r.fs.ReadFile(dest)
	if err != nil {
		return fail(fmt.Errorf("failed to read current file: %w", err))
	}
	if bytes.Equal(current, shelved) {
		fr.Outcome = OutcomeIdentical
		return fr
	}

	fr.HadConflict = true

	if req.Force {
		if err := r.fs.AtomicWrite(dest, shelved, mode); err != nil {
			return fail(fmt.Errorf("failed to overwrite file: %w", err))
		}
		fr.Outcome = OutcomeRestored
		return fr
	}

	if r.policy == nil {
		return fail(ErrNoPolicy)
	}

	resolution, err := r.policy.Resolve(ctx, &ConflictRequest{
		EntryLabel:  req.EntryLabel,
		RelPath:     relPath,
		CurrentPath: dest,
		ShelfPath:   r.snapshots.SnapshotPath(req.SnapshotRoot, relPath),
	})
	if err != nil {
		if errors.Is(err, ErrResolutionCanceled) || errors.Is(err, context.Canceled) {
			fr.Outcome = OutcomeSkipped
			return fr
		}
		return fail(fmt.Errorf("failed to resolve conflict: %w", err))
	}

	switch resolution {
	case ResolutionApply:
		if err := r.fs.AtomicWrite(dest, shelved, mode); err != nil {
			return fail(fmt.Errorf("failed to overwrite file: %w", err))
		}
		fr.Outcome = OutcomeRestored
	case ResolutionKeep:
		fr.Outcome = OutcomeSkipped
	case ResolutionMark:
		marked := merge.Mark(relPath, current, shelved, req.EntryLabel)
		if err := r.fs.AtomicWrite(dest, []byte(marked.Text), mode); err != nil {
			return fail(fmt.Errorf("failed to write conflict markers: %w", err))
		}
		fr.Outcome = OutcomeConflictMarked
		fr.Strategy = marked.Strategy
		fr.ConflictPaths = marked.ConflictPaths
	default:
		return fail(fmt.Errorf("unknown conflict resolution %q", resolution))
	}

	return fr
}
