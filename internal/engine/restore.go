package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/shelf/internal/restore"
)

// Restore writes an entry back into the workspace it was captured from.
//
// Algorithm steps:
// 1. Resolve the entry and the requested subset of its files
// 2. Run the restorer over the subset in sorted order
// 3. Drop the entry when requested and every file came back cleanly
func (e *Engine) Restore(ctx context.Context, req *RestoreRequest) (*RestoreResult, error) {
	entry, err := e.resolveEntry(req.Ref)
	if err != nil {
		return nil, err
	}

	paths, err := selectEntryPaths(entry.Paths(), req.Paths, req.CWD, entry.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	if !req.Force && req.Policy == nil {
		return nil, fmt.Errorf("%w: a conflict policy is required unless forcing", ErrValidation)
	}

	restorer := restore.New(e.fs, e.store, req.Policy, e.logger)
	out := restorer.Restore(ctx, &restore.Request{
		EntryLabel:    entry.Label(),
		SnapshotRoot:  e.store.ContentRoot(entry.ID),
		WorkspaceRoot: entry.WorkspaceRoot,
		Paths:         paths,
		Force:         req.Force,
	})

	result := &RestoreResult{
		Entry:   entryInfo(entry),
		Summary: out.Summary,
		Files:   out.Files,
	}

	e.logger.Info().
		Str("entry", entry.ID).
		Int("restored", out.Summary.Restored).
		Int("identical", out.Summary.Identical).
		Int("skipped", out.Summary.Skipped).
		Int("conflictMarked", out.Summary.ConflictMarked).
		Int("conflicts", out.Summary.Conflicts).
		Int("errors", out.Summary.Errors).
		Msg("restored shelf entry")

	clean := out.Summary.Skipped == 0 && out.Summary.ConflictMarked == 0 && out.Summary.Errors == 0
	if req.Drop && clean && len(paths) == len(entry.Files) {
		if err := e.store.Delete(entry.ID); err != nil {
			return result, fmt.Errorf("failed to drop shelf entry: %w", err)
		}
		result.Dropped = true
	}

	return result, nil
}
