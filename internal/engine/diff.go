package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/danieljhkim/shelf/internal/merge"
)

// Diff compares an entry's captured files with the workspace.
// Added counts lines the restore would bring in, Removed lines it would
// replace.
func (e *Engine) Diff(ctx context.Context, req *DiffRequest) (*DiffResult, error) {
	entry, err := e.resolveEntry(req.Ref)
	if err != nil {
		return nil, err
	}

	paths, err := selectEntryPaths(entry.Paths(), req.Paths, req.CWD, entry.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	root := e.store.ContentRoot(entry.ID)
	result := &DiffResult{Entry: entryInfo(entry)}
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, e.compareFile(entry.WorkspaceRoot, root, rel, req.ShowContent))
	}

	return result, nil
}

func (e *Engine) compareFile(workspaceRoot, contentRoot, rel string, showContent bool) DiffFileInfo {
	info := DiffFileInfo{Path: rel}

	shelved, exists, err := e.store.ReadSnapshot(contentRoot, rel)
	if err != nil {
		info.Status = DiffError
		info.Error = err.Error()
		return info
	}
	if !exists {
		info.Status = DiffSnapshotMissing
		return info
	}

	current, err := e.fs.ReadFile(joinRel(workspaceRoot, rel))
	if err != nil {
		if !os.IsNotExist(err) {
			info.Status = DiffError
			info.Error = err.Error()
			return info
		}
		info.Status = DiffMissing
	} else if bytes.Equal(current, shelved) {
		info.Status = DiffIdentical
		return info
	} else {
		info.Status = DiffModified
	}

	segments := merge.DiffLines(string(current), string(shelved))
	info.Added, info.Removed = merge.LineStats(segments)
	if showContent {
		info.Segments = segments
	}
	return info
}

func joinRel(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
