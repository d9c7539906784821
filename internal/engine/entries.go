package engine

import (
	"fmt"

	"github.com/danieljhkim/shelf/internal/shelves"
)

func entryInfo(entry *shelves.Entry) EntryInfo {
	return EntryInfo{
		ID:            entry.ID,
		Name:          entry.Name,
		Label:         entry.Label(),
		CreatedAt:     entry.CreatedAt,
		WorkspaceRoot: entry.WorkspaceRoot,
		FileCount:     len(entry.Files),
	}
}

// List returns all entries, newest first.
func (e *Engine) List() ([]EntryInfo, error) {
	entries, err := e.store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list shelf entries: %w", err)
	}

	infos := make([]EntryInfo, len(entries))
	for i, entry := range entries {
		infos[i] = entryInfo(entry)
	}
	return infos, nil
}

// Show describes an entry and where its captured files are stored.
func (e *Engine) Show(ref string) (*ShowResult, error) {
	entry, err := e.resolveEntry(ref)
	if err != nil {
		return nil, err
	}

	manifest := e.store.Manifest(entry)
	files := make([]ShowFileInfo, len(manifest))
	for i, m := range manifest {
		files[i] = ShowFileInfo{
			Path:       m.RelPath,
			SourcePath: m.SourcePath,
			StoredPath: e.store.SnapshotPath(m.ContentRoot, m.RelPath),
			Checksum:   entry.Checksums[m.RelPath],
		}
	}

	return &ShowResult{Entry: entryInfo(entry), Files: files}, nil
}

// Drop deletes an entry.
func (e *Engine) Drop(ref string) (*DropResult, error) {
	entry, err := e.resolveEntry(ref)
	if err != nil {
		return nil, err
	}

	if err := e.store.Delete(entry.ID); err != nil {
		return nil, fmt.Errorf("failed to drop shelf entry: %w", err)
	}

	e.logger.Info().Str("entry", entry.ID).Msg("dropped shelf entry")
	return &DropResult{Entry: entryInfo(entry)}, nil
}

// Verify recomputes the checksum of every captured file.
func (e *Engine) Verify(ref string) (*VerifyResult, error) {
	entry, err := e.resolveEntry(ref)
	if err != nil {
		return nil, err
	}

	root := e.store.ContentRoot(entry.ID)
	result := &VerifyResult{Entry: entryInfo(entry)}

	for _, rel := range entry.Paths() {
		info := VerifyFileInfo{Path: rel, Expected: entry.Checksums[rel]}

		data, exists, err := e.store.ReadSnapshot(root, rel)
		switch {
		case err != nil:
			info.Error = err.Error()
		case !exists:
			info.Error = "snapshot missing"
		case info.Expected == "":
			info.Actual = e.hasher.HashBytes(data)
			info.Error = "no checksum recorded"
		default:
			info.Actual = e.hasher.HashBytes(data)
			info.OK = info.Actual == info.Expected
		}

		if !info.OK {
			e.logger.Warn().Str("entry", entry.ID).Str("path", rel).Str("error", info.Error).Msg("verification failed")
		}
		result.Files = append(result.Files, info)
	}

	return result, nil
}
