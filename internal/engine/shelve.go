package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/danieljhkim/shelf/internal/gitx"
	"github.com/danieljhkim/shelf/internal/shelves"
)

// Candidates resolves the files a ShelveRequest would capture without
// capturing anything.
func (e *Engine) Candidates(ctx context.Context, req *ShelveRequest) (*CandidatesResult, error) {
	filter, err := newPathFilter(req.Include, req.Exclude)
	if err != nil {
		return nil, err
	}

	explicit := len(req.Paths) > 0
	root, err := e.discoverRoot(req.CWD, explicit)
	if err != nil {
		return nil, err
	}

	var found []Candidate
	result := &CandidatesResult{WorkspaceRoot: root}
	if explicit {
		found, err = e.explicitCandidates(req, root)
	} else {
		found, result.Skipped, err = e.changedCandidates(ctx, root)
	}
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, c := range found {
		if seen[c.Path] {
			continue
		}
		seen[c.Path] = true

		if ok, reason := filter.match(c.Path); !ok {
			result.Skipped = append(result.Skipped, SkippedFile{Path: c.Path, Reason: reason})
			continue
		}
		result.Files = append(result.Files, c)
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	return result, nil
}

func (e *Engine) explicitCandidates(req *ShelveRequest, root string) ([]Candidate, error) {
	var found []Candidate
	for _, userPath := range req.Paths {
		rel, err := resolveToRepoRelative(userPath, req.CWD, root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}

		abs := filepath.Join(root, filepath.FromSlash(rel))
		info, err := e.fs.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s does not exist", ErrValidation, userPath)
			}
			return nil, fmt.Errorf("failed to stat %s: %w", userPath, err)
		}

		if !info.IsDir() {
			found = append(found, Candidate{Path: rel})
			continue
		}

		files, err := walkFiles(root, abs)
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", userPath, err)
		}
		for _, f := range files {
			found = append(found, Candidate{Path: f})
		}
	}
	return found, nil
}

func (e *Engine) changedCandidates(ctx context.Context, root string) ([]Candidate, []SkippedFile, error) {
	changed, err := e.gitRepo.ChangedFiles(ctx, root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list changed files: %w", err)
	}

	var (
		found   []Candidate
		skipped []SkippedFile
	)
	for _, c := range changed {
		if c.Status == gitx.StatusDeleted {
			e.logger.Debug().Str("path", c.Path).Msg("skipping deleted file")
			skipped = append(skipped, SkippedFile{Path: c.Path, Reason: "deleted"})
			continue
		}

		info, err := e.fs.Stat(filepath.Join(root, filepath.FromSlash(c.Path)))
		switch {
		case err != nil && os.IsNotExist(err):
			skipped = append(skipped, SkippedFile{Path: c.Path, Reason: "deleted"})
			continue
		case err != nil:
			return nil, nil, fmt.Errorf("failed to stat %s: %w", c.Path, err)
		case info.IsDir():
			skipped = append(skipped, SkippedFile{Path: c.Path, Reason: "directory"})
			continue
		}

		found = append(found, Candidate{Path: c.Path, Status: c.Status})
	}
	return found, skipped, nil
}

// walkFiles lists regular files under dir as root-relative slash paths.
// .git directories are not descended into.
func walkFiles(root, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

// Shelve captures the selected files into a new entry.
func (e *Engine) Shelve(ctx context.Context, req *ShelveRequest) (*ShelveResult, error) {
	candidates, err := e.Candidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates.Files) == 0 {
		return nil, ErrNothingToShelve
	}

	id := e.newID()
	entry := shelves.NewEntry(id, req.Name, candidates.WorkspaceRoot, e.clock.Now())
	contentRoot := e.store.ContentRoot(id)

	capture := func() error {
		for _, c := range candidates.Files {
			if err := ctx.Err(); err != nil {
				return err
			}

			src := filepath.Join(candidates.WorkspaceRoot, filepath.FromSlash(c.Path))
			if err := e.store.Capture(id, c.Path, src); err != nil {
				return err
			}

			checksum, err := e.hasher.HashFile(e.store.SnapshotPath(contentRoot, c.Path))
			if err != nil {
				return fmt.Errorf("failed to hash %s: %w", c.Path, err)
			}

			entry.Files[c.Path] = src
			entry.Checksums[c.Path] = checksum
		}
		return e.store.Create(entry)
	}

	if err := capture(); err != nil {
		if rmErr := e.store.Delete(id); rmErr != nil {
			e.logger.Warn().Err(rmErr).Str("entry", id).Msg("failed to clean up partial shelf entry")
		}
		return nil, fmt.Errorf("failed to shelve files: %w", err)
	}

	e.logger.Info().
		Str("entry", id).
		Str("name", req.Name).
		Int("files", len(entry.Files)).
		Int("skipped", len(candidates.Skipped)).
		Msg("shelved files")

	return &ShelveResult{
		Entry:   entryInfo(entry),
		Skipped: candidates.Skipped,
	}, nil
}
