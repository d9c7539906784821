// Package gitx discovers repositories and their changed files.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotInRepo indicates no git repository encloses a directory.
var ErrNotInRepo = errors.New("not in a git repository")

// FileStatus classifies a changed file.
type FileStatus string

const (
	StatusModified  FileStatus = "modified"
	StatusAdded     FileStatus = "added"
	StatusDeleted   FileStatus = "deleted"
	StatusRenamed   FileStatus = "renamed"
	StatusUntracked FileStatus = "untracked"
)

// ChangedFile is one entry of the working tree status.
type ChangedFile struct {
	// Path is relative to the repository root, slash separated
	Path string

	// OrigPath is the previous path of a renamed or copied file
	OrigPath string

	Status FileStatus
}

// GitRepo provides an abstraction for git repository operations.
type GitRepo interface {
	// Discover finds the git repository root starting from cwd.
	Discover(cwd string) (root string, err error)

	// RelPath computes the relative path from repo root to the given absolute path.
	RelPath(root, absPath string) (string, error)

	// ChangedFiles lists files that differ from HEAD, including untracked files.
	ChangedFiles(ctx context.Context, root string) ([]ChangedFile, error)
}

// RealGitRepo implements GitRepo using actual git commands.
type RealGitRepo struct{}

// NewRealGitRepo creates a new RealGitRepo.
func NewRealGitRepo() *RealGitRepo {
	return &RealGitRepo{}
}

// Discover finds the git repository root by walking up from cwd looking for .git.
func (g *RealGitRepo) Discover(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		// .git can be a directory or a file (for worktrees/submodules)
		if info, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w: %s", ErrNotInRepo, absPath)
		}
		current = parent
	}
}

// RelPath computes the slash-separated path of absPath relative to root.
func (g *RealGitRepo) RelPath(root, absPath string) (string, error) {
	return relPath(root, absPath)
}

// ChangedFiles runs git status in root and parses its NUL-separated output.
func (g *RealGitRepo) ChangedFiles(ctx context.Context, root string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain=v1", "-z", "--untracked-files=all")
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("failed to run git status: %w", err)
		}
		return nil, fmt.Errorf("failed to run git status: %s: %w", msg, err)
	}

	return ParseStatus(stdout.Bytes())
}

// ParseStatus parses `git status --porcelain=v1 -z` output.
//
// Each record is "XY path"; renames and copies are followed by a second
// record holding the original path. Ignored entries are dropped.
func ParseStatus(out []byte) ([]ChangedFile, error) {
	records := strings.Split(string(out), "\x00")

	var files []ChangedFile
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec == "" {
			continue
		}
		if len(rec) < 4 || rec[2] != ' ' {
			return nil, fmt.Errorf("malformed status record %q", rec)
		}

		x, y := rec[0], rec[1]
		file := ChangedFile{Path: rec[3:], Status: classify(x, y)}

		if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
			if i+1 >= len(records) || records[i+1] == "" {
				return nil, fmt.Errorf("status record %q is missing its original path", rec)
			}
			i++
			file.OrigPath = records[i]
		}

		if x == '!' && y == '!' {
			continue
		}
		files = append(files, file)
	}

	return files, nil
}

func classify(x, y byte) FileStatus {
	switch {
	case x == '?' && y == '?':
		return StatusUntracked
	case x == 'D' || y == 'D':
		return StatusDeleted
	case x == 'R' || y == 'R':
		return StatusRenamed
	case x == 'A' || x == 'C':
		return StatusAdded
	default:
		return StatusModified
	}
}

func relPath(root, absPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute root: %w", err)
	}

	absTarget, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute target: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside repository", absPath)
	}

	return filepath.ToSlash(rel), nil
}

// FakeGitRepo implements GitRepo with predetermined values for testing.
type FakeGitRepo struct {
	root    string
	changed []ChangedFile
	err     error
}

// NewFakeGitRepo creates a new FakeGitRepo rooted at root.
func NewFakeGitRepo(root string) *FakeGitRepo {
	return &FakeGitRepo{root: root}
}

// SetError sets an error to be returned by Discover and ChangedFiles.
func (g *FakeGitRepo) SetError(err error) {
	g.err = err
}

// SetChanged sets the files returned by ChangedFiles.
func (g *FakeGitRepo) SetChanged(files ...ChangedFile) {
	g.changed = files
}

// Discover returns the predetermined root.
func (g *FakeGitRepo) Discover(cwd string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.root, nil
}

// RelPath computes the relative path (works like real implementation).
func (g *FakeGitRepo) RelPath(root, absPath string) (string, error) {
	return relPath(root, absPath)
}

// ChangedFiles returns the predetermined changes.
func (g *FakeGitRepo) ChangedFiles(ctx context.Context, root string) ([]ChangedFile, error) {
	if g.err != nil {
		return nil, g.err
	}
	return append([]ChangedFile(nil), g.changed...), nil
}
