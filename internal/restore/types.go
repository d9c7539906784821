// Package restore writes a shelf entry's snapshot back into a workspace.
//
// Files are processed one at a time, in the order given. A file that does
// not exist in the workspace is written, a byte-identical file is left
// alone, and a file that differs is either overwritten (force) or handed to
// a Policy that decides between applying the snapshot, keeping the current
// file, or inserting conflict markers. Failures are recorded per file and
// never stop the batch.
package restore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/shelf/internal/merge"
)

var (
	// ErrSnapshotMissing indicates the entry has no captured bytes for a path.
	ErrSnapshotMissing = errors.New("snapshot missing")

	// ErrResolutionCanceled is returned by a Policy when the user dismissed
	// the decision. The file is skipped.
	ErrResolutionCanceled = errors.New("conflict resolution canceled")

	// ErrNoPolicy indicates a conflict needed a decision but no Policy was set.
	ErrNoPolicy = errors.New("no conflict policy configured")
)

// Outcome is what happened to one file.
type Outcome string

const (
	OutcomeRestored       Outcome = "restored"
	OutcomeIdentical      Outcome = "identical"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeConflictMarked Outcome = "conflict-marked"
	OutcomeError          Outcome = "error"
)

// Resolution is a Policy's decision for a conflicting file.
type Resolution string

const (
	// ResolutionApply overwrites the workspace file with the snapshot.
	ResolutionApply Resolution = "apply"
	// ResolutionKeep leaves the workspace file untouched.
	ResolutionKeep Resolution = "keep"
	// ResolutionMark rewrites the workspace file with conflict markers.
	ResolutionMark Resolution = "mark"
)

// ParseResolution parses a resolution name.
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case ResolutionApply, ResolutionKeep, ResolutionMark:
		return r, nil
	default:
		return "", fmt.Errorf("unknown conflict resolution %q (want apply, keep or mark)", s)
	}
}

// ConflictRequest describes a file whose workspace and shelved bytes differ.
type ConflictRequest struct {
	// EntryLabel names the shelf entry being restored
	EntryLabel string

	// RelPath is the workspace-relative path of the file
	RelPath string

	// CurrentPath is the absolute path of the workspace file
	CurrentPath string

	// ShelfPath is the absolute path of the captured snapshot file
	ShelfPath string
}

// Policy decides how to resolve a conflicting file. Resolve may block on
// user interaction for as long as it needs.
type Policy interface {
	Resolve(ctx context.Context, req *ConflictRequest) (Resolution, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, req *ConflictRequest) (Resolution, error)

// Resolve calls f.
func (f PolicyFunc) Resolve(ctx context.Context, req *ConflictRequest) (Resolution, error) {
	return f(ctx, req)
}

// FixedPolicy resolves every conflict the same way.
type FixedPolicy struct {
	Resolution Resolution
}

// Resolve returns the fixed resolution.
func (p FixedPolicy) Resolve(ctx context.Context, req *ConflictRequest) (Resolution, error) {
	return p.Resolution, nil
}

// SnapshotReader gives access to captured file bytes. exists is false when
// the snapshot has no file at relPath, which is distinct from an empty file.
type SnapshotReader interface {
	ReadSnapshot(snapshotRoot, relPath string) (data []byte, exists bool, err error)

	// SnapshotPath locates relPath inside snapshotRoot for display and for
	// policies that open the captured file themselves.
	SnapshotPath(snapshotRoot, relPath string) string
}

// Request is one restore invocation.
type Request struct {
	// EntryLabel names the entry in conflict markers and prompts
	EntryLabel string

	// SnapshotRoot is where the entry's captured files live
	SnapshotRoot string

	// WorkspaceRoot is the directory files are restored into
	WorkspaceRoot string

	// Paths are the workspace-relative files to restore, in order
	Paths []string

	// Force overwrites differing files without consulting the policy
	Force bool
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path        string         `json:"path"`
	Outcome     Outcome        `json:"outcome"`
	HadConflict bool           `json:"hadConflict"`
	Strategy    merge.Strategy `json:"strategy,omitempty"`

	// ConflictPaths lists the JSON paths that were marked.
	ConflictPaths []string `json:"conflictPaths,omitempty"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Summary counts outcomes across a restore.
type Summary struct {
	Restored       int `json:"restored"`
	Identical      int `json:"identical"`
	Skipped        int `json:"skipped"`
	ConflictMarked int `json:"conflictMarked"`
	// Conflicts counts files whose bytes differed, whatever the outcome.
	Conflicts int `json:"conflicts"`
	Errors    int `json:"errors"`
}

// Add records one file's result.
func (s *Summary) Add(r FileResult) {
	switch r.Outcome {
	case OutcomeRestored:
		s.Restored++
	case OutcomeIdentical:
		s.Identical++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeConflictMarked:
		s.ConflictMarked++
	case OutcomeError:
		s.Errors++
	}
	if r.HadConflict {
		s.Conflicts++
	}
}

// Result is returned by Restore.
type Result struct {
	Summary Summary      `json:"summary"`
	Files   []FileResult `json:"files"`
}
