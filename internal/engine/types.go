package engine

import (
	"time"

	"github.com/danieljhkim/shelf/internal/gitx"
	"github.com/danieljhkim/shelf/internal/merge"
	"github.com/danieljhkim/shelf/internal/restore"
)

// ShelveRequest represents a request to capture files into a new entry.
type ShelveRequest struct {
	// CWD is the current working directory
	CWD string

	// Paths are files or directories to capture, relative to CWD or
	// absolute. Empty means every changed file reported by git.
	Paths []string

	// Name is an optional label for the entry
	Name string

	// Include keeps only files matching at least one pattern
	Include []string

	// Exclude drops files matching any pattern
	Exclude []string
}

// Candidate is a file that would be captured.
type Candidate struct {
	// Path is relative to the workspace root, slash separated
	Path string `json:"path"`

	// Status is the git status, empty for explicitly named files
	Status gitx.FileStatus `json:"status,omitempty"`
}

// SkippedFile is a file left out of an entry.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// CandidatesResult lists the files a ShelveRequest selects.
type CandidatesResult struct {
	// WorkspaceRoot is the directory paths are relative to
	WorkspaceRoot string `json:"workspaceRoot"`

	Files   []Candidate   `json:"files"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

// Paths returns the candidate paths in order.
func (r *CandidatesResult) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}

// ShelveResult represents the result of creating an entry.
type ShelveResult struct {
	Entry   EntryInfo     `json:"entry"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

// EntryInfo summarizes a shelf entry.
type EntryInfo struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Label         string    `json:"label"`
	CreatedAt     time.Time `json:"createdAt"`
	WorkspaceRoot string    `json:"workspaceRoot"`
	FileCount     int       `json:"fileCount"`
}

// ShowResult describes an entry and where its files are stored.
type ShowResult struct {
	Entry EntryInfo      `json:"entry"`
	Files []ShowFileInfo `json:"files"`
}

// ShowFileInfo is one file of an entry.
type ShowFileInfo struct {
	Path       string `json:"path"`
	SourcePath string `json:"sourcePath"`
	StoredPath string `json:"storedPath"`
	Checksum   string `json:"checksum,omitempty"`
}

// DiffRequest represents a request to compare an entry with the workspace.
type DiffRequest struct {
	// Ref identifies the entry (ID, ID prefix or name; empty for newest)
	Ref string

	// CWD is used to resolve Paths
	CWD string

	// Paths limits the comparison to a subset of the entry's files
	Paths []string

	// ShowContent includes line segments for modified files
	ShowContent bool
}

// DiffStatus classifies a file in a DiffResult.
type DiffStatus string

const (
	DiffIdentical       DiffStatus = "identical"
	DiffModified        DiffStatus = "modified"
	DiffMissing         DiffStatus = "missing"
	DiffSnapshotMissing DiffStatus = "snapshot-missing"
	DiffError           DiffStatus = "error"
)

// DiffFileInfo compares one file.
type DiffFileInfo struct {
	Path   string     `json:"path"`
	Status DiffStatus `json:"status"`

	// Added counts lines only in the shelf, Removed lines only in the workspace
	Added   int `json:"added"`
	Removed int `json:"removed"`

	Segments []merge.Segment `json:"-"`
	Error    string          `json:"error,omitempty"`
}

// DiffResult compares an entry with the workspace.
type DiffResult struct {
	Entry EntryInfo      `json:"entry"`
	Files []DiffFileInfo `json:"files"`
}

// VerifyFileInfo reports the integrity of one captured file.
type VerifyFileInfo struct {
	Path     string `json:"path"`
	OK       bool   `json:"ok"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Error    string `json:"error,omitempty"`
}

// VerifyResult reports the integrity of an entry.
type VerifyResult struct {
	Entry EntryInfo        `json:"entry"`
	Files []VerifyFileInfo `json:"files"`
}

// OK reports whether every file verified.
func (r *VerifyResult) OK() bool {
	for _, f := range r.Files {
		if !f.OK {
			return false
		}
	}
	return true
}

// RestoreRequest represents a request to restore an entry.
type RestoreRequest struct {
	// Ref identifies the entry (ID, ID prefix or name; empty for newest)
	Ref string

	// CWD is used to resolve Paths
	CWD string

	// Paths limits the restore to a subset of the entry's files
	Paths []string

	// Force overwrites differing files without asking
	Force bool

	// Policy decides conflicts when Force is not set
	Policy restore.Policy

	// Drop deletes the entry when every file was restored or identical
	Drop bool
}

// RestoreResult represents the result of a restore.
type RestoreResult struct {
	Entry   EntryInfo            `json:"entry"`
	Summary restore.Summary      `json:"summary"`
	Files   []restore.FileResult `json:"files"`

	// Dropped is set when the entry was deleted after restoring
	Dropped bool `json:"dropped"`
}

// DropResult represents the result of deleting an entry.
type DropResult struct {
	Entry EntryInfo `json:"entry"`
}
