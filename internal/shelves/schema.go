package shelves

import (
	"sort"
	"time"
)

// SchemaVersion is written into every entry's meta.json.
const SchemaVersion = 1

// shortIDLen is how much of an ID is shown when an entry has no name.
const shortIDLen = 8

// Entry is a named, timestamped snapshot of a set of workspace files.
// Entries are immutable once created; the only mutation is deletion.
type Entry struct {
	// SchemaVersion is the version of this schema
	SchemaVersion int `json:"schemaVersion"`

	// ID uniquely identifies the entry (a UUID)
	ID string `json:"id"`

	// Name is an optional human-readable label
	Name string `json:"name,omitempty"`

	// CreatedAt is when the snapshot was captured
	CreatedAt time.Time `json:"createdAt"`

	// WorkspaceRoot is the directory the files were captured from
	WorkspaceRoot string `json:"workspaceRoot"`

	// Files maps workspace-relative paths (slash separated) to the
	// absolute path the bytes were read from
	Files map[string]string `json:"files"`

	// Checksums maps workspace-relative paths to the SHA-256 of the
	// captured bytes
	Checksums map[string]string `json:"checksums,omitempty"`
}

// NewEntry creates an empty entry.
func NewEntry(id, name, workspaceRoot string, createdAt time.Time) *Entry {
	return &Entry{
		SchemaVersion: SchemaVersion,
		ID:            id,
		Name:          name,
		CreatedAt:     createdAt,
		WorkspaceRoot: workspaceRoot,
		Files:         map[string]string{},
		Checksums:     map[string]string{},
	}
}

// Paths returns the entry's relative paths in sorted order.
func (e *Entry) Paths() []string {
	paths := make([]string, 0, len(e.Files))
	for p := range e.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ShortID returns the leading part of the ID.
func (e *Entry) ShortID() string {
	if len(e.ID) <= shortIDLen {
		return e.ID
	}
	return e.ID[:shortIDLen]
}

// Label is how the entry is named in conflict markers and output.
func (e *Entry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ShortID()
}

// ManifestEntry locates one captured file. It never carries the bytes.
type ManifestEntry struct {
	// RelPath is the workspace-relative path
	RelPath string `json:"relPath"`

	// ContentRoot is the directory holding the entry's captured files
	ContentRoot string `json:"contentRoot"`

	// SourcePath is the absolute path the file was captured from
	SourcePath string `json:"sourcePath"`
}
