// Package shelves persists shelf entries on disk.
//
// Each entry lives in its own directory under the shelves root:
//
//	<shelves>/<id>/meta.json    entry metadata
//	<shelves>/<id>/files/<rel>  captured file bytes
//
// Captured files are written before meta.json, so a directory without
// meta.json is an incomplete capture and is ignored by List.
package shelves

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/shelf/internal/fsops"
)

const (
	metaFileName = "meta.json"
	filesDirName = "files"
)

var (
	// ErrEntryNotFound indicates no entry matches an ID or reference.
	ErrEntryNotFound = errors.New("shelf entry not found")

	// ErrAmbiguousRef indicates a reference matches more than one entry.
	ErrAmbiguousRef = errors.New("ambiguous shelf reference")

	// ErrEntryExists indicates an entry with the same ID already exists.
	ErrEntryExists = errors.New("shelf entry already exists")
)

// Store manages shelf entries.
type Store interface {
	// List returns all complete entries, newest first.
	List() ([]*Entry, error)

	// Exists checks if an entry with the given ID exists.
	Exists(id string) (bool, error)

	// Create writes the metadata of a new entry.
	Create(entry *Entry) error

	// Load loads an entry by ID.
	Load(id string) (*Entry, error)

	// Resolve finds an entry by ID, unique ID prefix or exact name.
	// An empty reference resolves to the newest entry.
	Resolve(ref string) (*Entry, error)

	// Delete removes an entry and its captured files.
	Delete(id string) error

	// ContentRoot returns the directory holding an entry's captured files.
	ContentRoot(id string) string

	// Manifest lists where each of an entry's files is stored.
	Manifest(entry *Entry) []ManifestEntry

	// Capture copies srcPath into the entry's content root at relPath.
	Capture(id, relPath, srcPath string) error

	// ReadSnapshot reads captured bytes. exists is false when the content
	// root has no file at relPath.
	ReadSnapshot(contentRoot, relPath string) (data []byte, exists bool, err error)

	// SnapshotPath returns where relPath is stored under contentRoot.
	SnapshotPath(contentRoot, relPath string) string
}

// FileStore implements Store using files on disk.
type FileStore struct {
	fs         fsops.FS
	shelvesDir string
}

// NewFileStore creates a new FileStore rooted at shelvesDir.
func NewFileStore(fs fsops.FS, shelvesDir string) *FileStore {
	return &FileStore{
		fs:         fs,
		shelvesDir: shelvesDir,
	}
}

// List returns all complete entries, newest first.
func (s *FileStore) List() ([]*Entry, error) {
	dirs, err := os.ReadDir(s.shelvesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read shelves directory: %w", err)
	}

	entries := []*Entry{}
	for _, dir := range dirs {
		if !dir.IsDir() || s.fs.ValidateIdentifier(dir.Name()) != nil {
			continue
		}
		entry, err := s.Load(dir.Name())
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}

// Exists checks if an entry with the given ID exists.
func (s *FileStore) Exists(id string) (bool, error) {
	if err := s.fs.ValidateIdentifier(id); err != nil {
		return false, fmt.Errorf("invalid entry ID: %w", err)
	}
	return s.fs.Exists(s.metaPath(id))
}

// Create writes the metadata of a new entry. Captured files may already be
// present in the entry's content root.
func (s *FileStore) Create(entry *Entry) error {
	exists, err := s.Exists(entry.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrEntryExists, entry.ID)
	}

	if err := s.fs.MkdirAll(s.ContentRoot(entry.ID), 0755); err != nil {
		return fmt.Errorf("failed to create entry directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := s.fs.AtomicWrite(s.metaPath(entry.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write meta file: %w", err)
	}

	return nil
}

// Load loads an entry by ID.
func (s *FileStore) Load(id string) (*Entry, error) {
	if err := s.fs.ValidateIdentifier(id); err != nil {
		return nil, fmt.Errorf("invalid entry ID: %w", err)
	}

	data, err := s.fs.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return nil, fmt.Errorf("failed to read meta file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meta file %s: %w", id, err)
	}
	if entry.ID != id {
		return nil, fmt.Errorf("meta file for %s records ID %q", id, entry.ID)
	}
	if entry.Files == nil {
		entry.Files = map[string]string{}
	}
	if entry.Checksums == nil {
		entry.Checksums = map[string]string{}
	}

	return &entry, nil
}

// Resolve finds an entry by exact ID, exact name, or unique ID prefix, in
// that order. An empty reference resolves to the newest entry.
func (s *FileStore) Resolve(ref string) (*Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEntryNotFound
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return entries[0], nil
	}

	for _, e := range entries {
		if e.ID == ref {
			return e, nil
		}
	}

	if match, err := uniqueMatch(ref, entries, func(e *Entry) bool { return e.Name == ref }); match != nil || err != nil {
		return match, err
	}
	if match, err := uniqueMatch(ref, entries, func(e *Entry) bool { return strings.HasPrefix(e.ID, ref) }); match != nil || err != nil {
		return match, err
	}

	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, ref)
}

func uniqueMatch(ref string, entries []*Entry, match func(*Entry) bool) (*Entry, error) {
	var found []*Entry
	for _, e := range entries {
		if match(e) {
			found = append(found, e)
		}
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		ids := make([]string, len(found))
		for i, e := range found {
			ids[i] = e.ShortID()
		}
		return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguousRef, ref, strings.Join(ids, ", "))
	}
}

// Delete removes an entry and its captured files.
func (s *FileStore) Delete(id string) error {
	if err := s.fs.ValidateIdentifier(id); err != nil {
		return fmt.Errorf("invalid entry ID: %w", err)
	}

	if err := s.fs.RemoveAll(filepath.Join(s.shelvesDir, id)); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	return nil
}

// ContentRoot returns the directory holding an entry's captured files.
// Returns an empty string if the ID is invalid.
func (s *FileStore) ContentRoot(id string) string {
	if err := s.fs.ValidateIdentifier(id); err != nil {
		return ""
	}
	return filepath.Join(s.shelvesDir, id, filesDirName)
}

// Manifest lists where each of the entry's files is stored, sorted by path.
func (s *FileStore) Manifest(entry *Entry) []ManifestEntry {
	root := s.ContentRoot(entry.ID)
	paths := entry.Paths()

	manifest := make([]ManifestEntry, len(paths))
	for i, rel := range paths {
		manifest[i] = ManifestEntry{
			RelPath:     rel,
			ContentRoot: root,
			SourcePath:  entry.Files[rel],
		}
	}
	return manifest
}

// Capture copies srcPath into the entry's content root at relPath.
func (s *FileStore) Capture(id, relPath, srcPath string) error {
	if err := s.fs.ValidateRelPath(relPath); err != nil {
		return err
	}
	root := s.ContentRoot(id)
	if root == "" {
		return fmt.Errorf("invalid entry ID: %q", id)
	}

	dst := s.SnapshotPath(root, relPath)
	if err := s.fs.CopyFile(srcPath, dst); err != nil {
		return fmt.Errorf("failed to capture %s: %w", relPath, err)
	}

	return nil
}

// ReadSnapshot reads captured bytes from contentRoot.
func (s *FileStore) ReadSnapshot(contentRoot, relPath string) ([]byte, bool, error) {
	if err := s.fs.ValidateRelPath(relPath); err != nil {
		return nil, false, err
	}

	path := s.SnapshotPath(contentRoot, relPath)
	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("snapshot %s is a directory", relPath)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, true, nil
}

// SnapshotPath returns the on-disk location of relPath under contentRoot.
func (s *FileStore) SnapshotPath(contentRoot, relPath string) string {
	return filepath.Join(contentRoot, filepath.FromSlash(relPath))
}

func (s *FileStore) metaPath(id string) string {
	return filepath.Join(s.shelvesDir, id, metaFileName)
}
