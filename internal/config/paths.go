// Package config manages shelf configuration and filesystem paths.
//
// The default data root is ~/.shelf/ and can be moved with the SHELF_ROOT
// environment variable. The root holds the shelf store (shelves/), rotated
// log files (logs/) and an optional config.yaml with user settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by shelf.
type Paths struct {
	// Root is the base directory for all shelf data (default: ~/.shelf)
	Root string

	// Shelves is the directory containing one subdirectory per shelf entry
	Shelves string

	// Logs is the directory holding rotated log files
	Logs string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for shelf.
// SHELF_ROOT overrides the root directory.
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("SHELF_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".shelf")
	}

	return PathsAt(root), nil
}

// PathsAt returns the layout rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:    root,
		Shelves: filepath.Join(root, "shelves"),
		Logs:    filepath.Join(root, "logs"),
		Config:  filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Shelves, p.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
