// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"path/filepath"
)

// Dir reads and writes objects as files under a root directory. Object names
// keep their forward slashes and map onto subdirectories.
type Dir struct {
	Root string
}

// NewDir returns a directory-backed store rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Get reads one file in full.
func (d *Dir) Get(ctx context.Context, name string) ([]byte, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TransportError{Location: path, Err: err}
	}
	return data, nil
}

// Put writes data to a file, creating parent directories as needed.
func (d *Dir) Put(ctx context.Context, name string, data []byte) error {
	path := filepath.Join(d.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &TransportError{Location: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &TransportError{Location: path, Err: err}
	}
	return nil
}
