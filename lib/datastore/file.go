// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package datastore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileDatastore is a Datastore backed by a directory on a regular
// filesystem. Store paths map directly to paths under the base
// directory.
type FileDatastore struct {
	id       string
	basePath string
}

// NewFileDatastore creates a FileDatastore rooted at basePath. The
// base directory must already exist: a missing or non-directory base
// path is a configuration mistake, not something to paper over by
// creating it.
func NewFileDatastore(id, basePath string) (*FileDatastore, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("datastore base path %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("datastore base path %s is not a directory", basePath)
	}
	return &FileDatastore{id: id, basePath: basePath}, nil
}

// ID returns the store identifier.
func (ds *FileDatastore) ID() string { return ds.id }

// BasePath returns the filesystem directory the store is rooted at.
func (ds *FileDatastore) BasePath() string { return ds.basePath }

func (ds *FileDatastore) abs(path string) string {
	return filepath.Join(ds.basePath, filepath.FromSlash(path))
}

// Read returns the contents of the file at path. A missing file is
// reported as [ErrNotFound].
func (ds *FileDatastore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(ds.abs(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Write stores data at path, creating missing parent directories.
func (ds *FileDatastore) Write(path string, data []byte) error {
	full := ds.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a file or directory exists at path.
func (ds *FileDatastore) Exists(path string) (bool, error) {
	_, err := os.Stat(ds.abs(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", path, err)
}

// Delete removes the file at path, or the whole subtree with
// recursive set. Missing paths are ignored.
func (ds *FileDatastore) Delete(path string, recursive bool) error {
	full := ds.abs(path)
	if recursive {
		if err := os.RemoveAll(full); err != nil {
			return fmt.Errorf("deleting %s: %w", path, err)
		}
		return nil
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

// MakeDirs creates the directory at path if needed.
func (ds *FileDatastore) MakeDirs(path string) error {
	if err := os.MkdirAll(ds.abs(path), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}
