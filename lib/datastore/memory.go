// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package datastore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryDatastore is an in-memory Datastore used in tests and as a
// scratch store. Directory semantics mirror a filesystem closely
// enough for the engine: a directory exists if it was created with
// MakeDirs or if any blob lives beneath it.
//
// MemoryDatastore is safe for concurrent use.
type MemoryDatastore struct {
	id string

	mu    sync.RWMutex
	blobs map[string][]byte
	dirs  map[string]bool
}

// NewMemoryDatastore creates an empty in-memory store.
func NewMemoryDatastore(id string) *MemoryDatastore {
	return &MemoryDatastore{
		id:    id,
		blobs: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// ID returns the store identifier.
func (ds *MemoryDatastore) ID() string { return ds.id }

func normalize(path string) string {
	return strings.Trim(path, "/")
}

// Read returns the contents of the blob at path. A missing blob is
// reported as [ErrNotFound].
func (ds *MemoryDatastore) Read(path string) ([]byte, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	data, ok := ds.blobs[normalize(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores data at path. Intermediate directories are implied by
// the blob path and need no explicit creation.
func (ds *MemoryDatastore) Write(path string, data []byte) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	ds.blobs[normalize(path)] = stored
	return nil
}

// Exists reports whether a blob or directory exists at path.
func (ds *MemoryDatastore) Exists(path string) (bool, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	path = normalize(path)
	if _, ok := ds.blobs[path]; ok {
		return true, nil
	}
	if ds.dirs[path] {
		return true, nil
	}
	prefix := path + "/"
	for blob := range ds.blobs {
		if strings.HasPrefix(blob, prefix) {
			return true, nil
		}
	}
	for dir := range ds.dirs {
		if strings.HasPrefix(dir, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the blob at path, or everything beneath it with
// recursive set. Missing paths are ignored.
func (ds *MemoryDatastore) Delete(path string, recursive bool) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	path = normalize(path)
	delete(ds.blobs, path)
	delete(ds.dirs, path)
	if !recursive {
		return nil
	}
	prefix := path + "/"
	for blob := range ds.blobs {
		if strings.HasPrefix(blob, prefix) {
			delete(ds.blobs, blob)
		}
	}
	for dir := range ds.dirs {
		if strings.HasPrefix(dir, prefix) {
			delete(ds.dirs, dir)
		}
	}
	return nil
}

// MakeDirs records the directory at path.
func (ds *MemoryDatastore) MakeDirs(path string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.dirs[normalize(path)] = true
	return nil
}

// Paths returns the sorted paths of all stored blobs. Test helper.
func (ds *MemoryDatastore) Paths() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	paths := make([]string, 0, len(ds.blobs))
	for path := range ds.blobs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
