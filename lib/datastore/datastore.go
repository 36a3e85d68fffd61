// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package datastore defines the byte store that versioned artifacts
// are persisted to, together with filesystem and in-memory
// implementations. A datastore addresses opaque byte blobs by
// slash-separated paths relative to a store-specific root and knows
// nothing about versions, manifests, or codecs.
//
// The structured-document helpers (ReadYAML, WriteJSON, ...) are
// plain functions built only on the interface primitives, so every
// implementation gets them for free.
package datastore

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Read when the requested path does not
// exist. It is distinct from other I/O failures so callers can fall
// back to "no prior state" instead of aborting.
var ErrNotFound = errors.New("path not found")

// Datastore is a path-addressed byte store.
//
// Paths are slash-separated and relative to the store root. Write
// creates missing intermediate directories. Implementations must
// return an error wrapping [ErrNotFound] from Read when the path does
// not exist.
type Datastore interface {
	// ID returns the unique identifier of this store. It appears in
	// version URIs (pond://<id>/...) so that a URI pins down the
	// store an artifact lives in.
	ID() string

	// Read returns the contents of the blob at path.
	Read(path string) ([]byte, error)

	// Write stores data at path, overwriting any existing blob and
	// creating missing intermediate directories.
	Write(path string, data []byte) error

	// Exists reports whether a blob or directory exists at path.
	Exists(path string) (bool, error)

	// Delete removes the blob at path. With recursive set, path may
	// be a directory and its whole subtree is removed. Deleting a
	// missing path is not an error.
	Delete(path string, recursive bool) error

	// MakeDirs creates the directory at path if needed, including
	// parents. Existing directories are left untouched.
	MakeDirs(path string) error
}

// ReadString reads the blob at path and decodes it as UTF-8 text.
func ReadString(ds Datastore, path string) (string, error) {
	data, err := ds.Read(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteString writes text to path as UTF-8 bytes.
func WriteString(ds Datastore, path, content string) error {
	return ds.Write(path, []byte(content))
}

// ReadYAML reads the blob at path and unmarshals it as a YAML
// document into out.
func ReadYAML(ds Datastore, path string, out any) error {
	data, err := ds.Read(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing YAML document %s: %w", path, err)
	}
	return nil
}

// WriteYAML marshals v as a YAML document and writes it to path.
func WriteYAML(ds Datastore, path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding YAML document %s: %w", path, err)
	}
	return ds.Write(path, data)
}

// ReadJSON reads the blob at path and unmarshals it as JSON into out.
func ReadJSON(ds Datastore, path string, out any) error {
	data, err := ds.Read(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing JSON document %s: %w", path, err)
	}
	return nil
}

// WriteJSON marshals v as compact JSON and writes it to path.
func WriteJSON(ds Datastore, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding JSON document %s: %w", path, err)
	}
	return ds.Write(path, data)
}
