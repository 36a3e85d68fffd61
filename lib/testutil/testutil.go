// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for pond packages.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil

import (
	"testing"

	"github.com/pond-foundation/pond/lib/datastore"
)

// TempFileStore returns a FileDatastore rooted in a fresh temporary
// directory, removed when the test completes. Use it for tests that
// should exercise the real filesystem layout rather than the
// in-memory store.
func TempFileStore(t *testing.T, id string) *datastore.FileDatastore {
	t.Helper()
	store, err := datastore.NewFileDatastore(id, t.TempDir())
	if err != nil {
		t.Fatalf("creating file datastore: %v", err)
	}
	return store
}
