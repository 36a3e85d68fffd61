// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package activity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pond-foundation/pond/lib/clock"
	"github.com/pond-foundation/pond/lib/metadata"
	"github.com/pond-foundation/pond/lib/testutil"
)

// Writes through a real FileDatastore and checks the on-disk layout
// byte by byte where it is fixed.
func TestFileStoreLayout(t *testing.T) {
	store := testutil.TempFileStore(t, "lake")
	act, err := New(Config{
		Source:   "layout_test",
		Location: "projects/demo",
		Store:    store,
		Clock:    clock.Fake(time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := act.Write([]byte("payload"), "raw", WriteOptions{Metadata: metadata.Section{"k": "v"}}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	base := filepath.Join(store.BasePath(), "projects", "demo", "raw")
	for _, relative := range []string{
		"versions.json",
		"manifest.yml",
		filepath.Join("v1", "raw_v1.bin"),
		filepath.Join("v1", "_pond", "manifest.yml"),
	} {
		if _, err := os.Stat(filepath.Join(base, relative)); err != nil {
			t.Errorf("expected file missing: %v", err)
		}
	}

	ledger, err := os.ReadFile(filepath.Join(base, "versions.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.TrimSpace(string(ledger)); got != `["v1"]` {
		t.Errorf("ledger file = %s, want [\"v1\"]", got)
	}

	binding, err := os.ReadFile(filepath.Join(base, "manifest.yml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(binding), "codec_class: blob") ||
		!strings.Contains(string(binding), "version_name_family: simple") {
		t.Errorf("binding record = %s", binding)
	}

	// Round trip through a second activity over the same directory.
	again, err := New(Config{Source: "layout_test", Location: "projects/demo", Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := again.Read("raw", "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data.([]byte)) != "payload" {
		t.Errorf("data = %q", data)
	}
}
