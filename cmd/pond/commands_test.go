// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pond-foundation/pond/lib/artifact"
	"github.com/pond-foundation/pond/lib/datastore"
	"github.com/pond-foundation/pond/lib/versionedartifact"
	"github.com/pond-foundation/pond/lib/versionname"
)

func TestDecodeData(t *testing.T) {
	blob, err := decodeData("blob", []byte("raw bytes"))
	if err != nil {
		t.Fatalf("decodeData(blob): %v", err)
	}
	if string(blob.([]byte)) != "raw bytes" {
		t.Errorf("blob = %q", blob)
	}

	dict, err := decodeData("dict", []byte(`{"k":"v"}`))
	if err != nil {
		t.Fatalf("decodeData(dict): %v", err)
	}
	if !reflect.DeepEqual(dict, map[string]any{"k": "v"}) {
		t.Errorf("dict = %v", dict)
	}

	table, err := decodeData("table", []byte("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("decodeData(table): %v", err)
	}
	if !reflect.DeepEqual(table, [][]string{{"a", "b"}, {"1", "2"}}) {
		t.Errorf("table = %v", table)
	}

	if _, err := decodeData("array", nil); err == nil {
		t.Error("unsupported kind accepted")
	}
}

func TestRenderDataRoundTrip(t *testing.T) {
	rendered, err := renderData([][]string{{"a", "b"}, {"1", "2"}})
	if err != nil {
		t.Fatalf("renderData: %v", err)
	}
	if string(rendered) != "a,b\n1,2\n" {
		t.Errorf("rendered = %q", rendered)
	}
}

func TestParseMetaFlags(t *testing.T) {
	section, err := parseMetaFlags([]string{"experiment=baseline", "tag=a=b"})
	if err != nil {
		t.Fatalf("parseMetaFlags: %v", err)
	}
	if section["experiment"] != "baseline" || section["tag"] != "a=b" {
		t.Errorf("section = %v", section)
	}
	if _, err := parseMetaFlags([]string{"novalue"}); err == nil {
		t.Error("entry without = accepted")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pond.jsonc")
	content := `{
		// the store lives next to the project
		"store_dir": "/data/store",
		"location": "demo",
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.StoreDir != "/data/store" || cfg.Location != "demo" {
		t.Errorf("cfg = %+v", cfg)
	}
}

// captureStdout runs fn with os.Stdout redirected to a pipe and
// returns what it printed.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if runErr != nil {
		t.Fatalf("command: %v", runErr)
	}
	return string(out)
}

func TestVersionsCommand(t *testing.T) {
	dir := t.TempDir()
	store, err := datastore.NewFileDatastore("pond", dir)
	if err != nil {
		t.Fatalf("NewFileDatastore: %v", err)
	}
	ledger, err := versionedartifact.New(versionedartifact.Config{
		Store:        store,
		Root:         "exp",
		ArtifactName: "foo",
		Codec:        artifact.BlobCodec{},
		Family:       versionname.SimpleFamily{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := ledger.Write([]byte("x"), nil, versionedartifact.WriteOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// v2 is reserved in the ledger but was never written.
	if err := datastore.WriteJSON(store, "exp/foo/versions.json", []string{"v1", "v2"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	base := []string{"foo", "--store-dir", dir, "--location", "exp"}

	got := captureStdout(t, func() error {
		return versionsCommand().Execute(base)
	})
	if strings.TrimSpace(got) != "v1" {
		t.Errorf("versions = %q, want v1 only", got)
	}

	got = captureStdout(t, func() error {
		return versionsCommand().Execute(append(base, "--all"))
	})
	if strings.TrimSpace(got) != "v1\nv2" {
		t.Errorf("versions --all = %q, want v1 and v2", got)
	}
}

func TestCommandDispatch(t *testing.T) {
	root := &command{
		Name: "pond",
		Subcommands: []*command{
			{Name: "noop", Run: func(args []string) error { return nil }},
		},
	}
	if err := root.Execute([]string{"noop"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := root.Execute([]string{"bogus"}); err == nil {
		t.Error("unknown command accepted")
	}
	if err := root.Execute(nil); err == nil {
		t.Error("missing subcommand accepted")
	}
}
