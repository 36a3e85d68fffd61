// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"errors"
	"testing"
	"time"

	"github.com/pond-foundation/pond/lib/artifact"
	"github.com/pond-foundation/pond/lib/clock"
	"github.com/pond-foundation/pond/lib/datastore"
	"github.com/pond-foundation/pond/lib/metadata"
	"github.com/pond-foundation/pond/lib/versionname"
)

func simpleName(t *testing.T, text string) versionname.Name {
	t.Helper()
	name, err := versionname.SimpleFamily{}.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%s): %v", text, err)
	}
	return name
}

func newDictVersion(t *testing.T, artifactName, versionText string, data map[string]any, meta metadata.Section) *Version {
	t.Helper()
	codec := artifact.DictCodec{}
	art, err := codec.New(data, meta)
	if err != nil {
		t.Fatalf("wrapping data: %v", err)
	}
	return New(artifactName, simpleName(t, versionText), codec, art)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := datastore.NewMemoryDatastore("teststore")
	clk := clock.Fake(time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC))
	data := map[string]any{"answer": "42"}

	v := newDictVersion(t, "params", "v1", data, metadata.Section{"experiment": "baseline"})
	manifest := metadata.NewManifest()
	if err := v.Write("projects/demo", store, manifest, clk); err != nil {
		t.Fatalf("Write: %v", err)
	}

	back, err := Read(store, "projects/demo", "params", simpleName(t, "v1"), artifact.DictCodec{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, ok := back.Artifact.Data().(map[string]any)
	if !ok || got["answer"] != "42" {
		t.Errorf("data = %v", back.Artifact.Data())
	}
	if back.Artifact.Metadata()["experiment"] != "baseline" {
		t.Errorf("user metadata = %v", back.Artifact.Metadata())
	}
	if back.ArtifactName != "params" {
		t.Errorf("ArtifactName = %s", back.ArtifactName)
	}
}

func TestWriteLayout(t *testing.T) {
	store := datastore.NewMemoryDatastore("teststore")
	clk := clock.Fake(time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC))

	v := newDictVersion(t, "params", "v2", map[string]any{"k": "v"}, nil)
	if err := v.Write("root", store, metadata.NewManifest(), clk); err != nil {
		t.Fatalf("Write: %v", err)
	}

	for _, path := range []string{
		"root/params/v2/_pond/manifest.yml",
		"root/params/v2/params_v2.json",
	} {
		present, err := store.Exists(path)
		if err != nil {
			t.Fatalf("Exists(%s): %v", path, err)
		}
		if !present {
			t.Errorf("missing %s; stored paths: %v", path, store.Paths())
		}
	}
}

func TestWriteManifestSections(t *testing.T) {
	store := datastore.NewMemoryDatastore("teststore")
	at := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	v := newDictVersion(t, "params", "v1", map[string]any{"k": "v"}, nil)
	if err := v.Write("root", store, metadata.NewManifest(), clock.Fake(at)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	section, err := v.Manifest.CollectSection("version", nil)
	if err != nil {
		t.Fatalf("CollectSection: %v", err)
	}
	want := metadata.Section{
		"uri":           "pond://teststore/root/params/v1",
		"filename":      "params_v1.json",
		"date_time":     "2026-02-13 10:00:00",
		"artifact_name": "params",
	}
	for key, value := range want {
		if section[key] != value {
			t.Errorf("version section %s = %v, want %v", key, section[key], value)
		}
	}

	artifactSection, err := v.Manifest.CollectSection("artifact", nil)
	if err != nil {
		t.Fatalf("CollectSection: %v", err)
	}
	hash, _ := artifactSection["content_hash"].(string)
	if hash == "" {
		t.Errorf("artifact section has no content hash: %v", artifactSection)
	}
}

func TestReadMissingVersion(t *testing.T) {
	store := datastore.NewMemoryDatastore("teststore")
	_, err := Read(store, "root", "params", simpleName(t, "v9"), artifact.DictCodec{})
	if !errors.Is(err, ErrVersionDoesNotExist) {
		t.Fatalf("err = %v, want ErrVersionDoesNotExist", err)
	}
}

func TestExistsRequiresManifest(t *testing.T) {
	store := datastore.NewMemoryDatastore("teststore")
	v := newDictVersion(t, "params", "v1", map[string]any{"k": "v"}, nil)

	present, err := v.Exists("root", store)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if present {
		t.Fatal("unwritten version reported as existing")
	}

	// A data file without a manifest is not a version.
	if err := store.Write("root/params/v1/params_v1.json", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	present, err = v.Exists("root", store)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if present {
		t.Fatal("data file alone reported as existing version")
	}

	if err := v.Write("root", store, metadata.NewManifest(), clock.Fake(time.Now())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	present, err = v.Exists("root", store)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !present {
		t.Fatal("written version reported as missing")
	}
}

func TestURI(t *testing.T) {
	store := datastore.NewMemoryDatastore("lake")
	v := newDictVersion(t, "foo", "v3", map[string]any{"k": "v"}, nil)
	if got := v.URI("experiments/alpha", store); got != "pond://lake/experiments/alpha/foo/v3" {
		t.Fatalf("URI = %s", got)
	}
}

func TestJoinPathTrimsTrailingSlashes(t *testing.T) {
	if got := JoinPath("a/", "b", "c/"); got != "a/b/c" {
		t.Fatalf("JoinPath = %s", got)
	}
}

func TestReadPrefersManifestMetadata(t *testing.T) {
	store := datastore.NewMemoryDatastore("teststore")
	clk := clock.Fake(time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC))

	// The dict codec embeds metadata in the data bytes; the manifest
	// carries the user section too. On read the manifest copy wins.
	v := newDictVersion(t, "params", "v1", map[string]any{"k": "v"},
		metadata.Section{"experiment": "from-data"})
	manifest := metadata.NewManifest()
	manifest.AddSection(metadata.NewDictSource("user", metadata.Section{"experiment": "from-manifest"}))
	if err := v.Write("root", store, manifest, clk); err != nil {
		t.Fatalf("Write: %v", err)
	}

	back, err := Read(store, "root", "params", simpleName(t, "v1"), artifact.DictCodec{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := back.Artifact.Metadata()["experiment"]; got != "from-manifest" {
		t.Errorf("metadata = %v, want manifest copy to win", back.Artifact.Metadata())
	}
}
