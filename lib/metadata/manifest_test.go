// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"reflect"
	"testing"
	"time"

	"github.com/pond-foundation/pond/lib/datastore"
)

func TestCoerceValueScalars(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"already a string", "already a string"},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(255), "255"},
		{3.5, "3.5"},
		{nil, ""},
		{time.Date(2026, 2, 13, 10, 0, 5, 0, time.UTC), "2026-02-13 10:00:05"},
	}
	for _, tc := range cases {
		got, err := CoerceValue(tc.in)
		if err != nil {
			t.Errorf("CoerceValue(%v): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("CoerceValue(%v) = %v, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCoerceValueLists(t *testing.T) {
	got, err := CoerceValue([]any{"a", 1, true})
	if err != nil {
		t.Fatalf("CoerceValue: %v", err)
	}
	want := []string{"a", "1", "true"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CoerceValue = %v, want %v", got, want)
	}

	got, err = CoerceValue([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("CoerceValue: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("CoerceValue = %v", got)
	}
}

func TestCoerceValueIdempotent(t *testing.T) {
	once, err := CoerceValue([]any{"x", 7})
	if err != nil {
		t.Fatalf("CoerceValue: %v", err)
	}
	twice, err := CoerceValue(once)
	if err != nil {
		t.Fatalf("CoerceValue (second pass): %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("coercion not idempotent: %v vs %v", once, twice)
	}
}

func TestCoerceValueRejectsDeepNesting(t *testing.T) {
	if _, err := CoerceValue(map[string]string{"a": "b"}); err == nil {
		t.Fatal("CoerceValue accepted a map")
	}
	if _, err := CoerceValue([]any{[]string{"nested"}}); err == nil {
		t.Fatal("CoerceValue accepted a nested list")
	}
}

func TestManifestAddSectionReplaces(t *testing.T) {
	manifest := NewManifest()
	manifest.AddSection(NewDictSource("user", Section{"k": "old"}))
	manifest.AddSection(NewDictSource("user", Section{"k": "new"}))

	section, err := manifest.CollectSection("user", nil)
	if err != nil {
		t.Fatalf("CollectSection: %v", err)
	}
	if section["k"] != "new" {
		t.Fatalf("section[k] = %v, want new", section["k"])
	}
}

func TestManifestAddNilSectionIsNoop(t *testing.T) {
	manifest := NewManifest()
	manifest.AddSection(nil)

	nested, err := manifest.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(nested) != 0 {
		t.Fatalf("Collect = %v, want empty", nested)
	}
}

func TestManifestMissingSectionReturnsDefault(t *testing.T) {
	manifest := NewManifest()

	section, err := manifest.CollectSection("absent", Section{"fallback": "yes"})
	if err != nil {
		t.Fatalf("CollectSection: %v", err)
	}
	if section["fallback"] != "yes" {
		t.Fatalf("section = %v, want the default", section)
	}

	section, err = manifest.CollectSection("absent", nil)
	if err != nil {
		t.Fatalf("CollectSection: %v", err)
	}
	if section != nil {
		t.Fatalf("section = %v, want nil", section)
	}
}

func TestManifestYAMLRoundTrip(t *testing.T) {
	ds := datastore.NewMemoryDatastore("test")

	manifest := NewManifest()
	manifest.AddSection(NewDictSource("user", Section{
		"test":   "xyz",
		"count":  3,
		"inputs": []any{"pond://a", "pond://b"},
	}))
	manifest.AddSection(NewDictSource("version", Section{
		"artifact_name": "foo",
		"filename":      "foo_v1.csv",
	}))

	if err := manifest.Write(ds, "manifest.yml"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := ReadManifest(ds, "manifest.yml")
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}

	user, err := loaded.CollectSection("user", nil)
	if err != nil {
		t.Fatalf("CollectSection: %v", err)
	}
	if user["test"] != "xyz" {
		t.Fatalf("user[test] = %v", user["test"])
	}
	if user["count"] != "3" {
		t.Fatalf("user[count] = %v, want the coerced string", user["count"])
	}
	if !reflect.DeepEqual(user["inputs"], []string{"pond://a", "pond://b"}) {
		t.Fatalf("user[inputs] = %v", user["inputs"])
	}

	version, err := loaded.CollectSection("version", nil)
	if err != nil {
		t.Fatalf("CollectSection: %v", err)
	}
	if version["artifact_name"] != "foo" || version["filename"] != "foo_v1.csv" {
		t.Fatalf("version section = %v", version)
	}
}

func TestReadManifestMissingIsNotFound(t *testing.T) {
	ds := datastore.NewMemoryDatastore("test")
	_, err := ReadManifest(ds, "absent/manifest.yml")
	if err == nil {
		t.Fatal("ReadManifest succeeded on a missing document")
	}
}
