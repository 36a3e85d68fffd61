// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pond-foundation/pond/lib/metadata"
)

// fakeCodec is a minimal codec for registry tests.
type fakeCodec struct {
	name string
	kind string
}

func (c fakeCodec) Name() string { return c.name }
func (c fakeCodec) Kind() string { return c.kind }

func (c fakeCodec) Filename(basename string) string { return basename + ".fake" }

func (c fakeCodec) New(data any, meta metadata.Section) (Artifact, error) {
	return nil, errors.New("not implemented")
}
func (c fakeCodec) ReadBytes(r io.Reader, meta metadata.Section, opts Options) (Artifact, error) {
	return nil, errors.New("not implemented")
}

func TestRegistryLastRegisteredWins(t *testing.T) {
	registry := NewRegistry()
	registry.Register(fakeCodec{name: "first", kind: "thing"}, "thing", "a")
	registry.Register(fakeCodec{name: "second", kind: "thing"}, "thing", "b")

	found, err := registry.Lookup("thing", "")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found.Name() != "second" {
		t.Fatalf("Lookup = %s, want second (last registered)", found.Name())
	}
}

func TestRegistryFormatLookup(t *testing.T) {
	registry := NewRegistry()
	registry.Register(fakeCodec{name: "first", kind: "thing"}, "thing", "a")
	registry.Register(fakeCodec{name: "second", kind: "thing"}, "thing", "b")

	found, err := registry.Lookup("thing", "a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found.Name() != "first" {
		t.Fatalf("Lookup(format a) = %s, want first", found.Name())
	}
}

func TestRegistryFormatNotFound(t *testing.T) {
	registry := NewRegistry()
	registry.Register(fakeCodec{name: "json-thing", kind: "thing"}, "thing", "json")

	_, err := registry.Lookup("thing", "csv")
	if !errors.Is(err, ErrFormatNotFound) {
		t.Fatalf("err = %v, want ErrFormatNotFound", err)
	}
	// The error names both the kind and the requested format.
	if !strings.Contains(err.Error(), "thing") || !strings.Contains(err.Error(), "csv") {
		t.Fatalf("error %q does not name the kind and format", err)
	}
}

func TestRegistryNoCodecForKind(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Lookup("unheard-of", "")
	if !errors.Is(err, ErrNoCodecForKind) {
		t.Fatalf("err = %v, want ErrNoCodecForKind", err)
	}
}

func TestRegistryCodecByName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(fakeCodec{name: "the-codec", kind: "thing"}, "thing", "a")

	found, err := registry.CodecByName("the-codec")
	if err != nil {
		t.Fatalf("CodecByName: %v", err)
	}
	if found.Name() != "the-codec" {
		t.Fatalf("CodecByName = %s", found.Name())
	}

	if _, err := registry.CodecByName("absent"); !errors.Is(err, ErrUnknownCodec) {
		t.Fatalf("err = %v, want ErrUnknownCodec", err)
	}
}

func TestRegistryDuplicateNamePanics(t *testing.T) {
	registry := NewRegistry()
	registry.Register(fakeCodec{name: "dup", kind: "thing"}, "thing", "a")

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate codec name did not panic")
		}
	}()
	registry.Register(fakeCodec{name: "dup", kind: "other"}, "other", "b")
}

func TestDefaultRegistryBuiltins(t *testing.T) {
	cases := []struct {
		kind   string
		format string
		name   string
	}{
		{KindTable, "csv", "table-csv"},
		{KindDict, "json", "dict-json"},
		{KindBlob, "bin", "blob"},
		{KindArray, "cbor", "array-cbor"},
	}
	for _, tc := range cases {
		found, err := DefaultRegistry.Lookup(tc.kind, tc.format)
		if err != nil {
			t.Errorf("Lookup(%s, %s): %v", tc.kind, tc.format, err)
			continue
		}
		if found.Name() != tc.name {
			t.Errorf("Lookup(%s, %s) = %s, want %s", tc.kind, tc.format, found.Name(), tc.name)
		}
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		data any
		kind string
	}{
		{[][]string{{"a"}}, KindTable},
		{map[string]any{"k": "v"}, KindDict},
		{[]byte{1, 2}, KindBlob},
		{&Array{Shape: []int{1}, Values: []float64{1}}, KindArray},
	}
	for _, tc := range cases {
		kind, err := KindOf(tc.data)
		if err != nil {
			t.Errorf("KindOf(%T): %v", tc.data, err)
			continue
		}
		if kind != tc.kind {
			t.Errorf("KindOf(%T) = %s, want %s", tc.data, kind, tc.kind)
		}
	}

	if _, err := KindOf(42); !errors.Is(err, ErrNoCodecForKind) {
		t.Fatalf("KindOf(int) err = %v, want ErrNoCodecForKind", err)
	}
}
