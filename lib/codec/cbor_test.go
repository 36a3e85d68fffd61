// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"reflect"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"b": "2", "a": "1", "c": []any{"x", "y"}}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("same logical value produced different bytes")
	}
}

func TestUnmarshalAnyMapType(t *testing.T) {
	data, err := Marshal(map[string]any{"key": "value"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out any
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", out)
	}
	if m["key"] != "value" {
		t.Fatalf("decoded = %v", m)
	}
}

func TestStructRoundTrip(t *testing.T) {
	type payload struct {
		Shape  []int     `cbor:"shape"`
		Values []float64 `cbor:"values"`
	}
	in := payload{Shape: []int{2, 2}, Values: []float64{1, 2, 3, 4}}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out payload
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round-trip = %+v, want %+v", out, in)
	}
}
