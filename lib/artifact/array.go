// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"
	"io"

	"github.com/pond-foundation/pond/lib/codec"
	"github.com/pond-foundation/pond/lib/metadata"
)

// Array is a dense n-dimensional numeric array in row-major order.
type Array struct {
	// Shape holds the extent of each dimension. An empty shape
	// denotes a scalar with exactly one value.
	Shape []int

	// Values holds len = product(Shape) elements in row-major order.
	Values []float64
}

// NewArray builds an array after checking that the value count
// matches the shape.
func NewArray(shape []int, values []float64) (*Array, error) {
	expected := 1
	for _, extent := range shape {
		if extent < 0 {
			return nil, fmt.Errorf("array shape has negative extent %d", extent)
		}
		expected *= extent
	}
	if len(values) != expected {
		return nil, fmt.Errorf("array shape %v implies %d values, got %d", shape, expected, len(values))
	}
	return &Array{Shape: shape, Values: values}, nil
}

// arrayDocument is the on-disk CBOR form of an array artifact. The
// metadata map rides inside the document so the file is
// self-contained.
type arrayDocument struct {
	Shape    []int          `cbor:"shape"`
	Values   []float64      `cbor:"values"`
	Metadata map[string]any `cbor:"metadata,omitempty"`
}

// ArrayCodec stores numeric arrays as CBOR documents (core
// deterministic encoding), embedding the metadata in the document.
//
// Writer and reader options: none.
type ArrayCodec struct{}

// Name returns "array-cbor".
func (ArrayCodec) Name() string { return "array-cbor" }

// Kind returns [KindArray].
func (ArrayCodec) Kind() string { return KindArray }

// Filename appends the ".cbor" extension.
func (ArrayCodec) Filename(basename string) string { return basename + ".cbor" }

// New wraps an *Array. The content hash covers shape and values, not
// the embedded metadata.
func (c ArrayCodec) New(data any, meta metadata.Section) (Artifact, error) {
	array, ok := data.(*Array)
	if !ok {
		return nil, fmt.Errorf("array codec: data is %T, want *artifact.Array", data)
	}
	canonical, err := codec.Marshal(arrayDocument{Shape: array.Shape, Values: array.Values})
	if err != nil {
		return nil, fmt.Errorf("array codec: encoding for hash: %w", err)
	}
	return &arrayArtifact{
		array:       array,
		meta:        meta,
		contentHash: ContentHash(canonical),
	}, nil
}

// ReadBytes decodes a CBOR array document. Manifest metadata, when
// present, wins over the embedded copy.
func (c ArrayCodec) ReadBytes(r io.Reader, meta metadata.Section, opts Options) (Artifact, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("array codec: %w", err)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("array codec: reading document: %w", err)
	}
	var document arrayDocument
	if err := codec.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("array codec: parsing CBOR: %w", err)
	}

	array, err := NewArray(document.Shape, document.Values)
	if err != nil {
		return nil, fmt.Errorf("array codec: %w", err)
	}
	if meta == nil && document.Metadata != nil {
		meta = metadata.Section(document.Metadata)
	}
	return &arrayArtifact{array: array, meta: meta}, nil
}

type arrayArtifact struct {
	array       *Array
	meta        metadata.Section
	contentHash string
}

func (a *arrayArtifact) Data() any { return a.array }

func (a *arrayArtifact) Metadata() metadata.Section { return a.meta }

func (a *arrayArtifact) WriteBytes(w io.Writer, opts Options) error {
	if err := opts.validate(); err != nil {
		return fmt.Errorf("array codec: %w", err)
	}

	document := arrayDocument{Shape: a.array.Shape, Values: a.array.Values}
	if len(a.meta) > 0 {
		coerced, err := metadata.CoerceSection(a.meta)
		if err != nil {
			return fmt.Errorf("array codec: embedding metadata: %w", err)
		}
		document.Metadata = coerced
	}

	encoded, err := codec.Marshal(document)
	if err != nil {
		return fmt.Errorf("array codec: encoding CBOR: %w", err)
	}
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("array codec: writing document: %w", err)
	}
	return nil
}

func (a *arrayArtifact) ArtifactMetadata() metadata.Section {
	if a.contentHash == "" {
		return nil
	}
	return metadata.Section{
		"content_hash": a.contentHash,
		"shape":        a.array.Shape,
	}
}

func init() {
	DefaultRegistry.Register(ArrayCodec{}, KindArray, "cbor")
}
