// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pond-foundation/pond/lib/metadata"
)

// embeddedMetadataKey is the reserved top-level key under which the
// dict codec embeds user metadata in the JSON document itself.
const embeddedMetadataKey = "__metadata__"

// DictCodec stores string-keyed mappings (map[string]any) as JSON. A
// typical use is saving the parameters of an experiment. User
// metadata is embedded in the document under "__metadata__", so the
// stored file is self-contained.
//
// Writer options:
//
//	"indent": indentation string for pretty-printed output;
//	default is compact single-line JSON.
//
// Reader options: none.
type DictCodec struct{}

// Name returns "dict-json".
func (DictCodec) Name() string { return "dict-json" }

// Kind returns [KindDict].
func (DictCodec) Kind() string { return KindDict }

// Filename appends the ".json" extension.
func (DictCodec) Filename(basename string) string { return basename + ".json" }

// New wraps a map[string]any value. The content hash covers the data
// alone, not the embedded metadata, so attaching different metadata
// to the same data yields the same hash.
func (c DictCodec) New(data any, meta metadata.Section) (Artifact, error) {
	dict, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dict codec: data is %T, want map[string]any", data)
	}
	if _, reserved := dict[embeddedMetadataKey]; reserved {
		return nil, fmt.Errorf("dict codec: data uses the reserved key %q", embeddedMetadataKey)
	}
	canonical, err := json.Marshal(dict)
	if err != nil {
		return nil, fmt.Errorf("dict codec: data is not JSON-serializable: %w", err)
	}
	return &dictArtifact{
		dict:        dict,
		meta:        meta,
		contentHash: ContentHash(canonical),
	}, nil
}

// ReadBytes parses a JSON document, splitting off the embedded
// "__metadata__" key. Manifest metadata, when present, wins over the
// embedded copy.
func (c DictCodec) ReadBytes(r io.Reader, meta metadata.Section, opts Options) (Artifact, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("dict codec: %w", err)
	}

	var dict map[string]any
	if err := json.NewDecoder(r).Decode(&dict); err != nil {
		return nil, fmt.Errorf("dict codec: parsing JSON: %w", err)
	}

	embedded, _ := dict[embeddedMetadataKey].(map[string]any)
	delete(dict, embeddedMetadataKey)

	if meta == nil && embedded != nil {
		meta = metadata.Section(embedded)
	}
	return &dictArtifact{dict: dict, meta: meta}, nil
}

type dictArtifact struct {
	dict        map[string]any
	meta        metadata.Section
	contentHash string
}

func (a *dictArtifact) Data() any { return a.dict }

func (a *dictArtifact) Metadata() metadata.Section { return a.meta }

func (a *dictArtifact) WriteBytes(w io.Writer, opts Options) error {
	if err := opts.validate("indent"); err != nil {
		return fmt.Errorf("dict codec: %w", err)
	}
	indent, err := opts.stringOption("indent", "")
	if err != nil {
		return fmt.Errorf("dict codec: %w", err)
	}

	document := make(map[string]any, len(a.dict)+1)
	for key, value := range a.dict {
		document[key] = value
	}
	if len(a.meta) > 0 {
		coerced, err := metadata.CoerceSection(a.meta)
		if err != nil {
			return fmt.Errorf("dict codec: embedding metadata: %w", err)
		}
		document[embeddedMetadataKey] = coerced
	}

	encoder := json.NewEncoder(w)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(document); err != nil {
		return fmt.Errorf("dict codec: encoding JSON: %w", err)
	}
	return nil
}

func (a *dictArtifact) ArtifactMetadata() metadata.Section {
	if a.contentHash == "" {
		return nil
	}
	return metadata.Section{"content_hash": a.contentHash}
}

func init() {
	DefaultRegistry.Register(DictCodec{}, KindDict, "json")
}
