// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact defines the pluggable codecs that serialize one
// data kind to bytes and back, and the registry that picks a codec
// from a data value's kind and an optional format hint.
//
// A codec should embed the artifact metadata in the data bytes when
// the format allows it, so a stored artifact stays self-contained
// even when the file is copied out of the store. On read, metadata
// from the version manifest always overrides whatever was embedded;
// the manifest is the source of truth.
//
// Codecs register themselves with the default registry at package
// init time. The registry is read-only after startup; programs that
// register additional codecs must finish before any concurrent
// lookups begin.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pond-foundation/pond/lib/metadata"
)

// ErrNoCodecForKind is returned when a data kind has no registered
// codec at all.
var ErrNoCodecForKind = errors.New("no codec for data kind")

// ErrFormatNotFound is returned when a data kind has registered
// codecs but none matches the requested format.
var ErrFormatNotFound = errors.New("format not found for data kind")

// ErrUnknownCodec is returned when a binding record names a codec
// that is not registered in this process.
var ErrUnknownCodec = errors.New("unknown codec")

// Data kind tags. A kind identifies the in-memory shape of a data
// value; [KindOf] maps values to kinds.
const (
	KindTable = "table"
	KindDict  = "dict"
	KindBlob  = "blob"
	KindArray = "array"
)

// Options carries codec-specific reader or writer parameters. Each
// codec documents the option names it recognizes and rejects unknown
// names, so a typo fails loudly instead of being silently ignored.
type Options map[string]any

// validate fails if o contains a key outside the recognized set.
func (o Options) validate(recognized ...string) error {
	for key := range o {
		found := false
		for _, name := range recognized {
			if key == name {
				found = true
				break
			}
		}
		if !found {
			sort.Strings(recognized)
			return fmt.Errorf("unrecognized option %q (recognized: %v)", key, recognized)
		}
	}
	return nil
}

// stringOption returns the named option as a string, or def when
// absent.
func (o Options) stringOption(name, def string) (string, error) {
	value, ok := o[name]
	if !ok {
		return def, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", name, value)
	}
	return s, nil
}

// Codec serializes one data kind to bytes and back.
type Codec interface {
	// Name is the codec's unique identity, stored in artifact
	// binding records so later readers resolve the exact codec that
	// wrote the data.
	Name() string

	// Kind is the data kind this codec handles.
	Kind() string

	// Filename completes a base filename with the codec's extension.
	Filename(basename string) string

	// New wraps a fresh in-memory value and its user metadata into
	// an Artifact ready to be written. The content hash is computed
	// here, once, from the fresh data.
	New(data any, meta metadata.Section) (Artifact, error)

	// ReadBytes deserializes an artifact. When meta is non-nil it is
	// the authoritative metadata (typically the manifest's user
	// section) and overrides any metadata embedded in the bytes.
	ReadBytes(r io.Reader, meta metadata.Section, opts Options) (Artifact, error)
}

// Artifact is one in-memory (data, metadata) value bound to the codec
// that knows how to serialize it.
type Artifact interface {
	// Data returns the wrapped data value.
	Data() any

	// Metadata returns the user metadata attached to the artifact.
	Metadata() metadata.Section

	// WriteBytes serializes the artifact, embedding the metadata
	// when the format allows.
	WriteBytes(w io.Writer, opts Options) error

	// ArtifactMetadata returns the codec-supplied manifest section
	// (at minimum a content hash), or nil when the codec supplies
	// none. Artifacts reconstructed by ReadBytes supply none: their
	// hash lives in the manifest already and is never recomputed.
	ArtifactMetadata() metadata.Section
}

// KindOf maps a data value to its kind tag.
func KindOf(data any) (string, error) {
	switch data.(type) {
	case [][]string:
		return KindTable, nil
	case map[string]any:
		return KindDict, nil
	case []byte:
		return KindBlob, nil
	case *Array:
		return KindArray, nil
	default:
		return "", fmt.Errorf("%w: unsupported data type %T", ErrNoCodecForKind, data)
	}
}
