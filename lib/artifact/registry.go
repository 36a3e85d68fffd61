// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import "fmt"

// registration pairs a codec with the format it was registered under.
type registration struct {
	codec  Codec
	format string
}

// Registry maps data kinds to the codecs able to handle them. When
// several codecs are registered for one kind, the most recently
// registered wins the no-format lookup, so call sites can override a
// built-in codec by registering after it.
//
// Registration is expected to happen at init time; lookups take no
// lock and must not run concurrently with registration.
type Registry struct {
	byKind map[string][]registration
	byName map[string]Codec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[string][]registration),
		byName: make(map[string]Codec),
	}
}

// Register appends a (codec, format) registration for a data kind and
// indexes the codec by name. Registering the same codec name twice
// panics: names are persisted in binding records and must be
// unambiguous.
func (r *Registry) Register(codec Codec, kind, format string) {
	if _, exists := r.byName[codec.Name()]; exists {
		panic("artifact: duplicate codec name " + codec.Name())
	}
	r.byKind[kind] = append(r.byKind[kind], registration{codec: codec, format: format})
	r.byName[codec.Name()] = codec
}

// Lookup returns a codec for the data kind. Without a format, the
// most recently registered codec wins. With a format, registrations
// are scanned for an exact match.
func (r *Registry) Lookup(kind, format string) (Codec, error) {
	registrations := r.byKind[kind]
	if len(registrations) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoCodecForKind, kind)
	}
	if format == "" {
		return registrations[len(registrations)-1].codec, nil
	}
	for _, reg := range registrations {
		if reg.format == format {
			return reg.codec, nil
		}
	}
	return nil, fmt.Errorf("%w: no codec for kind %q with format %q", ErrFormatNotFound, kind, format)
}

// CodecByName resolves a codec by its unique name, as stored in an
// artifact's binding record.
func (r *Registry) CodecByName(name string) (Codec, error) {
	codec, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return codec, nil
}

// DefaultRegistry is the process-wide registry that the built-in
// codecs register with at init time.
var DefaultRegistry = NewRegistry()
