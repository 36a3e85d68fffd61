// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"fmt"

	"github.com/pond-foundation/pond/lib/datastore"
)

// Manifest is the composable metadata document persisted with every
// artifact version. Sections are contributed by independent sources;
// adding a section with an existing name replaces it. Section names
// are unique within one manifest, and collection order carries no
// meaning.
type Manifest struct {
	sections map[string]Source
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{sections: make(map[string]Source)}
}

// FromNestedMap rebuilds a manifest from its serialized nested-map
// form, one DictSource per section.
func FromNestedMap(nested map[string]Section) *Manifest {
	manifest := NewManifest()
	for name, section := range nested {
		manifest.AddSection(NewDictSource(name, section))
	}
	return manifest
}

// ReadManifest loads and parses a manifest document from the store.
func ReadManifest(ds datastore.Datastore, path string) (*Manifest, error) {
	var nested map[string]Section
	if err := datastore.ReadYAML(ds, path, &nested); err != nil {
		return nil, err
	}
	return FromNestedMap(nested), nil
}

// AddSection registers a source's section, replacing any section with
// the same name. A nil source is ignored: codecs that have no
// artifact metadata simply contribute nothing.
func (m *Manifest) AddSection(source Source) {
	if source == nil {
		return
	}
	m.sections[source.SectionName()] = source
}

// HasSection reports whether a section with the given name exists.
func (m *Manifest) HasSection(name string) bool {
	_, ok := m.sections[name]
	return ok
}

// CollectSection returns the named section with all values coerced to
// their persisted string or string-list form. A missing section is
// not an error: def is returned instead, preserving compatibility
// with manifests written before the section existed.
func (m *Manifest) CollectSection(name string, def Section) (Section, error) {
	source, ok := m.sections[name]
	if !ok {
		return def, nil
	}
	section, err := source.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting manifest section %q: %w", name, err)
	}
	coerced, err := CoerceSection(section)
	if err != nil {
		return nil, fmt.Errorf("manifest section %q: %w", name, err)
	}
	return coerced, nil
}

// Collect gathers all sections into the nested-map form used for
// serialization, coercing every value.
func (m *Manifest) Collect() (map[string]Section, error) {
	nested := make(map[string]Section, len(m.sections))
	for name := range m.sections {
		section, err := m.CollectSection(name, nil)
		if err != nil {
			return nil, err
		}
		nested[name] = section
	}
	return nested, nil
}

// Write serializes the manifest as a YAML document at path.
func (m *Manifest) Write(ds datastore.Datastore, path string) error {
	nested, err := m.Collect()
	if err != nil {
		return err
	}
	return datastore.WriteYAML(ds, path, nested)
}
