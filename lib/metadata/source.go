// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package metadata implements the layered metadata manifest persisted
// next to every artifact version, and the sources that contribute its
// sections.
//
// A manifest maps section names to flat key/value sections. Each
// section is contributed by one metadata source: user-supplied
// metadata, the writing codec, the version bookkeeping, provenance
// from the activity layer, or a git repository. Values are normalized
// to strings (or lists of strings, element-wise) exactly once, at
// collection time; the normalization is idempotent so re-collecting
// an already-persisted manifest changes nothing.
package metadata

// Section is one flat manifest section. After coercion every value is
// a string or a []string.
type Section map[string]any

// Source contributes exactly one named section to a manifest. Two
// calls to Collect may return different values: metadata can be
// gathered on the fly, as with a timestamp or a git SHA.
type Source interface {
	// SectionName returns the manifest section this source fills.
	SectionName() string

	// Collect gathers the section's key/value metadata. Values may
	// be any coercible shape; the manifest normalizes them.
	Collect() (Section, error)
}

// DictSource is a fixed mapping used as a metadata source.
type DictSource struct {
	name    string
	section Section
}

// NewDictSource returns a source contributing the given mapping under
// the given section name.
func NewDictSource(name string, section Section) *DictSource {
	return &DictSource{name: name, section: section}
}

// SectionName returns the section name given at construction.
func (s *DictSource) SectionName() string { return s.name }

// Collect returns the mapping given at construction.
func (s *DictSource) Collect() (Section, error) { return s.section, nil }
