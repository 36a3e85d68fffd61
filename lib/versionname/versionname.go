// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package versionname defines ordered version identifiers and the
// pluggable naming families that produce them.
//
// A family is a naming convention: simple ordinals (v1, v2, ...) or
// wall-clock timestamps. Every version of one artifact uses a single
// family, fixed when the artifact is first created and recorded in
// its binding record by family tag. Families are registered
// explicitly by tag; there is no reflection or subclass scanning.
//
// Family registration happens at package init time. The registry is
// read-only afterwards, so lookups need no locking. Programs that
// register additional families must finish doing so before any
// concurrent use of this package.
package versionname

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pond-foundation/pond/lib/clock"
)

// ErrInvalidVersionName is returned when a string cannot be parsed as
// a version name.
var ErrInvalidVersionName = errors.New("invalid version name")

// ErrIncompatibleVersionName is returned when a version name of one
// family is handed to an operation bound to another family.
var ErrIncompatibleVersionName = errors.New("incompatible version name")

// Name is one version identifier. Names are immutable after creation
// and totally ordered within their family.
type Name interface {
	// String renders the canonical textual form ("v3",
	// "2026-02-13 10:00:00").
	String() string

	// Family returns the tag of the family that produced this name.
	Family() string
}

// Family is a version naming convention. Implementations produce
// successive names, parse the canonical textual form, and order names
// of their own family.
type Family interface {
	// Tag returns the identifier stored in artifact binding records.
	Tag() string

	// First returns the initial name, with no predecessor.
	First(clk clock.Clock) Name

	// Next returns the deterministic successor of prev. It fails
	// with ErrIncompatibleVersionName if prev belongs to another
	// family. A nil prev is equivalent to First.
	Next(prev Name, clk clock.Clock) (Name, error)

	// Parse parses the canonical textual form. It fails with
	// ErrInvalidVersionName if the text is not of this family.
	Parse(text string) (Name, error)

	// Compare orders two names of this family: -1, 0, or +1.
	Compare(a, b Name) int
}

// families holds the registered families in parse-priority order.
// Populated at init; read-only afterwards.
var families []Family

// RegisterFamily adds a family to the registry. Registering a tag
// twice panics: tags are persisted in binding records and must be
// unambiguous.
func RegisterFamily(f Family) {
	for _, existing := range families {
		if existing.Tag() == f.Tag() {
			panic("versionname: duplicate family tag " + f.Tag())
		}
	}
	families = append(families, f)
}

// FamilyByTag returns the registered family with the given tag.
func FamilyByTag(tag string) (Family, error) {
	for _, f := range families {
		if f.Tag() == tag {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown family %q", ErrInvalidVersionName, tag)
}

// Parse parses text by trying each registered family in priority
// order, returning the first name accepted.
func Parse(text string) (Name, error) {
	for _, f := range families {
		name, err := f.Parse(text)
		if err == nil {
			return name, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidVersionName, text)
}

// Compare orders two names. Names of the same family compare by the
// family's natural order. Names of different families have no
// meaningful order; the family tag is used as a deterministic
// last-resort tiebreak so that sorting mixed slices is stable. The
// engine itself never mixes families: mutating operations reject
// cross-family names before comparison ever happens.
func Compare(a, b Name) int {
	if a.Family() == b.Family() {
		f, err := FamilyByTag(a.Family())
		if err != nil {
			// A name whose family is not registered cannot be
			// constructed through this package.
			panic("versionname: name with unregistered family " + a.Family())
		}
		return f.Compare(a, b)
	}
	return strings.Compare(a.Family(), b.Family())
}

// Sort sorts names in place into ascending order.
func Sort(names []Name) {
	sort.SliceStable(names, func(i, j int) bool {
		return Compare(names[i], names[j]) < 0
	})
}
