// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package versionname

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pond-foundation/pond/lib/clock"
)

// SimpleFamilyTag identifies the ordinal naming family.
const SimpleFamilyTag = "simple"

// simpleFormat accepts a positive integer with an optional "v"
// prefix. Leading zeros are rejected so every name has exactly one
// textual form.
var simpleFormat = regexp.MustCompile(`^v?([1-9][0-9]*)$`)

// SimpleName is an ordinal version name, rendered as "v<N>".
type SimpleName struct {
	number int
}

// NewSimpleName returns the simple name with the given ordinal.
// Ordinals start at 1.
func NewSimpleName(number int) (SimpleName, error) {
	if number < 1 {
		return SimpleName{}, fmt.Errorf("%w: ordinal %d is not positive", ErrInvalidVersionName, number)
	}
	return SimpleName{number: number}, nil
}

// Number returns the ordinal.
func (n SimpleName) Number() int { return n.number }

// String renders the canonical "v<N>" form.
func (n SimpleName) String() string { return "v" + strconv.Itoa(n.number) }

// Family returns [SimpleFamilyTag].
func (n SimpleName) Family() string { return SimpleFamilyTag }

// SimpleFamily produces ordinal names v1, v2, v3, ... The clock is
// ignored.
type SimpleFamily struct{}

// Tag returns [SimpleFamilyTag].
func (SimpleFamily) Tag() string { return SimpleFamilyTag }

// First returns v1.
func (SimpleFamily) First(clock.Clock) Name { return SimpleName{number: 1} }

// Next returns the successor ordinal. A nil prev yields v1.
func (f SimpleFamily) Next(prev Name, clk clock.Clock) (Name, error) {
	if prev == nil {
		return f.First(clk), nil
	}
	simple, ok := prev.(SimpleName)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a %s name", ErrIncompatibleVersionName, prev, SimpleFamilyTag)
	}
	return SimpleName{number: simple.number + 1}, nil
}

// Parse accepts "N" or "vN" for a positive integer N.
func (SimpleFamily) Parse(text string) (Name, error) {
	match := simpleFormat.FindStringSubmatch(text)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersionName, text)
	}
	number, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersionName, text)
	}
	return SimpleName{number: number}, nil
}

// Compare orders by ordinal.
func (SimpleFamily) Compare(a, b Name) int {
	na := a.(SimpleName).number
	nb := b.(SimpleName).number
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

func init() {
	RegisterFamily(SimpleFamily{})
}
