// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package versionname

import (
	"fmt"
	"time"

	"github.com/pond-foundation/pond/lib/clock"
)

// DatetimeFamilyTag identifies the timestamp naming family.
const DatetimeFamilyTag = "datetime"

// datetimeLayout is the canonical textual form: ISO date and time
// with a space separator, second resolution.
const datetimeLayout = "2006-01-02 15:04:05"

// datetimeParseLayouts are the accepted input forms. The canonical
// space-separated layout comes first; the T-separated ISO form and a
// bare date (midnight) are also accepted.
var datetimeParseLayouts = []string{
	datetimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DatetimeName is a wall-clock version name with second resolution.
type DatetimeName struct {
	t time.Time
}

// NewDatetimeName returns the name for the given instant, truncated
// to second resolution. The zone is discarded: names encode naive
// wall-clock fields, so a name parsed back from its textual form
// compares equal to the name it was rendered from.
func NewDatetimeName(t time.Time) DatetimeName {
	return DatetimeName{t: naive(t)}
}

// naive strips sub-second precision and the location from t, keeping
// only its wall-clock fields.
func naive(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}

// Time returns the instant this name encodes.
func (n DatetimeName) Time() time.Time { return n.t }

// String renders the canonical "2006-01-02 15:04:05" form.
func (n DatetimeName) String() string { return n.t.Format(datetimeLayout) }

// Family returns [DatetimeFamilyTag].
func (n DatetimeName) Family() string { return DatetimeFamilyTag }

// DatetimeFamily produces timestamp names from a clock. When the
// clock has not moved past the previous name (same second, or a
// clock that stepped backwards), the successor is the previous name
// plus one second, so successive names are always strictly
// increasing.
type DatetimeFamily struct{}

// Tag returns [DatetimeFamilyTag].
func (DatetimeFamily) Tag() string { return DatetimeFamilyTag }

// First returns the name for the current clock reading.
func (DatetimeFamily) First(clk clock.Clock) Name {
	return NewDatetimeName(clk.Now())
}

// Next returns the name for the current clock reading, bumped by one
// second past prev if the clock has not advanced beyond it.
func (f DatetimeFamily) Next(prev Name, clk clock.Clock) (Name, error) {
	if prev == nil {
		return f.First(clk), nil
	}
	dt, ok := prev.(DatetimeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a %s name", ErrIncompatibleVersionName, prev, DatetimeFamilyTag)
	}
	now := naive(clk.Now())
	if !now.After(dt.t) {
		now = dt.t.Add(time.Second)
	}
	return DatetimeName{t: now}, nil
}

// Parse accepts the canonical space-separated form, the T-separated
// ISO form, and a bare date (interpreted as midnight).
func (DatetimeFamily) Parse(text string) (Name, error) {
	for _, layout := range datetimeParseLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return DatetimeName{t: t}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidVersionName, text)
}

// Compare orders chronologically.
func (DatetimeFamily) Compare(a, b Name) int {
	ta := a.(DatetimeName).t
	tb := b.(DatetimeName).t
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	default:
		return 0
	}
}

func init() {
	RegisterFamily(DatetimeFamily{})
}
