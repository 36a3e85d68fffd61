// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// timeLayout is how time values render inside manifests. Matches the
// datetime version name layout so manifests read uniformly.
const timeLayout = "2006-01-02 15:04:05"

// CoerceValue normalizes a metadata value to its persisted shape: a
// string for scalars, a []string for lists (element-wise). The
// function is total over the supported shapes and idempotent:
// coercing an already-coerced value returns it unchanged. Maps,
// nested lists, and other deep structures are rejected explicitly
// rather than stringified.
func CoerceValue(value any) (any, error) {
	if value == nil {
		return "", nil
	}
	if s, ok := coerceScalar(value); ok {
		return s, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			element := rv.Index(i).Interface()
			s, ok := coerceScalar(element)
			if !ok {
				return nil, fmt.Errorf("metadata list element %d has unsupported type %T", i, element)
			}
			out[i] = s
		}
		return out, nil
	}

	return nil, fmt.Errorf("metadata value has unsupported type %T", value)
}

// coerceScalar converts a single scalar value to its string form.
func coerceScalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case time.Time:
		return v.Format(timeLayout), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// CoerceSection normalizes every value in a section. The input is not
// modified.
func CoerceSection(section Section) (Section, error) {
	out := make(Section, len(section))
	for key, value := range section {
		coerced, err := CoerceValue(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = coerced
	}
	return out, nil
}
