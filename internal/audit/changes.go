package audit

import (
	"encoding/json"
	"sort"
	"time"
)

// FieldMap is a flat snapshot of an entity's fields, keyed by wire name.
type FieldMap map[string]any

// StructuralFields are identity and bookkeeping fields that never count as a
// meaningful change: record identity, the owning-lot reference, the per-lot
// ticket number, actor attribution and timestamps.
//
// This set is shared with the record patch sanitizer so the two never drift.
var StructuralFields = map[string]struct{}{
	"id":          {},
	"lotId":       {},
	"loteNumber":  {},
	"orderNumber": {},
	"createdBy":   {},
	"createdAt":   {},
	"updatedAt":   {},
}

// Compare produces ordered field-level diffs between two snapshots.
//
// It iterates the keys present in after, skips StructuralFields, and treats
// two values as equal iff their canonical JSON serializations match, so an
// int and a float holding the same number, or two times at the same instant
// in different zones, never produce a phantom diff.
func Compare(before, after FieldMap) []FieldChange {
	if len(after) == 0 {
		return nil
	}

	// Map iteration order is random; sort so diff order is stable.
	keys := make([]string, 0, len(after))
	for k := range after {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var changes []FieldChange
	for _, k := range keys {
		if _, skip := StructuralFields[k]; skip {
			continue
		}
		b := before[k]
		a := after[k]
		if canonical(b) == canonical(a) {
			continue
		}
		changes = append(changes, FieldChange{Field: k, Before: b, After: a})
	}
	return changes
}

// canonical serializes a value to its comparison form. Times are normalized
// to UTC first so equal instants in different zones compare equal.
func canonical(v any) string {
	switch t := v.(type) {
	case time.Time:
		v = t.UTC()
	case *time.Time:
		if t != nil {
			v = t.UTC()
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		// Unserializable values fall back to nil form; both sides hit the
		// same path so comparison stays consistent.
		return "null"
	}
	return string(b)
}
