// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

// Lineage returns the same ancestors ordered nearest parent first.
func (d DecoratedScientificLineage) Lineage() DecoratedLineage {
	return DecoratedLineage{Lineage: reversed(d.DecoratedScientificLineage)}
}

// ScientificLineage returns the same ancestors ordered root first.
func (d DecoratedLineage) ScientificLineage() DecoratedScientificLineage {
	return DecoratedScientificLineage{DecoratedScientificLineage: reversed(d.Lineage)}
}

func reversed(in []TaxonInfo) []TaxonInfo {
	if in == nil {
		return nil
	}
	out := make([]TaxonInfo, len(in))
	for i, t := range in {
		out[len(in)-1-i] = t
	}
	return out
}

// Flag encodes a boolean request option as the 0/1 integer the service expects.
func Flag(on bool) *int64 {
	var v int64
	if on {
		v = 1
	}
	return &v
}

// String returns a pointer to s, for optional string fields.
func String(s string) *string { return &s }

// Int returns a pointer to i, for optional integer fields.
func Int(i int64) *int64 { return &i }

// Ref returns a pointer to an ObjectReference, for optional reference fields.
func Ref(ref string) *ObjectReference {
	r := ObjectReference(ref)
	return &r
}
