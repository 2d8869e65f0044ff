package shape

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Undefined is the sentinel input value that extracts to an undefined leaf.
// json.Unmarshal never produces it; callers use it to represent an absent
// value, e.g. an empty response body.
var Undefined = undefinedValue{}

type undefinedValue struct{}

// Extract converts a decoded JSON value into its shape. It is total: every
// input maps to a Node, nothing is mutated, and the same value always yields
// the same tree.
//
// Array item shapes come from the first element only. An empty array gives an
// array node with an unknown item shape. This heuristic is lossy for
// heterogeneous arrays, which stay undetected.
func Extract(v any) Node {
	return extract(v, make(map[uintptr]struct{}))
}

// extract carries the visited set for the current descent path. Containers
// are marked before recursing into their children and unmarked after, so a
// map or slice reached again on the same path yields a circular leaf while
// sibling aliasing does not.
func extract(v any, seen map[uintptr]struct{}) Node {
	switch val := v.(type) {
	case nil:
		return Scalar{K: KindNull}
	case undefinedValue:
		return Scalar{K: KindUndefined}
	case string:
		return Scalar{K: KindString}
	case bool:
		return Scalar{K: KindBoolean}
	case float64, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32:
		return Scalar{K: KindNumber}
	case []any:
		if len(val) == 0 {
			return Array{}
		}
		ptr := reflect.ValueOf(val).Pointer()
		if _, ok := seen[ptr]; ok {
			return Scalar{K: KindCircular}
		}
		seen[ptr] = struct{}{}
		item := extract(val[0], seen)
		delete(seen, ptr)
		return Array{Item: item}
	case map[string]any:
		ptr := reflect.ValueOf(val).Pointer()
		if _, ok := seen[ptr]; ok {
			return Scalar{K: KindCircular}
		}
		seen[ptr] = struct{}{}
		names := make([]string, 0, len(val))
		for name := range val {
			names = append(names, name)
		}
		sort.Strings(names)
		fields := make([]Field, 0, len(names))
		for _, name := range names {
			fields = append(fields, Field{Name: name, Value: extract(val[name], seen)})
		}
		delete(seen, ptr)
		return Object{Fields: fields}
	}
	// Unrecognized Go values degrade to null rather than failing.
	return Scalar{K: KindNull}
}
