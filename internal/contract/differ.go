package contract

import "github.com/contract-parity/parity-go/internal/shape"

// Compare walks two shapes in lock step and returns every structural
// difference, ordered by a deterministic sorted traversal. The root path is
// "". A nil ignore policy ignores nothing.
//
// The walk stops descending at the first divergence on a branch: a kind
// mismatch yields exactly one difference for that subtree. Array item shapes
// are compared only when both sides know them; an empty source array on
// either side says nothing about item type and is skipped silently.
func Compare(a, b shape.Node, ignore IgnorePolicy) []Difference {
	diffs := []Difference{}
	walk(a, b, "", ignore, &diffs)
	return diffs
}

func walk(a, b shape.Node, path string, ignore IgnorePolicy, out *[]Difference) {
	if ignore != nil && ignore.ShouldIgnore(path) {
		return
	}

	if a.Kind() != b.Kind() {
		*out = append(*out, Difference{
			Path:     path,
			Kind:     DiffTypeMismatch,
			Severity: DiffTypeMismatch.Severity(),
			AKind:    a.Kind(),
			BKind:    b.Kind(),
		})
		return
	}

	switch av := a.(type) {
	case shape.Array:
		bv := b.(shape.Array)
		if av.Item == nil || bv.Item == nil {
			return
		}
		walk(av.Item, bv.Item, path+"[]", ignore, out)
	case shape.Object:
		walkFields(av, b.(shape.Object), path, ignore, out)
	}
}

// walkFields merge-walks the two sorted field lists over the union of names.
func walkFields(a, b shape.Object, path string, ignore IgnorePolicy, out *[]Difference) {
	i, j := 0, 0
	for i < len(a.Fields) || j < len(b.Fields) {
		switch {
		case j >= len(b.Fields) || (i < len(a.Fields) && a.Fields[i].Name < b.Fields[j].Name):
			fieldDiff(joinPath(path, a.Fields[i].Name), DiffFieldMissingInB, ignore, out)
			i++
		case i >= len(a.Fields) || b.Fields[j].Name < a.Fields[i].Name:
			fieldDiff(joinPath(path, b.Fields[j].Name), DiffFieldMissingInA, ignore, out)
			j++
		default:
			walk(a.Fields[i].Value, b.Fields[j].Value, joinPath(path, a.Fields[i].Name), ignore, out)
			i++
			j++
		}
	}
}

// fieldDiff records a missing-field difference unless the path is ignored.
func fieldDiff(path string, kind DiffKind, ignore IgnorePolicy, out *[]Difference) {
	if ignore != nil && ignore.ShouldIgnore(path) {
		return
	}
	*out = append(*out, Difference{
		Path:     path,
		Kind:     kind,
		Severity: kind.Severity(),
	})
}

// joinPath appends an object member name to a parent path: "" + "a" -> "a",
// "a" + "b" -> "a.b". Array items append "[]" directly to the parent.
func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
