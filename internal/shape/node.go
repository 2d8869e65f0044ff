// Package shape extracts structural skeletons from decoded JSON values.
// A shape keeps kinds and field names and discards every concrete value,
// so two payloads with the same structure produce identical shapes.
package shape

// Kind identifies a shape node type.
type Kind string

const (
	KindNull      Kind = "null"
	KindUndefined Kind = "undefined"
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindBoolean   Kind = "boolean"
	KindArray     Kind = "array"
	KindObject    Kind = "object"
	KindCircular  Kind = "circular"
)

func (k Kind) Valid() bool {
	switch k {
	case KindNull, KindUndefined, KindString, KindNumber, KindBoolean,
		KindArray, KindObject, KindCircular:
		return true
	}
	return false
}

// Node is one node of an extracted shape tree.
type Node interface {
	Kind() Kind
}

// Scalar is a leaf node: null, undefined, string, number, boolean, or
// circular. Null and undefined are distinct kinds; null is a value that is
// present and null, undefined is a value that is absent.
type Scalar struct {
	K Kind `json:"kind"`
}

func (s Scalar) Kind() Kind { return s.K }

// Array is an array node. A nil Item means the item shape is unknown
// because the source array was empty.
type Array struct {
	Item Node `json:"item,omitempty"`
}

func (a Array) Kind() Kind { return KindArray }

// Object is an object node. Fields are sorted lexicographically by name at
// construction; consumers may rely on the order.
type Object struct {
	Fields []Field `json:"fields"`
}

func (o Object) Kind() Kind { return KindObject }

// Field is one named member of an object shape.
type Field struct {
	Name  string `json:"name"`
	Value Node   `json:"value"`
}
