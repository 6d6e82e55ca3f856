// Package shape classifies how a target type parameter occurs within a
// written field type.
//
// Classification is purely syntactic: it depends only on the type
// expression as written, never on resolved type information, so a type
// written identically always classifies identically. Classification is
// total and never fails; the worst case is Opaque.
package shape

import "go/ast"

//go:generate go tool stringer -type=Kind -trimprefix=Kind

// Kind enumerates the ways a target parameter can occur within a type.
type Kind int

const (
	// KindOpaque means the parameter does not occur (or occurs in an
	// unsupported position, see Shape.Degraded); the value passes
	// through unchanged.
	KindOpaque Kind = iota
	// KindDirect means the type is exactly the parameter.
	KindDirect
	// KindTuple is a fixed-arity anonymous struct; every component is
	// classified individually.
	KindTuple
	// KindArray is a fixed-length array; the element is classified.
	KindArray
	// KindContainer is a recognized container (slice, map value,
	// pointer, or a registry-matched generic type).
	KindContainer
	// KindMarker is the zero-sized functor.Phantom marker applied to
	// exactly the parameter.
	KindMarker
)

// Shape is the immutable classification of one written type expression.
// Parenthesized types are unwrapped during classification and never
// appear as a distinct case.
type Shape struct {
	Kind Kind

	// Type is the written type expression with redundant grouping
	// stripped.
	Type ast.Expr

	// Elems holds the classified tuple components, the array element
	// (single entry), or the container's mapped type arguments in
	// registry order.
	Elems []Shape

	// Names holds tuple component names, parallel to Elems.
	Names []string

	// Len is the array length expression, verbatim.
	Len ast.Expr

	// Entry is the registry entry for container shapes.
	Entry *Entry

	// Degraded marks an Opaque shape whose type does contain the
	// parameter in a position the analyzer cannot transform. The field
	// is passed through unchanged; the generator reports a warning.
	Degraded bool
}

// ContainsTarget reports whether the parameter occurs anywhere in a
// supported position of this shape. Shapes without an occurrence
// reconstruct as plain pass-through.
func (s Shape) ContainsTarget() bool {
	switch s.Kind {
	case KindDirect, KindMarker:
		return true
	case KindTuple, KindArray, KindContainer:
		for _, e := range s.Elems {
			if e.ContainsTarget() {
				return true
			}
		}
	}

	return false
}

// HasDegraded reports whether this shape or any nested shape carries a
// degraded parameter occurrence.
func (s Shape) HasDegraded() bool {
	if s.Degraded {
		return true
	}

	for _, e := range s.Elems {
		if e.HasDegraded() {
			return true
		}
	}

	return false
}
