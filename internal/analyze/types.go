package analyze

import "go/ast"

// TypeParam is one declared generic parameter of the subject type, with
// its constraint expression preserved verbatim.
type TypeParam struct {
	Name       string
	Constraint ast.Expr
}

// FieldRecord is one field of a variant: its name, declaration index,
// and written type expression.
type FieldRecord struct {
	Name     string
	Index    int
	Type     ast.Expr
	Embedded bool
}

// Variant is one reconstruction case. A struct subject has exactly one
// variant tagged with the subject's own name; a union subject has one
// variant per listed struct.
type Variant struct {
	Tag    string
	Fields []FieldRecord
}

// Unit reports whether the variant holds no fields.
func (v Variant) Unit() bool {
	return len(v.Fields) == 0
}

// DefinitionRecord is the structural description of one annotated type.
// Records are built fresh per generation run and discarded after code
// is emitted.
type DefinitionRecord struct {
	Name     string
	Params   []TypeParam
	Union    bool
	Variants []Variant
}

// ParamIndex returns the position of a declared type parameter, or -1.
func (d *DefinitionRecord) ParamIndex(name string) int {
	for i, p := range d.Params {
		if p.Name == name {
			return i
		}
	}

	return -1
}

// Target is one resolved generation pass: which parameter to transform
// and the suffix appended to generated names.
type Target struct {
	Param  string
	Index  int
	Suffix string
}

// Subject is an annotated type ready for generation.
type Subject struct {
	Def     DefinitionRecord
	Targets []Target
}

// Package is a parsed (never type-checked) Go package.
type Package struct {
	Name  string
	Dir   string
	Files []*ast.File
}
