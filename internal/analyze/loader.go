// Package analyze loads Go packages and extracts the annotated type
// definitions the generator works on.
//
// Loading is deliberately syntax-only: the engine classifies written
// type expressions, so packages are never type-checked and do not even
// need to compile as a whole.
package analyze

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"

	"golang.org/x/tools/go/packages"

	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/directive"
)

// LoadMode specifies what information to load from packages. Syntax
// only: no NeedTypes, no NeedTypesInfo.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax

// Load loads the specified package patterns and returns their parsed
// form. Patterns are standard Go package patterns (e.g. "./...").
func Load(patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var out []*Package

	for _, pkg := range pkgs {
		p := &Package{
			Name:  pkg.Name,
			Files: pkg.Syntax,
		}

		if len(pkg.GoFiles) > 0 {
			p.Dir = filepath.Dir(pkg.GoFiles[0])
		}

		out = append(out, p)
	}

	return out, nil
}

// ParseSource parses a single in-memory source file into a Package.
// Used by tests and by callers that generate from snippets.
func ParseSource(filename string, src any) (*Package, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	return &Package{
		Name:  file.Name.Name,
		Dir:   filepath.Dir(filename),
		Files: []*ast.File{file},
	}, nil
}

// Subjects extracts every annotated type from the package, in source
// order. Configuration problems (missing parameters, unresolvable
// variants) are reported through diags; a subject with errors is
// skipped entirely so no partial output is ever emitted for it.
func Subjects(pkg *Package, diags *diagnostic.Diagnostics) []Subject {
	ordered, specs := typeSpecs(pkg)

	var subjects []Subject

	for _, ts := range ordered {
		doc := ts.doc

		derive, hasDerive, err := directive.ParseDerive(doc)
		if err != nil {
			diags.AddError(diagnostic.CodeMissingParam, err.Error(), ts.spec.Name.Name, "")
			continue
		}

		if !hasDerive {
			continue
		}

		subject, ok := buildSubject(ts, derive, specs, diags)
		if ok {
			subjects = append(subjects, subject)
		}
	}

	return subjects
}

// annotatedSpec pairs a type spec with its effective doc comment.
type annotatedSpec struct {
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
}

// typeSpecs collects all type declarations of the package with their
// doc comments (the spec's own doc wins over the group's). The slice
// preserves source order so generation output is deterministic.
func typeSpecs(pkg *Package) ([]annotatedSpec, map[string]annotatedSpec) {
	var ordered []annotatedSpec

	specs := make(map[string]annotatedSpec)

	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil {
					doc = gd.Doc
				}

				as := annotatedSpec{spec: ts, doc: doc}
				ordered = append(ordered, as)
				specs[ts.Name.Name] = as
			}
		}
	}

	return ordered, specs
}

// buildSubject turns an annotated type spec into a Subject, resolving
// the target parameters and, for unions, the variant structs.
func buildSubject(
	ts annotatedSpec,
	derive directive.Derive,
	specs map[string]annotatedSpec,
	diags *diagnostic.Diagnostics,
) (Subject, bool) {
	name := ts.spec.Name.Name

	def := DefinitionRecord{
		Name:   name,
		Params: typeParams(ts.spec.TypeParams),
	}

	if len(def.Params) == 0 {
		diags.AddError(diagnostic.CodeNoTypeParams,
			fmt.Sprintf("type %s declares no type parameters to map over", name), name, "")

		return Subject{}, false
	}

	switch t := ts.spec.Type.(type) {
	case *ast.StructType:
		def.Variants = []Variant{{Tag: name, Fields: fieldRecords(t)}}

	case *ast.InterfaceType:
		variants, ok, err := directive.ParseUnion(ts.doc)
		if err != nil {
			diags.AddError(diagnostic.CodeUnknownVariant, err.Error(), name, "")
			return Subject{}, false
		}

		if !ok {
			diags.AddError(diagnostic.CodeUnknownVariant,
				fmt.Sprintf("interface %s needs a union directive listing its variant structs", name), name, "")

			return Subject{}, false
		}

		def.Union = true

		if !resolveVariants(&def, variants, specs, diags) {
			return Subject{}, false
		}

	default:
		diags.AddError(diagnostic.CodeVariantMismatch,
			fmt.Sprintf("type %s is neither a struct nor a union interface", name), name, "")

		return Subject{}, false
	}

	targets, ok := resolveTargets(&def, derive, diags)
	if !ok {
		return Subject{}, false
	}

	return Subject{Def: def, Targets: targets}, true
}

// resolveVariants fills the union's variants from the directive list.
// Every variant must be a struct in the same package declaring the same
// type parameter names as the union.
func resolveVariants(
	def *DefinitionRecord,
	variants []string,
	specs map[string]annotatedSpec,
	diags *diagnostic.Diagnostics,
) bool {
	for _, vname := range variants {
		vs, ok := specs[vname]
		if !ok {
			diags.AddError(diagnostic.CodeUnknownVariant,
				fmt.Sprintf("variant %s is not declared in this package", vname), def.Name, "")

			return false
		}

		st, ok := vs.spec.Type.(*ast.StructType)
		if !ok {
			diags.AddError(diagnostic.CodeVariantMismatch,
				fmt.Sprintf("variant %s is not a struct", vname), def.Name, "")

			return false
		}

		vparams := typeParams(vs.spec.TypeParams)
		if !sameParamNames(def.Params, vparams) {
			diags.AddError(diagnostic.CodeVariantMismatch,
				fmt.Sprintf("variant %s must declare the same type parameters as %s", vname, def.Name),
				def.Name, "")

			return false
		}

		def.Variants = append(def.Variants, Variant{Tag: vname, Fields: fieldRecords(st)})
	}

	return true
}

// resolveTargets validates the requested parameters against the
// declaration. An unknown parameter is fatal for the whole subject.
func resolveTargets(
	def *DefinitionRecord,
	derive directive.Derive,
	diags *diagnostic.Diagnostics,
) ([]Target, bool) {
	if len(derive.Targets) == 0 {
		// Default: the first declared type parameter.
		return []Target{{Param: def.Params[0].Name, Index: 0}}, true
	}

	var targets []Target

	for _, t := range derive.Targets {
		idx := def.ParamIndex(t.Param)
		if idx < 0 {
			diags.AddError(diagnostic.CodeMissingParam,
				fmt.Sprintf("type parameter %s is not declared on %s", t.Param, def.Name),
				def.Name, "")

			return nil, false
		}

		targets = append(targets, Target{Param: t.Param, Index: idx, Suffix: t.Suffix})
	}

	return targets, true
}

// typeParams flattens a type parameter list, one entry per name.
func typeParams(fl *ast.FieldList) []TypeParam {
	if fl == nil {
		return nil
	}

	var params []TypeParam

	for _, f := range fl.List {
		for _, n := range f.Names {
			params = append(params, TypeParam{Name: n.Name, Constraint: f.Type})
		}
	}

	return params
}

// sameParamNames compares declared parameter names positionally.
func sameParamNames(a, b []TypeParam) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}

	return true
}

// fieldRecords flattens struct fields, one record per declared name.
func fieldRecords(st *ast.StructType) []FieldRecord {
	if st.Fields == nil {
		return nil
	}

	var fields []FieldRecord

	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			fields = append(fields, FieldRecord{
				Name:     embeddedFieldName(f.Type),
				Index:    len(fields),
				Type:     f.Type,
				Embedded: true,
			})

			continue
		}

		for _, n := range f.Names {
			fields = append(fields, FieldRecord{
				Name:  n.Name,
				Index: len(fields),
				Type:  f.Type,
			})
		}
	}

	return fields
}

// embeddedFieldName returns the implicit field name of an embedded type.
func embeddedFieldName(t ast.Expr) string {
	switch e := t.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return embeddedFieldName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedFieldName(e.X)
	case *ast.IndexListExpr:
		return embeddedFieldName(e.X)
	}

	return ""
}
