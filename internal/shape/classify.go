package shape

import (
	"go/ast"
)

// Classify produces exactly one Shape for a written type expression,
// recursing by structural case. It never fails; anything it cannot
// transform classifies as Opaque, with Degraded set when the parameter
// occurs regardless.
func Classify(expr ast.Expr, param string, reg *Registry) Shape {
	switch t := expr.(type) {
	case *ast.Ident:
		if t.Name == param {
			return Shape{Kind: KindDirect, Type: t}
		}

		return Shape{Kind: KindOpaque, Type: t}

	case *ast.ParenExpr:
		// Grouping is transparent: the inner shape is returned as-is.
		return Classify(t.X, param, reg)

	case *ast.StructType:
		return classifyTuple(t, param, reg)

	case *ast.ArrayType:
		if t.Len == nil {
			elem := Classify(t.Elt, param, reg)

			return Shape{Kind: KindContainer, Type: t, Entry: sliceEntry, Elems: []Shape{elem}}
		}

		elem := Classify(t.Elt, param, reg)

		return Shape{Kind: KindArray, Type: t, Len: t.Len, Elems: []Shape{elem}}

	case *ast.MapType:
		// Keys are never transformed. A key containing the parameter
		// degrades the whole map to pass-through.
		if containsParam(t.Key, param) {
			return Shape{Kind: KindOpaque, Type: t, Degraded: true}
		}

		elem := Classify(t.Value, param, reg)

		return Shape{Kind: KindContainer, Type: t, Entry: mapEntry, Elems: []Shape{elem}}

	case *ast.StarExpr:
		elem := Classify(t.X, param, reg)

		return Shape{Kind: KindContainer, Type: t, Entry: ptrEntry, Elems: []Shape{elem}}

	case *ast.IndexExpr:
		return classifyGeneric(t, t.X, []ast.Expr{t.Index}, param, reg)

	case *ast.IndexListExpr:
		return classifyGeneric(t, t.X, t.Indices, param, reg)

	default:
		// Channels, function types, interfaces, unknown generics:
		// untransformable. Flag the occurrence if the parameter is in
		// there somewhere.
		return Shape{Kind: KindOpaque, Type: expr, Degraded: containsParam(expr, param)}
	}
}

// classifyTuple classifies an anonymous struct as a fixed-arity tuple.
// A tuple with no occurrence anywhere stays a Tuple; the synthesizer
// short-circuits it to pass-through.
func classifyTuple(t *ast.StructType, param string, reg *Registry) Shape {
	sh := Shape{Kind: KindTuple, Type: t}

	if t.Fields == nil {
		return sh
	}

	for _, f := range t.Fields.List {
		comp := Classify(f.Type, param, reg)

		if len(f.Names) == 0 {
			// Embedded component: named after its type.
			sh.Elems = append(sh.Elems, comp)
			sh.Names = append(sh.Names, embeddedName(f.Type))

			continue
		}

		for _, n := range f.Names {
			sh.Elems = append(sh.Elems, comp)
			sh.Names = append(sh.Names, n.Name)
		}
	}

	return sh
}

// classifyGeneric handles instantiated generic types: the marker type,
// registry-matched containers, and everything else.
func classifyGeneric(whole ast.Expr, fun ast.Expr, args []ast.Expr, param string, reg *Registry) Shape {
	name := typeName(fun)
	if name == "" {
		return Shape{Kind: KindOpaque, Type: whole, Degraded: containsParam(whole, param)}
	}

	// The marker holds the parameter at the type level only.
	if isMarkerName(name) && len(args) == 1 {
		if id, ok := args[0].(*ast.Ident); ok && id.Name == param {
			return Shape{Kind: KindMarker, Type: whole}
		}
	}

	entry := reg.Lookup(name, len(args))
	if entry == nil {
		return Shape{Kind: KindOpaque, Type: whole, Degraded: containsParam(whole, param)}
	}

	// Pass-through argument positions must not carry the parameter.
	mapped := make(map[int]bool, len(entry.Mapped))
	for _, pos := range entry.Mapped {
		mapped[pos] = true
	}

	for i, arg := range args {
		if !mapped[i] && containsParam(arg, param) {
			return Shape{Kind: KindOpaque, Type: whole, Degraded: true}
		}
	}

	sh := Shape{Kind: KindContainer, Type: whole, Entry: entry}
	for _, pos := range entry.Mapped {
		sh.Elems = append(sh.Elems, Classify(args[pos], param, reg))
	}

	return sh
}

// isMarkerName matches the marker type by its qualified or bare name.
func isMarkerName(name string) bool {
	return name == markerName || name == "Phantom"
}

// typeName renders the head of a generic type as written: "Option" or
// "functor.Option". Anything more exotic yields "".
func typeName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		if x, ok := f.X.(*ast.Ident); ok {
			return x.Name + "." + f.Sel.Name
		}
	}

	return ""
}

// embeddedName returns the field name an embedded type declares.
func embeddedName(t ast.Expr) string {
	switch e := t.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	}

	return ""
}

// containsParam reports a literal occurrence of the parameter anywhere
// in the written type. Identifiers in non-type positions (selector
// tails, field names) do not count.
func containsParam(expr ast.Expr, param string) bool {
	switch t := expr.(type) {
	case nil:
		return false

	case *ast.Ident:
		return t.Name == param

	case *ast.ParenExpr:
		return containsParam(t.X, param)

	case *ast.StarExpr:
		return containsParam(t.X, param)

	case *ast.ArrayType:
		return containsParam(t.Elt, param)

	case *ast.Ellipsis:
		return containsParam(t.Elt, param)

	case *ast.MapType:
		return containsParam(t.Key, param) || containsParam(t.Value, param)

	case *ast.ChanType:
		return containsParam(t.Value, param)

	case *ast.SelectorExpr:
		// pkg.Name: neither side can be the bare parameter.
		return false

	case *ast.IndexExpr:
		return containsParam(t.X, param) || containsParam(t.Index, param)

	case *ast.IndexListExpr:
		if containsParam(t.X, param) {
			return true
		}

		for _, idx := range t.Indices {
			if containsParam(idx, param) {
				return true
			}
		}

		return false

	case *ast.StructType:
		if t.Fields == nil {
			return false
		}

		for _, f := range t.Fields.List {
			if containsParam(f.Type, param) {
				return true
			}
		}

		return false

	case *ast.FuncType:
		return fieldListContains(t.Params, param) || fieldListContains(t.Results, param)

	case *ast.InterfaceType:
		if t.Methods == nil {
			return false
		}

		for _, f := range t.Methods.List {
			if containsParam(f.Type, param) {
				return true
			}
		}

		return false

	case *ast.BinaryExpr:
		// Type set unions inside constraints.
		return containsParam(t.X, param) || containsParam(t.Y, param)

	case *ast.UnaryExpr:
		return containsParam(t.X, param)
	}

	return false
}

// fieldListContains reports a parameter occurrence in any field type.
func fieldListContains(fl *ast.FieldList, param string) bool {
	if fl == nil {
		return false
	}

	for _, f := range fl.List {
		if containsParam(f.Type, param) {
			return true
		}
	}

	return false
}
