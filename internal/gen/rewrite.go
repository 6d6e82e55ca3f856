package gen

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
)

// exprString prints a type expression as written in source.
func exprString(e ast.Expr) string {
	if e == nil {
		return ""
	}

	var buf bytes.Buffer

	_ = printer.Fprint(&buf, token.NewFileSet(), e)

	return buf.String()
}

// substParam returns a copy of the type expression with every
// occurrence of the target parameter renamed to the output parameter.
// Redundant grouping is stripped on the way. Subtrees without an
// occurrence are shared, never mutated.
func substParam(e ast.Expr, from, to string) ast.Expr {
	switch t := e.(type) {
	case nil:
		return nil

	case *ast.Ident:
		if t.Name == from {
			return ast.NewIdent(to)
		}

		return t

	case *ast.ParenExpr:
		return substParam(t.X, from, to)

	case *ast.StarExpr:
		return &ast.StarExpr{X: substParam(t.X, from, to)}

	case *ast.ArrayType:
		return &ast.ArrayType{
			Len: t.Len,
			Elt: substParam(t.Elt, from, to),
		}

	case *ast.Ellipsis:
		return &ast.Ellipsis{Elt: substParam(t.Elt, from, to)}

	case *ast.MapType:
		return &ast.MapType{
			Key:   substParam(t.Key, from, to),
			Value: substParam(t.Value, from, to),
		}

	case *ast.ChanType:
		return &ast.ChanType{
			Dir:   t.Dir,
			Value: substParam(t.Value, from, to),
		}

	case *ast.StructType:
		return &ast.StructType{Fields: substFieldList(t.Fields, from, to)}

	case *ast.FuncType:
		return &ast.FuncType{
			TypeParams: substFieldList(t.TypeParams, from, to),
			Params:     substFieldList(t.Params, from, to),
			Results:    substFieldList(t.Results, from, to),
		}

	case *ast.IndexExpr:
		return &ast.IndexExpr{
			X:     substParam(t.X, from, to),
			Index: substParam(t.Index, from, to),
		}

	case *ast.IndexListExpr:
		indices := make([]ast.Expr, len(t.Indices))
		for i, idx := range t.Indices {
			indices[i] = substParam(idx, from, to)
		}

		return &ast.IndexListExpr{
			X:       substParam(t.X, from, to),
			Indices: indices,
		}

	case *ast.SelectorExpr:
		// pkg.Name never embeds the bare parameter.
		return t

	default:
		// Interfaces, literals, and anything exotic pass through
		// unrewritten, mirroring the pass-through value semantics.
		return e
	}
}

// substFieldList rewrites every field type in a field list.
func substFieldList(fl *ast.FieldList, from, to string) *ast.FieldList {
	if fl == nil {
		return nil
	}

	out := &ast.FieldList{}

	for _, f := range fl.List {
		out.List = append(out.List, &ast.Field{
			Names: f.Names,
			Type:  substParam(f.Type, from, to),
			Tag:   f.Tag,
		})
	}

	return out
}
