package gen

import (
	"fmt"
	"strings"

	"funcmap-generator/internal/shape"
)

// synthesizer builds reconstruction expressions for one generated
// function. It mirrors the classifier case for case: every shape the
// classifier can produce has exactly one expression policy per mode.
type synthesizer struct {
	g *Generator

	// param is the target parameter, out the fresh output parameter.
	param string
	out   string

	// fn is the name of the transformation function operand.
	fn string

	// seq feeds unique local names (e0, i0, t0, ...) so nested closures
	// and hoisted temporaries never collide.
	seq int
}

// fresh returns the next unique name counter.
func (s *synthesizer) fresh() int {
	n := s.seq
	s.seq++

	return n
}

// srcType prints a shape's written type.
func (s *synthesizer) srcType(sh shape.Shape) string {
	s.g.noteQualifiers(sh.Type)

	return exprString(sh.Type)
}

// outType prints a shape's type with the target parameter substituted.
func (s *synthesizer) outType(sh shape.Shape) string {
	s.g.noteQualifiers(sh.Type)

	return exprString(substParam(sh.Type, s.param, s.out))
}

// totalExpr synthesizes the total-mode reconstruction of src.
func (s *synthesizer) totalExpr(sh shape.Shape, src string) string {
	if !sh.ContainsTarget() {
		return src
	}

	switch sh.Kind {
	case shape.KindDirect:
		return fmt.Sprintf("%s(%s)", s.fn, src)

	case shape.KindMarker:
		// Re-parameterized at zero runtime cost; the value is never read.
		s.g.addImport(shape.RuntimeImport)

		return s.outType(sh) + "{}"

	case shape.KindTuple:
		return s.totalTuple(sh, src)

	case shape.KindArray:
		return s.totalArray(sh, src)

	case shape.KindContainer:
		return s.containerCall(sh, src, false)
	}

	return src
}

// totalTuple rebuilds an anonymous struct component by component, in
// the original order.
func (s *synthesizer) totalTuple(sh shape.Shape, src string) string {
	var b strings.Builder

	b.WriteString(s.outType(sh))
	b.WriteString("{")

	for i, comp := range sh.Elems {
		if i > 0 {
			b.WriteString(", ")
		}

		name := sh.Names[i]
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(s.totalExpr(comp, src+"."+name))
	}

	b.WriteString("}")

	return b.String()
}

// totalArray rebuilds a fixed-length array inside an immediately
// invoked closure, preserving index order and length.
func (s *synthesizer) totalArray(sh shape.Shape, src string) string {
	outT := s.outType(sh)
	idx := fmt.Sprintf("i%d", s.fresh())
	acc := fmt.Sprintf("out%d", s.fresh())
	elem := s.totalExpr(sh.Elems[0], fmt.Sprintf("%s[%s]", src, idx))

	return fmt.Sprintf(
		"func() %s {\nvar %s %s\nfor %s := range %s {\n%s[%s] = %s\n}\nreturn %s\n}()",
		outT, acc, outT, idx, src, acc, idx, elem, acc)
}

// containerCall applies the container's own transform operation,
// supplying one element function per mapped type argument.
func (s *synthesizer) containerCall(sh shape.Shape, src string, try bool) string {
	entry := sh.Entry
	if entry.Import != "" {
		s.g.addImport(entry.Import)
	}

	helper := entry.Total
	if try {
		helper = entry.Fallible
	}

	args := []string{src}
	for _, elem := range sh.Elems {
		args = append(args, s.elemFunc(elem, try))
	}

	return fmt.Sprintf("%s(%s)", helper, strings.Join(args, ", "))
}

// elemFunc builds the element function operand for a container call:
// the transformation function itself for direct occurrences, otherwise
// a closure recursing into the element's shape.
func (s *synthesizer) elemFunc(sh shape.Shape, try bool) string {
	if sh.Kind == shape.KindDirect {
		return s.fn
	}

	v := fmt.Sprintf("e%d", s.fresh())
	srcT := s.srcType(sh)
	outT := s.outType(sh)

	if !try {
		return fmt.Sprintf("func(%s %s) %s {\nreturn %s\n}", v, srcT, outT, s.totalExpr(sh, v))
	}

	return fmt.Sprintf("func(%s %s) (%s, error) {\n%s\n}", v, srcT, outT, s.tryBody(sh, v, outT))
}

// tryExpr synthesizes a fallible-mode expression evaluating to
// (value, error). Callers must not pass shapes without a target
// occurrence, nor markers; both reconstruct without an error channel.
func (s *synthesizer) tryExpr(sh shape.Shape, src string) string {
	switch sh.Kind {
	case shape.KindDirect:
		return fmt.Sprintf("%s(%s)", s.fn, src)

	case shape.KindContainer:
		return s.containerCall(sh, src, true)

	default:
		outT := s.outType(sh)

		return fmt.Sprintf("func() (%s, error) {\n%s\n}()", outT, s.tryBody(sh, src, outT))
	}
}

// tryBody synthesizes fallible-mode statements ending in a return of
// (value, error), short-circuiting on the first failure in
// left-to-right component order.
func (s *synthesizer) tryBody(sh shape.Shape, src, outT string) string {
	switch sh.Kind {
	case shape.KindDirect:
		return fmt.Sprintf("return %s(%s)", s.fn, src)

	case shape.KindContainer:
		return "return " + s.containerCall(sh, src, true)

	case shape.KindTuple:
		stmts, lit := s.tryComponents(sh.Elems, sh.Names, src, outT+"{}")
		stmts = append(stmts, fmt.Sprintf("return %s{%s}, nil", outT, strings.Join(lit, ", ")))

		return strings.Join(stmts, "\n")

	case shape.KindArray:
		return s.tryArrayBody(sh, src, outT)

	case shape.KindMarker:
		return fmt.Sprintf("return %s{}, nil", outT)
	}

	// Opaque: wrapped as already-successful.
	return fmt.Sprintf("return %s, nil", src)
}

// tryComponents hoists fallible components into checked temporaries and
// returns the statements plus the composite-literal entries. Components
// without an occurrence pass through; markers rebuild without an error
// check.
func (s *synthesizer) tryComponents(elems []shape.Shape, names []string, src, zero string) (stmts, lit []string) {
	for i, comp := range elems {
		name := names[i]
		csrc := src + "." + name

		switch {
		case !comp.ContainsTarget():
			lit = append(lit, name+": "+csrc)

		case comp.Kind == shape.KindMarker:
			lit = append(lit, name+": "+s.totalExpr(comp, csrc))

		default:
			tmp := fmt.Sprintf("t%d", s.fresh())
			stmts = append(stmts,
				fmt.Sprintf("%s, err := %s", tmp, s.tryExpr(comp, csrc)),
				fmt.Sprintf("if err != nil {\nreturn %s, err\n}", zero))
			lit = append(lit, name+": "+tmp)
		}
	}

	return stmts, lit
}

// tryArrayBody loops over a fixed-length array with per-element
// short-circuit. Only the zero value escapes on failure.
func (s *synthesizer) tryArrayBody(sh shape.Shape, src, outT string) string {
	idx := fmt.Sprintf("i%d", s.fresh())
	acc := fmt.Sprintf("out%d", s.fresh())
	elem := sh.Elems[0]
	item := fmt.Sprintf("%s[%s]", src, idx)

	var body string

	if elem.Kind == shape.KindMarker {
		body = fmt.Sprintf("%s[%s] = %s", acc, idx, s.totalExpr(elem, item))
	} else {
		tmp := fmt.Sprintf("t%d", s.fresh())
		body = fmt.Sprintf(
			"%s, err := %s\nif err != nil {\nreturn %s{}, err\n}\n%s[%s] = %s",
			tmp, s.tryExpr(elem, item), outT, acc, idx, tmp)
	}

	return fmt.Sprintf(
		"var %s %s\nfor %s := range %s {\n%s\n}\nreturn %s, nil",
		acc, outT, idx, src, body, acc)
}
