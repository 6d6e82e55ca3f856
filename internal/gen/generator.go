package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"funcmap-generator/internal/analyze"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/shape"
)

// Config holds configuration for code generation.
type Config struct {
	// Registry is the container table used during classification.
	Registry *shape.Registry
	// OutputDir is where generated files are written; also the home of
	// debug sidecars when formatting fails.
	OutputDir string
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() Config {
	return Config{
		Registry:  shape.NewRegistry(),
		OutputDir: ".",
	}
}

// Generator emits map function pairs for annotated subjects.
type Generator struct {
	config Config

	// reg is the run registry: the configured table extended with one
	// entry per single-target subject of the current run.
	reg *shape.Registry

	// imports collects the import paths the current file needs.
	imports map[string]struct{}

	// pkgImports maps local package names of the subject's files to
	// import paths, so qualified pass-through types printed inside
	// closures resolve to the imports they came from.
	pkgImports map[string]string
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config Config) *Generator {
	if config.Registry == nil {
		config.Registry = shape.NewRegistry()
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "box_funcmap.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate emits one file per subject, each holding a total and a
// fallible function for every resolved target.
func (g *Generator) Generate(
	pkg *analyze.Package,
	subjects []analyze.Subject,
	diags *diagnostic.Diagnostics,
) ([]GeneratedFile, error) {
	g.reg = g.runRegistry(subjects)
	g.pkgImports = packageImports(pkg)

	var files []GeneratedFile

	for i := range subjects {
		file, err := g.generateSubject(pkg, &subjects[i], diags)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", subjects[i].Def.Name, err)
		}

		files = append(files, *file)
	}

	return files, nil
}

// runRegistry extends the configured registry with an entry per
// single-target subject, so recursive types and references between
// subjects of the same run transform through the generated functions.
// Multi-target subjects are ambiguous as containers and stay out.
func (g *Generator) runRegistry(subjects []analyze.Subject) *shape.Registry {
	reg := g.config.Registry.Clone()

	for _, s := range subjects {
		if len(s.Targets) != 1 {
			continue
		}

		t := s.Targets[0]

		// Entries built from resolved subjects always validate.
		_ = reg.Add(shape.Entry{
			Name:     s.Def.Name,
			Arity:    len(s.Def.Params),
			Mapped:   []int{t.Index},
			Total:    s.Def.Name + "Map" + t.Suffix,
			Fallible: s.Def.Name + "TryMap" + t.Suffix,
		})
	}

	return reg
}

// generateSubject renders and formats one subject's output file.
func (g *Generator) generateSubject(
	pkg *analyze.Package,
	s *analyze.Subject,
	diags *diagnostic.Diagnostics,
) (*GeneratedFile, error) {
	g.imports = make(map[string]struct{})

	var funcs []funcData

	for _, target := range s.Targets {
		total, fallible := g.generateTarget(s, target, diags)
		funcs = append(funcs, total, fallible)
	}

	data := &templateData{
		PackageName: pkg.Name,
		Filename:    strings.ToLower(s.Def.Name) + "_funcmap.go",
		Imports:     g.sortedImports(),
		Funcs:       funcs,
	}

	diags.AddInfo(diagnostic.CodeGenerated,
		fmt.Sprintf("generated %d function(s) into %s", len(funcs), data.Filename),
		s.Def.Name, "")

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Best-effort: write unformatted code to a sidecar file to aid debugging.
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, data.Filename, buf.Bytes())
		}
		// Return unformatted code for debugging
		return &GeneratedFile{
			Filename: data.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: data.Filename,
		Content:  formatted,
	}, nil
}

// generateTarget builds the total and fallible functions for one
// resolved target parameter.
func (g *Generator) generateTarget(
	s *analyze.Subject,
	target analyze.Target,
	diags *diagnostic.Diagnostics,
) (funcData, funcData) {
	def := &s.Def
	out := freshOutParam(def.Params)
	syn := &synthesizer{g: g, param: target.Param, out: out, fn: "fn"}

	shapes := g.classifyVariants(def, target, diags)

	totalName := def.Name + "Map" + target.Suffix
	tryName := def.Name + "TryMap" + target.Suffix

	params := typeParamList(def.Params, out, def.Params[target.Index].Constraint)
	srcType := instantiate(def.Name, def.Params, "", "")
	outType := instantiate(def.Name, def.Params, target.Param, out)

	var totalBody, tryBody string

	if def.Union {
		totalBody = g.totalUnionBody(syn, def, target, out, shapes, totalName)
		tryBody = g.tryUnionBody(syn, def, target, out, shapes, tryName)
	} else {
		totalBody = "return " + g.totalLiteral(syn, outType, def.Variants[0].Fields, shapes[0], "v")
		tryBody = g.tryStructBody(syn, outType, def.Variants[0].Fields, shapes[0])
	}

	total := funcData{
		Comment: fmt.Sprintf("%s returns a copy of v with fn applied to every %s.", totalName, target.Param),
		Body: fmt.Sprintf("func %s[%s](v %s, fn func(%s) %s) %s {\n%s\n}",
			totalName, params, srcType, target.Param, out, outType, totalBody),
	}

	fallible := funcData{
		Comment: fmt.Sprintf("%s applies fn to every %s in declaration order, stopping at the first error.",
			tryName, target.Param),
		Body: fmt.Sprintf("func %s[%s](v %s, fn func(%s) (%s, error)) (%s, error) {\n%s\n}",
			tryName, params, srcType, target.Param, out, outType, tryBody),
	}

	return total, fallible
}

// classifyVariants classifies every field of every variant against the
// target parameter, reporting a warning for each field the parameter
// occupies in a position the classifier cannot transform.
func (g *Generator) classifyVariants(
	def *analyze.DefinitionRecord,
	target analyze.Target,
	diags *diagnostic.Diagnostics,
) [][]shape.Shape {
	shapes := make([][]shape.Shape, len(def.Variants))

	for vi, variant := range def.Variants {
		shapes[vi] = make([]shape.Shape, len(variant.Fields))

		for fi, f := range variant.Fields {
			sh := shape.Classify(f.Type, target.Param, g.reg)
			shapes[vi][fi] = sh

			if sh.HasDegraded() {
				field := f.Name
				if def.Union {
					field = variant.Tag + "." + f.Name
				}

				diags.AddWarning(diagnostic.CodeOpaqueParam,
					fmt.Sprintf("parameter %s occurs in a position that cannot be transformed; field passed through unchanged",
						target.Param),
					def.Name, field)
			}
		}
	}

	return shapes
}

// totalLiteral builds a composite literal reconstructing one variant.
func (g *Generator) totalLiteral(
	syn *synthesizer,
	typ string,
	fields []analyze.FieldRecord,
	shapes []shape.Shape,
	src string,
) string {
	if len(fields) == 0 {
		return typ + "{}"
	}

	var lines []string
	for i, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s,", f.Name, syn.totalExpr(shapes[i], src+"."+f.Name)))
	}

	return typ + "{\n" + strings.Join(lines, "\n") + "\n}"
}

// tryStructBody builds the fallible body for a struct subject.
func (g *Generator) tryStructBody(
	syn *synthesizer,
	outType string,
	fields []analyze.FieldRecord,
	shapes []shape.Shape,
) string {
	stmts, lit := syn.tryComponents(shapes, fieldNames(fields), "v", outType+"{}")
	stmts = append(stmts, fmt.Sprintf("return %s{%s}, nil", outType, strings.Join(lit, ", ")))

	return strings.Join(stmts, "\n")
}

// totalUnionBody builds a variant type switch for the total function.
// The switch binding is omitted when no variant reads its value.
func (g *Generator) totalUnionBody(
	syn *synthesizer,
	def *analyze.DefinitionRecord,
	target analyze.Target,
	out string,
	shapes [][]shape.Shape,
	name string,
) string {
	var cases []string

	for vi, variant := range def.Variants {
		srcT := instantiate(variant.Tag, def.Params, "", "")
		outT := instantiate(variant.Tag, def.Params, target.Param, out)

		ret := "return " + outT + "{}"
		if !variant.Unit() {
			ret = "return " + g.totalLiteral(syn, outT, variant.Fields, shapes[vi], "x")
		}

		cases = append(cases, fmt.Sprintf("case %s:\n%s", srcT, ret))
	}

	return fmt.Sprintf("%s\n%s\n}\npanic(%q)",
		switchHead(def), strings.Join(cases, "\n"), name+": unexpected variant")
}

// tryUnionBody builds the variant type switch for the fallible
// function. The zero result of a union is nil.
func (g *Generator) tryUnionBody(
	syn *synthesizer,
	def *analyze.DefinitionRecord,
	target analyze.Target,
	out string,
	shapes [][]shape.Shape,
	name string,
) string {
	var cases []string

	for vi, variant := range def.Variants {
		srcT := instantiate(variant.Tag, def.Params, "", "")
		outT := instantiate(variant.Tag, def.Params, target.Param, out)

		var body string

		if variant.Unit() {
			body = fmt.Sprintf("return %s{}, nil", outT)
		} else {
			stmts, lit := syn.tryComponents(shapes[vi], fieldNames(variant.Fields), "x", "nil")
			stmts = append(stmts, fmt.Sprintf("return %s{%s}, nil", outT, strings.Join(lit, ", ")))
			body = strings.Join(stmts, "\n")
		}

		cases = append(cases, fmt.Sprintf("case %s:\n%s", srcT, body))
	}

	return fmt.Sprintf("%s\n%s\n}\npanic(%q)",
		switchHead(def), strings.Join(cases, "\n"), name+": unexpected variant")
}

// switchHead binds the switched value only when some variant has fields
// to read; an unused binding would not compile.
func switchHead(def *analyze.DefinitionRecord) string {
	for _, v := range def.Variants {
		if !v.Unit() {
			return "switch x := v.(type) {"
		}
	}

	return "switch v.(type) {"
}

// addImport records an import path needed by a synthesized expression.
func (g *Generator) addImport(path string) {
	if path != "" {
		g.imports[path] = struct{}{}
	}
}

// noteQualifiers records the imports behind every package qualifier in
// a type expression about to be printed into the generated file.
func (g *Generator) noteQualifiers(e ast.Expr) {
	ast.Inspect(e, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		if id, ok := sel.X.(*ast.Ident); ok {
			if path, ok := g.pkgImports[id.Name]; ok {
				g.addImport(path)
			}
		}

		return true
	})
}

// packageImports maps the local package names used across the subject
// package's files to their import paths.
func packageImports(pkg *analyze.Package) map[string]string {
	out := make(map[string]string)

	for _, f := range pkg.Files {
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}

			name := path[strings.LastIndex(path, "/")+1:]
			if imp.Name != nil {
				name = imp.Name.Name
			}

			if name == "_" || name == "." {
				continue
			}

			out[name] = path
		}
	}

	return out
}

// sortedImports returns the collected import paths in sorted order.
func (g *Generator) sortedImports() []string {
	var paths []string
	for p := range g.imports {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}

// fieldNames returns the field names in declaration order.
func fieldNames(fields []analyze.FieldRecord) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	return names
}

// freshOutParam picks the output parameter name, avoiding the subject's
// declared parameters.
func freshOutParam(params []analyze.TypeParam) string {
	used := make(map[string]bool, len(params))
	for _, p := range params {
		used[p.Name] = true
	}

	if !used["B"] {
		return "B"
	}

	for i := 1; ; i++ {
		name := fmt.Sprintf("B%d", i)
		if !used[name] {
			return name
		}
	}
}

// typeParamList renders the generated function's type parameter list:
// the subject's parameters with their constraints verbatim, plus the
// fresh output parameter. The output parameter carries the target
// parameter's constraint, otherwise the output instantiation would not
// satisfy the subject's declaration.
func typeParamList(params []analyze.TypeParam, out string, constraint ast.Expr) string {
	var parts []string

	for _, p := range params {
		c := exprString(p.Constraint)
		if c == "" {
			c = "any"
		}

		parts = append(parts, p.Name+" "+c)
	}

	oc := exprString(constraint)
	if oc == "" {
		oc = "any"
	}

	parts = append(parts, out+" "+oc)

	return strings.Join(parts, ", ")
}

// instantiate renders a generic type instantiated with the subject's
// own parameters, substituting out for the target parameter. An empty
// target renders the source-side instantiation.
func instantiate(name string, params []analyze.TypeParam, target, out string) string {
	args := make([]string, len(params))

	for i, p := range params {
		if p.Name == target {
			args[i] = out
		} else {
			args[i] = p.Name
		}
	}

	return name + "[" + strings.Join(args, ", ") + "]"
}

// funcData is one rendered function with its doc comment.
type funcData struct {
	Comment string
	Body    string
}

// templateData holds all data needed for the output file template.
type templateData struct {
	PackageName string
	Filename    string
	Imports     []string
	Funcs       []funcData
}

var fileTemplate = template.Must(template.New("funcmap").Parse(`// Code generated by funcmap-generator. DO NOT EDIT.

package {{.PackageName}}

{{if .Imports}}
import (
{{range .Imports}}	"{{.}}"
{{end}})
{{end}}
{{range .Funcs}}
// {{.Comment}}
{{.Body}}
{{end}}
`))
