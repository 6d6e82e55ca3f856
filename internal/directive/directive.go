// Package directive parses the //funcmap:... source annotations that
// select types for generation and name the target type parameters.
package directive

import (
	"fmt"
	"go/ast"
	"strings"
)

// Directive comment prefixes, written without a space after // so they
// read as machine directives (the go:generate convention).
const (
	derivePrefix = "//funcmap:derive"
	unionPrefix  = "//funcmap:union"
)

// Target names one type parameter to transform, plus the suffix
// appended to generated function names when several parameters are
// requested in one directive.
type Target struct {
	Param  string
	Suffix string
}

// Derive is a parsed //funcmap:derive directive.
//
// Forms:
//
//	//funcmap:derive            target the first declared type parameter
//	//funcmap:derive P          target parameter P
//	//funcmap:derive K=Key V=Value
//	                            one pass per parameter, suffixed names
type Derive struct {
	// Targets is empty for the bare form (first parameter wins).
	Targets []Target
}

// ParseDerive extracts a derive directive from a comment group.
// The second return value is false when no directive is present.
func ParseDerive(doc *ast.CommentGroup) (Derive, bool, error) {
	rest, ok := match(doc, derivePrefix)
	if !ok {
		return Derive{}, false, nil
	}

	var d Derive

	for _, tok := range strings.Fields(rest) {
		name, suffix, hasSuffix := strings.Cut(tok, "=")
		if name == "" || (hasSuffix && suffix == "") {
			return Derive{}, true, fmt.Errorf("malformed derive target %q", tok)
		}

		d.Targets = append(d.Targets, Target{Param: name, Suffix: suffix})
	}

	if len(d.Targets) > 1 {
		for _, t := range d.Targets {
			if t.Suffix == "" {
				return Derive{}, true, fmt.Errorf(
					"derive target %q needs a name suffix when several parameters are requested", t.Param)
			}
		}
	}

	return d, true, nil
}

// ParseUnion extracts a union directive from a comment group. The
// directive lists the variant struct names of a sealed interface:
//
//	//funcmap:union Circle,Square,Dot
func ParseUnion(doc *ast.CommentGroup) ([]string, bool, error) {
	rest, ok := match(doc, unionPrefix)
	if !ok {
		return nil, false, nil
	}

	var variants []string

	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		variants = append(variants, part)
	}

	if len(variants) == 0 {
		return nil, true, fmt.Errorf("union directive lists no variants")
	}

	return variants, true, nil
}

// match scans a comment group for a line starting with prefix and
// returns the remainder of that line.
func match(doc *ast.CommentGroup, prefix string) (string, bool) {
	if doc == nil {
		return "", false
	}

	for _, c := range doc.List {
		text := c.Text
		if !strings.HasPrefix(text, prefix) {
			continue
		}

		rest := text[len(prefix):]
		// Reject things like //funcmap:derived.
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}

		return strings.TrimSpace(rest), true
	}

	return "", false
}
