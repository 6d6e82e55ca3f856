package gen

import (
	"go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subst(t *testing.T, src, from, to string) string {
	t.Helper()

	expr, err := parser.ParseExpr(src)
	require.NoError(t, err)

	return exprString(substParam(expr, from, to))
}

func TestSubstParam(t *testing.T) {
	assert.Equal(t, "B", subst(t, "A", "A", "B"))
	assert.Equal(t, "[]B", subst(t, "[]A", "A", "B"))
	assert.Equal(t, "[4]B", subst(t, "[4]A", "A", "B"))
	assert.Equal(t, "map[string]*B", subst(t, "map[string]*A", "A", "B"))
	assert.Equal(t, "Tree[B]", subst(t, "Tree[A]", "A", "B"))
	assert.Equal(t, "Pair[K, B]", subst(t, "Pair[K, A]", "A", "B"))
}

func TestSubstParam_StripsGrouping(t *testing.T) {
	assert.Equal(t, "B", subst(t, "(A)", "A", "B"))
	assert.Equal(t, "[]B", subst(t, "([](A))", "A", "B"))
}

func TestSubstParam_LeavesQualifiedNames(t *testing.T) {
	// pkg.A is a selector, not the bare parameter.
	assert.Equal(t, "pkg.A", subst(t, "pkg.A", "A", "B"))
	assert.Equal(t, "map[pkg.A]B", subst(t, "map[pkg.A]A", "A", "B"))
}

func TestSubstParam_UntouchedSubtreesShared(t *testing.T) {
	expr, err := parser.ParseExpr("map[string]int")
	require.NoError(t, err)

	// No occurrence anywhere: key and value nodes come back as-is.
	out := substParam(expr, "A", "B")
	assert.Equal(t, "map[string]int", exprString(out))
}
