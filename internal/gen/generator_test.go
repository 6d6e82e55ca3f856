package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmap-generator/internal/analyze"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/shape"
)

// generate runs the full pipeline over an in-memory fixture and returns
// the generated files keyed by filename.
func generate(t *testing.T, src string) (map[string]string, *diagnostic.Diagnostics) {
	t.Helper()

	return generateWith(t, src, shape.NewRegistry())
}

func generateWith(t *testing.T, src string, reg *shape.Registry) (map[string]string, *diagnostic.Diagnostics) {
	t.Helper()

	pkg, err := analyze.ParseSource("fixtures.go", src)
	require.NoError(t, err)

	diags := &diagnostic.Diagnostics{}
	subjects := analyze.Subjects(pkg, diags)
	require.False(t, diags.HasErrors(), diags.Render())

	g := NewGenerator(Config{Registry: reg})

	files, err := g.Generate(pkg, subjects, diags)
	require.NoError(t, err)

	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Filename] = string(f.Content)
	}

	return out, diags
}

func TestGenerate_StructBasics(t *testing.T) {
	files, diags := generate(t, `package fixtures

//funcmap:derive
type Box[A any] struct {
	Value A
	Note  string
}
`)

	require.Contains(t, files, "box_funcmap.go")
	content := files["box_funcmap.go"]

	assert.Empty(t, diags.Warnings)
	assert.Contains(t, content, "// Code generated by funcmap-generator. DO NOT EDIT.")
	assert.Contains(t, content, "package fixtures")

	assert.Contains(t, content, "func BoxMap[A any, B any](v Box[A], fn func(A) B) Box[B] {")
	assert.Contains(t, content, "fn(v.Value)")
	assert.Contains(t, content, "v.Note")

	assert.Contains(t, content, "func BoxTryMap[A any, B any](v Box[A], fn func(A) (B, error)) (Box[B], error) {")
	assert.Contains(t, content, "t0, err := fn(v.Value)")
	assert.Contains(t, content, "return Box[B]{}, err")
}

func TestGenerate_BuiltinContainers(t *testing.T) {
	files, _ := generate(t, `package fixtures

import "funcmap-generator/functor"

//funcmap:derive
type Bag[A any] struct {
	Items []A
	Index map[string]A
	Link  *A
	Maybe functor.Option[A]
}
`)

	content := files["bag_funcmap.go"]

	assert.Contains(t, content, `"funcmap-generator/functor"`)
	assert.Contains(t, content, "functor.MapSlice(v.Items, fn)")
	assert.Contains(t, content, "functor.MapValues(v.Index, fn)")
	assert.Contains(t, content, "functor.MapPtr(v.Link, fn)")
	assert.Contains(t, content, "functor.MapOption(v.Maybe, fn)")

	assert.Contains(t, content, "functor.TryMapSlice(v.Items, fn)")
	assert.Contains(t, content, "functor.TryMapValues(v.Index, fn)")
	assert.Contains(t, content, "functor.TryMapPtr(v.Link, fn)")
	assert.Contains(t, content, "functor.TryMapOption(v.Maybe, fn)")
}

func TestGenerate_NestedContainers(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Grid[A any] struct {
	Rows [][]A
}
`)

	content := files["grid_funcmap.go"]

	assert.Contains(t, content, "functor.MapSlice(v.Rows, func(e0 []A) []B {")
	assert.Contains(t, content, "return functor.MapSlice(e0, fn)")

	assert.Contains(t, content, "func(e2 []A) ([]B, error) {")
	assert.Contains(t, content, "return functor.TryMapSlice(e2, fn)")
}

func TestGenerate_FixedArray(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Quad[A any] struct {
	Corners [4]A
}
`)

	content := files["quad_funcmap.go"]

	assert.Contains(t, content, "func() [4]B {")
	assert.Contains(t, content, "for i0 := range v.Corners {")
	assert.Contains(t, content, "out1[i0] = fn(v.Corners[i0])")

	// Fallible loop short-circuits per element.
	assert.Contains(t, content, "return [4]B{}, err")
}

func TestGenerate_TupleField(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Labeled[A any] struct {
	Pair struct {
		Tag   string
		Value A
	}
}
`)

	content := files["labeled_funcmap.go"]

	assert.Contains(t, content, "fn(v.Pair.Value)")
	assert.Contains(t, content, "v.Pair.Tag")
}

func TestGenerate_Marker(t *testing.T) {
	files, diags := generate(t, `package fixtures

import "funcmap-generator/functor"

//funcmap:derive
type Token[A any] struct {
	ID  string
	Tag functor.Phantom[A]
}
`)

	content := files["token_funcmap.go"]

	assert.Empty(t, diags.Warnings)
	assert.Contains(t, content, "functor.Phantom[B]{}")
	// No error channel for a marker-only rebuild.
	assert.NotContains(t, content, "t0, err :=")
}

func TestGenerate_Union(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
//funcmap:union Circle, Square, Dot
type Shape[A any] interface {
	sealedShape()
}

type Circle[A any] struct {
	Radius A
}

type Square[A any] struct {
	Side float64
}

type Dot[A any] struct{}
`)

	content := files["shape_funcmap.go"]

	assert.Contains(t, content, "func ShapeMap[A any, B any](v Shape[A], fn func(A) B) Shape[B] {")
	assert.Contains(t, content, "switch x := v.(type) {")
	assert.Contains(t, content, "case Circle[A]:")
	assert.Contains(t, content, "fn(x.Radius)")
	assert.Contains(t, content, "x.Side")
	assert.Contains(t, content, "return Dot[B]{}")
	assert.Contains(t, content, `panic("ShapeMap: unexpected variant")`)

	assert.Contains(t, content, "return nil, err")
	assert.Contains(t, content, `panic("ShapeTryMap: unexpected variant")`)
}

func TestGenerate_UnionAllUnitOmitsBinding(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
//funcmap:union On, Off
type Toggle[A any] interface {
	sealedToggle()
}

type On[A any] struct{}

type Off[A any] struct{}
`)

	content := files["toggle_funcmap.go"]

	assert.Contains(t, content, "switch v.(type) {")
	assert.NotContains(t, content, "switch x := v.(type)")
}

func TestGenerate_MultiTargetSuffixes(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive K=Key V=Value
type Pair[K any, V any] struct {
	First  K
	Second V
}
`)

	content := files["pair_funcmap.go"]

	assert.Contains(t, content, "func PairMapKey[K any, V any, B any](v Pair[K, V], fn func(K) B) Pair[B, V] {")
	assert.Contains(t, content, "func PairMapValue[K any, V any, B any](v Pair[K, V], fn func(V) B) Pair[K, B] {")
	assert.Contains(t, content, "func PairTryMapKey[K any, V any, B any](v Pair[K, V], fn func(K) (B, error)) (Pair[B, V], error) {")
	assert.Contains(t, content, "func PairTryMapValue[K any, V any, B any](v Pair[K, V], fn func(V) (B, error)) (Pair[K, B], error) {")
}

func TestGenerate_OutParamAvoidsCollision(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Holder[B any] struct {
	Value B
}
`)

	content := files["holder_funcmap.go"]

	assert.Contains(t, content, "func HolderMap[B any, B1 any](v Holder[B], fn func(B) B1) Holder[B1] {")
}

func TestGenerate_ConstraintPreserved(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive V
type Index[K comparable, V any] struct {
	Value V
}
`)

	content := files["index_funcmap.go"]

	assert.Contains(t, content, "func IndexMap[K comparable, V any, B any](v Index[K, V], fn func(V) B) Index[K, B] {")
}

func TestGenerate_OutParamCarriesTargetConstraint(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Keyed[A comparable] struct {
	Value A
}
`)

	content := files["keyed_funcmap.go"]

	// Keyed[B] only instantiates when B satisfies the declaration.
	assert.Contains(t, content, "func KeyedMap[A comparable, B comparable](v Keyed[A], fn func(A) B) Keyed[B] {")
	assert.Contains(t, content, "func KeyedTryMap[A comparable, B comparable](v Keyed[A], fn func(A) (B, error)) (Keyed[B], error) {")
}

func TestGenerate_OutParamConstraintPerTarget(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive K=Key V=Value
type Pair[K comparable, V any] struct {
	First  K
	Second V
}
`)

	content := files["pair_funcmap.go"]

	assert.Contains(t, content, "func PairMapKey[K comparable, V any, B comparable](v Pair[K, V], fn func(K) B) Pair[B, V] {")
	assert.Contains(t, content, "func PairMapValue[K comparable, V any, B any](v Pair[K, V], fn func(V) B) Pair[K, B] {")
}

func TestGenerate_EmitsInfoPerSubject(t *testing.T) {
	_, diags := generate(t, `package fixtures

//funcmap:derive
type Box[A any] struct {
	Value A
}
`)

	require.Len(t, diags.Infos, 1)
	assert.Equal(t, diagnostic.CodeGenerated, diags.Infos[0].Code)
	assert.Equal(t, "Box", diags.Infos[0].Subject)
	assert.Contains(t, diags.Infos[0].Message, "box_funcmap.go")
	assert.Contains(t, diags.Infos[0].Message, "2 function(s)")
}

func TestGenerate_DegradedMapKeyWarnsAndPassesThrough(t *testing.T) {
	files, diags := generate(t, `package fixtures

//funcmap:derive
type Keyed[A comparable] struct {
	Seen map[A]bool
}
`)

	content := files["keyed_funcmap.go"]

	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodeOpaqueParam, diags.Warnings[0].Code)
	assert.Equal(t, "Keyed", diags.Warnings[0].Subject)
	assert.Equal(t, "Seen", diags.Warnings[0].Field)

	assert.Contains(t, content, "v.Seen")
	assert.NotContains(t, content, "functor.MapValues")
}

func TestGenerate_RecursiveType(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Tree[A any] struct {
	Value A
	Next  *Tree[A]
}
`)

	content := files["tree_funcmap.go"]

	assert.Contains(t, content, "return TreeMap(e0, fn)")
	assert.Contains(t, content, "return TreeTryMap(e3, fn)")
}

func TestGenerate_SiblingSubjectsTransformEachOther(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Box[A any] struct {
	Value A
}

//funcmap:derive
type Crate[A any] struct {
	Inner Box[A]
}
`)

	content := files["crate_funcmap.go"]

	assert.Contains(t, content, "BoxMap(v.Inner, fn)")
	assert.Contains(t, content, "BoxTryMap(v.Inner, fn)")
}

func TestGenerate_RegistryEntry(t *testing.T) {
	reg := shape.NewRegistry()
	require.NoError(t, reg.Parse([]byte(`version: "1"
containers:
  - name: List
    arity: 1
    mapped: [0]
    map: MapList
    tryMap: TryMapList
`)))

	files, _ := generateWith(t, `package fixtures

//funcmap:derive
type Chain[A any] struct {
	Items List[A]
}
`, reg)

	content := files["chain_funcmap.go"]

	assert.Contains(t, content, "MapList(v.Items, fn)")
	assert.Contains(t, content, "TryMapList(v.Items, fn)")
}

func TestGenerate_QualifiedPassThroughImport(t *testing.T) {
	files, _ := generate(t, `package fixtures

import "time"

//funcmap:derive
type Event[A any] struct {
	Stamps []struct {
		At      time.Time
		Payload A
	}
}
`)

	content := files["event_funcmap.go"]

	assert.Contains(t, content, `"time"`)
	assert.Contains(t, content, "fn(e0.Payload)")
	assert.Contains(t, content, "e0.At")
}

func TestGenerate_ParenthesizedTypesAreTransparent(t *testing.T) {
	files, _ := generate(t, `package fixtures

//funcmap:derive
type Wrapped[A any] struct {
	Value (A)
	Items ([](A))
}
`)

	content := files["wrapped_funcmap.go"]

	assert.Contains(t, content, "fn(v.Value)")
	assert.Contains(t, content, "functor.MapSlice(v.Items, fn)")
}

func TestFreshOutParam(t *testing.T) {
	assert.Equal(t, "B", freshOutParam([]analyze.TypeParam{{Name: "A"}}))
	assert.Equal(t, "B1", freshOutParam([]analyze.TypeParam{{Name: "B"}}))
	assert.Equal(t, "B2", freshOutParam([]analyze.TypeParam{{Name: "B"}, {Name: "B1"}}))
}
