package shape

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuntimeImport is the import path of the runtime support package used
// by the builtin container idioms.
const RuntimeImport = "funcmap-generator/functor"

// markerName is the qualified name of the zero-sized marker type.
const markerName = "functor.Phantom"

// registryVersion is the schema version accepted from registry files.
const registryVersion = "1"

// Entry describes one recognized container: its name/arity pattern,
// which of its type arguments are mapped, and the helper functions the
// synthesizer calls in each mode. Containers are matched by name and
// arity only; the actual generic definition is never resolved.
type Entry struct {
	// Name is the written type name, qualified as it appears in source
	// (e.g. "functor.Option"). A bare written name also matches the
	// unqualified tail of Name.
	Name string `yaml:"name"`

	// Arity is the expected number of type arguments.
	Arity int `yaml:"arity"`

	// Mapped lists the argument positions that are classified and
	// transformed. Remaining positions are passed through and must not
	// contain the target parameter.
	Mapped []int `yaml:"mapped"`

	// Total is the structure-preserving transform called in total mode,
	// e.g. "functor.MapOption". It receives the container value followed
	// by one element function per mapped position.
	Total string `yaml:"map"`

	// Fallible is the short-circuiting transform called in fallible
	// mode, e.g. "functor.TryMapOption".
	Fallible string `yaml:"tryMap"`

	// Import is the import path the generated file needs for the helper
	// calls, empty for helpers in the subject's own package.
	Import string `yaml:"import"`
}

// base returns the unqualified tail of the entry name.
func (e *Entry) base() string {
	if i := strings.LastIndex(e.Name, "."); i >= 0 {
		return e.Name[i+1:]
	}

	return e.Name
}

// validate checks an entry for structural consistency.
func (e *Entry) validate() error {
	if e.Name == "" {
		return fmt.Errorf("container entry has no name")
	}

	if e.Arity < 1 {
		return fmt.Errorf("container %s: arity must be at least 1", e.Name)
	}

	if len(e.Mapped) == 0 {
		return fmt.Errorf("container %s: no mapped argument positions", e.Name)
	}

	for _, pos := range e.Mapped {
		if pos < 0 || pos >= e.Arity {
			return fmt.Errorf("container %s: mapped position %d out of range [0,%d)", e.Name, pos, e.Arity)
		}
	}

	if e.Total == "" || e.Fallible == "" {
		return fmt.Errorf("container %s: both map and tryMap idioms are required", e.Name)
	}

	return nil
}

// Structural containers. These are built into the classifier's grammar
// cases rather than matched by name, but they share the Entry form so
// the synthesizer treats every container uniformly.
var (
	sliceEntry = &Entry{
		Name: "[]", Arity: 1, Mapped: []int{0},
		Total: "functor.MapSlice", Fallible: "functor.TryMapSlice",
		Import: RuntimeImport,
	}
	mapEntry = &Entry{
		Name: "map", Arity: 2, Mapped: []int{1},
		Total: "functor.MapValues", Fallible: "functor.TryMapValues",
		Import: RuntimeImport,
	}
	ptrEntry = &Entry{
		Name: "*", Arity: 1, Mapped: []int{0},
		Total: "functor.MapPtr", Fallible: "functor.TryMapPtr",
		Import: RuntimeImport,
	}
)

// Registry is the fixed, versioned table of recognized generic
// container names. It lives outside the recursive classifier so new
// containers can be registered without touching the recursion.
type Registry struct {
	entries []*Entry
}

// NewRegistry returns a registry holding the builtin named containers.
func NewRegistry() *Registry {
	return &Registry{
		entries: []*Entry{
			{
				Name: "functor.Option", Arity: 1, Mapped: []int{0},
				Total: "functor.MapOption", Fallible: "functor.TryMapOption",
				Import: RuntimeImport,
			},
		},
	}
}

// Clone returns a registry with the same entries. Additions to either
// copy do not affect the other.
func (r *Registry) Clone() *Registry {
	return &Registry{entries: append([]*Entry(nil), r.entries...)}
}

// Add registers a container entry after validation. A later entry with
// the same name and arity shadows an earlier one.
func (r *Registry) Add(e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	r.entries = append([]*Entry{&e}, r.entries...)

	return nil
}

// Lookup finds the entry matching a written type name and arity, or nil.
func (r *Registry) Lookup(name string, arity int) *Entry {
	for _, e := range r.entries {
		if e.Arity != arity {
			continue
		}

		if name == e.Name || name == e.base() {
			return e
		}
	}

	return nil
}

// registryFile is the YAML layout of an external registry table.
type registryFile struct {
	Version    string  `yaml:"version"`
	Containers []Entry `yaml:"containers"`
}

// LoadFile merges container entries from a YAML registry file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading registry file %s: %w", path, err)
	}

	if err := r.Parse(data); err != nil {
		return fmt.Errorf("registry file %s: %w", path, err)
	}

	return nil
}

// Parse merges container entries from YAML registry data.
func (r *Registry) Parse(data []byte) error {
	var rf registryFile

	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parsing registry YAML: %w", err)
	}

	if rf.Version != "" && rf.Version != registryVersion {
		return fmt.Errorf("unsupported registry version %q (want %q)", rf.Version, registryVersion)
	}

	for _, e := range rf.Containers {
		if err := r.Add(e); err != nil {
			return err
		}
	}

	return nil
}
