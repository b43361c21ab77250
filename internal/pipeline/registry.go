package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/transmute/internal/ir"
)

// Func is the uniform step signature. args holds the positional values the
// step receives; params is the step's bound Params, nil when none were
// given.
type Func func(args []any, params any) (any, error)

// ResultKind is declared per function at registration.
type ResultKind int

const (
	// Single results are returned to the caller unchanged.
	Single ResultKind = iota
	// Multiple results are ordered sequences zipped against the
	// transform's declared outputs.
	Multiple
)

func (k ResultKind) String() string {
	if k == Multiple {
		return "multiple"
	}
	return "single"
}

// Function is a registered step function.
type Function struct {
	Call   Func
	Result ResultKind
}

// SingleFunc registers f as returning one value.
func SingleFunc(f Func) Function {
	return Function{Call: f, Result: Single}
}

// MultipleFunc registers f as returning an ordered sequence.
func MultipleFunc(f Func) Function {
	return Function{Call: f, Result: Multiple}
}

// Registry maps (package path, name) to step functions.
// Safe for concurrent use; expected to be read-mostly after startup.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Function),
	}
}

func registryKey(path, name string) string {
	return path + "." + name
}

// Register adds fn under path and name, replacing any previous entry.
// path is the package name optionally extended with dotted segments,
// e.g. "bento_transforms.string".
func (r *Registry) Register(path, name string, fn Function) error {
	if path == "" || name == "" {
		return fmt.Errorf("register: package path and name are required (got %q, %q)", path, name)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("register: name %q must not contain dots", name)
	}
	if fn.Call == nil {
		return fmt.Errorf("register: %s has no function", registryKey(path, name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[registryKey(path, name)] = fn
	return nil
}

// MustRegister is like Register but panics on error. Intended for static
// registration at startup.
func (r *Registry) MustRegister(path, name string, fn Function) {
	if err := r.Register(path, name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered under path and name.
func (r *Registry) Lookup(path, name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[registryKey(path, name)]
	return fn, ok
}

// Has reports whether a function is registered under path and name.
func (r *Registry) Has(path, name string) bool {
	_, ok := r.Lookup(path, name)
	return ok
}

// Names returns every registered "path.name", sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for k := range r.funcs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered functions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Resolve finds the function a step names. Leading segments of the
// dotted entrypoint extend the package path; the final segment is the
// function name. Package versions are not part of the lookup.
func (r *Registry) Resolve(pkg ir.PackageSpec, entrypoint string) (Function, error) {
	path, name := splitEntrypoint(pkg.Name, entrypoint)
	fn, ok := r.Lookup(path, name)
	if !ok {
		return Function{}, &ResolutionError{
			Package:    pkg.String(),
			Entrypoint: entrypoint,
			Path:       path,
			Name:       name,
		}
	}
	return fn, nil
}

func splitEntrypoint(pkg, entrypoint string) (path, name string) {
	i := strings.LastIndexByte(entrypoint, '.')
	if i < 0 {
		return pkg, entrypoint
	}
	return pkg + "." + entrypoint[:i], entrypoint[i+1:]
}
