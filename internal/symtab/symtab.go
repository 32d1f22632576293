// Package symtab resolves function symbols across translation units the way
// a linker would: global names are program-wide, local names are scoped to
// their unit, and weak symbols become globals only when nothing shadows them.
package symtab

import "fmt"

// Handle is an index into the call graph's function arena.
type Handle int

// None is the invalid handle.
const None Handle = -1

// Binding is the visibility classification of a function symbol.
type Binding int

const (
	Global Binding = iota
	Local
	Weak
	Manual // externally supplied override, lives in the global namespace
)

func (b Binding) String() string {
	switch b {
	case Global:
		return "GLOBAL"
	case Local:
		return "LOCAL"
	case Weak:
		return "WEAK"
	case Manual:
		return "MANUAL"
	}
	return fmt.Sprintf("Binding(%d)", int(b))
}

// DuplicateError reports a symbol registered twice where uniqueness is
// required. It aborts the run.
type DuplicateError struct {
	Name string
	Unit string
}

func (e *DuplicateError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("symtab: multiple declarations of %s in %s", e.Name, e.Unit)
	}
	return fmt.Sprintf("symtab: multiple declarations of %s", e.Name)
}

// Resolver holds the three symbol namespaces. Each run owns exactly one
// Resolver; construct with NewResolver.
type Resolver struct {
	globals map[string]Handle
	locals  map[string]map[string]Handle // name -> unit -> handle
	weak    map[string]Handle
}

func NewResolver() *Resolver {
	return &Resolver{
		globals: make(map[string]Handle),
		locals:  make(map[string]map[string]Handle),
		weak:    make(map[string]Handle),
	}
}

// Register inserts a symbol into the namespace selected by its binding.
//
// A global collides with any existing global or local of the same name.
// A local collides with a local of the same name in the same unit.
// Weak symbols collide only with other weak symbols; shadowing by globals
// is decided later in MergeWeak. Manual entries collide with globals.
func (r *Resolver) Register(unit, name string, b Binding, h Handle) error {
	switch b {
	case Global:
		if _, ok := r.globals[name]; ok {
			return &DuplicateError{Name: name}
		}
		if _, ok := r.locals[name]; ok {
			return &DuplicateError{Name: name}
		}
		r.globals[name] = h
	case Local:
		units := r.locals[name]
		if units == nil {
			units = make(map[string]Handle)
			r.locals[name] = units
		}
		if _, ok := units[unit]; ok {
			return &DuplicateError{Name: name, Unit: unit}
		}
		units[unit] = h
	case Weak:
		if _, ok := r.weak[name]; ok {
			return &DuplicateError{Name: name}
		}
		r.weak[name] = h
	case Manual:
		if _, ok := r.globals[name]; ok {
			return &DuplicateError{Name: name}
		}
		r.globals[name] = h
	default:
		return fmt.Errorf("symtab: unknown binding %d for symbol %s", int(b), name)
	}
	return nil
}

// Lookup resolves a name as seen from the given unit: the global namespace
// first, then the unit's locals. A global always shadows a same-named local,
// even inside the local's own unit.
func (r *Resolver) Lookup(unit, name string) (Handle, bool) {
	if h, ok := r.globals[name]; ok {
		return h, true
	}
	if units, ok := r.locals[name]; ok {
		if h, ok := units[unit]; ok {
			return h, true
		}
	}
	return None, false
}

// HasGlobal reports whether name exists in the global namespace.
func (r *Resolver) HasGlobal(name string) bool {
	_, ok := r.globals[name]
	return ok
}

// MergeWeak promotes every weak symbol without a same-named global into the
// global namespace. Call once after all units have been scanned. Returns the
// promoted handles.
func (r *Resolver) MergeWeak() []Handle {
	var promoted []Handle
	for name, h := range r.weak {
		if _, ok := r.globals[name]; ok {
			continue
		}
		r.globals[name] = h
		promoted = append(promoted, h)
	}
	return promoted
}
