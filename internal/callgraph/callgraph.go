// Package callgraph owns the function records of one analysis run, resolves
// textual call targets into graph edges, and computes each function's
// worst-case stack usage.
package callgraph

import (
	"sort"
	"strings"

	"wcstack/internal/symtab"
)

// ManualUnit is the sentinel owner unit for manually supplied functions.
const ManualUnit = "#MANUAL"

// IRQPrefix marks interrupt handlers by naming convention. An interrupt
// handler can preempt any other function, so its worst case is budgeted on
// top of the worst ordinary path.
const IRQPrefix = "_irq"

// Function is one defined function. Records are created from symbol tables,
// enriched by the trace and stack-usage loaders, linked by Resolve, and
// finalized by the WCS engine. They are read-only afterwards.
type Function struct {
	Name        string // linker-visible identifier
	DisplayName string // demangled name from the RTL trace, "" until seen
	Unit        string // owning translation unit
	Binding     symtab.Binding

	OwnStack    int  // this function's own frame, excluding callees
	HasOwnStack bool // a stack-usage record (or fallback) supplied OwnStack
	Clobber     int  // extra bytes from inline-asm stack pointer adjustment
	HasPtrCall  bool // at least one call target is not statically known
	IRQ         bool

	rawCallees map[string]struct{}
	Callees    []symtab.Handle // resolved call edges, set once by Resolve
	unresolved map[string]struct{}

	res Result
}

// Label returns the display name when the trace supplied one, else the
// linker name.
func (f *Function) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Name
}

// AddRawCallee records a textually observed call target for later
// resolution.
func (f *Function) AddRawCallee(name string) {
	if f.rawCallees == nil {
		f.rawCallees = make(map[string]struct{})
	}
	f.rawCallees[name] = struct{}{}
}

// RawCallees returns the observed call targets, sorted.
func (f *Function) RawCallees() []string {
	names := make([]string, 0, len(f.rawCallees))
	for name := range f.rawCallees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *Function) addUnresolved(name string) {
	if f.unresolved == nil {
		f.unresolved = make(map[string]struct{})
	}
	f.unresolved[name] = struct{}{}
}

// Unresolved returns the call targets that matched no symbol anywhere,
// including those inherited from callees, sorted.
func (f *Function) Unresolved() []string {
	names := make([]string, 0, len(f.unresolved))
	for name := range f.unresolved {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result returns the function's worst-case stack outcome. Final only after
// ComputeAll.
func (f *Function) Result() Result { return f.res }

// Graph is the call graph of one run: the function arena plus the symbol
// resolver. All state is owned by the instance; construct with New.
type Graph struct {
	funcs    []*Function
	resolver *symtab.Resolver
}

func New() *Graph {
	return &Graph{resolver: symtab.NewResolver()}
}

// Len returns the number of function records.
func (g *Graph) Len() int { return len(g.funcs) }

// Func returns the record for a handle.
func (g *Graph) Func(h symtab.Handle) *Function { return g.funcs[h] }

// Funcs returns all records in arena order.
func (g *Graph) Funcs() []*Function { return g.funcs }

func (g *Graph) newFunction(unit, name string, b symtab.Binding) *Function {
	f := &Function{
		Name:    name,
		Unit:    unit,
		Binding: b,
		IRQ:     strings.HasPrefix(name, IRQPrefix),
	}
	g.funcs = append(g.funcs, f)
	return f
}

// AddSymbol registers one defined function symbol from a translation unit.
// Duplicate globals and same-unit duplicate locals are fatal.
func (g *Graph) AddSymbol(unit, name string, b symtab.Binding) (symtab.Handle, error) {
	h := symtab.Handle(len(g.funcs))
	if err := g.resolver.Register(unit, name, b, h); err != nil {
		return symtab.None, err
	}
	g.newFunction(unit, name, b)
	return h, nil
}

// AddManual registers a synthetic leaf function from a manual override.
// It has no callees and participates in the global namespace; a collision
// with an existing global is fatal.
func (g *Graph) AddManual(name string, bytes int) (symtab.Handle, error) {
	h := symtab.Handle(len(g.funcs))
	if err := g.resolver.Register(ManualUnit, name, symtab.Manual, h); err != nil {
		return symtab.None, err
	}
	f := g.newFunction(ManualUnit, name, symtab.Manual)
	f.DisplayName = name
	f.OwnStack = bytes
	f.HasOwnStack = true
	return h, nil
}

// MergeWeak promotes unshadowed weak symbols into the global namespace.
// Call once, after every unit's symbols have been added.
func (g *Graph) MergeWeak() {
	g.resolver.MergeWeak()
}

// ByName looks up a function by linker name as seen from unit.
func (g *Graph) ByName(unit, name string) (*Function, bool) {
	h, ok := g.resolver.Lookup(unit, name)
	if !ok {
		return nil, false
	}
	return g.funcs[h], true
}

// ByDisplay looks up a function by the display name the trace recorded,
// checking program-wide names before unit locals.
func (g *Graph) ByDisplay(unit, display string) (*Function, bool) {
	for _, f := range g.funcs {
		if f.Binding != symtab.Local && f.DisplayName == display {
			return f, true
		}
	}
	for _, f := range g.funcs {
		if f.Binding == symtab.Local && f.Unit == unit && f.DisplayName == display {
			return f, true
		}
	}
	return nil, false
}

// Resolve turns every raw callee name into a graph edge or an unresolved
// dependency. It runs once, after all units and overrides are loaded, so
// forward references across units resolve correctly.
func (g *Graph) Resolve() {
	for _, f := range g.funcs {
		if f.Callees != nil || f.unresolved != nil {
			continue // resolution is single-shot
		}
		for _, name := range f.RawCallees() {
			if h, ok := g.resolver.Lookup(f.Unit, name); ok {
				f.Callees = append(f.Callees, h)
			} else {
				f.addUnresolved(name)
			}
		}
	}
}
