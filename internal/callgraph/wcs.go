package callgraph

import "wcstack/internal/symtab"

type evalState uint8

const (
	stateUnvisited evalState = iota
	stateInProgress
	stateDone
)

// ComputeAll finalizes the worst-case stack result of every function.
// Each node is evaluated at most once; re-running is a no-op because
// finalized results are never recomputed.
func (g *Graph) ComputeAll() {
	states := make([]evalState, len(g.funcs))
	for h := range g.funcs {
		g.compute(symtab.Handle(h), states)
	}
}

// compute evaluates one function depth-first. The states slice carries the
// ancestor path implicitly: a node in stateInProgress is on the current
// path, so reaching it again means recursion of unknown depth.
//
// Clobber bytes from inline-asm stack adjustment are added once to the
// function's own contribution (own + clobber + worst callee).
func (g *Graph) compute(h symtab.Handle, states []evalState) Result {
	f := g.funcs[h]

	if states[h] == stateDone {
		return f.res
	}
	if states[h] == stateInProgress {
		// Recursion: no static bound. Finalize here; the frame that is
		// still evaluating this node returns the same result.
		f.res = Unbounded()
		return f.res
	}
	if f.res.Final() {
		// Finalized in an earlier ComputeAll pass.
		states[h] = stateDone
		return f.res
	}

	if f.HasPtrCall {
		f.res = Unbounded()
		states[h] = stateDone
		return f.res
	}

	states[h] = stateInProgress

	calleeMax := 0
	unbounded := false
	for _, ch := range f.Callees {
		r := g.compute(ch, states)

		// Unresolved dependencies ride along with the bound: a caller's
		// result is conditional on everything its callees could not
		// resolve.
		for name := range g.funcs[ch].unresolved {
			f.addUnresolved(name)
		}

		if r.IsUnbounded() {
			unbounded = true
			break
		}
		if r.Bytes() > calleeMax {
			calleeMax = r.Bytes()
		}
	}

	states[h] = stateDone

	if f.res.Final() {
		// A cycle through this node already finalized it as unbounded.
		return f.res
	}
	if unbounded {
		f.res = Unbounded()
		return f.res
	}
	f.res = Bounded(f.OwnStack + f.Clobber + calleeMax)
	return f.res
}
