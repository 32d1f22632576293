package callgraph

// Budget is the outcome of checking the whole program against a stack
// limit. The model: an interrupt fires at the deepest point of the worst
// ordinary call path and then runs its own worst case on top, so the
// required stack is the sum of both partition maxima.
type Budget struct {
	Limit    int
	Required int  // meaningful only when Unbounded is false
	OK       bool

	// Unbounded is set when either partition's maximum has no static
	// bound; the check cannot pass numerically in that case.
	Unbounded bool

	WorstFunc    string // ordinary function achieving the maximum
	WorstFuncRes Result
	WorstIRQ     string // interrupt handler achieving the maximum
	WorstIRQRes  Result
}

// CheckBudget partitions finalized functions into ordinary and interrupt
// handlers and compares the combined worst case against limit.
func (g *Graph) CheckBudget(limit int) Budget {
	b := Budget{Limit: limit}

	for _, f := range g.funcs {
		r := f.Result()
		if !r.Final() {
			continue
		}
		if f.IRQ {
			if worse(r, b.WorstIRQRes) {
				b.WorstIRQRes = r
				b.WorstIRQ = f.Name
			}
		} else {
			if worse(r, b.WorstFuncRes) {
				b.WorstFuncRes = r
				b.WorstFunc = f.Name
			}
		}
	}

	if b.WorstFuncRes.IsUnbounded() || b.WorstIRQRes.IsUnbounded() {
		b.Unbounded = true
		return b
	}
	b.Required = b.WorstFuncRes.Bytes() + b.WorstIRQRes.Bytes()
	b.OK = b.Required <= limit
	return b
}

// worse reports whether a is a worse (larger) result than b. Unbounded
// dominates every bounded value; an unset result never wins.
func worse(a, b Result) bool {
	if !a.Final() {
		return false
	}
	if !b.Final() {
		return true
	}
	if a.IsUnbounded() {
		return !b.IsUnbounded()
	}
	if b.IsUnbounded() {
		return false
	}
	return a.Bytes() > b.Bytes()
}
