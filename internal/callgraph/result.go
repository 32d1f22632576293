package callgraph

import "strconv"

type resultKind uint8

const (
	resultUnset resultKind = iota
	resultBounded
	resultUnbounded
)

// Result is the finalized worst-case stack outcome of one function. The
// zero value means "not yet computed". Results are write-once: the engine
// never overwrites a finalized Result.
type Result struct {
	kind  resultKind
	bytes int
}

// Bounded returns a finalized result of n bytes.
func Bounded(n int) Result { return Result{kind: resultBounded, bytes: n} }

// Unbounded returns the result for a function whose stack use cannot be
// statically bounded (recursion or an indirect call).
func Unbounded() Result { return Result{kind: resultUnbounded} }

// Final reports whether the result has been computed.
func (r Result) Final() bool { return r.kind != resultUnset }

// IsUnbounded reports whether the result is Unbounded.
func (r Result) IsUnbounded() bool { return r.kind == resultUnbounded }

// Bytes returns the bounded byte count, 0 for unbounded or unset results.
func (r Result) Bytes() int {
	if r.kind == resultBounded {
		return r.bytes
	}
	return 0
}

func (r Result) String() string {
	switch r.kind {
	case resultBounded:
		return strconv.Itoa(r.bytes)
	case resultUnbounded:
		return "unbounded"
	}
	return "unset"
}
