// Package diag provides shared diagnostics for the stack analyzer's input
// parsers. Loaders accumulate non-fatal problems here instead of aborting.
package diag

import "fmt"

// Kind classifies a diagnostic message.
type Kind string

const (
	KindOptimizedOut Kind = "optimized_out" // function marker with no symbol record
	KindBadLine      Kind = "bad_line"      // malformed input line, skipped
	KindBadOffset    Kind = "bad_offset"    // unparsable stack-pointer offset
	KindUnresolved   Kind = "unresolved"    // call target matched no symbol
)

// Diag records a non-fatal issue encountered while loading inputs.
type Diag struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
	Kind Kind   `json:"kind"`
	Msg  string `json:"msg"`
}

func (d Diag) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("[%s] %s:%d: %s", d.Kind, d.File, d.Line, d.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Kind, d.File, d.Msg)
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(file string, line int, kind Kind, msg string) {
	d.items = append(d.items, Diag{File: file, Line: line, Kind: kind, Msg: msg})
}

func (d *Diags) Addf(file string, line int, kind Kind, format string, args ...any) {
	d.items = append(d.items, Diag{File: file, Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }
