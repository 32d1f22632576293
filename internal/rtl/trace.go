// Package rtl parses the compiler's per-unit artifacts: RTL dump traces
// (call sites, indirect calls, inline-asm stack adjustments), stack-usage
// listings, and manual override files.
package rtl

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"wcstack/internal/callgraph"
	"wcstack/internal/diag"
)

var (
	// ;; Function vTaskDelay (vTaskDelay, funcdef_no=12, decl_uid=4567, cgraph_uid=12)
	reFunction = regexp.MustCompile(`^;; Function (.*) \((\S+), funcdef_no=\d+(, [a-z_]+=\d+)*\)( \([a-z ]+\))?$`)
	// (call (mem:SI (symbol_ref:SI ("xQueueReceive") ...
	reDirectCall = regexp.MustCompile(`^.*\(call.*"(.*)".*$`)
	reOtherCall  = regexp.MustCompile(`^.*call .*$`)
	// addi sp, sp, -16 inside an inline asm block
	reSPAdjust = regexp.MustCompile(`.*addi? sp, sp, (.*)`)
)

// ParseTrace reads one unit's RTL trace and attaches call sites, pointer
// call flags and stack-pointer clobbers to the unit's function records.
// Function markers naming unknown symbols (optimized out or merged) are
// logged and skipped; everything up to the next marker is ignored.
func ParseTrace(g *callgraph.Graph, unit, file string, r io.Reader, diags *diag.Diags) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *callgraph.Function
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if m := reFunction.FindStringSubmatch(line); m != nil {
			display, name := m[1], m[2]
			f, ok := g.ByName(unit, name)
			if !ok {
				diags.Addf(file, lineNo, diag.KindOptimizedOut,
					"function %s has no symbol record in %s, optimized out or merged?", name, unit)
				cur = nil
				continue
			}
			f.DisplayName = display
			cur = f
			continue
		}

		if cur == nil {
			continue
		}

		if m := reDirectCall.FindStringSubmatch(line); m != nil {
			cur.AddRawCallee(m[1])
			continue
		}

		if reOtherCall.MatchString(line) {
			// A call with no literal target: one anywhere in the function
			// invalidates any static bound for it.
			cur.HasPtrCall = true
			continue
		}

		if m := reSPAdjust.FindStringSubmatch(line); m != nil {
			raw := m[1]
			// Inside an (asm_operands ...) block the template is quoted;
			// drop the closing quote and whatever follows it.
			if i := strings.IndexByte(raw, '"'); i >= 0 {
				raw = raw[:i]
			}
			off, err := EvalOffset(raw)
			if err != nil {
				diags.Addf(file, lineNo, diag.KindBadOffset, "%v", err)
				continue
			}
			if off < 0 {
				// Stack grows down: the magnitude is a manual reservation
				// the compiler's frame accounting cannot see.
				cur.Clobber = int(-off)
			}
		}
	}
	return sc.Err()
}
