package rtl

import (
	"bufio"
	"io"
	"regexp"
	"strconv"

	"wcstack/internal/callgraph"
	"wcstack/internal/diag"
)

// Stack-usage lines carry the source location, the demangled name, the
// function's own frame size and a qualifier:
//
//	main.c:113:6:vAssertCalled	8	static
//	c:\userlibs\gcc\arm-none-eabi\include\assert.h:41:6:__assert_func	16	static
var reSULine = regexp.MustCompile(`^(.+):(\d+):(\d+):(.+)\t(\d+)\t(\S+)$`)

// ParseSU reads one unit's .su stack-usage listing and sets each matched
// function's own frame size. Records are keyed by the display name the RTL
// trace supplied. Malformed lines are logged and skipped.
func ParseSU(g *callgraph.Graph, unit, file string, r io.Reader, diags *diag.Diags) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		m := reSULine.FindStringSubmatch(sc.Text())
		if m == nil {
			diags.Addf(file, lineNo, diag.KindBadLine, "unparsable stack-usage line")
			continue
		}
		bytes, err := strconv.Atoi(m[5])
		if err != nil {
			diags.Addf(file, lineNo, diag.KindBadLine, "bad byte count %q", m[5])
			continue
		}
		if f, ok := g.ByDisplay(unit, m[4]); ok {
			f.OwnStack = bytes
			f.HasOwnStack = true
		}
	}
	return sc.Err()
}
