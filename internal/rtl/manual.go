package rtl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"wcstack/internal/callgraph"
)

// ParseManual reads a manual override file of whitespace-separated
// "name bytes" pairs. Each pair becomes a synthetic leaf function in the
// global namespace; a name that already exists as a global is fatal, as is
// a malformed line.
func ParseManual(g *callgraph.Graph, file string, r io.Reader) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("rtl: %s:%d: want \"name bytes\", got %q", file, lineNo, line)
		}
		bytes, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("rtl: %s:%d: bad byte count %q: %v", file, lineNo, fields[1], err)
		}
		if _, err := g.AddManual(fields[0], bytes); err != nil {
			return fmt.Errorf("rtl: %s:%d: %w", file, lineNo, err)
		}
	}
	return sc.Err()
}
