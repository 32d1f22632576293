package rtl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadExpr reports an offset expression the evaluator will not accept.
var ErrBadExpr = errors.New("rtl: bad offset expression")

// EvalOffset evaluates the stack-pointer offset expression from an RTL
// addi line. GCC emits these as integer literals or simple sums such as
// "-16" or "-64+8". Only signed decimal/hex integers, + and -, and
// parentheses are accepted; this deliberately replaces general expression
// evaluation for untrusted trace text.
func EvalOffset(expr string) (int64, error) {
	p := &exprParser{input: expr}
	v, err := p.sum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("%w: trailing %q in %q", ErrBadExpr, p.input[p.pos:], expr)
	}
	return v, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) sum() (int64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return v, nil
		}
		switch p.input[p.pos] {
		case '+':
			p.pos++
			t, err := p.term()
			if err != nil {
				return 0, err
			}
			v += t
		case '-':
			p.pos++
			t, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= t
		default:
			return v, nil
		}
	}
}

func (p *exprParser) term() (int64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("%w: unexpected end of %q", ErrBadExpr, p.input)
	}
	switch p.input[p.pos] {
	case '-':
		p.pos++
		v, err := p.term()
		return -v, err
	case '+':
		p.pos++
		return p.term()
	case '(':
		p.pos++
		v, err := p.sum()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("%w: missing ) in %q", ErrBadExpr, p.input)
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && isNumChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("%w: unexpected %q in %q", ErrBadExpr, p.input[p.pos], p.input)
	}
	lit := p.input[start:p.pos]
	base := 10
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		lit, base = lit[2:], 16
	}
	v, err := strconv.ParseInt(lit, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadExpr, p.input[start:p.pos], err)
	}
	return v, nil
}

func isNumChar(c byte) bool {
	return c >= '0' && c <= '9' ||
		c >= 'a' && c <= 'f' ||
		c >= 'A' && c <= 'F' ||
		c == 'x' || c == 'X'
}
