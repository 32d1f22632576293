package rtl

import (
	"strings"
	"testing"

	"wcstack/internal/callgraph"
	"wcstack/internal/diag"
	"wcstack/internal/symtab"
)

func mustAdd(t *testing.T, g *callgraph.Graph, unit, name string, b symtab.Binding) *callgraph.Function {
	t.Helper()
	h, err := g.AddSymbol(unit, name, b)
	if err != nil {
		t.Fatalf("AddSymbol(%s): %v", name, err)
	}
	return g.Func(h)
}

const sampleTrace = `;; Function main (main, funcdef_no=0, decl_uid=100, cgraph_uid=0)
(insn 5 4 6 2 (set (reg:SI 10) (const_int 0)) "main.c":8 -1)
(call_insn 10 9 11 2 (call (mem:SI (symbol_ref:SI ("helper") [flags 0x41]) [0 S4 A32])))
(insn 12 11 13 2 (asm_operands/v ("addi sp, sp, -64") ("") 0 [] [] [])
;; Function dispatch (dispatch, funcdef_no=1, decl_uid=101, cgraph_uid=1)
(call_insn 20 19 21 3 (call (mem:SI (reg:SI 14) [0 S4 A32]) (const_int 0)))
;; Function gone (gone, funcdef_no=2, decl_uid=102, cgraph_uid=2)
(call_insn 30 29 31 2 (call (mem:SI (symbol_ref:SI ("ignored") [flags 0x41]) [0 S4 A32])))
`

func TestParseTrace(t *testing.T) {
	g := callgraph.New()
	main := mustAdd(t, g, "main.c", "main", symtab.Global)
	dispatch := mustAdd(t, g, "main.c", "dispatch", symtab.Local)
	// "gone" has no symbol record: optimized out.

	var diags diag.Diags
	if err := ParseTrace(g, "main.c", "main.c.234r.dfinish", strings.NewReader(sampleTrace), &diags); err != nil {
		t.Fatalf("ParseTrace: %v", err)
	}

	if main.DisplayName != "main" {
		t.Errorf("main display = %q", main.DisplayName)
	}
	if got := main.RawCallees(); len(got) != 1 || got[0] != "helper" {
		t.Errorf("main callees = %v, want [helper]", got)
	}
	if main.HasPtrCall {
		t.Error("main flagged with pointer call")
	}
	if main.Clobber != 64 {
		t.Errorf("main clobber = %d, want 64", main.Clobber)
	}

	if !dispatch.HasPtrCall {
		t.Error("dispatch not flagged with pointer call")
	}
	if len(dispatch.RawCallees()) != 0 {
		t.Errorf("dispatch callees = %v, want none", dispatch.RawCallees())
	}

	// The unknown function was logged; its call lines were ignored.
	if diags.Len() != 1 {
		t.Fatalf("diags = %v, want 1 entry", diags.Items())
	}
	if diags.Items()[0].Kind != diag.KindOptimizedOut {
		t.Errorf("diag kind = %s", diags.Items()[0].Kind)
	}
}

func TestParseTracePositiveAdjustIgnored(t *testing.T) {
	g := callgraph.New()
	f := mustAdd(t, g, "a.c", "f", symtab.Global)

	trace := `;; Function f (f, funcdef_no=0, decl_uid=1, cgraph_uid=0)
(insn 3 2 4 2 (asm_operands/v ("addi sp, sp, 16") ("") 0 [] [] [])
`
	var diags diag.Diags
	if err := ParseTrace(g, "a.c", "f.dfinish", strings.NewReader(trace), &diags); err != nil {
		t.Fatal(err)
	}
	// The pointer moved up (release), not down: no clobber.
	if f.Clobber != 0 {
		t.Errorf("clobber = %d, want 0", f.Clobber)
	}
}

func TestParseTraceBadOffset(t *testing.T) {
	g := callgraph.New()
	mustAdd(t, g, "a.c", "f", symtab.Global)

	trace := `;; Function f (f, funcdef_no=0, decl_uid=1, cgraph_uid=0)
(insn 3 2 4 2 (asm_operands/v ("addi sp, sp, t0") ("") 0 [] [] [])
`
	var diags diag.Diags
	if err := ParseTrace(g, "a.c", "f.dfinish", strings.NewReader(trace), &diags); err != nil {
		t.Fatal(err)
	}
	if diags.Len() != 1 || diags.Items()[0].Kind != diag.KindBadOffset {
		t.Errorf("diags = %v, want one bad_offset", diags.Items())
	}
}

func TestParseSU(t *testing.T) {
	g := callgraph.New()
	main := mustAdd(t, g, "main.c", "main", symtab.Global)
	main.DisplayName = "main"
	assert := mustAdd(t, g, "main.c", "__assert_func", symtab.Global)
	assert.DisplayName = "__assert_func"

	su := "main.c:113:6:main\t8\tstatic\n" +
		"c:\\userlibs\\gcc\\arm-none-eabi\\include\\assert.h:41:6:__assert_func\t16\tstatic\n" +
		"garbage line without tabs\n"

	var diags diag.Diags
	if err := ParseSU(g, "main.c", "main.su", strings.NewReader(su), &diags); err != nil {
		t.Fatalf("ParseSU: %v", err)
	}

	if !main.HasOwnStack || main.OwnStack != 8 {
		t.Errorf("main own stack = %d (set=%v), want 8", main.OwnStack, main.HasOwnStack)
	}
	if !assert.HasOwnStack || assert.OwnStack != 16 {
		t.Errorf("__assert_func own stack = %d (set=%v), want 16", assert.OwnStack, assert.HasOwnStack)
	}
	if diags.Len() != 1 || diags.Items()[0].Kind != diag.KindBadLine {
		t.Errorf("diags = %v, want one bad_line", diags.Items())
	}
}

func TestParseManual(t *testing.T) {
	g := callgraph.New()

	input := "__assert_func 16\nmemcpy   32\n\n"
	if err := ParseManual(g, "overrides.msu", strings.NewReader(input)); err != nil {
		t.Fatalf("ParseManual: %v", err)
	}

	f, ok := g.ByName("any.c", "__assert_func")
	if !ok {
		t.Fatal("__assert_func not registered")
	}
	if f.OwnStack != 16 || f.Unit != callgraph.ManualUnit || f.Binding != symtab.Manual {
		t.Errorf("record = %+v", f)
	}
}

func TestParseManualDuplicateFatal(t *testing.T) {
	g := callgraph.New()
	mustAdd(t, g, "main.c", "memcpy", symtab.Global)

	if err := ParseManual(g, "overrides.msu", strings.NewReader("memcpy 32\n")); err == nil {
		t.Fatal("duplicate manual override succeeded, want error")
	}
}

func TestParseManualMalformedFatal(t *testing.T) {
	g := callgraph.New()
	if err := ParseManual(g, "overrides.msu", strings.NewReader("justaname\n")); err == nil {
		t.Fatal("malformed override line succeeded, want error")
	}
}
