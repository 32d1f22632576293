package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"wcstack/internal/callgraph"
	"wcstack/internal/diag"
	"wcstack/internal/elfobj"
	"wcstack/internal/prologue"
	"wcstack/internal/report"
	"wcstack/internal/rtl"
)

func cmdAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	dir := fs.String("dir", "", "build directory with compiler artifacts")
	limit := fs.Int("limit", 0, "maximum total stack budget in bytes")
	proFallback := fs.Bool("prologue-fallback", false, "recover missing frame sizes from ARM64 prologues")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("--dir is required")
	}
	if *limit <= 0 {
		return fmt.Errorf("--limit is required")
	}

	var diags diag.Diags
	g, in, err := loadGraph(*dir, &diags)
	if err != nil {
		return err
	}

	if *proFallback {
		if err := fillFromPrologues(g, in.ELF); err != nil {
			return err
		}
	}

	g.Resolve()
	g.ComputeAll()

	for _, d := range diags.Items() {
		fmt.Fprintln(os.Stderr, d)
	}

	if err := report.Table(os.Stdout, g); err != nil {
		return err
	}
	fmt.Println()

	budget := g.CheckBudget(*limit)
	for _, line := range report.BudgetLines(budget) {
		fmt.Println(line)
	}
	if !budget.OK {
		return errors.New("stack budget check failed")
	}
	return nil
}

// loadGraph runs the loading half of the pipeline: discovery, symbols,
// weak merge, traces, stack-usage listings and manual overrides.
func loadGraph(dir string, diags *diag.Diags) (*callgraph.Graph, *inputs, error) {
	in, err := discoverInputs(dir)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(os.Stderr, "rtl extension: %s\n", in.RTLExt)
	fmt.Fprintf(os.Stderr, "reading %d units, %d manual files, symbols from %s\n",
		len(in.Units), len(in.Manual), in.ELF)

	g := callgraph.New()

	ef, err := elfobj.Open(in.ELF)
	if err != nil {
		return nil, nil, err
	}
	syms, err := ef.FuncSymbols()
	ef.Close()
	if err != nil {
		return nil, nil, err
	}
	for _, s := range syms {
		if _, err := g.AddSymbol(s.Unit, s.Name, s.Binding); err != nil {
			return nil, nil, err
		}
	}
	g.MergeWeak()

	for _, u := range in.Units {
		f, err := os.Open(u.Trace)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace: %w", err)
		}
		err = rtl.ParseTrace(g, u.Name, u.Trace, f, diags)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", u.Trace, err)
		}
	}

	for _, u := range in.Units {
		f, err := os.Open(u.SU)
		if err != nil {
			return nil, nil, fmt.Errorf("open stack usage: %w", err)
		}
		err = rtl.ParseSU(g, u.Name, u.SU, f, diags)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", u.SU, err)
		}
	}

	for _, m := range in.Manual {
		f, err := os.Open(m)
		if err != nil {
			return nil, nil, fmt.Errorf("open manual overrides: %w", err)
		}
		err = rtl.ParseManual(g, m, f)
		f.Close()
		if err != nil {
			return nil, nil, err
		}
	}

	return g, in, nil
}

// fillFromPrologues supplies a frame size for functions the compiler
// emitted no stack-usage record for, by decoding their prologue. Existing
// records are never overridden.
func fillFromPrologues(g *callgraph.Graph, elfPath string) error {
	ef, err := elfobj.Open(elfPath)
	if err != nil {
		return err
	}
	defer ef.Close()

	filled := 0
	for _, f := range g.Funcs() {
		if f.HasOwnStack {
			continue
		}
		code, err := ef.FuncCode(f.Name)
		if err != nil {
			continue
		}
		if bytes, ok := prologue.FrameSize(code); ok {
			f.OwnStack = bytes
			f.HasOwnStack = true
			filled++
		}
	}
	if filled > 0 {
		fmt.Fprintf(os.Stderr, "prologue fallback filled %d frame sizes\n", filled)
	}
	return nil
}
