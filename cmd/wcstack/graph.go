package main

import (
	"flag"
	"fmt"
	"os"

	"wcstack/internal/diag"
	"wcstack/internal/report"
)

func cmdGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	dir := fs.String("dir", "", "build directory with compiler artifacts")
	out := fs.String("out", "", "output file (default stdout)")
	title := fs.String("title", "wcstack", "graph title")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("--dir is required")
	}

	var diags diag.Diags
	g, _, err := loadGraph(*dir, &diags)
	if err != nil {
		return err
	}
	g.Resolve()

	for _, d := range diags.Items() {
		fmt.Fprintln(os.Stderr, d)
	}

	dot := report.DOT(g, *title)
	if *out == "" {
		fmt.Print(dot)
		return nil
	}
	if err := os.WriteFile(*out, []byte(dot), 0644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", *out, len(dot))
	return nil
}
