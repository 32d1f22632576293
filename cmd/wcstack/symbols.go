package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"wcstack/internal/elfobj"
)

func cmdSymbols(args []string) error {
	fs := flag.NewFlagSet("symbols", flag.ExitOnError)
	obj := fs.String("obj", "", "path to an ELF object or executable")
	jsonOut := fs.Bool("json", false, "output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *obj == "" {
		return fmt.Errorf("--obj is required")
	}

	ef, err := elfobj.Open(*obj)
	if err != nil {
		return err
	}
	defer ef.Close()

	syms, err := ef.FuncSymbols()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d defined function symbols\n", len(syms))

	if *jsonOut {
		type row struct {
			Name    string `json:"name"`
			Binding string `json:"binding"`
			Unit    string `json:"unit,omitempty"`
		}
		rows := make([]row, 0, len(syms))
		for _, s := range syms {
			rows = append(rows, row{Name: s.Name, Binding: s.Binding.String(), Unit: s.Unit})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	for _, s := range syms {
		fmt.Printf("%-8s %-24s %s\n", s.Binding, s.Unit, s.Name)
	}
	return nil
}
