package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = cmdAnalyze(os.Args[2:])
	case "symbols":
		err = cmdSymbols(os.Args[2:])
	case "graph":
		err = cmdGraph(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `wcstack — worst-case stack usage analyzer

Usage:
  wcstack analyze --dir <dir> --limit <bytes>   Analyze a build tree and check the stack budget
  wcstack symbols --obj <path> [--json]         Dump defined function symbols from an ELF
  wcstack graph   --dir <dir> [--out <file>]    Emit the resolved call graph as DOT

Flags:
  --dir <dir>           Build directory with .dfinish, .su and .elf artifacts
  --limit <bytes>       Maximum total stack budget
  --obj <path>          Path to an ELF object or executable
  --out <file>          Output file (default stdout)
  --prologue-fallback   Recover missing frame sizes from ARM64 prologues
  --json                Output as JSON
`)
}
