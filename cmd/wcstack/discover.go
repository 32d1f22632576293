package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// traceSuffix is the fixed tail of GCC RTL dump file names; the full
// extension carries a pass number that varies between compiler versions
// (e.g. ".234r.dfinish") and is discovered from the build tree.
const (
	traceSuffix = ".dfinish"
	suExt       = ".su"
	objExt      = ".elf"
	manualExt   = ".msu"
)

var errNoInputs = errors.New("no translation units to analyze")

// unitInputs names the artifacts of one translation unit.
type unitInputs struct {
	Name  string // e.g. "main.c"
	Trace string // path to the RTL dump
	SU    string // path to the stack-usage listing
}

// inputs is everything a run consumes from the build directory.
type inputs struct {
	RTLExt string
	ELF    string
	Units  []unitInputs
	Manual []string
}

// discoverInputs walks the build tree for RTL dumps, their matching
// stack-usage listings, the linked ELF and any manual override files.
// A unit is only analyzable when both its trace and its .su listing exist.
func discoverInputs(dir string) (*inputs, error) {
	var all []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			all = append(all, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(all)

	in := &inputs{}

	// The RTL extension includes the dump's pass number: recover it from
	// the first trace file seen.
	for _, f := range all {
		if strings.HasSuffix(f, traceSuffix) {
			name := filepath.Base(f)
			stem := name[:len(name)-len(traceSuffix)]
			if i := strings.LastIndex(stem, "."); i >= 0 {
				in.RTLExt = stem[i:] + traceSuffix
				break
			}
		}
	}
	if in.RTLExt == "" {
		return nil, fmt.Errorf("%w: no files ending with %s under %s; was the code compiled with -fdump-rtl-dfinish -fstack-usage?", errNoInputs, traceSuffix, dir)
	}

	have := make(map[string]bool, len(all))
	for _, f := range all {
		have[f] = true
	}

	for _, f := range all {
		switch {
		case strings.HasSuffix(f, in.RTLExt):
			base := f[:len(f)-len(in.RTLExt)] // .../main.c
			su := trimLastExt(base) + suExt   // .../main.su
			if !have[su] {
				continue
			}
			in.Units = append(in.Units, unitInputs{
				Name:  filepath.Base(base),
				Trace: f,
				SU:    su,
			})
		case strings.HasSuffix(f, manualExt):
			in.Manual = append(in.Manual, f)
		case strings.HasSuffix(f, objExt):
			if in.ELF == "" {
				in.ELF = f
			}
		}
	}

	if len(in.Units) == 0 {
		return nil, fmt.Errorf("%w: found traces but no matching %s listings under %s", errNoInputs, suExt, dir)
	}
	if in.ELF == "" {
		return nil, fmt.Errorf("%w: no %s file under %s", errNoInputs, objExt, dir)
	}
	return in, nil
}

func trimLastExt(path string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndex(path, string(filepath.Separator)) {
		return path[:i]
	}
	return path
}
