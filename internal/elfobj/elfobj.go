// Package elfobj loads function symbols and code bytes from compiled ELF
// objects. It is the boundary to the compiler's output: everything the
// analyzer knows about symbol bindings comes through here.
package elfobj

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"

	"wcstack/internal/symtab"
)

var (
	ErrNotELF    = errors.New("elfobj: not an ELF file")
	ErrNoSymtab  = errors.New("elfobj: no symbol table")
	ErrNoSymbol  = errors.New("elfobj: symbol not found")
	ErrNoSegment = errors.New("elfobj: no PT_LOAD segment covers address")
)

// Symbol is one defined function symbol.
type Symbol struct {
	Name    string
	Binding symtab.Binding
	Unit    string // defining translation unit, "" when unknown
}

// Source yields the defined function symbols of one compiled artifact.
// The analyzer depends only on this interface; File is the ELF-backed
// implementation.
type Source interface {
	FuncSymbols() ([]Symbol, error)
}

// File wraps a debug/elf.File with the accessors the analyzer needs.
type File struct {
	ELF  *elf.File
	raw  io.ReaderAt
	size int64
}

// Open opens an ELF object or executable.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfobj: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("elfobj: stat: %w", err)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}

	return &File{ELF: ef, raw: f, size: info.Size()}, nil
}

// Close releases resources.
func (f *File) Close() error {
	return f.ELF.Close()
}

// FuncSymbols returns every defined function symbol with its binding.
// Local symbols are attributed to their translation unit via the STT_FILE
// marker symbols the assembler emits before each unit's locals.
func (f *File) FuncSymbols() ([]Symbol, error) {
	syms, err := f.ELF.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return nil, ErrNoSymtab
		}
		return nil, fmt.Errorf("elfobj: symtab: %w", err)
	}
	return funcSymbols(syms), nil
}

// funcSymbols filters raw symtab entries down to defined functions,
// tracking the current STT_FILE marker for unit attribution.
func funcSymbols(syms []elf.Symbol) []Symbol {
	var out []Symbol
	unit := ""
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) == elf.STT_FILE {
			unit = s.Name
			continue
		}
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC {
			continue
		}
		if s.Section == elf.SHN_UNDEF {
			continue
		}

		var b symtab.Binding
		switch elf.ST_BIND(s.Info) {
		case elf.STB_GLOBAL:
			b = symtab.Global
		case elf.STB_LOCAL:
			b = symtab.Local
		case elf.STB_WEAK:
			b = symtab.Weak
		default:
			continue
		}

		out = append(out, Symbol{Name: s.Name, Binding: b, Unit: unit})
	}
	return out
}

// FuncCode returns the machine code bytes of the named function symbol,
// located through PT_LOAD virtual-address mapping.
func (f *File) FuncCode(name string) ([]byte, error) {
	syms, err := f.ELF.Symbols()
	if err != nil {
		return nil, fmt.Errorf("elfobj: symtab: %w", err)
	}
	for _, s := range syms {
		if s.Name != name || elf.ST_TYPE(s.Info) != elf.STT_FUNC {
			continue
		}
		if s.Size == 0 {
			return nil, fmt.Errorf("%w: %s has zero size", ErrNoSymbol, name)
		}
		off, err := f.vaToFileOffset(s.Value)
		if err != nil {
			return nil, err
		}
		n := s.Size
		if avail := uint64(f.size) - off; n > avail {
			n = avail
		}
		buf := make([]byte, n)
		if _, err := f.raw.ReadAt(buf, int64(off)); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("elfobj: read at 0x%x: %w", off, err)
		}
		return buf, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSymbol, name)
}

// vaToFileOffset converts a virtual address to a file offset using PT_LOAD
// segments.
func (f *File) vaToFileOffset(va uint64) (uint64, error) {
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if va >= p.Vaddr && va < p.Vaddr+p.Memsz {
			offset := va - p.Vaddr + p.Off
			if offset >= uint64(f.size) {
				return 0, fmt.Errorf("elfobj: VA 0x%x maps to offset 0x%x beyond file size 0x%x", va, offset, f.size)
			}
			return offset, nil
		}
	}
	return 0, fmt.Errorf("%w: VA 0x%x", ErrNoSegment, va)
}
