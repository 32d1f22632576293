package symtab

import (
	"errors"
	"testing"
)

func TestRegisterDuplicateGlobal(t *testing.T) {
	r := NewResolver()
	if err := r.Register("a.c", "main", Global, 0); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register("b.c", "main", Global, 1)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("second register: got %v, want DuplicateError", err)
	}
	if dup.Name != "main" {
		t.Errorf("dup.Name = %q, want main", dup.Name)
	}
}

func TestRegisterGlobalCollidesWithLocal(t *testing.T) {
	r := NewResolver()
	if err := r.Register("a.c", "helper", Local, 0); err != nil {
		t.Fatalf("local register: %v", err)
	}
	var dup *DuplicateError
	if err := r.Register("b.c", "helper", Global, 1); !errors.As(err, &dup) {
		t.Fatalf("global over local: got %v, want DuplicateError", err)
	}
}

func TestRegisterDuplicateLocalSameUnit(t *testing.T) {
	r := NewResolver()
	if err := r.Register("a.c", "helper", Local, 0); err != nil {
		t.Fatalf("first register: %v", err)
	}
	var dup *DuplicateError
	if err := r.Register("a.c", "helper", Local, 1); !errors.As(err, &dup) {
		t.Fatalf("same-unit local: got %v, want DuplicateError", err)
	}
	// Same local name in a different unit is fine.
	if err := r.Register("b.c", "helper", Local, 2); err != nil {
		t.Errorf("cross-unit local: %v", err)
	}
}

func TestLookupScoping(t *testing.T) {
	r := NewResolver()
	if err := r.Register("a.c", "helper", Local, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("b.c", "helper", Local, 11); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("c.c", "shared", Global, 12); err != nil {
		t.Fatal(err)
	}

	// Locals resolve only inside their own unit.
	if h, ok := r.Lookup("a.c", "helper"); !ok || h != 10 {
		t.Errorf("Lookup(a.c, helper) = %d, %v; want 10, true", h, ok)
	}
	if h, ok := r.Lookup("b.c", "helper"); !ok || h != 11 {
		t.Errorf("Lookup(b.c, helper) = %d, %v; want 11, true", h, ok)
	}
	if _, ok := r.Lookup("c.c", "helper"); ok {
		t.Error("helper visible from c.c, want miss")
	}

	// Globals resolve from anywhere.
	if h, ok := r.Lookup("a.c", "shared"); !ok || h != 12 {
		t.Errorf("Lookup(a.c, shared) = %d, %v; want 12, true", h, ok)
	}
}

// A global registered before a same-named local in another unit: callers in
// a third unit get the global; callers in the local's unit also get the
// global, because the global namespace is checked first. This pins the
// declared precedence rule.
func TestLookupGlobalWinsInsideLocalUnit(t *testing.T) {
	r := NewResolver()
	if err := r.Register("lib.c", "handler", Global, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("app.c", "handler", Local, 2); err != nil {
		t.Fatal(err)
	}

	if h, _ := r.Lookup("other.c", "handler"); h != 1 {
		t.Errorf("third unit: got %d, want global 1", h)
	}
	if h, _ := r.Lookup("app.c", "handler"); h != 1 {
		t.Errorf("local's unit: got %d, want global 1 (global wins)", h)
	}
}

func TestMergeWeak(t *testing.T) {
	r := NewResolver()
	if err := r.Register("a.c", "memcpy", Weak, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("b.c", "putchar", Weak, 2); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("c.c", "memcpy", Global, 3); err != nil {
		t.Fatal(err)
	}

	promoted := r.MergeWeak()
	if len(promoted) != 1 || promoted[0] != 2 {
		t.Fatalf("promoted = %v, want [2]", promoted)
	}

	// Shadowed weak stays invisible; unshadowed weak is now global.
	if h, _ := r.Lookup("z.c", "memcpy"); h != 3 {
		t.Errorf("memcpy = %d, want global 3", h)
	}
	if h, ok := r.Lookup("z.c", "putchar"); !ok || h != 2 {
		t.Errorf("putchar = %d, %v; want promoted 2", h, ok)
	}
}

func TestRegisterDuplicateWeak(t *testing.T) {
	r := NewResolver()
	if err := r.Register("a.c", "memcpy", Weak, 1); err != nil {
		t.Fatal(err)
	}
	var dup *DuplicateError
	if err := r.Register("b.c", "memcpy", Weak, 2); !errors.As(err, &dup) {
		t.Fatalf("duplicate weak: got %v, want DuplicateError", err)
	}
}

func TestRegisterManual(t *testing.T) {
	r := NewResolver()
	if err := r.Register("#MANUAL", "__assert_func", Manual, 1); err != nil {
		t.Fatal(err)
	}
	if h, ok := r.Lookup("any.c", "__assert_func"); !ok || h != 1 {
		t.Errorf("manual lookup = %d, %v; want 1, true", h, ok)
	}
	var dup *DuplicateError
	if err := r.Register("#MANUAL", "__assert_func", Manual, 2); !errors.As(err, &dup) {
		t.Fatalf("duplicate manual: got %v, want DuplicateError", err)
	}
}
