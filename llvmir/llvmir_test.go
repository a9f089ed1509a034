package llvmir

import (
	"strings"
	"testing"

	"github.com/kazan-3d/kazan-go/abi"
)

func TestModuleStringIsDeterministic(t *testing.T) {
	build := func() string {
		m := NewModule("add_mod", abi.LinuxX86_64)
		f := m.Function(m.Types.Int32, "add", m.Types.Int32, m.Types.Int32)
		f.SetParameterNames("a", "b")
		if err := f.Build(func(b *Builder) {
			sum := b.Parameter(0).Add(b.Parameter(1))
			b.Return(sum)
		}); err != nil {
			t.Fatalf("Build: %v", err)
		}
		if err := m.Verify(); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		return m.String()
	}

	a, b := build(), build()
	if a != b {
		t.Fatalf("translating the same IR twice produced different text:\n%s\n---\n%s", a, b)
	}
	if !strings.Contains(a, "define i32 @add") {
		t.Fatalf("expected a definition of add, got:\n%s", a)
	}
}

func TestFunctionFallsOffEndWithoutReturnIsAnError(t *testing.T) {
	m := NewModule("bad_mod", abi.LinuxX86_64)
	f := m.Function(m.Types.Int32, "bad")
	err := f.Build(func(b *Builder) {})
	if err == nil {
		t.Fatal("expected an error for a non-void function with no terminator")
	}
}

func TestVoidFunctionGetsImplicitReturn(t *testing.T) {
	m := NewModule("void_mod", abi.LinuxX86_64)
	f := m.Function(m.Types.Void, "noop")
	if err := f.Build(func(b *Builder) {}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(m.String(), "ret void") {
		t.Fatalf("expected an implicit void return, got:\n%s", m.String())
	}
}

func TestPackedStructHasNoImplicitPadding(t *testing.T) {
	m := NewModule("struct_mod", abi.LinuxX86_64)
	s := m.Types.DeclarePackedStruct("mixed")
	s.SetBody([]Field{
		{Name: "a", Type: m.Types.Uint8},
		{Name: "_pad0", Type: m.Types.Array(m.Types.Uint8, 3)},
		{Name: "b", Type: m.Types.Uint32},
	})
	if got, want := len(s.Fields()), 3; got != want {
		t.Fatalf("got %d native fields, want %d", got, want)
	}
	if s.FieldIndex("b") != 2 {
		t.Fatalf("FieldIndex(b) = %d, want 2", s.FieldIndex("b"))
	}
}

func TestModLoweringVerifies(t *testing.T) {
	m := NewModule("mod_mod", abi.LinuxX86_64)
	f := m.Function(m.Types.Int32, "mod", m.Types.Int32, m.Types.Int32)
	if err := f.Build(func(b *Builder) {
		b.Return(b.Parameter(0).Mod(b.Parameter(1)))
	}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}
