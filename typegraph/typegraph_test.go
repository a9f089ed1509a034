package typegraph

import (
	"testing"

	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/llvmir"
)

func newGraph(t *testing.T) *Graph {
	t.Helper()
	m := llvmir.NewModule("test", abi.LinuxX86_64)
	return NewGraph(m, abi.LinuxX86_64)
}

func TestPackedStructInsertsExplicitFillerForAlignment(t *testing.T) {
	g := newGraph(t)
	s := &StructDescriptor{
		Name: "s1",
		Members: []StructMember{
			{Name: "a", Type: &IntDescriptor{Width: 8, Signed: false}},
			{Name: "b", Type: &IntDescriptor{Width: 32, Signed: true}},
		},
	}
	if err := s.Complete(g); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	layout := s.Layout()
	// byte 0: a (u8); bytes 1-3: filler; bytes 4-7: b (i32)
	if got, want := len(layout.Fields), 3; got != want {
		t.Fatalf("got %d native fields, want %d: %+v", got, want, layout.Fields)
	}
	if got, want := layout.Fields[1].Type.TypeName(), "uint8[3]"; got != want {
		t.Fatalf("filler field type = %q, want %q", got, want)
	}
	if got, want := layout.SizeBytes, 8; got != want {
		t.Fatalf("SizeBytes = %d, want %d", got, want)
	}
	if idx := layout.NativeIndexByID[1]; idx != 2 {
		t.Fatalf("member 1 (b) native index = %d, want 2", idx)
	}
}

func TestPackedStructWithNoMembersGetsOneFillerByte(t *testing.T) {
	g := newGraph(t)
	s := &StructDescriptor{Name: "empty"}
	if err := s.Complete(g); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	layout := s.Layout()
	if got, want := len(layout.Fields), 1; got != want {
		t.Fatalf("got %d fields, want %d", got, want)
	}
	if got, want := layout.SizeBytes, 1; got != want {
		t.Fatalf("SizeBytes = %d, want %d", got, want)
	}
}

func TestDirectlyRecursiveStructIsRejected(t *testing.T) {
	g := newGraph(t)
	s := &StructDescriptor{Name: "cyclic"}
	s.Members = []StructMember{{Name: "self", Type: s}}
	if err := s.Complete(g); err == nil {
		t.Fatal("expected an error for a struct containing itself by value")
	}
}

func TestStructLayoutIsDeterministicAcrossTwoGraphs(t *testing.T) {
	build := func() *StructLayout {
		g := newGraph(t)
		s := &StructDescriptor{
			Name: "v",
			Members: []StructMember{
				{Name: "x", Type: &FloatDescriptor{Width: 32}},
				{Name: "y", Type: &IntDescriptor{Width: 8, Signed: false}},
				{Name: "z", Type: &FloatDescriptor{Width: 64}},
			},
		}
		if err := s.Complete(g); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		return s.Layout()
	}
	a, b := build(), build()
	if a.SizeBytes != b.SizeBytes || len(a.Fields) != len(b.Fields) {
		t.Fatalf("layout differs across identical builds: %+v vs %+v", a, b)
	}
}

func TestPointerToStructAllowsSelfReference(t *testing.T) {
	g := newGraph(t)
	s := &StructDescriptor{Name: "node"}
	ptr := &PointerDescriptor{StorageClass: 0, Pointee: s}
	s.Members = []StructMember{
		{Name: "value", Type: &IntDescriptor{Width: 32, Signed: true}},
		{Name: "next", Type: ptr},
	}
	if _, err := g.Materialize(s); err != nil {
		t.Fatalf("Materialize self-referential struct via pointer: %v", err)
	}
}

func TestStridedArrayPadsElementToStride(t *testing.T) {
	g := newGraph(t)
	el := &IntDescriptor{Width: 8, Signed: false}
	arr := &ArrayDescriptor{Element: el, Length: 4, Stride: 16}
	ty, err := g.Materialize(arr)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	size, err := SizeOf(g.Target, ty)
	if err != nil {
		t.Fatalf("SizeOf: %v", err)
	}
	if got, want := size, 4*16; got != want {
		t.Fatalf("strided array size = %d, want %d", got, want)
	}
}
