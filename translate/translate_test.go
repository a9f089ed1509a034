package translate

import (
	"encoding/binary"
	"testing"

	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/typegraph"
)

func words(ws ...uint32) []byte {
	buf := make([]byte, len(ws)*4)
	for i, w := range ws {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func header(idBound uint32) []uint32 {
	return []uint32{spirvbin.MagicNumber, 0x00010000, 0, idBound, 0}
}

// TestTranslateRejectsModuleWithoutShaderCapability exercises pass one's
// post-walk capability check directly: a module with no OpCapability
// instruction at all must be refused before any entry point is translated
// (spec.md §4.E: "the Shader capability must be present").
func TestTranslateRejectsModuleWithoutShaderCapability(t *testing.T) {
	ws := header(1)
	bin := words(ws...)
	_, _, err := Translate("empty", bin, abi.LinuxX86_64)
	if err == nil {
		t.Fatal("expected an error for a module without the Shader capability")
	}
	if _, ok := err.(*errs.Unsupported); !ok {
		t.Fatalf("got %T, want *errs.Unsupported", err)
	}
}

// TestIdTableEntryPointLookupMissesCleanly checks the id table's
// (model, name) entry-point lookup.
func TestIdTableEntryPointLookupMissesCleanly(t *testing.T) {
	ids := NewIdTable(4)
	if _, err := ids.EntryPoint(spirvbin.ExecutionModelVertex, "main"); err == nil {
		t.Fatal("expected an error looking up an entry point in an empty table")
	}

	ids.AddEntryPoint(&EntryPoint{Model: spirvbin.ExecutionModelFragment, Name: "main", FunctionId: 1})
	if _, err := ids.EntryPoint(spirvbin.ExecutionModelVertex, "main"); err == nil {
		t.Fatal("expected a miss: only a Fragment entry point named \"main\" exists")
	}
	if ep, err := ids.EntryPoint(spirvbin.ExecutionModelFragment, "main"); err != nil {
		t.Fatalf("EntryPoint: %v", err)
	} else if ep.FunctionId != 1 {
		t.Fatalf("FunctionId = %d, want 1", ep.FunctionId)
	}
}

// TestAssembleInterfaceOrdersMembersByLocation builds an id table directly
// (bypassing the binary parser, since AssembleInterface only consumes the
// id table) with two Input variables decorated out of declaration order,
// and checks the assembled "inputs" struct lists them in ascending Location
// order (spec.md §4.F).
func TestAssembleInterfaceOrdersMembersByLocation(t *testing.T) {
	ids := NewIdTable(10)
	f32 := &typegraph.FloatDescriptor{Width: 32}

	ids.SetVariable(2, &Variable{Id: 2, StorageClass: spirvbin.StorageClassInput, PointeeType: f32})
	ids.AddDecoration(2, Decoration{Kind: spirvbin.DecorationLocation, Operands: []uint32{1}})
	ids.SetName(2, "b")

	ids.SetVariable(3, &Variable{Id: 3, StorageClass: spirvbin.StorageClassInput, PointeeType: f32})
	ids.AddDecoration(3, Decoration{Kind: spirvbin.DecorationLocation, Operands: []uint32{0}})
	ids.SetName(3, "a")

	ep := &EntryPoint{Model: spirvbin.ExecutionModelVertex, Name: "main", InterfaceIds: []int{2, 3}}
	iface, err := AssembleInterface(ids, ep)
	if err != nil {
		t.Fatalf("AssembleInterface: %v", err)
	}

	if got, want := len(iface.Inputs.Members), 2; got != want {
		t.Fatalf("got %d input members, want %d", got, want)
	}
	if iface.Inputs.Members[0].Name != "a" || iface.Inputs.Members[1].Name != "b" {
		t.Fatalf("members not ordered by Location: %+v", iface.Inputs.Members)
	}

	slotA := iface.Slots[3]
	if slotA.Location != 0 || slotA.FieldName != "a" {
		t.Fatalf("slot for id 3 = %+v, want Location 0 FieldName a", slotA)
	}
}

// TestAssembleInterfaceRejectsUnsupportedBuiltin checks that a BuiltIn
// decoration this core does not implement is refused with Unsupported,
// rather than silently dropped (spec.md §4.F).
func TestAssembleInterfaceRejectsUnsupportedBuiltin(t *testing.T) {
	ids := NewIdTable(10)
	f32 := &typegraph.FloatDescriptor{Width: 32}
	ids.SetVariable(5, &Variable{Id: 5, StorageClass: spirvbin.StorageClassInput, PointeeType: f32})
	ids.AddDecoration(5, Decoration{Kind: spirvbin.DecorationBuiltIn, Operands: []uint32{uint32(spirvbin.BuiltInPosition)}})

	ep := &EntryPoint{Model: spirvbin.ExecutionModelFragment, Name: "main", InterfaceIds: []int{5}}
	if _, err := AssembleInterface(ids, ep); err == nil {
		t.Fatal("expected an error for Position decorating a Fragment-stage input")
	} else if _, ok := err.(*errs.Unsupported); !ok {
		t.Fatalf("got %T, want *errs.Unsupported", err)
	}
}

// TestAssembleInterfaceRejectsVariableWithNoLocationOrBuiltin checks that an
// interface variable carrying neither decoration is refused rather than
// silently skipped.
func TestAssembleInterfaceRejectsVariableWithNoLocationOrBuiltin(t *testing.T) {
	ids := NewIdTable(10)
	f32 := &typegraph.FloatDescriptor{Width: 32}
	ids.SetVariable(7, &Variable{Id: 7, StorageClass: spirvbin.StorageClassOutput, PointeeType: f32})

	ep := &EntryPoint{Model: spirvbin.ExecutionModelVertex, Name: "main", InterfaceIds: []int{7}}
	if _, err := AssembleInterface(ids, ep); err == nil {
		t.Fatal("expected an error for an interface variable with neither Location nor BuiltIn")
	}
}
