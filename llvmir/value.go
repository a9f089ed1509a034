package llvmir

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// Value is an SSA value produced while building one Function.
type Value struct {
	ty   Type
	llvm llvm.Value
	b    *Builder
}

// val wraps a raw llvm.Value with its kazan-go type, binding it to b so
// later instructions built from it (Load, Index, arithmetic) know which
// builder to emit into.
func (b *Builder) val(ty Type, v llvm.Value) *Value {
	return &Value{ty: ty, llvm: v, b: b}
}

// Type returns the value's native type.
func (v *Value) Type() Type { return v.ty }

// SetName assigns a debug name to the underlying instruction.
func (v *Value) SetName(name string) *Value {
	v.llvm.SetName(name)
	return v
}

// Load dereferences a pointer value, naturally aligned.
func (v *Value) Load() *Value {
	p, ok := v.ty.(Pointer)
	if !ok {
		fail("Load of non-pointer value of type %v", v.ty)
	}
	return v.b.val(p.Element, v.b.llvm.CreateLoad(p.Element.llvmTy(), v.llvm, ""))
}

// LoadUnaligned dereferences a pointer value set to 1-byte alignment, used
// when reading out of a packed struct whose members are not naturally
// aligned (spec.md §4.C).
func (v *Value) LoadUnaligned() *Value {
	p, ok := v.ty.(Pointer)
	if !ok {
		fail("LoadUnaligned of non-pointer value of type %v", v.ty)
	}
	load := v.b.llvm.CreateLoad(p.Element.llvmTy(), v.llvm, "")
	load.SetAlignment(1)
	return v.b.val(p.Element, load)
}

// Store writes val through a pointer value, naturally aligned.
func (v *Value) Store(val *Value) {
	if _, ok := v.ty.(Pointer); !ok {
		fail("Store through non-pointer value of type %v", v.ty)
	}
	v.b.llvm.CreateStore(val.llvm, v.llvm)
}

// StoreUnaligned writes val through a pointer set to 1-byte alignment.
func (v *Value) StoreUnaligned(val *Value) {
	if _, ok := v.ty.(Pointer); !ok {
		fail("StoreUnaligned through non-pointer value of type %v", v.ty)
	}
	store := v.b.llvm.CreateStore(val.llvm, v.llvm)
	store.SetAlignment(1)
}

// Index walks a pointer value through a chain of constant GEP indices,
// matching SPIR-V's OpAccessChain (spec.md §4.E). Each element of path is
// either an int (array/vector element or struct native-member index) or a
// string (struct field name).
func (v *Value) Index(path ...IndexOrName) *Value {
	p, ok := v.ty.(Pointer)
	if !ok {
		fail("Index of non-pointer value of type %v", v.ty)
	}
	indices := []llvm.Value{llvm.ConstInt(v.b.m.Types.Int32.llvmTy(), 0, false)}
	cur := p.Element
	for _, step := range path {
		idx, next := stepInto(cur, step)
		indices = append(indices, idx)
		cur = next
	}
	gep := v.b.llvm.CreateGEP(p.Element.llvmTy(), v.llvm, indices, "")
	return v.b.val(v.b.m.Types.Pointer(cur), gep)
}

func stepInto(ty Type, step IndexOrName) (llvm.Value, Type) {
	switch t := ty.(type) {
	case *Struct:
		i, ok := step.(int)
		if name, isName := step.(string); isName {
			i = t.FieldIndex(name)
			if i < 0 {
				fail("struct %v has no field %q", t.Name, name)
			}
			ok = true
		}
		if !ok {
			fail("invalid index %v into struct %v", step, t.Name)
		}
		return llvm.ConstInt(llvm.Int32Type(), uint64(i), false), t.fields[i].Type
	case *Array:
		i, ok := step.(int)
		if !ok {
			fail("invalid index %v into array", step)
		}
		return llvm.ConstInt(llvm.Int32Type(), uint64(i), false), t.Element
	case Vector:
		i, ok := step.(int)
		if !ok {
			fail("invalid index %v into vector", step)
		}
		return llvm.ConstInt(llvm.Int32Type(), uint64(i), false), t.Element
	default:
		fail("cannot index into type %v", ty)
		panic("unreachable")
	}
}

// Extract reads an element or struct field directly out of an aggregate
// (non-pointer) value, matching SPIR-V's OpCompositeExtract.
func (v *Value) Extract(index int) *Value {
	switch t := v.ty.(type) {
	case *Struct:
		return v.b.val(t.fields[index].Type, v.b.llvm.CreateExtractValue(v.llvm, index, ""))
	case *Array:
		return v.b.val(t.Element, v.b.llvm.CreateExtractValue(v.llvm, index, ""))
	case Vector:
		idx := llvm.ConstInt(llvm.Int32Type(), uint64(index), false)
		return v.b.val(t.Element, v.b.llvm.CreateExtractElement(v.llvm, idx, ""))
	default:
		fail("cannot Extract from type %v", v.ty)
		panic("unreachable")
	}
}

// Insert returns a copy of v with element at index replaced by elem,
// matching SPIR-V's OpCompositeInsert.
func (v *Value) Insert(index int, elem *Value) *Value {
	switch v.ty.(type) {
	case *Struct, *Array:
		return v.b.val(v.ty, v.b.llvm.CreateInsertValue(v.llvm, elem.llvm, index, ""))
	case Vector:
		idx := llvm.ConstInt(llvm.Int32Type(), uint64(index), false)
		return v.b.val(v.ty, v.b.llvm.CreateInsertElement(v.llvm, elem.llvm, idx, ""))
	default:
		fail("cannot Insert into type %v", v.ty)
		panic("unreachable")
	}
}

// Offset advances a pointer value by n elements of its pointee type, where n
// is a runtime value rather than a compile-time constant. Used for the
// per-vertex attribute addressing the entry-point synthesizer builds
// directly over a u8* binding pointer (spec.md §4.G step 5:
// "binding_base + element_index*stride + attribute_offset"), which is byte
// arithmetic Index's constant-path GEP cannot express.
func (v *Value) Offset(n *Value) *Value {
	p, ok := v.ty.(Pointer)
	if !ok {
		fail("Offset of non-pointer value of type %v", v.ty)
	}
	gep := v.b.llvm.CreateGEP(p.Element.llvmTy(), v.llvm, []llvm.Value{n.llvm}, "")
	return v.b.val(v.ty, gep)
}

// IsNull reports whether v is the pointer type's null constant.
func (v *Value) IsNull() *Value {
	if !IsPointer(v.ty) {
		fail("IsNull of non-pointer value of type %v", v.ty)
	}
	isNull := v.b.llvm.CreateIsNull(v.llvm, "")
	return v.b.val(v.b.m.Types.Bool, isNull)
}

func (v *Value) String() string { return fmt.Sprintf("%v %v", v.ty, v.llvm) }
