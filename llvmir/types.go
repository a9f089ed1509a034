package llvmir

import (
	"bytes"
	"fmt"
	"strings"

	"tinygo.org/x/go-llvm"
)

// Type is a native LLVM type known to a Module's Types registry.
type Type interface {
	String() string
	TypeName() string

	sizeInBits() int // 0 means target-dependent or an aggregate type
	llvmTy() llvm.Type
}

// TypeList is a slice of types.
type TypeList []Type

func (l TypeList) String() string {
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = p.TypeName()
	}
	return strings.Join(parts, ", ")
}

func (l TypeList) llvm() []llvm.Type {
	out := make([]llvm.Type, len(l))
	for i, t := range l {
		out[i] = t.llvmTy()
	}
	return out
}

type basicType struct {
	name string
	bits int
	llvm llvm.Type
}

func (t basicType) TypeName() string  { return t.name }
func (t basicType) String() string    { return t.name }
func (t basicType) llvmTy() llvm.Type { return t.llvm }
func (t basicType) sizeInBits() int   { return t.bits }

// Pointer is a pointer-to-Element type.
type Pointer struct {
	Element Type
	basicType
}

func (t Pointer) TypeName() string { return fmt.Sprintf("*%v", t.Element.TypeName()) }
func (t Pointer) String() string   { return fmt.Sprintf("*%v", t.Element) }

// Pointer returns (creating if needed) the pointer type to el.
func (t *Types) Pointer(el Type) Pointer {
	p, ok := t.pointers[el]
	if !ok {
		target := el
		if target == t.Void {
			target = t.Uint8
		}
		p = Pointer{target, basicType{"", t.ptrSizeInBits, llvm.PointerType(target.llvmTy(), 0)}}
		t.pointers[el] = p
	}
	return p
}

// IsPointer returns true if ty is a Pointer.
func IsPointer(ty Type) bool {
	_, ok := ty.(Pointer)
	return ok
}

// Array is a fixed-length Element array type.
type Array struct {
	Element Type
	Len     int
	basicType
}

func (t *Array) TypeName() string { return fmt.Sprintf("%v[%d]", t.Element.TypeName(), t.Len) }
func (t *Array) String() string   { return t.TypeName() }

type typeInt struct {
	Type
	int
}

// Array returns (creating if needed) an n-element array type of el.
func (t *Types) Array(el Type, n int) *Array {
	a, ok := t.arrays[typeInt{el, n}]
	if !ok {
		a = &Array{el, n, basicType{"", 0, llvm.ArrayType(el.llvmTy(), n)}}
		t.arrays[typeInt{el, n}] = a
	}
	return a
}

// Vector is a SIMD vector of Count Elements. SPIR-V arithmetic on vectors is
// emitted elementwise by relying on native vector types (spec.md §4.E).
type Vector struct {
	Element Type
	Count   int
	basicType
}

func (t Vector) TypeName() string { return fmt.Sprintf("vec<%v,%d>", t.Element.TypeName(), t.Count) }
func (t Vector) String() string   { return t.TypeName() }

// Vector returns the count-wide vector type of el.
func (t *Types) Vector(el Type, count int) Vector {
	key := typeInt{el, count}
	if v, ok := t.vectors[key]; ok {
		return v
	}
	v := Vector{el, count, basicType{"", 0, llvm.VectorType(el.llvmTy(), count)}}
	t.vectors[key] = v
	return v
}

// IsVector returns true if ty is a Vector.
func IsVector(ty Type) bool {
	_, ok := ty.(Vector)
	return ok
}

// ScalarOf returns the element type if ty is a Vector, otherwise ty itself.
func ScalarOf(ty Type) Type {
	if v, ok := ty.(Vector); ok {
		return v.Element
	}
	return ty
}

// Integer is an integer type, signed or unsigned.
type Integer struct {
	Signed bool
	basicType
}

// IsBool returns true if ty is the one-bit boolean type.
func IsBool(ty Type) bool {
	i, ok := ty.(Integer)
	return ok && i.llvm.IntTypeWidth() == 1
}

// IsInteger returns true if ty is an Integer.
func IsInteger(ty Type) bool { _, ok := ty.(Integer); return ok }

// IsSignedInteger returns true if ty is a signed Integer.
func IsSignedInteger(ty Type) bool { i, ok := ty.(Integer); return ok && i.Signed }

// IsUnsignedInteger returns true if ty is an unsigned Integer.
func IsUnsignedInteger(ty Type) bool { i, ok := ty.(Integer); return ok && !i.Signed }

// Float is a floating-point type.
type Float struct{ basicType }

// IsFloat returns true if ty is a Float.
func IsFloat(ty Type) bool { _, ok := ty.(Float); return ok }

// FunctionType is the type of a function value.
type FunctionType struct {
	Signature Signature
	llvm      llvm.Type
}

func (t FunctionType) TypeName() string  { return t.Signature.string("") }
func (t FunctionType) String() string    { return t.Signature.string("") }
func (t FunctionType) sizeInBits() int   { return 0 }
func (t FunctionType) llvmTy() llvm.Type { return t.llvm }

// Signature describes a function's parameter and result types.
type Signature struct {
	Parameters TypeList
	Result     Type
}

func (s Signature) string(name string) string {
	return fmt.Sprintf("%v %v(%v)", s.Result, name, s.Parameters)
}

func (s Signature) key() string {
	parts := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("(%v)%v", s.Parameters, s.Result)
}

// Function returns (creating if needed) the type of a function with the
// given result and parameter types.
func (t *Types) Function(resTy Type, paramTys ...Type) *FunctionType {
	if resTy == nil {
		resTy = t.Void
	}
	sig := Signature{TypeList(paramTys), resTy}
	key := sig.key()
	if ty, ok := t.funcs[key]; ok {
		return ty
	}
	ty := &FunctionType{sig, llvm.FunctionType(resTy.llvmTy(), TypeList(paramTys).llvm(), false)}
	t.funcs[key] = ty
	return ty
}

// Field is a single member of a Struct.
type Field struct {
	Name string
	Type Type
}

// Struct is a native, packed aggregate type. The layout engine
// (typegraph.BuildPackedStruct) is solely responsible for the byte offsets of its
// fields; Struct itself only mirrors whatever field list it is given
// (spec.md §4.C: "packed... the layout engine alone is responsible for every
// byte of padding").
type Struct struct {
	Name         string
	fields       []Field
	fieldIndices map[string]int
	llvm         llvm.Type
}

func (t *Struct) TypeName() string { return t.Name }
func (t *Struct) String() string {
	b := bytes.Buffer{}
	b.WriteString(t.Name)
	b.WriteString(" {")
	for _, f := range t.fields {
		b.WriteString("\n  ")
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.TypeName())
	}
	b.WriteString("\n}")
	return b.String()
}
func (t *Struct) sizeInBits() int   { return 0 }
func (t *Struct) llvmTy() llvm.Type { return t.llvm }

// Fields returns the struct's fields in native-member-index order.
func (t *Struct) Fields() []Field { return t.fields }

// FieldIndex returns the native member index of the named field, or -1.
func (t *Struct) FieldIndex(name string) int {
	if i, ok := t.fieldIndices[name]; ok {
		return i
	}
	return -1
}

// IsStruct returns true if ty is a Struct.
func IsStruct(ty Type) bool { _, ok := ty.(*Struct); return ok }

// DeclarePackedStruct creates a new, empty, named packed struct. Its body is
// filled in later with SetBody once the layout engine has computed filler
// members — this two-step declare/complete split is what lets a struct
// contain a pointer back to itself (spec.md §9: cyclic descriptors terminate
// at the pointer's opaque native representation).
func (t *Types) DeclarePackedStruct(name string) *Struct {
	name = sanitize(name)
	if s, ok := t.structs[name]; ok {
		return s
	}
	s := &Struct{Name: name, llvm: t.m.ctx.StructCreateNamed(name)}
	t.structs[name] = s
	return s
}

// SetBody finalizes a packed struct's native fields. Every byte of padding
// must already be present as explicit filler fields (typegraph builds such
// field lists in BuildPackedStruct and for stride-wrapped array elements).
func (s *Struct) SetBody(fields []Field) {
	native := make([]llvm.Type, len(fields))
	indices := make(map[string]int, len(fields))
	for i, f := range fields {
		native[i] = f.Type.llvmTy()
		indices[f.Name] = i
	}
	s.fields = fields
	s.fieldIndices = indices
	s.llvm.StructSetBody(native, true /* packed */)
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
