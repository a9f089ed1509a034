package typegraph

import (
	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
)

// Kind discriminates the tagged variants of Descriptor.
type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindVector
	KindMatrix
	KindArray
	KindRuntimeArray
	KindStruct
	KindPointer
	KindFunction
	KindImage
	KindSampler
	KindSampledImage
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindArray:
		return "array"
	case KindRuntimeArray:
		return "runtime_array"
	case KindStruct:
		return "struct"
	case KindPointer:
		return "pointer"
	case KindFunction:
		return "function"
	case KindImage:
		return "image"
	case KindSampler:
		return "sampler"
	case KindSampledImage:
		return "sampled_image"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Descriptor is one node of the type graph: one SPIR-V OpType* result.
// Materialize lazily builds (and memoizes) the native type for target; it
// is only ever invoked through a Graph so memoization is centralized in the
// Graph's cache.
type Descriptor interface {
	Kind() Kind
	materialize(g *Graph) (llvmir.Type, error)
}

// Graph owns every type descriptor produced while translating one SPIR-V
// module against one target ABI, plus the memoized native type for each.
// A Graph is single-use: building it against a second abi.ABI is not
// supported, since every cached llvmir.Type would be wrong.
type Graph struct {
	Target *abi.ABI
	Module *llvmir.Module

	cache map[Descriptor]llvmir.Type
}

// NewGraph creates an empty type graph that will materialize native types
// into m, which must already be constructed against target.
func NewGraph(m *llvmir.Module, target *abi.ABI) *Graph {
	return &Graph{Target: target, Module: m, cache: map[Descriptor]llvmir.Type{}}
}

// Materialize returns the native type for d, computing and memoizing it on
// first use (spec.md §4.B: "a type descriptor's native representation is
// computed at most once, the first time it is actually needed").
func (g *Graph) Materialize(d Descriptor) (llvmir.Type, error) {
	if ty, ok := g.cache[d]; ok {
		return ty, nil
	}
	// A self-referential struct cannot loop forever: a Pointer whose
	// pointee struct is still being completed stops at the struct's
	// declared (named) type, and a struct reached again without an
	// intervening pointer is refused by StructDescriptor.Complete.
	ty, err := d.materialize(g)
	if err != nil {
		return nil, err
	}
	g.cache[d] = ty
	return ty, nil
}

// Void, Bool and the fixed-width Int/Float descriptors are singletons per
// Graph since they carry no further structure of their own.
type voidDescriptor struct{}

func (voidDescriptor) Kind() Kind { return KindVoid }
func (voidDescriptor) materialize(g *Graph) (llvmir.Type, error) { return g.Module.Types.Void, nil }

// Void is the descriptor for OpTypeVoid.
var Void Descriptor = voidDescriptor{}

type boolDescriptor struct{}

func (boolDescriptor) Kind() Kind { return KindBool }
func (boolDescriptor) materialize(g *Graph) (llvmir.Type, error) { return g.Module.Types.Bool, nil }

// Bool is the descriptor for OpTypeBool.
var Bool Descriptor = boolDescriptor{}

// IntDescriptor is the descriptor for OpTypeInt.
type IntDescriptor struct {
	Width  int
	Signed bool
}

func (d *IntDescriptor) Kind() Kind { return KindInt }
func (d *IntDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	t := g.Module.Types
	switch d.Width {
	case 8:
		if d.Signed {
			return t.Int8, nil
		}
		return t.Uint8, nil
	case 16:
		if d.Signed {
			return t.Int16, nil
		}
		return t.Uint16, nil
	case 32:
		if d.Signed {
			return t.Int32, nil
		}
		return t.Uint32, nil
	case 64:
		if d.Signed {
			return t.Int64, nil
		}
		return t.Uint64, nil
	default:
		return nil, errs.Unsupportedf("%d-bit integer type", d.Width)
	}
}

// FloatDescriptor is the descriptor for OpTypeFloat.
type FloatDescriptor struct {
	Width int
}

func (d *FloatDescriptor) Kind() Kind { return KindFloat }
func (d *FloatDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	switch d.Width {
	case 16:
		return g.Module.Types.Float16, nil
	case 32:
		return g.Module.Types.Float32, nil
	case 64:
		return g.Module.Types.Float64, nil
	default:
		return nil, errs.Unsupportedf("%d-bit float type", d.Width)
	}
}

// VectorDescriptor is the descriptor for OpTypeVector.
type VectorDescriptor struct {
	Element    Descriptor
	ColumnSize int
}

func (d *VectorDescriptor) Kind() Kind { return KindVector }
func (d *VectorDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	el, err := g.Materialize(d.Element)
	if err != nil {
		return nil, err
	}
	return g.Module.Types.Vector(el, d.ColumnSize), nil
}

// MatrixDescriptor is the descriptor for OpTypeMatrix: an array of
// ColumnCount column vectors. Matrices are not yet consumed by code
// generation (spec.md Non-goals exclude matrix arithmetic beyond storage),
// so this descriptor only needs to support layout and pass-through storage.
type MatrixDescriptor struct {
	ColumnType  *VectorDescriptor
	ColumnCount int
}

func (d *MatrixDescriptor) Kind() Kind { return KindMatrix }
func (d *MatrixDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	col, err := g.Materialize(d.ColumnType)
	if err != nil {
		return nil, err
	}
	return g.Module.Types.Array(col, d.ColumnCount), nil
}

// ArrayDescriptor is the descriptor for OpTypeArray.
type ArrayDescriptor struct {
	Element Descriptor
	Length  int
	// Stride is the byte distance between elements, from a Decoration
	// ArrayStride on this type, or 0 if the array is never used inside a
	// Block/BufferBlock-decorated struct (spec.md §4.C step 3).
	Stride int
}

func (d *ArrayDescriptor) Kind() Kind { return KindArray }
func (d *ArrayDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	el, err := g.Materialize(d.Element)
	if err != nil {
		return nil, err
	}
	if d.Stride == 0 {
		return g.Module.Types.Array(el, d.Length), nil
	}
	return layoutStridedArray(g, el, d.Length, d.Stride)
}

// RuntimeArrayDescriptor is the descriptor for OpTypeRuntimeArray: an array
// whose length is only known at the point a descriptor-bound buffer is
// used. This core has no descriptor-set binding model, so a
// RuntimeArrayDescriptor can be built, but materializing it returns an
// Unsupported error.
type RuntimeArrayDescriptor struct {
	Element Descriptor
	Stride  int
}

func (d *RuntimeArrayDescriptor) Kind() Kind { return KindRuntimeArray }
func (d *RuntimeArrayDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	return nil, errs.Unsupportedf("runtime-sized array (no descriptor-set binding support)")
}

// PointerDescriptor is the descriptor for OpTypePointer. Declaring a
// PointerDescriptor never forces its pointee to materialize, and
// materializing one whose pointee struct is still being completed only
// uses that struct's declared name, which is what lets a struct contain a
// pointer back to itself.
type PointerDescriptor struct {
	StorageClass int
	Pointee      Descriptor
}

func (d *PointerDescriptor) Kind() Kind { return KindPointer }
func (d *PointerDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	if sd, ok := d.Pointee.(*StructDescriptor); ok && sd.completing {
		return g.Module.Types.Pointer(sd.Declare(g)), nil
	}
	el, err := g.Materialize(d.Pointee)
	if err != nil {
		return nil, err
	}
	return g.Module.Types.Pointer(el), nil
}

// FunctionDescriptor is the descriptor for OpTypeFunction.
type FunctionDescriptor struct {
	Return     Descriptor
	Parameters []Descriptor
}

func (d *FunctionDescriptor) Kind() Kind { return KindFunction }
func (d *FunctionDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	ret, err := g.Materialize(d.Return)
	if err != nil {
		return nil, err
	}
	params := make(llvmir.TypeList, len(d.Parameters))
	for i, p := range d.Parameters {
		pt, err := g.Materialize(p)
		if err != nil {
			return nil, err
		}
		params[i] = pt
	}
	return g.Module.Types.Function(ret, params...), nil
}

// StructMember is one not-yet-materialized member of a StructDescriptor.
type StructMember struct {
	Name   string
	Type   Descriptor
	Offset *int // from Decoration Offset, nil if this struct carries none
}

// StructDescriptor is the descriptor for OpTypeStruct. Its native llvm
// struct is declared (named, empty) the first time anything asks for it —
// typically a PointerDescriptor whose pointee is this struct — so that a
// self-referential linked-list-shaped struct can exist: the pointer only
// ever needs the struct's name, never its completed body. Materialize
// calls Complete on first use, so every member type descriptor must be
// set before the struct is first materialized.
type StructDescriptor struct {
	Name    string
	Members []StructMember

	native     *llvmir.Struct
	layout     *StructLayout
	completing bool
}

func (d *StructDescriptor) Kind() Kind { return KindStruct }

// Declare returns the struct's named native type, creating it empty if
// this is the first reference (spec.md §4.B: "a struct descriptor's name
// is assigned before its members, so a pointer to it can be formed while
// it is still being built").
func (d *StructDescriptor) Declare(g *Graph) *llvmir.Struct {
	if d.native == nil {
		d.native = g.Module.Types.DeclarePackedStruct(d.Name)
	}
	return d.native
}

// Complete computes the packed layout for d's members and commits it to
// the struct declared by Declare. Calling Complete twice is a no-op.
func (d *StructDescriptor) Complete(g *Graph) error {
	native := d.Declare(g)
	if d.layout != nil {
		return nil
	}
	if d.completing {
		return errs.Translationf("struct %q has infinite size: it contains itself without an intervening pointer", d.Name)
	}
	d.completing = true
	defer func() { d.completing = false }()

	members := make([]Member, len(d.Members))
	for i, m := range d.Members {
		ty, err := g.Materialize(m.Type)
		if err != nil {
			return err
		}
		members[i] = Member{SPIRVIndex: i, Name: m.Name, Type: ty, Offset: m.Offset}
	}
	layout, err := BuildPackedStruct(g.Target, g.Module, native, members)
	if err != nil {
		return err
	}
	d.layout = layout
	return nil
}

// Layout returns the struct's computed layout. Complete must have been
// called first.
func (d *StructDescriptor) Layout() *StructLayout { return d.layout }

func (d *StructDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	if err := d.Complete(g); err != nil {
		return nil, err
	}
	return d.native, nil
}

// OpaqueDescriptor stands in for OpTypeImage/OpTypeSampler/
// OpTypeSampledImage/OpTypeEvent: recognized so a shader that merely
// declares one does not fail to parse, but never materializable since this
// core has no sampling, image, or host-synchronization support (spec.md
// Non-goals).
type OpaqueDescriptor struct {
	Name string
	K    Kind
}

func (d *OpaqueDescriptor) Kind() Kind { return d.K }
func (d *OpaqueDescriptor) materialize(g *Graph) (llvmir.Type, error) {
	return nil, errs.Unsupportedf("%s type", d.Name)
}

// layoutStridedArray builds the native type for an array whose elements
// must sit stride bytes apart even though the element's own natural size
// is smaller: a packed struct { element; u8 pad[stride-size] } repeated
// length times (spec.md §4.C step 3), assembled through the same
// filler-insertion logic as ordinary struct layout.
func layoutStridedArray(g *Graph, el llvmir.Type, length, stride int) (llvmir.Type, error) {
	elemSize, err := SizeOf(g.Target, el)
	if err != nil {
		return nil, err
	}
	if elemSize == stride {
		return g.Module.Types.Array(el, length), nil
	}
	if elemSize > stride {
		return nil, errs.Translationf("array element of size %d cannot fit in ArrayStride %d", elemSize, stride)
	}
	wrapper := g.Module.Types.DeclarePackedStruct(g.internalName("stride_elem", el, stride))
	wrapper.SetBody([]llvmir.Field{
		{Name: "value", Type: el},
		{Name: "_pad", Type: g.Module.Types.Array(g.Module.Types.Uint8, stride-elemSize)},
	})
	return g.Module.Types.Array(wrapper, length), nil
}

func (g *Graph) internalName(prefix string, el llvmir.Type, n int) string {
	return prefix + "_" + el.TypeName() + "_" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
