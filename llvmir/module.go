package llvmir

import (
	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/errs"

	"tinygo.org/x/go-llvm"
)

// Types owns every native LLVM type materialized for one Module: the basic
// scalar types sized to the target ABI, plus memoizing constructors for
// pointers, arrays, vectors, structs, and function types. Mirrors
// google-gapid/core/codegen.Types.
type Types struct {
	m *Module

	Void    Type
	Bool    Type
	Int8    Type
	Int16   Type
	Int32   Type
	Int64   Type
	Uint8   Type
	Uint16  Type
	Uint32  Type
	Uint64  Type
	Uintptr Type
	Size    Type
	Float16 Type
	Float32 Type
	Float64 Type

	ptrSizeInBits int
	pointers      map[Type]Pointer
	arrays        map[typeInt]*Array
	vectors       map[typeInt]Vector
	structs       map[string]*Struct
	funcs         map[string]*FunctionType
}

// Module is a JIT compilation unit: one LLVM context, one LLVM module, and
// the Types registry used to populate it. Mirrors
// google-gapid/core/codegen.Module, generalized from a single host target to
// any abi.ABI.
type Module struct {
	Types Types

	llvm   llvm.Module
	ctx    llvm.Context
	target *abi.ABI
	name   string
	funcs  map[string]*Function
}

// NewModule creates a context and an empty module targeting abi.
func NewModule(name string, target *abi.ABI) *Module {
	if target == nil {
		panic("llvmir.NewModule requires a non-nil target ABI")
	}
	ctx := llvm.NewContext()
	mod := ctx.NewModule(name)
	mod.SetTarget(target.TargetTriple())
	if dl := target.DataLayout(); dl != "" {
		mod.SetDataLayout(dl)
	}

	ml := target.MemoryLayout
	bt := func(name string, dtl abi.DataTypeLayout, ty llvm.Type) basicType {
		return basicType{name, 8 * dtl.Size, ty}
	}
	ptrBits := 8 * ml.Pointer.Size

	m := &Module{
		Types: Types{
			Void:          basicType{"void", 0, ctx.VoidType()},
			Bool:          Integer{false, basicType{"bool", 1, ctx.Int1Type()}},
			Int8:          Integer{true, bt("int8", ml.I8, ctx.Int8Type())},
			Int16:         Integer{true, bt("int16", ml.I16, ctx.Int16Type())},
			Int32:         Integer{true, bt("int32", ml.I32, ctx.Int32Type())},
			Int64:         Integer{true, bt("int64", ml.I64, ctx.Int64Type())},
			Uint8:         Integer{false, bt("uint8", ml.I8, ctx.Int8Type())},
			Uint16:        Integer{false, bt("uint16", ml.I16, ctx.Int16Type())},
			Uint32:        Integer{false, bt("uint32", ml.I32, ctx.Int32Type())},
			Uint64:        Integer{false, bt("uint64", ml.I64, ctx.Int64Type())},
			Uintptr:       Integer{false, bt("uintptr", ml.Pointer, ctx.IntType(ptrBits))},
			Size:          Integer{false, bt("size", ml.Size, ctx.IntType(8*ml.Size.Size))},
			Float16:       Float{bt("float16", ml.F16, ctx.HalfType())},
			Float32:       Float{bt("float32", ml.F32, ctx.FloatType())},
			Float64:       Float{bt("float64", ml.F64, ctx.DoubleType())},
			ptrSizeInBits: ptrBits,
			pointers:      map[Type]Pointer{},
			arrays:        map[typeInt]*Array{},
			vectors:       map[typeInt]Vector{},
			structs:       map[string]*Struct{},
			funcs:         map[string]*FunctionType{},
		},
		llvm:   mod,
		ctx:    ctx,
		target: target,
		name:   name,
		funcs:  map[string]*Function{},
	}
	m.Types.m = m
	return m
}

// Verify checks every function and the module as a whole, surfacing any
// failure as a TranslationFailure-shaped error (spec.md §4.A: "any
// IR-verification failure is surfaced as Translation_failure carrying the
// verifier message").
func (m *Module) Verify() error {
	for f := m.llvm.FirstFunction(); !f.IsNil(); f = llvm.NextFunction(f) {
		if err := llvm.VerifyFunction(f, llvm.ReturnStatusAction); err != nil {
			return &errs.TranslationFailure{Reason: "function " + f.Name() + " failed verification", Cause: err}
		}
	}
	if err := llvm.VerifyModule(m.llvm, llvm.ReturnStatusAction); err != nil {
		return &errs.TranslationFailure{Reason: "module failed verification", Cause: err}
	}
	return nil
}

// String renders the module as LLVM IR text. Two independent translations of
// the same (bytes, ABI) pair must render identically (spec.md §8 property 1).
func (m *Module) String() string { return m.llvm.String() }

// Function declares (or returns the existing declaration for) a function
// with the given name and signature.
func (m *Module) Function(resTy Type, name string, paramTys ...Type) *Function {
	ty := m.Types.Function(resTy, paramTys...)
	if f, ok := m.funcs[name]; ok {
		return f
	}
	llvmFn := llvm.AddFunction(m.llvm, name, ty.llvm)
	f := &Function{Name: name, Type: ty, llvm: llvmFn, m: m}
	m.funcs[name] = f
	return f
}

// LookupFunction returns a previously declared function by name, or nil.
func (m *Module) LookupFunction(name string) *Function { return m.funcs[name] }

// Global is a named, mutable module-level value.
type Global struct {
	Type Type
	llvm llvm.Value
}

// ZeroGlobal declares a zero-initialized private global of type ty.
func (m *Module) ZeroGlobal(name string, ty Type) Global {
	v := llvm.AddGlobal(m.llvm, ty.llvmTy(), name)
	v.SetInitializer(llvm.ConstNull(ty.llvmTy()))
	v.SetLinkage(llvm.PrivateLinkage)
	return Global{m.Types.Pointer(ty), v}
}

// Const is a compile-time-known scalar or composite value.
type Const struct {
	Type Type
	llvm llvm.Value
}

// ConstInt returns an integer constant of the given type and value.
func (m *Module) ConstInt(ty Type, v uint64, signExtend bool) Const {
	return Const{ty, llvm.ConstInt(ty.llvmTy(), v, signExtend)}
}

// ConstFloat returns a floating-point constant of the given type and value.
func (m *Module) ConstFloat(ty Type, v float64) Const {
	return Const{ty, llvm.ConstFloat(ty.llvmTy(), v)}
}

// ConstNull returns the zero value of ty.
func (m *Module) ConstNull(ty Type) Const {
	return Const{ty, llvm.ConstNull(ty.llvmTy())}
}

// ConstArray builds a constant array value of element type el from elems.
func (m *Module) ConstArray(el Type, elems []Const) Const {
	vals := make([]llvm.Value, len(elems))
	for i, e := range elems {
		vals[i] = e.llvm
	}
	arrTy := m.Types.Array(el, len(elems))
	return Const{arrTy, llvm.ConstArray(el.llvmTy(), vals)}
}

// ConstVector builds a constant vector value of the given vector type from
// elems, one per component.
func (m *Module) ConstVector(ty Vector, elems []Const) Const {
	vals := make([]llvm.Value, len(elems))
	for i, e := range elems {
		vals[i] = e.llvm
	}
	return Const{ty, llvm.ConstVector(vals, false)}
}

// ConstStruct builds a constant struct value for the given packed struct
// type from already-materialized member constants, in native-member order.
func (m *Module) ConstStruct(ty *Struct, members []Const) Const {
	vals := make([]llvm.Value, len(members))
	for i, c := range members {
		vals[i] = c.llvm
	}
	return Const{ty, llvm.ConstNamedStruct(ty.llvm, vals)}
}
