package llvmir

import (
	"github.com/kazan-3d/kazan-go/errs"

	"tinygo.org/x/go-llvm"
)

// Cast converts v to ty, choosing the LLVM cast opcode from the two types'
// kinds. Used for the SPIR-V conversion instructions (OpConvert*,
// OpUConvert, OpSConvert, OpFConvert — spec.md §4.E); OpBitcast goes
// through Bitcast instead.
func (v *Value) Cast(ty Type) *Value {
	from, to := ScalarOf(v.ty), ScalarOf(ty)

	switch {
	case from == to:
		return v.b.val(ty, v.llvm)

	case IsInteger(from) && IsInteger(to):
		fb, tb := from.sizeInBits(), to.sizeInBits()
		switch {
		case fb == tb:
			return v.b.val(ty, v.b.llvm.CreateBitCast(v.llvm, ty.llvmTy(), ""))
		case fb < tb:
			if IsSignedInteger(from) {
				return v.b.val(ty, v.b.llvm.CreateSExt(v.llvm, ty.llvmTy(), ""))
			}
			return v.b.val(ty, v.b.llvm.CreateZExt(v.llvm, ty.llvmTy(), ""))
		default:
			return v.b.val(ty, v.b.llvm.CreateTrunc(v.llvm, ty.llvmTy(), ""))
		}

	case IsFloat(from) && IsFloat(to):
		if from.sizeInBits() < to.sizeInBits() {
			return v.b.val(ty, v.b.llvm.CreateFPExt(v.llvm, ty.llvmTy(), ""))
		}
		return v.b.val(ty, v.b.llvm.CreateFPTrunc(v.llvm, ty.llvmTy(), ""))

	case IsInteger(from) && IsFloat(to):
		if IsSignedInteger(from) {
			return v.b.val(ty, v.b.llvm.CreateSIToFP(v.llvm, ty.llvmTy(), ""))
		}
		return v.b.val(ty, v.b.llvm.CreateUIToFP(v.llvm, ty.llvmTy(), ""))

	case IsFloat(from) && IsInteger(to):
		if IsSignedInteger(to) {
			return v.b.val(ty, v.b.llvm.CreateFPToSI(v.llvm, ty.llvmTy(), ""))
		}
		return v.b.val(ty, v.b.llvm.CreateFPToUI(v.llvm, ty.llvmTy(), ""))

	default:
		fail("cannot cast %v to %v", v.ty, ty)
		panic("unreachable")
	}
}

// Bitcast reinterprets v's bits as ty without conversion, matching SPIR-V's
// OpBitcast. Pointer-to-pointer bitcasts are always allowed; a bitcast
// between two vector types of different total bit width is explicitly not
// implemented (spec.md §4.E) and refuses rather than emitting a truncating
// or aggregate-reinterpreting cast LLVM would otherwise allow.
func (v *Value) Bitcast(ty Type) (*Value, error) {
	if IsVector(v.ty) || IsVector(ty) {
		from, to := bitWidthOf(v.ty), bitWidthOf(ty)
		if from != to {
			return nil, errs.Unsupportedf("OpBitcast between differently-sized vector types (%v is %d bits, %v is %d bits)", v.ty, from, ty, to)
		}
	}
	return v.b.val(ty, v.b.llvm.CreateBitCast(v.llvm, ty.llvmTy(), "")), nil
}

// bitWidthOf is sizeInBits generalized to vectors, whose own sizeInBits is
// always 0 (basicType's zero value): a vector's width is its element width
// times its element count.
func bitWidthOf(ty Type) int {
	if v, ok := ty.(Vector); ok {
		return v.Element.sizeInBits() * v.Count
	}
	return ty.sizeInBits()
}

// TruncateToUint32 truncates a scalar or vector-of-scalar float/int value
// down to a uint32 (vector-of-uint32), used by the fragment entry point's
// RGBA8 quantization step (spec.md §4.G).
func (v *Value) TruncateToUint32() *Value {
	u32 := v.b.m.Types.Uint32
	ty := u32
	if vec, ok := v.ty.(Vector); ok {
		ty = v.b.m.Types.Vector(u32, vec.Count)
	}
	if IsFloat(ScalarOf(v.ty)) {
		return v.b.val(ty, v.b.llvm.CreateFPToUI(v.llvm, ty.llvmTy(), ""))
	}
	return v.Cast(ty)
}

// castConst is the Const-level counterpart to Value.Cast, used while
// building compile-time initializer values.
func castConst(m *Module, c Const, ty Type) Const {
	from, to := ScalarOf(c.Type), ScalarOf(ty)
	switch {
	case from == to:
		return Const{ty, c.llvm}
	case IsInteger(from) && IsInteger(to):
		if from.sizeInBits() == to.sizeInBits() {
			return Const{ty, llvm.ConstBitCast(c.llvm, to.llvmTy())}
		}
		if from.sizeInBits() < to.sizeInBits() {
			if IsSignedInteger(from) {
				return Const{ty, llvm.ConstSExt(c.llvm, to.llvmTy())}
			}
			return Const{ty, llvm.ConstZExt(c.llvm, to.llvmTy())}
		}
		return Const{ty, llvm.ConstTrunc(c.llvm, to.llvmTy())}
	default:
		fail("cannot cast constant %v to %v", c.Type, ty)
		panic("unreachable")
	}
}
